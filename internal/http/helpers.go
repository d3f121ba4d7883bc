package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fluxo/internal/core"
	"fluxo/internal/storage"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// writeJSON renders v with the given status. Encoding failures are logged;
// the status line is already on the wire by then.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "JSON encode failed",
			"error", err, "url", r.URL.Path)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "url", r.URL.Path, "status", status)
	}
	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

// writeStorageError maps missing rows to 404 and everything else to 500.
func writeStorageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, err)
		return
	}
	writeError(w, r, http.StatusInternalServerError, err)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// queryMonth reads the ?month=YYYY-MM parameter, defaulting to the current
// month.
func (s *Server) queryMonth(r *http.Request) (core.Month, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return core.Today(s.now()).MonthOf(), nil
	}
	return core.ParseMonth(v)
}

// pathSuffix strips a route prefix from the URL, returning the remainder
// ("id" or "id/action").
func pathSuffix(r *http.Request, prefix string) string {
	return strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
