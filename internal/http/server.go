// Package http exposes the JSON API. Handlers are thin: they parse,
// delegate to services or the projection engine, and render JSON.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"fluxo/internal/ai"
	"fluxo/internal/services"
	"fluxo/internal/storage"
)

type Server struct {
	http.Server
	storage    *storage.SQLiteRepository
	txService  *services.TransactionService
	classifier *ai.Classifier
	quickAdd   *ai.QuickAddParser
	summarizer *ai.Summarizer

	rateLimiter *rateLimiter
	now         func() time.Time
}

// Deps carries the collaborators the server needs. The AI members may be
// nil; the endpoints that use them degrade to their deterministic
// fallbacks.
type Deps struct {
	Storage    *storage.SQLiteRepository
	TxService  *services.TransactionService
	Classifier *ai.Classifier
	QuickAdd   *ai.QuickAddParser
	Summarizer *ai.Summarizer
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		storage:     deps.Storage,
		txService:   deps.TxService,
		classifier:  deps.Classifier,
		quickAdd:    deps.QuickAdd,
		summarizer:  deps.Summarizer,
		rateLimiter: newRateLimiter(),
		now:         time.Now,
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/api/transactions", s.withSecurityHeaders(s.handleTransactions))
	mux.HandleFunc("/api/transactions/", s.withSecurityHeaders(s.handleTransactionByID))
	mux.HandleFunc("/api/installments", s.withSecurityHeaders(s.handleCreateInstallments))
	mux.HandleFunc("/api/installments/", s.withSecurityHeaders(s.handleInstallmentPurchase))
	mux.HandleFunc("/api/classify", s.withSecurityHeaders(s.handleClassifyBatch))
	mux.HandleFunc("/api/quickadd", s.withSecurityHeaders(s.handleQuickAdd))

	mux.HandleFunc("/api/bills", s.withSecurityHeaders(s.handleBills))
	mux.HandleFunc("/api/bills/", s.withSecurityHeaders(s.handleBillByID))

	mux.HandleFunc("/api/recurring", s.withSecurityHeaders(s.handleRecurring))
	mux.HandleFunc("/api/recurring/", s.withSecurityHeaders(s.handleRecurringByID))
	mux.HandleFunc("/api/goals", s.withSecurityHeaders(s.handleGoals))
	mux.HandleFunc("/api/goals/", s.withSecurityHeaders(s.handleGoalByID))
	mux.HandleFunc("/api/budgets", s.withSecurityHeaders(s.handleBudgets))
	mux.HandleFunc("/api/payslips", s.withSecurityHeaders(s.handlePayslips))

	mux.HandleFunc("/api/dashboard/summary", s.withSecurityHeaders(s.handleDashboardSummary))
	mux.HandleFunc("/api/dashboard/projection", s.withSecurityHeaders(s.handleProjection))
	mux.HandleFunc("/api/dashboard/burn-rate", s.withSecurityHeaders(s.handleBurnRate))
	mux.HandleFunc("/api/dashboard/commitments", s.withSecurityHeaders(s.handleCommitments))
	mux.HandleFunc("/api/dashboard/anomalies", s.withSecurityHeaders(s.handleAnomalies))
	mux.HandleFunc("/api/dashboard/insights", s.withSecurityHeaders(s.handleInsights))
	mux.HandleFunc("/api/dashboard/committed", s.withSecurityHeaders(s.handleCommitted))
	mux.HandleFunc("/api/dashboard/ai-summary", s.withSecurityHeaders(s.handleAISummary))

	return s
}

// Shutdown stops the rate limiter cleanup goroutine along with the
// listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.stop()
	}
	return s.Server.Shutdown(ctx)
}

// withSecurityHeaders adds security headers, rate limiting and request
// logging to handlers.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Rate limit mutations only; dashboard reads stay cheap.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		http.Error(w, "storage not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
