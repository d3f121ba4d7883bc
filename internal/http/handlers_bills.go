package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"fluxo/internal/core"
)

type billPaymentJSON struct {
	Month         string `json:"month"`
	TransactionID string `json:"transactionId"`
}

type billJSON struct {
	ID                     string            `json:"id"`
	Description            string            `json:"description"`
	DueDay                 int               `json:"dueDay"`
	IsAutoDebit            bool              `json:"isAutoDebit"`
	AmountCents            int64             `json:"amountCents"`
	Amount                 string            `json:"amount"`
	Category               string            `json:"category,omitempty"`
	Subcategory            string            `json:"subcategory,omitempty"`
	RecurringTransactionID string            `json:"recurringTransactionId,omitempty"`
	Payments               []billPaymentJSON `json:"payments,omitempty"`
}

func toBillJSON(b core.Bill) billJSON {
	out := billJSON{
		ID:                     b.ID,
		Description:            b.Description,
		DueDay:                 b.DueDay,
		IsAutoDebit:            b.IsAutoDebit,
		AmountCents:            int64(b.Amount),
		Amount:                 b.Amount.String(),
		Category:               b.Category,
		Subcategory:            b.Subcategory,
		RecurringTransactionID: b.RecurringTransactionID,
	}
	for _, p := range b.Payments {
		out.Payments = append(out.Payments, billPaymentJSON{
			Month:         p.Month.String(),
			TransactionID: p.TransactionID,
		})
	}
	return out
}

type billRequest struct {
	Description string `json:"description"`
	DueDay      int    `json:"dueDay"`
	IsAutoDebit bool   `json:"isAutoDebit"`
	Amount      string `json:"amount,omitempty"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
}

func billFromRequest(req billRequest) (core.Bill, error) {
	var amount core.Money
	if req.Amount != "" {
		parsed, err := core.ParseMoney(req.Amount)
		if err != nil {
			return core.Bill{}, err
		}
		amount = parsed
	}
	return core.Bill{
		Description: sanitizeInput(req.Description),
		DueDay:      req.DueDay,
		IsAutoDebit: req.IsAutoDebit,
		Amount:      amount,
		Category:    req.Category,
		Subcategory: req.Subcategory,
	}, nil
}

// handleBills lists all bills or registers a new one.
func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		bills, err := s.storage.ListBills(r.Context())
		if err != nil {
			writeStorageError(w, r, err)
			return
		}
		out := make([]billJSON, 0, len(bills))
		for _, b := range bills {
			out = append(out, toBillJSON(b))
		}
		writeJSON(w, r, http.StatusOK, out)

	case http.MethodPost:
		var req billRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		b, err := billFromRequest(req)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		b.ID = uuid.NewString()
		if err := b.Validate(); err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, err)
			return
		}
		if err := s.storage.SaveBill(r.Context(), b); err != nil {
			writeStorageError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, toBillJSON(b))

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

type payBillRequest struct {
	Month  string `json:"month,omitempty"`
	Amount string `json:"amount,omitempty"`
}

// handleBillByID serves one bill: fetch, update, delete, and the "pay"
// action at /api/bills/{id}/pay.
func (s *Server) handleBillByID(w http.ResponseWriter, r *http.Request) {
	suffix := pathSuffix(r, "/api/bills/")
	if suffix == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("missing bill id"))
		return
	}

	if id, ok := strings.CutSuffix(suffix, "/pay"); ok {
		s.payBill(w, r, id)
		return
	}
	id := suffix

	switch r.Method {
	case http.MethodGet:
		b, err := s.storage.GetBill(r.Context(), id)
		if err != nil {
			writeStorageError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, toBillJSON(b))

	case http.MethodPut:
		var req billRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		existing, err := s.storage.GetBill(r.Context(), id)
		if err != nil {
			writeStorageError(w, r, err)
			return
		}
		b, err := billFromRequest(req)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		b.ID = existing.ID
		b.RecurringTransactionID = existing.RecurringTransactionID
		b.Payments = existing.Payments
		if err := b.Validate(); err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, err)
			return
		}
		if err := s.storage.SaveBill(r.Context(), b); err != nil {
			writeStorageError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, toBillJSON(b))

	case http.MethodDelete:
		if err := s.storage.DeleteBill(r.Context(), id); err != nil {
			writeStorageError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// payBill settles a bill for a month: a real expense is created and linked
// so projections stop counting the bill as upcoming.
func (s *Server) payBill(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req payBillRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	today := core.Today(s.now())
	month := today.MonthOf()
	if req.Month != "" {
		parsed, err := core.ParseMonth(req.Month)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		month = parsed
	}

	var amount core.Money
	if req.Amount != "" {
		parsed, err := core.ParseMoney(req.Amount)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		amount = parsed
	}

	txID, err := s.txService.PayBill(r.Context(), id, month, amount, today)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			writeError(w, r, http.StatusUnprocessableEntity, err)
			return
		}
		writeStorageError(w, r, err)
		return
	}

	t, err := s.storage.GetTransaction(r.Context(), txID)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toTransactionJSON(t))
}
