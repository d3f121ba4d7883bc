package http

import (
	"errors"
	"fmt"
	"net/http"

	"fluxo/internal/core"
	"fluxo/internal/services"
)

type installmentJSON struct {
	PurchaseID       string `json:"purchaseId"`
	Current          int    `json:"current"`
	Total            int    `json:"total"`
	TotalAmountCents int64  `json:"totalAmountCents"`
}

type transactionJSON struct {
	ID            string           `json:"id"`
	Description   string           `json:"description"`
	AmountCents   int64            `json:"amountCents"`
	Amount        string           `json:"amount"`
	Type          string           `json:"type"`
	Date          string           `json:"date"`
	Category      string           `json:"category"`
	Subcategory   string           `json:"subcategory,omitempty"`
	PaymentMethod string           `json:"paymentMethod,omitempty"`
	Installment   *installmentJSON `json:"installment,omitempty"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	out := transactionJSON{
		ID:            t.ID,
		Description:   t.Description,
		AmountCents:   int64(t.Amount),
		Amount:        t.Amount.String(),
		Type:          string(t.Type),
		Date:          t.Date.String(),
		Category:      t.Category,
		Subcategory:   t.Subcategory,
		PaymentMethod: string(t.PaymentMethod),
	}
	if t.Installment != nil {
		out.Installment = &installmentJSON{
			PurchaseID:       t.Installment.PurchaseID,
			Current:          t.Installment.Current,
			Total:            t.Installment.Total,
			TotalAmountCents: int64(t.Installment.TotalAmount),
		}
	}
	return out
}

func toTransactionsJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionJSON(t))
	}
	return out
}

type transactionRequest struct {
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Type          string `json:"type"`
	Date          string `json:"date,omitempty"`
	Category      string `json:"category,omitempty"`
	Subcategory   string `json:"subcategory,omitempty"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
}

func (s *Server) transactionFromRequest(req transactionRequest) (core.Transaction, error) {
	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	date := core.Today(s.now())
	if req.Date != "" {
		if date, err = core.ParseDate(req.Date); err != nil {
			return core.Transaction{}, err
		}
	}

	return core.Transaction{
		Description:   sanitizeInput(req.Description),
		Amount:        amount,
		Type:          core.TransactionType(req.Type),
		Date:          date,
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		PaymentMethod: core.PaymentMethod(req.PaymentMethod),
	}, nil
}

// handleTransactions lists the month's transactions or creates one.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		month, err := s.queryMonth(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		txs, err := s.storage.ListTransactionsByMonth(r.Context(), month)
		if err != nil {
			writeStorageError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, toTransactionsJSON(txs))

	case http.MethodPost:
		var req transactionRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		t, err := s.transactionFromRequest(req)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		id, err := s.txService.CreateTransaction(r.Context(), t)
		if err != nil {
			if errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrEmptyDescription) ||
				errors.Is(err, core.ErrUnknownType) {
				writeError(w, r, http.StatusUnprocessableEntity, err)
				return
			}
			writeStorageError(w, r, err)
			return
		}
		created, err := s.storage.GetTransaction(r.Context(), id)
		if err != nil {
			writeStorageError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, toTransactionJSON(created))

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

type updateTransactionRequest struct {
	Description *string `json:"description,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	Date        *string `json:"date,omitempty"`
	Category    *string `json:"category,omitempty"`
	Subcategory *string `json:"subcategory,omitempty"`
}

// handleTransactionByID serves a single transaction: fetch, partial update,
// delete. Deleting an installment row accepts ?scope=single|future.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r, "/api/transactions/")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("missing transaction id"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := s.storage.GetTransaction(r.Context(), id)
		if err != nil {
			writeStorageError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, toTransactionJSON(t))

	case http.MethodPut, http.MethodPatch:
		s.updateTransaction(w, r, id)

	case http.MethodDelete:
		scope := services.DeleteScope(r.URL.Query().Get("scope"))
		if scope == "" {
			scope = services.DeleteSingle
		}
		if scope != services.DeleteSingle && scope != services.DeleteFuture {
			writeError(w, r, http.StatusBadRequest, fmt.Errorf("unknown deletion scope %q", scope))
			return
		}
		if err := s.txService.DeleteTransaction(r.Context(), id, scope); err != nil {
			writeStorageError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	var req updateTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	t, err := s.storage.GetTransaction(r.Context(), id)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	// Description and amount of an installment row belong to the whole
	// purchase; rewriting them goes through the installments endpoint.
	if t.Installment != nil && (req.Description != nil || req.Amount != nil) {
		writeError(w, r, http.StatusUnprocessableEntity,
			errors.New("description and amount of an installment are edited through its purchase"))
		return
	}

	if req.Description != nil {
		t.Description = sanitizeInput(*req.Description)
	}
	if req.Amount != nil {
		amount, err := core.ParseMoney(*req.Amount)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		t.Amount = amount
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		t.Date = date
	}
	if req.Category != nil {
		t.Category, t.Subcategory = core.NormalizeCategory(*req.Category, t.Subcategory, t.Type)
	}
	if req.Subcategory != nil {
		t.Category, t.Subcategory = core.NormalizeCategory(t.Category, *req.Subcategory, t.Type)
	}

	if err := t.Validate(); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	if err := s.storage.SaveTransaction(r.Context(), t); err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toTransactionJSON(t))
}

type installmentPlanRequest struct {
	Description string `json:"description"`
	TotalAmount string `json:"totalAmount"`
	Parts       int    `json:"parts"`
	FirstDate   string `json:"firstDate,omitempty"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
}

// handleCreateInstallments splits a credit purchase into monthly rows.
func (s *Server) handleCreateInstallments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req installmentPlanRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	total, err := core.ParseMoney(req.TotalAmount)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	firstDate := core.Today(s.now())
	if req.FirstDate != "" {
		if firstDate, err = core.ParseDate(req.FirstDate); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
	}

	txs, err := s.txService.CreateInstallmentPlan(r.Context(), services.InstallmentPlan{
		Description: sanitizeInput(req.Description),
		TotalAmount: total,
		Parts:       req.Parts,
		FirstDate:   firstDate,
		Category:    req.Category,
		Subcategory: req.Subcategory,
	})
	if err != nil {
		if errors.Is(err, core.ErrInvalidInstallment) || errors.Is(err, core.ErrInvalidAmount) ||
			errors.Is(err, core.ErrEmptyDescription) {
			writeError(w, r, http.StatusUnprocessableEntity, err)
			return
		}
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toTransactionsJSON(txs))
}

type updatePurchaseRequest struct {
	Description string `json:"description"`
	TotalAmount string `json:"totalAmount"`
}

// handleInstallmentPurchase lists or rewrites one purchase's rows.
func (s *Server) handleInstallmentPurchase(w http.ResponseWriter, r *http.Request) {
	purchaseID := pathSuffix(r, "/api/installments/")
	if purchaseID == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("missing purchase id"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		rows, err := s.storage.ListInstallments(r.Context(), purchaseID)
		if err != nil {
			writeStorageError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, toTransactionsJSON(rows))

	case http.MethodPut:
		var req updatePurchaseRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		total, err := core.ParseMoney(req.TotalAmount)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		if err := s.txService.UpdateInstallmentPurchase(r.Context(), purchaseID,
			sanitizeInput(req.Description), total); err != nil {
			writeStorageError(w, r, err)
			return
		}
		rows, err := s.storage.ListInstallments(r.Context(), purchaseID)
		if err != nil {
			writeStorageError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, toTransactionsJSON(rows))

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

type quickAddRequest struct {
	Text string `json:"text"`
}

// handleQuickAdd parses free text into a transaction and saves it.
func (s *Server) handleQuickAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if s.quickAdd == nil {
		writeError(w, r, http.StatusServiceUnavailable, errors.New("quick-add not configured"))
		return
	}

	var req quickAddRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	t, err := s.quickAdd.Parse(r.Context(), sanitizeInput(req.Text), core.Today(s.now()))
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	id, err := s.txService.CreateTransaction(r.Context(), t)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	created, err := s.storage.GetTransaction(r.Context(), id)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toTransactionJSON(created))
}

type classifyBatchResponse struct {
	Total      int `json:"total"`
	Classified int `json:"classified"`
}

// handleClassifyBatch categorizes every pending transaction in one pass.
// The client cancelling the request stops the batch between items.
func (s *Server) handleClassifyBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if s.classifier == nil {
		writeError(w, r, http.StatusServiceUnavailable, errors.New("classifier not configured"))
		return
	}

	pending, err := s.storage.ListUnclassified(r.Context())
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	suggestions, err := s.classifier.ClassifyBatch(r.Context(), pending, nil)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	classified := 0
	for id, sug := range suggestions {
		if err := s.storage.UpdateTransactionCategory(r.Context(), id, sug.Category, sug.Subcategory); err != nil {
			writeStorageError(w, r, err)
			return
		}
		classified++
	}
	writeJSON(w, r, http.StatusOK, classifyBatchResponse{Total: len(pending), Classified: classified})
}
