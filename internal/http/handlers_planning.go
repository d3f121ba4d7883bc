package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"fluxo/internal/core"
)

type recurringJSON struct {
	ID           string `json:"id"`
	Description  string `json:"description"`
	AmountCents  int64  `json:"amountCents"`
	Amount       string `json:"amount"`
	Type         string `json:"type"`
	Category     string `json:"category,omitempty"`
	Subcategory  string `json:"subcategory,omitempty"`
	Frequency    string `json:"frequency"`
	StartDate    string `json:"startDate"`
	NextDueDate  string `json:"nextDueDate"`
	LinkedBillID string `json:"linkedBillId,omitempty"`
}

func toRecurringJSON(rt core.RecurringTransaction) recurringJSON {
	return recurringJSON{
		ID:           rt.ID,
		Description:  rt.Description,
		AmountCents:  int64(rt.Amount),
		Amount:       rt.Amount.String(),
		Type:         string(rt.Type),
		Category:     rt.Category,
		Subcategory:  rt.Subcategory,
		Frequency:    string(rt.Frequency),
		StartDate:    rt.StartDate.String(),
		NextDueDate:  rt.NextDueDate.String(),
		LinkedBillID: rt.LinkedBillID,
	}
}

type recurringRequest struct {
	Description  string `json:"description"`
	Amount       string `json:"amount"`
	Type         string `json:"type"`
	Category     string `json:"category,omitempty"`
	Subcategory  string `json:"subcategory,omitempty"`
	StartDate    string `json:"startDate"`
	LinkedBillID string `json:"linkedBillId,omitempty"`
}

// handleRecurring lists recurring templates or creates one. New templates
// fall due on their start date.
func (s *Server) handleRecurring(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		templates, err := s.storage.ListRecurring(r.Context())
		if err != nil {
			writeStorageError(w, r, err)
			return
		}
		out := make([]recurringJSON, 0, len(templates))
		for _, rt := range templates {
			out = append(out, toRecurringJSON(rt))
		}
		writeJSON(w, r, http.StatusOK, out)

	case http.MethodPost:
		var req recurringRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		amount, err := core.ParseMoney(req.Amount)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		start, err := core.ParseDate(req.StartDate)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}

		typ := core.Expense
		if req.Type == string(core.Income) {
			typ = core.Income
		}
		rt := core.RecurringTransaction{
			ID:           uuid.NewString(),
			Description:  sanitizeInput(req.Description),
			Amount:       amount,
			Type:         typ,
			Category:     req.Category,
			Subcategory:  req.Subcategory,
			Frequency:    core.Monthly,
			StartDate:    start,
			NextDueDate:  start,
			LinkedBillID: req.LinkedBillID,
		}
		if err := rt.Validate(); err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, err)
			return
		}
		if err := s.storage.SaveRecurring(r.Context(), rt); err != nil {
			writeStorageError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, toRecurringJSON(rt))

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleRecurringByID(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r, "/api/recurring/")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("missing recurring id"))
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}
	if err := s.storage.DeleteRecurring(r.Context(), id); err != nil {
		writeStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type goalJSON struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	TargetAmountCents  int64   `json:"targetAmountCents"`
	CurrentAmountCents int64   `json:"currentAmountCents"`
	Deadline           string  `json:"deadline,omitempty"`
	Progress           float64 `json:"progress"`
	RemainingCents     int64   `json:"remainingCents"`
}

func toGoalJSON(g core.FinancialGoal) goalJSON {
	out := goalJSON{
		ID:                 g.ID,
		Name:               g.Name,
		TargetAmountCents:  int64(g.TargetAmount),
		CurrentAmountCents: int64(g.CurrentAmount),
		Progress:           g.Progress(),
		RemainingCents:     int64(g.Remaining()),
	}
	if !g.Deadline.IsZero() {
		out.Deadline = g.Deadline.String()
	}
	return out
}

type goalRequest struct {
	Name          string `json:"name"`
	TargetAmount  string `json:"targetAmount"`
	CurrentAmount string `json:"currentAmount,omitempty"`
	Deadline      string `json:"deadline,omitempty"`
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		goals, err := s.storage.ListGoals(r.Context())
		if err != nil {
			writeStorageError(w, r, err)
			return
		}
		out := make([]goalJSON, 0, len(goals))
		for _, g := range goals {
			out = append(out, toGoalJSON(g))
		}
		writeJSON(w, r, http.StatusOK, out)

	case http.MethodPost:
		var req goalRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		target, err := core.ParseMoney(req.TargetAmount)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		g := core.FinancialGoal{
			ID:           uuid.NewString(),
			Name:         sanitizeInput(req.Name),
			TargetAmount: target,
		}
		if req.CurrentAmount != "" {
			current, err := core.ParseMoney(req.CurrentAmount)
			if err != nil {
				writeError(w, r, http.StatusBadRequest, err)
				return
			}
			g.CurrentAmount = current
		}
		if req.Deadline != "" {
			deadline, err := core.ParseDate(req.Deadline)
			if err != nil {
				writeError(w, r, http.StatusBadRequest, err)
				return
			}
			g.Deadline = deadline
		}
		if g.Name == "" {
			writeError(w, r, http.StatusUnprocessableEntity, core.ErrEmptyDescription)
			return
		}
		if err := s.storage.SaveGoal(r.Context(), g); err != nil {
			writeStorageError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, toGoalJSON(g))

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

type updateGoalRequest struct {
	CurrentAmount string `json:"currentAmount"`
}

func (s *Server) handleGoalByID(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r, "/api/goals/")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("missing goal id"))
		return
	}

	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		var req updateGoalRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		current, err := core.ParseMoney(req.CurrentAmount)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		goals, err := s.storage.ListGoals(r.Context())
		if err != nil {
			writeStorageError(w, r, err)
			return
		}
		for _, g := range goals {
			if g.ID != id {
				continue
			}
			g.CurrentAmount = current
			if err := s.storage.SaveGoal(r.Context(), g); err != nil {
				writeStorageError(w, r, err)
				return
			}
			writeJSON(w, r, http.StatusOK, toGoalJSON(g))
			return
		}
		writeError(w, r, http.StatusNotFound, errors.New("goal not found"))

	case http.MethodDelete:
		if err := s.storage.DeleteGoal(r.Context(), id); err != nil {
			writeStorageError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, http.MethodPatch, http.MethodPut, http.MethodDelete)
	}
}

type budgetJSON struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amountCents"`
	Period      string `json:"period"`
}

type budgetRequest struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		budgets, err := s.storage.ListBudgets(r.Context())
		if err != nil {
			writeStorageError(w, r, err)
			return
		}
		out := make([]budgetJSON, 0, len(budgets))
		for _, b := range budgets {
			out = append(out, budgetJSON{
				ID:          b.ID,
				Category:    b.Category,
				AmountCents: int64(b.Amount),
				Period:      b.Period,
			})
		}
		writeJSON(w, r, http.StatusOK, out)

	case http.MethodPost, http.MethodPut:
		var req budgetRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		amount, err := core.ParseMoney(req.Amount)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		category, _ := core.NormalizeCategory(req.Category, "", core.Expense)
		b := core.Budget{
			ID:       uuid.NewString(),
			Category: category,
			Amount:   amount,
			Period:   "monthly",
		}
		if err := s.storage.SaveBudget(r.Context(), b); err != nil {
			writeStorageError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, budgetJSON{
			ID:          b.ID,
			Category:    b.Category,
			AmountCents: int64(b.Amount),
			Period:      b.Period,
		})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodPut)
	}
}

type payslipItemJSON struct {
	Description string `json:"description"`
	ValueCents  int64  `json:"valueCents"`
}

type payslipJSON struct {
	ID              string            `json:"id"`
	Month           string            `json:"month"`
	Payments        []payslipItemJSON `json:"payments"`
	Deductions      []payslipItemJSON `json:"deductions"`
	GrossCents      int64             `json:"grossCents"`
	DeductionsCents int64             `json:"deductionsCents"`
	NetCents        int64             `json:"netCents"`
}

func toPayslipJSON(p core.Payslip) payslipJSON {
	out := payslipJSON{
		ID:              p.ID,
		Month:           p.Month.String(),
		Payments:        make([]payslipItemJSON, 0, len(p.Payments)),
		Deductions:      make([]payslipItemJSON, 0, len(p.Deductions)),
		GrossCents:      int64(p.GrossTotal()),
		DeductionsCents: int64(p.DeductionsTotal()),
		NetCents:        int64(p.NetTotal()),
	}
	for _, it := range p.Payments {
		out.Payments = append(out.Payments, payslipItemJSON{Description: it.Description, ValueCents: int64(it.Value)})
	}
	for _, it := range p.Deductions {
		out.Deductions = append(out.Deductions, payslipItemJSON{Description: it.Description, ValueCents: int64(it.Value)})
	}
	return out
}

type payslipItemRequest struct {
	Description string `json:"description"`
	Value       string `json:"value"`
}

type payslipRequest struct {
	Month      string               `json:"month"`
	Payments   []payslipItemRequest `json:"payments"`
	Deductions []payslipItemRequest `json:"deductions"`
}

func payslipItems(reqs []payslipItemRequest) ([]core.PayslipItem, error) {
	items := make([]core.PayslipItem, 0, len(reqs))
	for _, it := range reqs {
		value, err := core.ParseMoney(it.Value)
		if err != nil {
			return nil, err
		}
		items = append(items, core.PayslipItem{
			Description: sanitizeInput(it.Description),
			Value:       value,
		})
	}
	return items, nil
}

// handlePayslips fetches or replaces the payslip for a month. One payslip
// per month; uploading again replaces it.
func (s *Server) handlePayslips(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		month, err := s.queryMonth(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		p, err := s.storage.GetPayslip(r.Context(), month)
		if err != nil {
			writeStorageError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, toPayslipJSON(p))

	case http.MethodPost, http.MethodPut:
		var req payslipRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		month, err := core.ParseMonth(req.Month)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		payments, err := payslipItems(req.Payments)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		deductions, err := payslipItems(req.Deductions)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}

		p := core.Payslip{
			ID:         uuid.NewString(),
			Month:      month,
			Payments:   payments,
			Deductions: deductions,
		}
		if err := s.storage.SavePayslip(r.Context(), p); err != nil {
			writeStorageError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, toPayslipJSON(p))

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodPut)
	}
}
