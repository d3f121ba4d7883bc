package http

import (
	"errors"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"fluxo/internal/core"
	"fluxo/internal/projection"
)

// monthContext resolves the month under view and the reference day for the
// projection functions. Months other than the current one are viewed from
// their last day, so projections collapse to plain totals.
func (s *Server) monthContext(r *http.Request) (core.Month, core.Date, error) {
	month, err := s.queryMonth(r)
	if err != nil {
		return core.Month{}, core.Date{}, err
	}
	today := core.Today(s.now())
	if !month.Contains(today) {
		today = core.NewDate(month.Year, month.Month, month.Days())
	}
	return month, today, nil
}

type summaryResponse struct {
	Month          string `json:"month"`
	IncomeCents    int64  `json:"incomeCents"`
	ExpenseCents   int64  `json:"expenseCents"`
	BalanceCents   int64  `json:"balanceCents"`
	Balance        string `json:"balance"`
	ProjectedCents int64  `json:"projectedCents"`
	Projected      string `json:"projected"`
	Transactions   int    `json:"transactions"`
}

// handleDashboardSummary returns the month's headline numbers.
func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	month, today, err := s.monthContext(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	txs, err := s.storage.ListTransactionsByMonth(r.Context(), month)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	bills, err := s.storage.ListBills(r.Context())
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	var income, expense core.Money
	for _, t := range txs {
		if t.Type == core.Income {
			income += t.Amount
		} else {
			expense += t.Amount
		}
	}
	proj := projection.MonthEndProjection(txs, bills, month, today)

	writeJSON(w, r, http.StatusOK, summaryResponse{
		Month:          month.String(),
		IncomeCents:    int64(income),
		ExpenseCents:   int64(expense),
		BalanceCents:   int64(proj.CurrentBalance),
		Balance:        proj.CurrentBalance.String(),
		ProjectedCents: int64(proj.Projected),
		Projected:      proj.Projected.String(),
		Transactions:   len(txs),
	})
}

type projectionResponse struct {
	Month                  string `json:"month"`
	CurrentBalanceCents    int64  `json:"currentBalanceCents"`
	UpcomingBillsCents     int64  `json:"upcomingBillsCents"`
	ProjectedVariableCents int64  `json:"projectedVariableCents"`
	ProjectedCents         int64  `json:"projectedCents"`
	Projected              string `json:"projected"`
}

// handleProjection exposes the three-term month-end forecast.
func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	month, today, err := s.monthContext(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	txs, err := s.storage.ListTransactionsByMonth(r.Context(), month)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	bills, err := s.storage.ListBills(r.Context())
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	p := projection.MonthEndProjection(txs, bills, month, today)
	writeJSON(w, r, http.StatusOK, projectionResponse{
		Month:                  month.String(),
		CurrentBalanceCents:    int64(p.CurrentBalance),
		UpcomingBillsCents:     int64(p.UpcomingBills),
		ProjectedVariableCents: int64(p.ProjectedVariable),
		ProjectedCents:         int64(p.Projected),
		Projected:              p.Projected.String(),
	})
}

type burnRatePointJSON struct {
	Day          int   `json:"day"`
	IncomeCents  int64 `json:"incomeCents"`
	ExpenseCents int64 `json:"expenseCents"`
}

// handleBurnRate returns the cumulative income/expense series for the
// month's chart.
func (s *Server) handleBurnRate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
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

	points := projection.BurnRateChartData(txs, month)
	out := make([]burnRatePointJSON, 0, len(points))
	for _, p := range points {
		out = append(out, burnRatePointJSON{
			Day:          p.Day,
			IncomeCents:  int64(p.Income),
			ExpenseCents: int64(p.Expense),
		})
	}
	writeJSON(w, r, http.StatusOK, out)
}

// handleCommitments returns the next bill obligations, soonest first.
func (s *Server) handleCommitments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, errors.New("limit must be a number"))
			return
		}
		limit = parsed
	}

	today := core.Today(s.now())
	bills, err := s.storage.ListBills(r.Context())
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	// The fuzzy paid-match scans this month and next, where due dates can
	// land.
	txs, err := s.storage.ListTransactionsSince(r.Context(), core.NewDate(today.MonthOf().Year, today.MonthOf().Month, 1))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, projection.UpcomingCommitments(bills, txs, today, limit))
}

// handleAnomalies compares the trailing 7-day spending windows.
func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	today := core.Today(s.now())
	txs, err := s.storage.ListTransactionsSince(r.Context(), today.AddDays(-13))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	anomalies := projection.DetectSpendingAnomalies(txs, today, projection.DefaultAnomalyThreshold)
	if anomalies == nil {
		anomalies = []projection.Anomaly{}
	}
	writeJSON(w, r, http.StatusOK, anomalies)
}

// handleInsights returns the three dashboard insight slots.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	month, today, err := s.monthContext(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	insights, _, err := s.buildInsights(r, month, today)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, insights)
}

// buildInsights gathers everything the rule slots need. The anomaly slot
// wants a 14-day window that may reach into the previous month, so the
// transaction fetch goes by date, not month. The five reads are
// independent and run concurrently.
func (s *Server) buildInsights(r *http.Request, month core.Month, today core.Date) ([]projection.Insight, projection.Projection, error) {
	var (
		monthTxs  []core.Transaction
		windowTxs []core.Transaction
		bills     []core.Bill
		goals     []core.FinancialGoal
		budgets   []core.Budget
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		monthTxs, err = s.storage.ListTransactionsByMonth(ctx, month)
		return err
	})
	g.Go(func() (err error) {
		windowTxs, err = s.storage.ListTransactionsSince(ctx, today.AddDays(-13))
		return err
	})
	g.Go(func() (err error) {
		bills, err = s.storage.ListBills(ctx)
		return err
	})
	g.Go(func() (err error) {
		goals, err = s.storage.ListGoals(ctx)
		return err
	})
	g.Go(func() (err error) {
		budgets, err = s.storage.ListBudgets(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, projection.Projection{}, err
	}

	proj := projection.MonthEndProjection(monthTxs, bills, month, today)
	insights := projection.RuleBasedInsights(windowTxs, goals, budgets, proj.Projected, today)
	return insights, proj, nil
}

type committedResponse struct {
	Month          string                        `json:"month"`
	CommittedCents int64                         `json:"committedCents"`
	Committed      string                        `json:"committed"`
	Payslip        *projection.PayslipCommitment `json:"payslip,omitempty"`
}

// handleCommitted returns the month's committed spending, related to the
// payslip's net salary when one was uploaded.
func (s *Server) handleCommitted(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
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

	committed := projection.CommittedSpending(txs, month)
	out := committedResponse{
		Month:          month.String(),
		CommittedCents: int64(committed),
		Committed:      committed.String(),
	}

	if payslip, err := s.storage.GetPayslip(r.Context(), month); err == nil {
		pc := projection.CommitmentAgainstPayslip(payslip, txs)
		out.Payslip = &pc
	}

	writeJSON(w, r, http.StatusOK, out)
}

type aiSummaryResponse struct {
	Month   string `json:"month"`
	Summary string `json:"summary"`
}

// handleAISummary narrates the month. Always answers; the summarizer falls
// back to the rule-based insights when the model is unavailable.
func (s *Server) handleAISummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if s.summarizer == nil {
		writeError(w, r, http.StatusServiceUnavailable, errors.New("summarizer not configured"))
		return
	}
	month, today, err := s.monthContext(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	insights, proj, err := s.buildInsights(r, month, today)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	summary := s.summarizer.MonthlySummary(r.Context(), month, proj, insights)
	writeJSON(w, r, http.StatusOK, aiSummaryResponse{Month: month.String(), Summary: summary})
}
