package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"grana/internal/core"
	"grana/internal/engine"
)

type transactionRequest struct {
	Type           string  `json:"type"`
	Amount         string  `json:"amount"`
	Date           string  `json:"date"`
	Category       string  `json:"category"`
	Subcategory    string  `json:"subcategory,omitempty"`
	Benefit        bool    `json:"benefit,omitempty"`
	Salary         bool    `json:"salary,omitempty"`
	Method         string  `json:"method,omitempty"`
	CardID         string  `json:"card_id,omitempty"`
	CarKM          int64   `json:"car_km,omitempty"`
	Liters         float64 `json:"liters,omitempty"`
	InstallmentNum int     `json:"installment_num,omitempty"`
	InstallmentOf  int     `json:"installment_of,omitempty"`
}

type transactionResponse struct {
	ID             int64   `json:"id"`
	Type           string  `json:"type"`
	AmountCents    int64   `json:"amount_cents"`
	Date           string  `json:"date"`
	Category       string  `json:"category"`
	Subcategory    string  `json:"subcategory,omitempty"`
	Benefit        bool    `json:"benefit,omitempty"`
	Salary         bool    `json:"salary,omitempty"`
	Method         string  `json:"method"`
	CardID         string  `json:"card_id,omitempty"`
	CarKM          int64   `json:"car_km,omitempty"`
	Liters         float64 `json:"liters,omitempty"`
	InstallmentNum int     `json:"installment_num,omitempty"`
	InstallmentOf  int     `json:"installment_of,omitempty"`
}

func (req transactionRequest) toCore() (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount: %w", err)
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date: %w", err)
	}

	category := sanitizeInput(req.Category)
	subcategory := sanitizeInput(req.Subcategory)
	if !core.IsValidCategory(category) {
		return core.Transaction{}, fmt.Errorf("category %q: %w", category, core.ErrEmptyCategory)
	}
	if !core.IsValidSubcategory(category, subcategory) {
		return core.Transaction{}, fmt.Errorf("subcategory %q does not belong to %q", subcategory, category)
	}

	method := core.PaymentMethod(req.Method)
	if method == "" {
		method = core.Debit
	}

	t := core.Transaction{
		Type:           core.TransactionType(req.Type),
		Amount:         core.Money{Cents: cents},
		Date:           date,
		Category:       category,
		Subcategory:    subcategory,
		Benefit:        req.Benefit,
		Salary:         req.Salary,
		Method:         method,
		CardID:         sanitizeInput(req.CardID),
		CarKM:          req.CarKM,
		Liters:         req.Liters,
		InstallmentNum: req.InstallmentNum,
		InstallmentOf:  req.InstallmentOf,
	}
	return t, t.Validate()
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:             t.ID,
		Type:           string(t.Type),
		AmountCents:    t.Amount.Cents,
		Date:           t.Date.Format("2006-01-02"),
		Category:       t.Category,
		Subcategory:    t.Subcategory,
		Benefit:        t.Benefit,
		Salary:         t.Salary,
		Method:         string(t.Method),
		CardID:         t.CardID,
		CarKM:          t.CarKM,
		Liters:         t.Liters,
		InstallmentNum: t.InstallmentNum,
		InstallmentOf:  t.InstallmentOf,
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.ListTransactions(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r))
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	t, err := s.svc.GetTransaction(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	t, err := req.toCore()
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	id, err := s.svc.CreateTransaction(r.Context(), t)
	if err != nil {
		respondError(w, r, err)
		return
	}
	t.ID = id
	respondJSON(w, http.StatusCreated, toTransactionResponse(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r))
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	t, err := req.toCore()
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	t.ID = id
	if err := s.svc.UpdateTransaction(r.Context(), t); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r))
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	if err := s.svc.DeleteTransaction(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type debtRequest struct {
	Name              string `json:"name"`
	Total             string `json:"total"`
	InstallmentsTotal int    `json:"installments_total"`
	InstallmentsPaid  int    `json:"installments_paid,omitempty"`
	DueDay            int    `json:"due_day"`
	Installment       string `json:"installment,omitempty"`
	Category          string `json:"category,omitempty"`
}

type debtResponse struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	TotalCents        int64   `json:"total_cents"`
	InstallmentsTotal int     `json:"installments_total"`
	InstallmentsPaid  int     `json:"installments_paid"`
	DueDay            int     `json:"due_day"`
	Category          string  `json:"category,omitempty"`
	InstallmentCents  int64   `json:"installment_cents"`
	RemainingCents    int64   `json:"remaining_cents"`
	RemainingMonths   int     `json:"remaining_months"`
	ProgressPercent   float64 `json:"progress_percent"`
	PaidOff           bool    `json:"paid_off"`
	NextDueDate       string  `json:"next_due_date,omitempty"`
	FreedomDate       string  `json:"freedom_date,omitempty"`
}

func (req debtRequest) toCore() (core.Debt, error) {
	total, err := core.ParseDecimalToCents(req.Total)
	if err != nil {
		return core.Debt{}, fmt.Errorf("total: %w", err)
	}
	d := core.Debt{
		Name:              sanitizeInput(req.Name),
		Total:             core.Money{Cents: total},
		InstallmentsTotal: req.InstallmentsTotal,
		InstallmentsPaid:  req.InstallmentsPaid,
		DueDay:            req.DueDay,
		Category:          sanitizeInput(req.Category),
	}
	if req.Installment != "" {
		cents, err := core.ParseDecimalToCents(req.Installment)
		if err != nil {
			return core.Debt{}, fmt.Errorf("installment: %w", err)
		}
		d.Installment = core.Money{Cents: cents}
	}
	return d, d.Validate()
}

func toDebtResponse(d core.Debt, ref time.Time) debtResponse {
	status := engine.ComputeDebtStatus(d)
	resp := debtResponse{
		ID:                d.ID,
		Name:              d.Name,
		TotalCents:        d.Total.Cents,
		InstallmentsTotal: d.InstallmentsTotal,
		InstallmentsPaid:  d.InstallmentsPaid,
		DueDay:            d.DueDay,
		Category:          d.Category,
		InstallmentCents:  status.Installment.Cents,
		RemainingCents:    status.Remaining.Cents,
		RemainingMonths:   status.RemainingMonths,
		ProgressPercent:   status.ProgressPercent,
		PaidOff:           status.PaidOff,
	}
	if !status.PaidOff {
		resp.NextDueDate = engine.NextDueDate(d, ref).Format("2006-01-02")
		if freedom, ok := engine.FreedomDate(d, ref); ok {
			resp.FreedomDate = freedom.Format("2006-01-02")
		}
	}
	return resp
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.svc.ListDebts(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	now := time.Now().UTC()
	out := make([]debtResponse, 0, len(debts))
	for _, d := range debts {
		out = append(out, toDebtResponse(d, now))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r))
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	d, err := s.svc.GetDebt(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDebtResponse(d, time.Now().UTC()))
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var req debtRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	d, err := req.toCore()
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	id, err := s.svc.CreateDebt(r.Context(), d)
	if err != nil {
		respondError(w, r, err)
		return
	}
	d.ID = id
	respondJSON(w, http.StatusCreated, toDebtResponse(d, time.Now().UTC()))
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r))
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	var req debtRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	d, err := req.toCore()
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	d.ID = id
	if err := s.svc.UpdateDebt(r.Context(), d); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDebtResponse(d, time.Now().UTC()))
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r))
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	if err := s.svc.DeleteDebt(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handlePayDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r))
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	d, err := s.svc.PayDebtInstallment(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDebtResponse(d, time.Now().UTC()))
}
