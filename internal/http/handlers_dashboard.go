package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"grana/internal/core"
	"grana/internal/engine"
)

type invoiceDTO struct {
	CurrentCents   int64   `json:"current_cents"`
	LimitUsedCents int64   `json:"limit_used_cents"`
	LimitPercent   float64 `json:"limit_percent"`
	AvailableCents int64   `json:"available_cents"`
}

type cardInvoiceDTO struct {
	CardID   string     `json:"card_id"`
	CardName string     `json:"card_name"`
	Invoice  invoiceDTO `json:"invoice"`
}

type balancesDTO struct {
	NetCents     int64 `json:"net_cents"`
	BenefitCents int64 `json:"benefit_cents"`
}

type forecastBucketDTO struct {
	Label       string `json:"label"`
	AmountCents int64  `json:"amount_cents"`
}

type forecastDTO struct {
	FreeBalanceCents int64               `json:"free_balance_cents"`
	Breakdown        []forecastBucketDTO `json:"breakdown"`
}

type dashboardResponse struct {
	Year                   int              `json:"year"`
	Month                  int              `json:"month"`
	Balances               balancesDTO      `json:"balances"`
	Invoice                invoiceDTO       `json:"invoice"`
	Cards                  []cardInvoiceDTO `json:"cards"`
	PendingRentCents       int64            `json:"pending_rent_cents"`
	PendingFixedCents      int64            `json:"pending_fixed_cents"`
	MonthlyCommitmentCents int64            `json:"monthly_commitment_cents"`
	Forecast               forecastDTO      `json:"forecast"`
}

func toInvoiceDTO(inv engine.Invoice) invoiceDTO {
	return invoiceDTO{
		CurrentCents:   inv.Current.Cents,
		LimitUsedCents: inv.LimitUsed.Cents,
		LimitPercent:   inv.LimitPercent,
		AvailableCents: inv.Available.Cents,
	}
}

func toForecastDTO(f engine.Forecast) forecastDTO {
	out := forecastDTO{
		FreeBalanceCents: f.FreeBalance.Cents,
		Breakdown:        make([]forecastBucketDTO, 0, len(f.Breakdown)),
	}
	for _, b := range f.Breakdown {
		out.Breakdown = append(out.Breakdown, forecastBucketDTO{
			Label:       b.Label,
			AmountCents: b.Amount.Cents,
		})
	}
	return out
}

// handleDashboard renders every headline figure for the requested month in
// one response, computed from a single snapshot so the numbers agree with
// each other.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	ref := refTime(r)
	year, month := parseYearMonth(r)

	resp := dashboardResponse{
		Year:  year,
		Month: month,
		Cards: make([]cardInvoiceDTO, 0, len(snap.Config.Cards)),
	}

	balances := engine.ComputeBalances(snap.Transactions, snap.Config.Settings)
	resp.Balances = balancesDTO{
		NetCents:     balances.Net.Cents,
		BenefitCents: balances.Benefit.Cents,
	}

	resp.Invoice = toInvoiceDTO(engine.AggregateInvoices(snap.Transactions, snap.Config.Cards, ref))
	for _, card := range snap.Config.Cards {
		resp.Cards = append(resp.Cards, cardInvoiceDTO{
			CardID:   card.ID,
			CardName: card.Name,
			Invoice:  toInvoiceDTO(engine.ComputeInvoice(snap.Transactions, card, ref)),
		})
	}

	resp.PendingRentCents = engine.PendingRent(snap.Config.House, snap.Transactions, ref).Cents
	resp.PendingFixedCents = engine.PendingFixedAmount(snap.FixedExpenses, snap.Transactions, ref).Cents
	resp.MonthlyCommitmentCents = engine.MonthlyCommitment(snap.Debts).Cents
	resp.Forecast = toForecastDTO(engine.ForecastFromSnapshot(snap, ref))

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCardInvoice(w http.ResponseWriter, r *http.Request) {
	cardID := sanitizeInput(mux.Vars(r)["id"])

	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	for _, card := range snap.Config.Cards {
		if card.ID != cardID {
			continue
		}
		respondJSON(w, http.StatusOK, cardInvoiceDTO{
			CardID:   card.ID,
			CardName: card.Name,
			Invoice:  toInvoiceDTO(engine.ComputeInvoice(snap.Transactions, card, refTime(r))),
		})
		return
	}
	respondJSON(w, http.StatusNotFound, map[string]string{
		"error": "card " + cardID + " not found",
	})
}

type monthFlowDTO struct {
	Year         int   `json:"year"`
	Month        int   `json:"month"`
	IncomeCents  int64 `json:"income_cents"`
	ExpenseCents int64 `json:"expense_cents"`
}

type categoryAmountDTO struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

type trendsResponse struct {
	Flows      []monthFlowDTO      `json:"flows"`
	Categories []categoryAmountDTO `json:"categories"`
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	months := 6
	if v := strings.TrimSpace(r.URL.Query().Get("months")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 36 {
			months = n
		}
	}

	txs, err := s.svc.ListTransactions(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	ref := refTime(r)
	year, month := parseYearMonth(r)

	resp := trendsResponse{
		Flows:      make([]monthFlowDTO, 0, months),
		Categories: make([]categoryAmountDTO, 0),
	}
	for _, f := range engine.MonthlyFlows(txs, ref, months) {
		resp.Flows = append(resp.Flows, monthFlowDTO{
			Year:         f.Year,
			Month:        f.Month,
			IncomeCents:  f.Income.Cents,
			ExpenseCents: f.Expense.Cents,
		})
	}
	for _, c := range engine.CategoryTotals(txs, year, month) {
		resp.Categories = append(resp.Categories, categoryAmountDTO{
			Name:        c.Name,
			AmountCents: c.Amount.Cents,
		})
	}

	respondJSON(w, http.StatusOK, resp)
}

type categoryDTO struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories,omitempty"`
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	names := core.Categories()
	out := make([]categoryDTO, 0, len(names))
	for _, name := range names {
		out = append(out, categoryDTO{
			Name:          name,
			Subcategories: core.SubcategoriesOf(name),
		})
	}
	respondJSON(w, http.StatusOK, out)
}
