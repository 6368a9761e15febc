package http

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"grana/internal/core"
	"grana/internal/engine"
)

type fixedRequest struct {
	Title    string `json:"title"`
	Amount   string `json:"amount"`
	Day      int    `json:"day"`
	Category string `json:"category"`
}

type fixedResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AmountCents int64  `json:"amount_cents"`
	Day         int    `json:"day"`
	Category    string `json:"category"`
}

func (req fixedRequest) toCore() (core.FixedExpense, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.FixedExpense{}, fmt.Errorf("amount: %w", err)
	}
	f := core.FixedExpense{
		Title:    sanitizeInput(req.Title),
		Amount:   core.Money{Cents: cents},
		Day:      req.Day,
		Category: sanitizeInput(req.Category),
	}
	return f, f.Validate()
}

func toFixedResponse(f core.FixedExpense) fixedResponse {
	return fixedResponse{
		ID:          f.ID,
		Title:       f.Title,
		AmountCents: f.Amount.Cents,
		Day:         f.Day,
		Category:    f.Category,
	}
}

func (s *Server) handleListFixedExpenses(w http.ResponseWriter, r *http.Request) {
	templates, err := s.svc.ListFixedExpenses(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]fixedResponse, 0, len(templates))
	for _, f := range templates {
		out = append(out, toFixedResponse(f))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateFixedExpense(w http.ResponseWriter, r *http.Request) {
	var req fixedRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	f, err := req.toCore()
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	id, err := s.svc.CreateFixedExpense(r.Context(), f)
	if err != nil {
		respondError(w, r, err)
		return
	}
	f.ID = id
	respondJSON(w, http.StatusCreated, toFixedResponse(f))
}

func (s *Server) handleUpdateFixedExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r))
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	var req fixedRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	f, err := req.toCore()
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	f.ID = id
	if err := s.svc.UpdateFixedExpense(r.Context(), f); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toFixedResponse(f))
}

func (s *Server) handleDeleteFixedExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r))
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	if err := s.svc.DeleteFixedExpense(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListFixedIncomes(w http.ResponseWriter, r *http.Request) {
	templates, err := s.svc.ListFixedIncomes(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]fixedResponse, 0, len(templates))
	for _, f := range templates {
		out = append(out, toFixedResponse(core.FixedExpense(f)))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateFixedIncome(w http.ResponseWriter, r *http.Request) {
	var req fixedRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	f, err := req.toCore()
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	id, err := s.svc.CreateFixedIncome(r.Context(), core.FixedIncome(f))
	if err != nil {
		respondError(w, r, err)
		return
	}
	f.ID = id
	respondJSON(w, http.StatusCreated, toFixedResponse(f))
}

func (s *Server) handleUpdateFixedIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r))
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	var req fixedRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	f, err := req.toCore()
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	f.ID = id
	if err := s.svc.UpdateFixedIncome(r.Context(), core.FixedIncome(f)); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toFixedResponse(f))
}

func (s *Server) handleDeleteFixedIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r))
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	if err := s.svc.DeleteFixedIncome(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type investmentRequest struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Amount string `json:"amount"`
	Target string `json:"target,omitempty"`
}

type investmentResponse struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	AmountCents     int64   `json:"amount_cents"`
	TargetCents     int64   `json:"target_cents,omitempty"`
	ProgressPercent float64 `json:"progress_percent"`
}

func (req investmentRequest) toCore() (core.Investment, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Investment{}, fmt.Errorf("amount: %w", err)
	}
	inv := core.Investment{
		Name:   sanitizeInput(req.Name),
		Type:   core.InvestmentType(req.Type),
		Amount: core.Money{Cents: cents},
	}
	if req.Target != "" {
		target, err := core.ParseDecimalToCents(req.Target)
		if err != nil {
			return core.Investment{}, fmt.Errorf("target: %w", err)
		}
		inv.Target = core.Money{Cents: target}
	}
	return inv, inv.Validate()
}

func toInvestmentResponse(inv core.Investment) investmentResponse {
	return investmentResponse{
		ID:              inv.ID,
		Name:            inv.Name,
		Type:            string(inv.Type),
		AmountCents:     inv.Amount.Cents,
		TargetCents:     inv.Target.Cents,
		ProgressPercent: engine.InvestmentProgress(inv),
	}
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	investments, err := s.svc.ListInvestments(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]investmentResponse, 0, len(investments))
	for _, inv := range investments {
		out = append(out, toInvestmentResponse(inv))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateInvestment(w http.ResponseWriter, r *http.Request) {
	var req investmentRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	inv, err := req.toCore()
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	id, err := s.svc.CreateInvestment(r.Context(), inv)
	if err != nil {
		respondError(w, r, err)
		return
	}
	inv.ID = id
	respondJSON(w, http.StatusCreated, toInvestmentResponse(inv))
}

func (s *Server) handleUpdateInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r))
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	var req investmentRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	inv, err := req.toCore()
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	inv.ID = id
	if err := s.svc.UpdateInvestment(r.Context(), inv); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toInvestmentResponse(inv))
}

func (s *Server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r))
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	if err := s.svc.DeleteInvestment(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type cardConfigDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Limit         string `json:"limit"`
	ClosingDay    int    `json:"closing_day"`
	DueDay        int    `json:"due_day"`
	InvoiceOffset string `json:"invoice_offset,omitempty"`
}

type configRequest struct {
	InitialBalance        string          `json:"initial_balance,omitempty"`
	InitialBenefitBalance string          `json:"initial_benefit_balance,omitempty"`
	Cards                 []cardConfigDTO `json:"cards,omitempty"`
	HouseRent             string          `json:"house_rent,omitempty"`
	HouseCondo            string          `json:"house_condo,omitempty"`
	ContractStart         string          `json:"contract_start,omitempty"`
	CarModel              string          `json:"car_model,omitempty"`
	CarIPVATotal          string          `json:"car_ipva_total,omitempty"`
	CarFuelBudget         string          `json:"car_fuel_budget,omitempty"`
	CarMarketBudget       string          `json:"car_market_budget,omitempty"`
	PartnerName           string          `json:"partner_name,omitempty"`
	PartnerSharedPercent  int             `json:"partner_shared_percent,omitempty"`
}

type configResponse struct {
	InitialBalanceCents        int64                   `json:"initial_balance_cents"`
	InitialBenefitBalanceCents int64                   `json:"initial_benefit_balance_cents"`
	Cards                      []cardConfigResponseDTO `json:"cards"`
	HouseRentCents             int64                   `json:"house_rent_cents"`
	HouseCondoCents            int64                   `json:"house_condo_cents"`
	ContractStart              string                  `json:"contract_start,omitempty"`
	CarModel                   string                  `json:"car_model,omitempty"`
	CarIPVATotalCents          int64                   `json:"car_ipva_total_cents"`
	CarFuelBudgetCents         int64                   `json:"car_fuel_budget_cents"`
	CarMarketBudgetCents       int64                   `json:"car_market_budget_cents"`
	PartnerName                string                  `json:"partner_name,omitempty"`
	PartnerSharedPercent       int                     `json:"partner_shared_percent"`
}

type cardConfigResponseDTO struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	LimitCents         int64  `json:"limit_cents"`
	ClosingDay         int    `json:"closing_day"`
	DueDay             int    `json:"due_day"`
	InvoiceOffsetCents int64  `json:"invoice_offset_cents"`
}

func (req configRequest) toCore() (core.Config, error) {
	var cfg core.Config
	var err error

	signed := func(field, v string) (core.Money, error) {
		if v == "" {
			return core.Money{}, nil
		}
		cents, err := core.ParseSignedDecimalToCents(v)
		if err != nil {
			return core.Money{}, fmt.Errorf("%s: %w", field, err)
		}
		return core.Money{Cents: cents}, nil
	}

	if cfg.Settings.InitialBalance, err = signed("initial_balance", req.InitialBalance); err != nil {
		return cfg, err
	}
	if cfg.Settings.InitialBenefitBalance, err = signed("initial_benefit_balance", req.InitialBenefitBalance); err != nil {
		return cfg, err
	}
	if cfg.House.Rent, err = signed("house_rent", req.HouseRent); err != nil {
		return cfg, err
	}
	if cfg.House.Condo, err = signed("house_condo", req.HouseCondo); err != nil {
		return cfg, err
	}
	if req.ContractStart != "" {
		if cfg.House.ContractStart, err = parseDate(req.ContractStart); err != nil {
			return cfg, fmt.Errorf("contract_start: %w", err)
		}
	}
	if cfg.Car.IPVATotal, err = signed("car_ipva_total", req.CarIPVATotal); err != nil {
		return cfg, err
	}
	if cfg.Car.FuelBudget, err = signed("car_fuel_budget", req.CarFuelBudget); err != nil {
		return cfg, err
	}
	if cfg.Car.MarketBudget, err = signed("car_market_budget", req.CarMarketBudget); err != nil {
		return cfg, err
	}
	cfg.Car.Model = sanitizeInput(req.CarModel)
	cfg.Partner.Name = sanitizeInput(req.PartnerName)
	if req.PartnerSharedPercent < 0 || req.PartnerSharedPercent > 100 {
		return cfg, fmt.Errorf("partner_shared_percent must be 0..100")
	}
	cfg.Partner.SharedPercent = req.PartnerSharedPercent

	for _, c := range req.Cards {
		limit, err := signed("limit", c.Limit)
		if err != nil {
			return cfg, fmt.Errorf("card %q: %w", c.ID, err)
		}
		offset, err := signed("invoice_offset", c.InvoiceOffset)
		if err != nil {
			return cfg, fmt.Errorf("card %q: %w", c.ID, err)
		}
		card := core.CardConfig{
			ID:            sanitizeInput(c.ID),
			Name:          sanitizeInput(c.Name),
			Limit:         limit,
			ClosingDay:    c.ClosingDay,
			DueDay:        c.DueDay,
			InvoiceOffset: offset,
		}
		if err := card.Validate(); err != nil {
			return cfg, fmt.Errorf("card %q: %w", c.ID, err)
		}
		cfg.Cards = append(cfg.Cards, card)
	}

	return cfg, nil
}

func toConfigResponse(cfg core.Config) configResponse {
	resp := configResponse{
		InitialBalanceCents:        cfg.Settings.InitialBalance.Cents,
		InitialBenefitBalanceCents: cfg.Settings.InitialBenefitBalance.Cents,
		Cards:                      make([]cardConfigResponseDTO, 0, len(cfg.Cards)),
		HouseRentCents:             cfg.House.Rent.Cents,
		HouseCondoCents:            cfg.House.Condo.Cents,
		CarModel:                   cfg.Car.Model,
		CarIPVATotalCents:          cfg.Car.IPVATotal.Cents,
		CarFuelBudgetCents:         cfg.Car.FuelBudget.Cents,
		CarMarketBudgetCents:       cfg.Car.MarketBudget.Cents,
		PartnerName:                cfg.Partner.Name,
		PartnerSharedPercent:       cfg.Partner.SharedPercent,
	}
	if !cfg.House.ContractStart.IsZero() {
		resp.ContractStart = cfg.House.ContractStart.Format("2006-01-02")
	}
	for _, c := range cfg.Cards {
		resp.Cards = append(resp.Cards, cardConfigResponseDTO{
			ID:                 c.ID,
			Name:               c.Name,
			LimitCents:         c.Limit.Cents,
			ClosingDay:         c.ClosingDay,
			DueDay:             c.DueDay,
			InvoiceOffsetCents: c.InvoiceOffset.Cents,
		})
	}
	return resp
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.svc.GetConfig(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toConfigResponse(cfg))
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	cfg, err := req.toCore()
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	if err := s.svc.SaveConfig(r.Context(), cfg); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toConfigResponse(cfg))
}

type reconcileBalancesRequest struct {
	Net     string `json:"net"`
	Benefit string `json:"benefit,omitempty"`
}

func (s *Server) handleReconcileBalances(w http.ResponseWriter, r *http.Request) {
	var req reconcileBalancesRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	net, err := core.ParseSignedDecimalToCents(req.Net)
	if err != nil {
		badRequest(w, "net: %v", err)
		return
	}
	var benefit int64
	if req.Benefit != "" {
		if benefit, err = core.ParseSignedDecimalToCents(req.Benefit); err != nil {
			badRequest(w, "benefit: %v", err)
			return
		}
	}

	cfg, err := s.svc.ReconcileBalances(r.Context(),
		core.Money{Cents: net}, core.Money{Cents: benefit})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toConfigResponse(cfg))
}

type reconcileInvoiceRequest struct {
	Target string `json:"target"`
}

func (s *Server) handleReconcileInvoice(w http.ResponseWriter, r *http.Request) {
	cardID := sanitizeInput(mux.Vars(r)["id"])
	var req reconcileInvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	target, err := core.ParseSignedDecimalToCents(req.Target)
	if err != nil {
		badRequest(w, "target: %v", err)
		return
	}

	cfg, err := s.svc.ReconcileInvoice(r.Context(), cardID,
		core.Money{Cents: target}, refTime(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toConfigResponse(cfg))
}
