// Package http exposes the JSON API. Amount fields arrive as decimal
// strings ("123.45" or "123,45") and leave as integer cents; dates travel
// as YYYY-MM-DD.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"grana/internal/services"
)

type contextKey string

const requestIDKey contextKey = "request_id"

type Server struct {
	http.Server
	svc          *services.FinanceService
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	// Reset the counter after a quiet minute.
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now
	return client.requests <= 60
}

// NewServer configures all routes and returns a ready-to-run server.
func NewServer(addr string, svc *services.FinanceService) *Server {
	s := &Server{
		svc:         svc,
		rateLimiter: newRateLimiter(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.middleware)

	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id:[0-9]+}", s.handleGetTransaction).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id:[0-9]+}", s.handleUpdateTransaction).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id:[0-9]+}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	api.HandleFunc("/debts", s.handleListDebts).Methods(http.MethodGet)
	api.HandleFunc("/debts", s.handleCreateDebt).Methods(http.MethodPost)
	api.HandleFunc("/debts/{id:[0-9]+}", s.handleGetDebt).Methods(http.MethodGet)
	api.HandleFunc("/debts/{id:[0-9]+}", s.handleUpdateDebt).Methods(http.MethodPut)
	api.HandleFunc("/debts/{id:[0-9]+}", s.handleDeleteDebt).Methods(http.MethodDelete)
	api.HandleFunc("/debts/{id:[0-9]+}/pay", s.handlePayDebt).Methods(http.MethodPost)

	api.HandleFunc("/fixed-expenses", s.handleListFixedExpenses).Methods(http.MethodGet)
	api.HandleFunc("/fixed-expenses", s.handleCreateFixedExpense).Methods(http.MethodPost)
	api.HandleFunc("/fixed-expenses/{id:[0-9]+}", s.handleUpdateFixedExpense).Methods(http.MethodPut)
	api.HandleFunc("/fixed-expenses/{id:[0-9]+}", s.handleDeleteFixedExpense).Methods(http.MethodDelete)

	api.HandleFunc("/fixed-incomes", s.handleListFixedIncomes).Methods(http.MethodGet)
	api.HandleFunc("/fixed-incomes", s.handleCreateFixedIncome).Methods(http.MethodPost)
	api.HandleFunc("/fixed-incomes/{id:[0-9]+}", s.handleUpdateFixedIncome).Methods(http.MethodPut)
	api.HandleFunc("/fixed-incomes/{id:[0-9]+}", s.handleDeleteFixedIncome).Methods(http.MethodDelete)

	api.HandleFunc("/investments", s.handleListInvestments).Methods(http.MethodGet)
	api.HandleFunc("/investments", s.handleCreateInvestment).Methods(http.MethodPost)
	api.HandleFunc("/investments/{id:[0-9]+}", s.handleUpdateInvestment).Methods(http.MethodPut)
	api.HandleFunc("/investments/{id:[0-9]+}", s.handleDeleteInvestment).Methods(http.MethodDelete)

	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handleSaveSettings).Methods(http.MethodPut)
	api.HandleFunc("/settings/reconcile", s.handleReconcileBalances).Methods(http.MethodPost)

	api.HandleFunc("/cards/{id}/invoice", s.handleCardInvoice).Methods(http.MethodGet)
	api.HandleFunc("/cards/{id}/reconcile", s.handleReconcileInvoice).Methods(http.MethodPost)

	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/trends", s.handleTrends).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// middleware adds security headers, rate limiting on mutations, a request
// id and request logging.
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

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
		next.ServeHTTP(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady answers ready only when the backend responds.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.svc.GetConfig(ctx); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Shutdown stops the rate limiter cleanup goroutine and drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
