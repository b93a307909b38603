package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/roxannesyombua/Movers-App-Server/internal/config"
	"github.com/roxannesyombua/Movers-App-Server/internal/domain"
	"github.com/roxannesyombua/Movers-App-Server/internal/export"
	"github.com/roxannesyombua/Movers-App-Server/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the movers REST API.
type HTTPServer struct {
	cfg       *config.Config
	users     *service.UserService
	inventory *service.InventoryService
	quotes    *service.QuoteService
	bookings  *service.BookingService
	repo      domain.Repository
	cache     domain.StatusCache
	exporter  *export.Exporter
	authMW    *AuthMiddleware
	server    *http.Server
	log       zerolog.Logger
}

type Deps struct {
	Users     *service.UserService
	Inventory *service.InventoryService
	Quotes    *service.QuoteService
	Bookings  *service.BookingService
	Repo      domain.Repository
	Cache     domain.StatusCache
	Exporter  *export.Exporter
	AuthMW    *AuthMiddleware
}

func NewHTTPServer(cfg *config.Config, deps Deps, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:       cfg,
		users:     deps.Users,
		inventory: deps.Inventory,
		quotes:    deps.Quotes,
		bookings:  deps.Bookings,
		repo:      deps.Repo,
		cache:     deps.Cache,
		exporter:  deps.Exporter,
		authMW:    deps.AuthMW,
	}
	if logger != nil {
		srv.log = logger.With().Str("component", "http").Logger()
	}

	// Unauthenticated endpoints get a per-IP throttle instead of the
	// per-user budget the auth middleware enforces.
	authLimiter := newIPLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleWelcome)
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/auth/register", authLimiter.wrap(srv.handleRegister))
	mux.HandleFunc("/auth/login", authLimiter.wrap(srv.handleLogin))

	protected := http.NewServeMux()
	protected.HandleFunc("/api/inventory", srv.handleInventory)
	protected.HandleFunc("/api/location", srv.handleShareLocation)
	protected.HandleFunc("/api/quote", srv.handleQuote)
	protected.HandleFunc("/api/quote/", srv.handleQuoteByID)
	protected.HandleFunc("/api/quotes", srv.handleListQuotes)
	protected.HandleFunc("/api/calculate_quote", srv.handleCalculateQuote)
	protected.HandleFunc("/api/select_quote", srv.handleSelectQuote)
	protected.HandleFunc("/api/book", srv.handleBook)
	protected.HandleFunc("/api/update_status", srv.handleUpdateStatus)
	protected.HandleFunc("/api/get_status", srv.handleGetStatus)
	protected.HandleFunc("/api/notify", srv.handleNotify)
	protected.HandleFunc("/api/export", srv.handleExport)
	mux.Handle("/api/", srv.authMW.Wrap(protected))

	handler := loggingMiddleware(&srv.log, metricsMiddleware(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the configured root handler, used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"message": message})
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
