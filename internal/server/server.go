// Package server exposes the planner and account-data providers over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/certs"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/ofx"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/plaid"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/stocks"
)

var (
	errBadRequest    = errors.New("bad request")
	errNotConfigured = errors.New("feature not configured")
)

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// AccountService resolves linked connections to snapshots.
type AccountService interface {
	Snapshot(ctx context.Context, connectionID string) (model.AccountsSnapshot, error)
	Connections(ctx context.Context) ([]model.Connection, error)
	Unlink(ctx context.Context, connectionID string) error
}

// ConnectionStore persists connections created through Link.
type ConnectionStore interface {
	SaveConnection(ctx context.Context, conn *model.Connection) error
	GetConnection(ctx context.Context, id string) (*model.Connection, error)
}

// TransactionSource lists transactions for one access token.
type TransactionSource interface {
	GetTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]model.Transaction, error)
}

// StockService answers the stock endpoints.
type StockService interface {
	Search(ctx context.Context, query string) ([]stocks.Match, error)
	Sentiment(ctx context.Context, symbol string) (*stocks.Sentiment, error)
	ChartURL(symbol string) (string, error)
}

// Deps are the collaborators behind the routes. Nil optional members make
// their routes answer 503.
type Deps struct {
	Accounts     AccountService
	Store        ConnectionStore
	Plaid        plaid.Aggregator
	Transactions map[model.ProviderKind]TransactionSource
	Stocks       StockService
	OFX          *ofx.Parser
	Certs        certs.Manager
	Now          func() time.Time
	NewID        func() string
}

// Server is the HTTP API.
type Server struct {
	deps    Deps
	router  *mux.Router
	limiter *RateLimiter
	logger  *slog.Logger
	cfg     Config
}

// New validates cfg and builds the router.
func New(cfg Config, deps Deps) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = func() string { return uuid.NewString() }
	}
	if deps.OFX == nil {
		deps.OFX = ofx.NewParser()
	}

	s := &Server{
		deps:    deps,
		cfg:     cfg,
		limiter: NewRateLimiter(cfg.RateLimit, time.Minute),
		logger:  slog.Default().With("component", "server"),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(recoverMiddleware(s.logger), loggingMiddleware(s.logger), corsMiddleware(s.cfg.AllowedOrigins))

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(rateLimitMiddleware(s.limiter), bodyLimitMiddleware(s.cfg.MaxBodyBytes))

	api.HandleFunc("/plan", s.handlePlan).Methods(http.MethodPost, http.MethodOptions)

	api.HandleFunc("/link/token", s.handleLinkToken).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/link/exchange", s.handleLinkExchange).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/institutions", s.handleInstitutions).Methods(http.MethodGet)

	api.HandleFunc("/connections", s.handleListConnections).Methods(http.MethodGet)
	api.HandleFunc("/connections/{id}", s.handleDeleteConnection).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/connections/{id}/accounts", s.handleConnectionAccounts).Methods(http.MethodGet)
	api.HandleFunc("/connections/{id}/transactions", s.handleConnectionTransactions).Methods(http.MethodGet)
	api.HandleFunc("/connections/{id}/holdings", s.handleConnectionHoldings).Methods(http.MethodGet)

	api.HandleFunc("/accounts/ofx", s.handleOFX).Methods(http.MethodPost, http.MethodOptions)

	api.HandleFunc("/stocks/search", s.handleStockSearch).Methods(http.MethodGet)
	api.HandleFunc("/stocks/{symbol}/sentiment", s.handleStockSentiment).Methods(http.MethodGet)
	api.HandleFunc("/stocks/{symbol}/chart", s.handleStockChart).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	s.router = r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.limiter.Stop()

	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	scheme := "http"
	if s.cfg.TLS {
		if s.deps.Certs == nil {
			_ = ln.Close()
			return fmt.Errorf("%w: TLS enabled without a certificate manager", errNotConfigured)
		}
		tlsCfg, err := certs.TLSConfig(s.deps.Certs)
		if err != nil {
			_ = ln.Close()
			return err
		}
		srv.TLSConfig = tlsCfg
		scheme = "https"
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("API listening", "url", fmt.Sprintf("%s://%s", scheme, ln.Addr()))
		var err error
		if s.cfg.TLS {
			err = srv.ServeTLS(ln, "", "")
		} else {
			err = srv.Serve(ln)
		}
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API")
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   s.deps.Now().UTC(),
	})
}
