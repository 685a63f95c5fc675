package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/planner"
)

const (
	defaultTransactionDays = 30
	maxTransactionDays     = 730
)

type planRequest struct {
	Profile      planner.RawProfile `json:"profile"`
	ConnectionID string             `json:"connectionId,omitempty"`
	Accounts     []model.Account    `json:"accounts,omitempty"`
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if req.Profile == nil {
		writeError(w, s.logger, badRequest("profile is required"))
		return
	}

	snap, err := s.requestSnapshot(r, req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	plan, err := planner.Generate(req.Profile, snap, planner.WithNow(s.deps.Now()))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// requestSnapshot combines inline balances with a linked connection's balances.
// It returns nil when the request names neither.
func (s *Server) requestSnapshot(r *http.Request, req planRequest) (*model.AccountsSnapshot, error) {
	var snap *model.AccountsSnapshot

	if req.Accounts != nil {
		for i, a := range req.Accounts {
			t, err := model.ParseAccountType(string(a.Type))
			if err != nil {
				return nil, badRequest("accounts[%d]: %v", i, err)
			}
			req.Accounts[i].Type = t
		}
		snap = &model.AccountsSnapshot{
			CapturedAt: s.deps.Now().UTC(),
			Source:     "request",
			Accounts:   req.Accounts,
		}
	}

	if id := strings.TrimSpace(req.ConnectionID); id != "" {
		if s.deps.Accounts == nil {
			return nil, fmt.Errorf("%w: linked accounts", errNotConfigured)
		}
		linked, err := s.deps.Accounts.Snapshot(r.Context(), id)
		if err != nil {
			return nil, err
		}
		if snap != nil {
			merged := snap.Merge(linked)
			return &merged, nil
		}
		snap = &linked
	}

	return snap, nil
}

func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	if s.deps.Accounts == nil {
		writeError(w, s.logger, fmt.Errorf("%w: linked accounts", errNotConfigured))
		return
	}
	conns, err := s.deps.Accounts.Connections(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if conns == nil {
		conns = []model.Connection{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"connections": conns})
}

func (s *Server) handleDeleteConnection(w http.ResponseWriter, r *http.Request) {
	if s.deps.Accounts == nil {
		writeError(w, s.logger, fmt.Errorf("%w: linked accounts", errNotConfigured))
		return
	}
	if err := s.deps.Accounts.Unlink(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConnectionAccounts(w http.ResponseWriter, r *http.Request) {
	if s.deps.Accounts == nil {
		writeError(w, s.logger, fmt.Errorf("%w: linked accounts", errNotConfigured))
		return
	}
	snap, err := s.deps.Accounts.Snapshot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleConnectionTransactions(w http.ResponseWriter, r *http.Request) {
	days := defaultTransactionDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTransactionDays {
			writeError(w, s.logger, badRequest("days must be an integer between 1 and %d", maxTransactionDays))
			return
		}
		days = n
	}

	conn, err := s.connection(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	source, ok := s.deps.Transactions[conn.Provider]
	if !ok {
		writeError(w, s.logger, fmt.Errorf("%w: transactions for %s", errNotConfigured, conn.Provider))
		return
	}

	end := s.deps.Now()
	start := end.AddDate(0, 0, -days)
	txs, err := source.GetTransactions(r.Context(), conn.AccessToken, start, end)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"start":        start.UTC().Format(time.DateOnly),
		"end":          end.UTC().Format(time.DateOnly),
		"transactions": txs,
	})
}

func (s *Server) handleConnectionHoldings(w http.ResponseWriter, r *http.Request) {
	if s.deps.Plaid == nil {
		writeError(w, s.logger, fmt.Errorf("%w: plaid", errNotConfigured))
		return
	}
	conn, err := s.connection(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if conn.Provider != model.ProviderPlaid {
		writeError(w, s.logger, badRequest("holdings are only available for plaid connections"))
		return
	}
	holdings, err := s.deps.Plaid.GetHoldings(r.Context(), conn.AccessToken)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if holdings == nil {
		holdings = []model.Holding{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"holdings": holdings})
}

func (s *Server) connection(r *http.Request) (*model.Connection, error) {
	if s.deps.Store == nil {
		return nil, fmt.Errorf("%w: connection store", errNotConfigured)
	}
	return s.deps.Store.GetConnection(r.Context(), mux.Vars(r)["id"])
}

func (s *Server) handleOFX(w http.ResponseWriter, r *http.Request) {
	stmt, err := s.deps.OFX.Parse(r.Context(), r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if !errors.As(err, &tooLarge) {
			err = badRequest("%v", err)
		}
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stmt)
}
