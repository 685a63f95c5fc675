package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
)

const defaultLinkUser = "finai-user"

type linkTokenRequest struct {
	UserID string `json:"userId"`
}

type exchangeRequest struct {
	PublicToken string `json:"publicToken"`
	Institution struct {
		ID   string `json:"institution_id"`
		Name string `json:"name"`
	} `json:"institution"`
}

func (s *Server) handleLinkToken(w http.ResponseWriter, r *http.Request) {
	if s.deps.Plaid == nil {
		writeError(w, s.logger, fmt.Errorf("%w: plaid", errNotConfigured))
		return
	}

	var req linkTokenRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, s.logger, err)
			return
		}
	}
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = defaultLinkUser
	}

	token, err := s.deps.Plaid.CreateLinkToken(r.Context(), req.UserID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"linkToken": token})
}

func (s *Server) handleLinkExchange(w http.ResponseWriter, r *http.Request) {
	if s.deps.Plaid == nil || s.deps.Store == nil {
		writeError(w, s.logger, fmt.Errorf("%w: plaid", errNotConfigured))
		return
	}

	var req exchangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if strings.TrimSpace(req.PublicToken) == "" {
		writeError(w, s.logger, badRequest("publicToken is required"))
		return
	}

	accessToken, itemID, err := s.deps.Plaid.ExchangePublicToken(r.Context(), req.PublicToken)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	conn := &model.Connection{
		ID:              s.deps.NewID(),
		Provider:        model.ProviderPlaid,
		AccessToken:     accessToken,
		InstitutionID:   req.Institution.ID,
		InstitutionName: req.Institution.Name,
		CreatedAt:       s.deps.Now().UTC(),
	}
	if err := s.deps.Store.SaveConnection(r.Context(), conn); err != nil {
		writeError(w, s.logger, err)
		return
	}

	s.logger.Info("Linked institution", "connection", conn.ID, "institution", conn.InstitutionName, "item", itemID)
	writeJSON(w, http.StatusCreated, map[string]string{"connectionId": conn.ID})
}

func (s *Server) handleInstitutions(w http.ResponseWriter, r *http.Request) {
	if s.deps.Plaid == nil {
		writeError(w, s.logger, fmt.Errorf("%w: plaid", errNotConfigured))
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, s.logger, badRequest("q is required"))
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			writeError(w, s.logger, badRequest("limit must be an integer between 1 and 50"))
			return
		}
		limit = n
	}

	insts, err := s.deps.Plaid.SearchInstitutions(r.Context(), query, limit)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"institutions": insts})
}
