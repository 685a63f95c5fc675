package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/common"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/planner"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/stocks"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/storage"
)

type errorBody struct {
	Error      string `json:"error"`
	Field      string `json:"field,omitempty"`
	Constraint string `json:"constraint,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Internal details of 5xx
// errors are logged, not returned.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		validation *planner.ValidationError
		tooLarge   *http.MaxBytesError
		status     int
		body       = errorBody{Error: err.Error()}
	)

	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		body.Field = validation.Field
		body.Constraint = validation.Constraint
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
		body.Error = "request body too large"
	case errors.Is(err, errBadRequest),
		errors.Is(err, stocks.ErrInvalidSymbol),
		errors.Is(err, storage.ErrEmptyString),
		errors.Is(err, storage.ErrInvalidConnection):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrInvalidAccount):
		status = http.StatusConflict
	case errors.Is(err, common.ErrRateLimit), errors.Is(err, common.ErrPlaidRateLimit):
		status = http.StatusTooManyRequests
	case errors.Is(err, errNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.Is(err, common.ErrProviderUnavailable),
		errors.Is(err, common.ErrPlaidConnection),
		errors.Is(err, common.ErrMaxRetries):
		status = http.StatusBadGateway
		logger.Error("Upstream failure", "error", err)
		body.Error = "account data provider unavailable"
	default:
		status = http.StatusInternalServerError
		logger.Error("Request failed", "error", err)
		body.Error = "internal error"
	}

	writeJSON(w, status, body)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}
