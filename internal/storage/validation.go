// Package storage persists linked account-data connections in SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrNilParameter      = errors.New("parameter cannot be nil")
	ErrInvalidConnection = errors.New("invalid connection")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateConnection(conn *model.Connection) error {
	if conn == nil {
		return fmt.Errorf("%w: connection", ErrNilParameter)
	}
	if strings.TrimSpace(conn.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidConnection)
	}
	switch conn.Provider {
	case model.ProviderPlaid, model.ProviderSimpleFIN:
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConnection, conn.Provider)
	}
	if strings.TrimSpace(conn.AccessToken) == "" {
		return fmt.Errorf("%w: missing access token", ErrInvalidConnection)
	}
	return nil
}
