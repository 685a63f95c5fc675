// Package service defines the interfaces shared between application layers.
package service

import (
	"context"
	"time"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
)

// Storage is the persistence contract for linked provider connections.
// Generated plans are never stored.
type Storage interface {
	SaveConnection(ctx context.Context, conn *model.Connection) error
	GetConnection(ctx context.Context, id string) (*model.Connection, error)
	ListConnections(ctx context.Context) ([]model.Connection, error)
	DeleteConnection(ctx context.Context, id string) error
	MarkSynced(ctx context.Context, id string, at time.Time) error

	Migrate(ctx context.Context) error
	Close() error
}

// AccountSource fetches a balance snapshot for one access token.
type AccountSource interface {
	Snapshot(ctx context.Context, accessToken string) (model.AccountsSnapshot, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryOptions is used by clients that talk to external APIs.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}
