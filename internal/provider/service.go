package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/common"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/service"
)

// Service resolves linked connections to balance snapshots.
type Service struct {
	store     service.Storage
	cache     Cache
	sources   map[model.ProviderKind]service.AccountSource
	logger    *slog.Logger
	now       func() time.Time
	retryOpts service.RetryOptions
	ttl       time.Duration
}

// NewService creates a Service. A nil cache disables caching.
func NewService(store service.Storage, cache Cache, ttl time.Duration) *Service {
	return &Service{
		store:     store,
		cache:     cache,
		ttl:       ttl,
		sources:   make(map[model.ProviderKind]service.AccountSource),
		logger:    slog.Default().With("component", "provider"),
		now:       time.Now,
		retryOpts: service.DefaultRetryOptions(),
	}
}

// Register attaches the source used for connections of the given kind.
func (s *Service) Register(kind model.ProviderKind, source service.AccountSource) {
	s.sources[kind] = source
}

// Connections lists every linked connection.
func (s *Service) Connections(ctx context.Context) ([]model.Connection, error) {
	return s.store.ListConnections(ctx)
}

// Snapshot returns the balances for one connection, from cache when fresh.
func (s *Service) Snapshot(ctx context.Context, connectionID string) (model.AccountsSnapshot, error) {
	conn, err := s.store.GetConnection(ctx, connectionID)
	if err != nil {
		return model.AccountsSnapshot{}, err
	}

	if snap, ok := s.cached(ctx, conn.ID); ok {
		s.logger.Debug("Snapshot cache hit", "connection", conn.ID)
		return snap, nil
	}

	return s.fetch(ctx, conn)
}

// SnapshotAll merges the snapshots of every linked connection.
func (s *Service) SnapshotAll(ctx context.Context) (model.AccountsSnapshot, error) {
	conns, err := s.store.ListConnections(ctx)
	if err != nil {
		return model.AccountsSnapshot{}, err
	}
	if len(conns) == 0 {
		return model.AccountsSnapshot{}, fmt.Errorf("no linked connections: %w", common.ErrNotFound)
	}

	var merged model.AccountsSnapshot
	for i, conn := range conns {
		snap, err := s.Snapshot(ctx, conn.ID)
		if err != nil {
			return model.AccountsSnapshot{}, fmt.Errorf("connection %s: %w", conn.ID, err)
		}
		if i == 0 {
			merged = snap
			continue
		}
		merged = merged.Merge(snap)
	}
	return merged, nil
}

// Invalidate drops the cached snapshot for a connection.
func (s *Service) Invalidate(ctx context.Context, connectionID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, snapshotKey(connectionID))
}

// Unlink deletes a connection and its cached snapshot.
func (s *Service) Unlink(ctx context.Context, connectionID string) error {
	if err := s.store.DeleteConnection(ctx, connectionID); err != nil {
		return err
	}
	if err := s.Invalidate(ctx, connectionID); err != nil {
		s.logger.Warn("Failed to drop cached snapshot", "connection", connectionID, "error", err)
	}
	return nil
}

// RefreshAll fetches fresh snapshots for every connection, bypassing the cache.
// progress, when set, is called once per connection. Failures do not stop the
// sweep; they are joined into the returned error.
func (s *Service) RefreshAll(ctx context.Context, progress func(model.Connection, error)) (int, error) {
	conns, err := s.store.ListConnections(ctx)
	if err != nil {
		return 0, err
	}

	var (
		refreshed int
		errs      []error
	)
	for _, conn := range conns {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		_, fetchErr := s.fetch(ctx, &conn)
		if fetchErr != nil {
			errs = append(errs, fmt.Errorf("connection %s: %w", conn.ID, fetchErr))
		} else {
			refreshed++
		}
		if progress != nil {
			progress(conn, fetchErr)
		}
	}

	s.logger.Info("Refreshed snapshots", "refreshed", refreshed, "failed", len(errs))
	return refreshed, errors.Join(errs...)
}

func (s *Service) fetch(ctx context.Context, conn *model.Connection) (model.AccountsSnapshot, error) {
	source, ok := s.sources[conn.Provider]
	if !ok {
		return model.AccountsSnapshot{}, fmt.Errorf("%w: no source registered for provider %q", common.ErrProviderUnavailable, conn.Provider)
	}

	var snap model.AccountsSnapshot
	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		snap, fetchErr = source.Snapshot(ctx, conn.AccessToken)
		return fetchErr
	}, s.retryOpts)
	if err != nil {
		return model.AccountsSnapshot{}, err
	}

	now := s.now().UTC()
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = now
	}
	if snap.Source == "" {
		snap.Source = string(conn.Provider)
	}

	s.remember(ctx, conn.ID, snap)
	if err := s.store.MarkSynced(ctx, conn.ID, now); err != nil {
		s.logger.Warn("Failed to record sync time", "connection", conn.ID, "error", err)
	}

	return snap, nil
}

func (s *Service) cached(ctx context.Context, connectionID string) (model.AccountsSnapshot, bool) {
	if s.cache == nil {
		return model.AccountsSnapshot{}, false
	}
	data, ok, err := s.cache.Get(ctx, snapshotKey(connectionID))
	if err != nil {
		s.logger.Warn("Snapshot cache read failed", "connection", connectionID, "error", err)
		return model.AccountsSnapshot{}, false
	}
	if !ok {
		return model.AccountsSnapshot{}, false
	}
	var snap model.AccountsSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("Discarding unreadable cached snapshot", "connection", connectionID, "error", err)
		return model.AccountsSnapshot{}, false
	}
	return snap, true
}

func (s *Service) remember(ctx context.Context, connectionID string, snap model.AccountsSnapshot) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("Failed to encode snapshot", "connection", connectionID, "error", err)
		return
	}
	if err := s.cache.Set(ctx, snapshotKey(connectionID), data, s.ttl); err != nil {
		s.logger.Warn("Snapshot cache write failed", "connection", connectionID, "error", err)
	}
}
