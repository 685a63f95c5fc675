package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/common"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/plaid"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/service"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/simplefin"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/storage"
)

var syncTime = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	store *storage.SQLiteStorage
	plaid *plaid.MockClient
	cache *MemoryCache
}

func newFixture(t *testing.T, conns ...model.Connection) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	for i := range conns {
		require.NoError(t, store.SaveConnection(ctx, &conns[i]))
	}

	cache := NewMemoryCache()
	t.Cleanup(func() { _ = cache.Close() })

	mock := plaid.NewMockClient()
	svc := NewService(store, cache, time.Minute)
	svc.Register(model.ProviderPlaid, mock)
	svc.now = func() time.Time { return syncTime }
	svc.retryOpts = service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

	return &fixture{svc: svc, store: store, plaid: mock, cache: cache}
}

func plaidConn(id string, created time.Time) model.Connection {
	return model.Connection{ID: id, Provider: model.ProviderPlaid, AccessToken: "access-" + id, CreatedAt: created}
}

func balances(token string) model.AccountsSnapshot {
	return model.AccountsSnapshot{
		Accounts: []model.Account{{ID: token, Type: model.AccountSavings, Balance: 1000}},
	}
}

func TestService_SnapshotCaches(t *testing.T) {
	f := newFixture(t, plaidConn("c1", syncTime))
	f.plaid.SnapshotFn = func(_ context.Context, token string) (model.AccountsSnapshot, error) {
		return balances(token), nil
	}
	ctx := context.Background()

	snap, err := f.svc.Snapshot(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "plaid", snap.Source)
	assert.Equal(t, syncTime, snap.CapturedAt)
	assert.InDelta(t, 1000, snap.LiquidSavings(), 1e-9)

	again, err := f.svc.Snapshot(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, snap.Accounts, again.Accounts)
	assert.Equal(t, 1, f.plaid.SnapshotCallCount(), "second read is served from cache")
	assert.Equal(t, []string{"access-c1"}, f.plaid.SnapshotCalls)

	conn, err := f.store.GetConnection(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, conn.LastSyncedAt)
	assert.True(t, syncTime.Equal(*conn.LastSyncedAt))

	_, found, _ := f.cache.Get(ctx, "snapshot:c1")
	assert.True(t, found, "cache keys never carry the access token")

	require.NoError(t, f.svc.Invalidate(ctx, "c1"))
	_, err = f.svc.Snapshot(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, f.plaid.SnapshotCallCount())
}

func TestService_SnapshotRetries(t *testing.T) {
	f := newFixture(t, plaidConn("c1", syncTime))
	var calls atomic.Int32
	f.plaid.SnapshotFn = func(_ context.Context, token string) (model.AccountsSnapshot, error) {
		if calls.Add(1) == 1 {
			return model.AccountsSnapshot{}, &common.RetryableError{Err: common.ErrPlaidRateLimit, Retryable: true}
		}
		return balances(token), nil
	}

	_, err := f.svc.Snapshot(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestService_SnapshotRetriesInOneLayer(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := newFixture(t, model.Connection{ID: "sf", Provider: model.ProviderSimpleFIN, AccessToken: srv.URL, CreatedAt: syncTime})
	f.svc.Register(model.ProviderSimpleFIN, simplefin.NewClient())

	_, err := f.svc.Snapshot(context.Background(), "sf")
	assert.ErrorIs(t, err, common.ErrProviderUnavailable)
	assert.ErrorIs(t, err, common.ErrMaxRetries)
	assert.Equal(t, int32(service.DefaultRetryOptions().MaxAttempts), hits.Load(),
		"the client's own retries are not repeated by the service")
}

func TestService_SnapshotErrors(t *testing.T) {
	f := newFixture(t,
		plaidConn("c1", syncTime),
		model.Connection{ID: "sf", Provider: model.ProviderSimpleFIN, AccessToken: "https://u:p@bridge", CreatedAt: syncTime},
	)
	ctx := context.Background()

	_, err := f.svc.Snapshot(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = f.svc.Snapshot(ctx, "sf")
	assert.ErrorIs(t, err, common.ErrProviderUnavailable, "no simplefin source registered")

	f.plaid.SnapshotFn = func(context.Context, string) (model.AccountsSnapshot, error) {
		return model.AccountsSnapshot{}, common.Permanent(common.ErrInvalidAccount)
	}
	_, err = f.svc.Snapshot(ctx, "c1")
	assert.ErrorIs(t, err, common.ErrInvalidAccount)
	assert.Equal(t, 1, f.plaid.SnapshotCallCount())

	conn, err := f.store.GetConnection(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, conn.LastSyncedAt, "failed fetches are not recorded as syncs")
}

func TestService_SnapshotAll(t *testing.T) {
	f := newFixture(t, plaidConn("c1", syncTime), plaidConn("c2", syncTime.Add(time.Hour)))
	f.plaid.SnapshotFn = func(_ context.Context, token string) (model.AccountsSnapshot, error) {
		return balances(token), nil
	}

	merged, err := f.svc.SnapshotAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, merged.Accounts, 2)
	assert.InDelta(t, 2000, merged.LiquidSavings(), 1e-9)

	empty := newFixture(t)
	_, err = empty.svc.SnapshotAll(context.Background())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestService_RefreshAll(t *testing.T) {
	f := newFixture(t, plaidConn("c1", syncTime), plaidConn("c2", syncTime.Add(time.Hour)))
	errBroken := errors.New("item broken")
	f.plaid.SnapshotFn = func(_ context.Context, token string) (model.AccountsSnapshot, error) {
		if token == "access-c2" {
			return model.AccountsSnapshot{}, common.Permanent(errBroken)
		}
		return balances(token), nil
	}
	ctx := context.Background()

	_, err := f.svc.Snapshot(ctx, "c1")
	require.NoError(t, err)

	var seen []string
	n, err := f.svc.RefreshAll(ctx, func(conn model.Connection, err error) {
		seen = append(seen, conn.ID)
	})
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, errBroken)
	assert.Equal(t, []string{"c1", "c2"}, seen)
	assert.Equal(t, 3, f.plaid.SnapshotCallCount(), "refresh bypasses the cache")
}

func TestService_Unlink(t *testing.T) {
	f := newFixture(t, plaidConn("c1", syncTime))
	ctx := context.Background()
	_, err := f.svc.Snapshot(ctx, "c1")
	require.NoError(t, err)

	require.NoError(t, f.svc.Unlink(ctx, "c1"))
	_, found, _ := f.cache.Get(ctx, "snapshot:c1")
	assert.False(t, found)

	conns, err := f.svc.Connections(ctx)
	require.NoError(t, err)
	assert.Empty(t, conns)
}

func TestRefresher(t *testing.T) {
	f := newFixture(t)

	_, err := NewRefresher(f.svc, "not a schedule")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	r, err := NewRefresher(f.svc, "@every 1h")
	require.NoError(t, err)
	r.Start()
	assert.False(t, r.Next().IsZero())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Stop(ctx)

	r.run()
}
