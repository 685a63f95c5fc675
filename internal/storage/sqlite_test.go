package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/common"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testConnection(id string) *model.Connection {
	return &model.Connection{
		ID:              id,
		Provider:        model.ProviderPlaid,
		AccessToken:     "access-sandbox-" + id,
		InstitutionID:   "ins_1",
		InstitutionName: "First Platypus Bank",
		CreatedAt:       time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestMigrate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	require.NoError(t, store.Migrate(ctx), "migrate is idempotent")

	var indexCount int
	require.NoError(t, store.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='index' AND name='idx_connections_provider'
	`).Scan(&indexCount))
	assert.Equal(t, 1, indexCount)
}

func TestNewSQLiteStorage_File(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "finai.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	_, err = NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestConnections_CRUD(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	conn := testConnection("conn-1")
	require.NoError(t, store.SaveConnection(ctx, conn))

	got, err := store.GetConnection(ctx, "conn-1")
	require.NoError(t, err)
	assert.Equal(t, conn.AccessToken, got.AccessToken)
	assert.Equal(t, model.ProviderPlaid, got.Provider)
	assert.Equal(t, "First Platypus Bank", got.InstitutionName)
	assert.True(t, conn.CreatedAt.Equal(got.CreatedAt))
	assert.Nil(t, got.LastSyncedAt)

	conn.AccessToken = "access-sandbox-rotated"
	require.NoError(t, store.SaveConnection(ctx, conn))
	got, err = store.GetConnection(ctx, "conn-1")
	require.NoError(t, err)
	assert.Equal(t, "access-sandbox-rotated", got.AccessToken, "save evicts the cached copy")

	second := testConnection("conn-2")
	second.Provider = model.ProviderSimpleFIN
	second.CreatedAt = conn.CreatedAt.Add(time.Hour)
	require.NoError(t, store.SaveConnection(ctx, second))

	list, err := store.ListConnections(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "conn-1", list[0].ID)
	assert.Equal(t, model.ProviderSimpleFIN, list[1].Provider)

	require.NoError(t, store.DeleteConnection(ctx, "conn-1"))
	_, err = store.GetConnection(ctx, "conn-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, store.DeleteConnection(ctx, "conn-1"), common.ErrNotFound)
}

func TestMarkSynced(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	require.NoError(t, store.SaveConnection(ctx, testConnection("conn-1")))

	// Prime the cache so MarkSynced must evict it.
	_, err := store.GetConnection(ctx, "conn-1")
	require.NoError(t, err)

	at := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, store.MarkSynced(ctx, "conn-1", at))

	got, err := store.GetConnection(ctx, "conn-1")
	require.NoError(t, err)
	require.NotNil(t, got.LastSyncedAt)
	assert.True(t, at.Equal(*got.LastSyncedAt))

	assert.ErrorIs(t, store.MarkSynced(ctx, "missing", at), common.ErrNotFound)
}

func TestGetConnection_ReturnsCopy(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	require.NoError(t, store.SaveConnection(ctx, testConnection("conn-1")))

	first, err := store.GetConnection(ctx, "conn-1")
	require.NoError(t, err)
	first.AccessToken = "mutated"

	second, err := store.GetConnection(ctx, "conn-1")
	require.NoError(t, err)
	assert.Equal(t, "access-sandbox-conn-1", second.AccessToken)
}

func TestListConnections_Empty(t *testing.T) {
	store := createTestStorage(t)
	list, err := store.ListConnections(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
