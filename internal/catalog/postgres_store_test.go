package catalog

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set MODGRAPH_TEST_POSTGRES_DSN to run against a scratch database.
func postgresStoreForTest(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("MODGRAPH_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MODGRAPH_TEST_POSTGRES_DSN not set")
	}

	store, err := NewPostgresStore(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	store := postgresStoreForTest(t)
	ctx := context.Background()
	modules, edges := sampleCatalog()

	require.NoError(t, store.SaveSnapshot(ctx, "pg-acme", modules, edges))

	snap, err := store.Snapshot(ctx, "pg-acme")
	require.NoError(t, err)
	assert.Equal(t, modules, snap.Modules)
	assert.Equal(t, edges, snap.Edges)

	listed, err := store.ListDependencyEdges(ctx, "pg-acme")
	require.NoError(t, err)
	assert.Equal(t, edges, listed)
}

func TestPostgresStore_UnknownTenant(t *testing.T) {
	store := postgresStoreForTest(t)

	_, err := store.Snapshot(context.Background(), "pg-nobody")
	assert.True(t, errors.Is(err, ErrTenantNotFound))
}

func TestNewPostgresStore_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("dials the network")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPostgresStore(ctx, "postgres://modgraph@127.0.0.1:1/catalog?connect_timeout=1")
	assert.Error(t, err)
}
