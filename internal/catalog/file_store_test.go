package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"modgraph/internal/dependency"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalog() ([]dependency.Module, []dependency.Edge) {
	modules := []dependency.Module{
		{ID: "leads", Name: "Leads", State: dependency.StateInactive},
		{ID: "reports", Name: "Reports", State: dependency.StateActive},
		{ID: "billing", Name: "Billing", State: dependency.StateActive, Locked: true},
	}
	edges := []dependency.Edge{
		{Source: "leads", Target: "reports", Type: dependency.EdgeRequired, Priority: dependency.PriorityP1, FailureImpact: 3, MTTREstimateMinutes: 30},
		{Source: "reports", Target: "billing", Type: dependency.EdgeOptional, Priority: dependency.PriorityP3, FailureImpact: 1},
	}
	return modules, edges
}

func TestFileStore_SaveAndSnapshot(t *testing.T) {
	store := NewFileStore(t.TempDir())
	modules, edges := sampleCatalog()

	require.NoError(t, store.SaveSnapshot("acme", modules, edges))

	snap, err := store.Snapshot(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", snap.TenantID)
	assert.Equal(t, modules, snap.Modules)
	assert.Equal(t, edges, snap.Edges)

	listed, err := store.ListModules(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, modules, listed)

	listedEdges, err := store.ListDependencyEdges(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, edges, listedEdges)
}

func TestFileStore_HandWrittenYAML(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "acme")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, modulesFileName), []byte(`
modules:
  - id: reports
    name: Reports
    lifecycleState: inactive
  - id: leads
    name: Leads
    lifecycleState: inactive
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, dependenciesFileName), []byte(`
dependencies:
  - source: leads
    target: reports
    type: required
    priority: P1
    failureImpact: 3
    mttrEstimateMinutes: 30
`), 0644))

	snap, err := NewFileStore(root).Snapshot(context.Background(), "acme")
	require.NoError(t, err)

	require.Len(t, snap.Modules, 2)
	assert.Equal(t, "reports", snap.Modules[0].ID)
	require.Len(t, snap.Edges, 1)
	assert.Equal(t, dependency.EdgeRequired, snap.Edges[0].Type)
}

func TestFileStore_MissingDependenciesFileIsEmpty(t *testing.T) {
	store := NewFileStore(t.TempDir())
	modules, _ := sampleCatalog()
	require.NoError(t, store.SaveSnapshot("acme", modules, nil))
	require.NoError(t, os.Remove(filepath.Join(store.TenantDir("acme"), dependenciesFileName)))

	snap, err := store.Snapshot(context.Background(), "acme")
	require.NoError(t, err)
	assert.Len(t, snap.Modules, 3)
	assert.Empty(t, snap.Edges)
}

func TestFileStore_Errors(t *testing.T) {
	root := t.TempDir()
	store := NewFileStore(root)

	t.Run("unknown tenant", func(t *testing.T) {
		_, err := store.Snapshot(context.Background(), "nobody")
		assert.True(t, errors.Is(err, ErrTenantNotFound))
	})

	t.Run("empty tenant", func(t *testing.T) {
		_, err := store.Snapshot(context.Background(), "")
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := store.Snapshot(ctx, "acme")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := filepath.Join(root, "broken")
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, modulesFileName), []byte("modules: [\n"), 0644))

		_, err := store.Snapshot(context.Background(), "broken")
		assert.ErrorContains(t, err, "failed to parse")
	})

	t.Run("invalid record", func(t *testing.T) {
		dir := filepath.Join(root, "invalid")
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, modulesFileName),
			[]byte("modules:\n  - id: leads\n    lifecycleState: enabled\n"), 0644))

		_, err := store.Snapshot(context.Background(), "invalid")
		assert.True(t, IsRecordError(err))
	})
}

func TestFileStore_ListTenants(t *testing.T) {
	store := NewFileStore(t.TempDir())
	modules, edges := sampleCatalog()

	tenants, err := store.ListTenants()
	require.NoError(t, err)
	assert.Empty(t, tenants)

	require.NoError(t, store.SaveSnapshot("zeta", modules, edges))
	require.NoError(t, store.SaveSnapshot("acme", modules, edges))

	tenants, err = store.ListTenants()
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "zeta"}, tenants)
}

func TestFileStore_MissingRoot(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "does-not-exist"))
	tenants, err := store.ListTenants()
	require.NoError(t, err)
	assert.Empty(t, tenants)
}

func TestSanitizeTenantID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"acme", "acme"},
		{"acme/eu", "acme_eu"},
		{"../etc", "etc"},
		{"  spaced name  ", "spaced_name"},
		{"a::b", "a_b"},
		{"...", "unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeTenantID(tt.input))
		})
	}
}
