package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"modgraph/internal/catalog"
	"modgraph/internal/config"
	"modgraph/internal/dependency"
	"modgraph/internal/formatting"
	"modgraph/internal/orchestrator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredEdge(source, target string) dependency.Edge {
	return dependency.Edge{
		Source: source, Target: target, Type: dependency.EdgeRequired,
		Priority: dependency.PriorityP1, FailureImpact: 3, MTTREstimateMinutes: 30,
	}
}

func mod(id string, state dependency.LifecycleState) dependency.Module {
	return dependency.Module{ID: id, Name: strings.ToUpper(id[:1]) + id[1:], State: state}
}

// setupWorkspace writes a config directory with a file catalog holding four
// tenants and returns the config directory.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	for _, key := range []string{config.EnvCatalogDriver, config.EnvCatalogPath, config.EnvCatalogDSN, config.EnvLogLevel, "MODGRAPH_TENANT"} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
catalog:
  driver: file
  path: catalog
logging:
  level: error
`), 0644))

	store := catalog.NewFileStore(filepath.Join(dir, "catalog"))
	require.NoError(t, store.SaveSnapshot("acme",
		[]dependency.Module{mod("leads", dependency.StateInactive), mod("reports", dependency.StateInactive)},
		[]dependency.Edge{requiredEdge("leads", "reports")}))
	require.NoError(t, store.SaveSnapshot("broken",
		[]dependency.Module{mod("leads", dependency.StateInactive)},
		[]dependency.Edge{requiredEdge("leads", "crm")}))
	require.NoError(t, store.SaveSnapshot("locked",
		[]dependency.Module{
			mod("leads", dependency.StateInactive),
			{ID: "billing", Name: "Billing", State: dependency.StateInactive, Locked: true},
		},
		[]dependency.Edge{requiredEdge("leads", "billing")}))
	require.NoError(t, store.SaveSnapshot("live",
		[]dependency.Module{mod("leads", dependency.StateActive), mod("reports", dependency.StateActive)},
		[]dependency.Edge{requiredEdge("leads", "reports")}))
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	dir := setupWorkspace(t)

	t.Run("valid tenant", func(t *testing.T) {
		out, err := runCLI(t, "validate", "--config", dir, "--tenant", "acme")
		require.NoError(t, err)
		assert.Contains(t, out, "tenant acme is valid")
	})

	t.Run("invalid tenant", func(t *testing.T) {
		out, err := runCLI(t, "validate", "--config", dir, "--tenant", "broken")
		require.ErrorIs(t, err, errGraphInvalid)
		assert.Equal(t, ExitCodeInvalidGraph, getExitCode(err))
		assert.Contains(t, out, "Missing dependencies")
		assert.Contains(t, out, "crm")
	})

	t.Run("json output", func(t *testing.T) {
		out, err := runCLI(t, "validate", "--config", dir, "--tenant", "broken", "-o", "json")
		require.Error(t, err)

		var doc map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "broken", doc["tenantId"])
		assert.Equal(t, false, doc["isValid"])
	})

	t.Run("tenant required", func(t *testing.T) {
		_, err := runCLI(t, "validate", "--config", dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tenant is required")
	})

	t.Run("unknown tenant", func(t *testing.T) {
		_, err := runCLI(t, "validate", "--config", dir, "--tenant", "ghost")
		require.ErrorIs(t, err, catalog.ErrTenantNotFound)
		assert.Equal(t, ExitCodeError, getExitCode(err))
	})

	t.Run("unsupported output", func(t *testing.T) {
		_, err := runCLI(t, "validate", "--config", dir, "--tenant", "acme", "-o", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported output format")
	})
}

func TestValidateCommand_InvalidConfig(t *testing.T) {
	dir := setupWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("catalog:\n  driver: postgres\n"), 0644))

	_, err := runCLI(t, "validate", "--config", dir, "--tenant", "acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "dsn")
}

func TestGraphCommand(t *testing.T) {
	dir := setupWorkspace(t)

	out, err := runCLI(t, "graph", "--config", dir, "--tenant", "acme")
	require.NoError(t, err)
	assert.Contains(t, out, "Leads")
	assert.Contains(t, out, "Reports")
	assert.Contains(t, out, "Dependencies")

	out, err = runCLI(t, "graph", "--config", dir, "--tenant", "acme", "-o", "json")
	require.NoError(t, err)
	var view orchestrator.GraphView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Len(t, view.Nodes, 2)
	require.Len(t, view.Edges, 1)
	assert.Equal(t, "reports", view.Edges[0].Target)
	assert.Equal(t, dependency.RiskScore(view.Edges[0].Edge), view.Edges[0].RiskScore)
}

func TestPlanActivateCommand(t *testing.T) {
	dir := setupWorkspace(t)

	t.Run("certified", func(t *testing.T) {
		out, err := runCLI(t, "plan", "activate", "leads", "--config", dir, "--tenant", "acme", "-o", "json")
		require.NoError(t, err)

		var plan dependency.ActivationPlan
		require.NoError(t, json.Unmarshal([]byte(out), &plan))
		assert.Equal(t, []string{"reports", "leads"}, plan.Order)
		assert.Equal(t, "acme", plan.TenantID)
		assert.NotEmpty(t, plan.ID)
	})

	t.Run("check", func(t *testing.T) {
		out, err := runCLI(t, "plan", "activate", "leads", "--check", "--config", dir, "--tenant", "acme")
		require.NoError(t, err)
		assert.Contains(t, out, "activation is possible")
	})

	t.Run("locked prerequisite", func(t *testing.T) {
		_, err := runCLI(t, "plan", "activate", "leads", "--config", dir, "--tenant", "locked")
		require.Error(t, err)
		assert.True(t, dependency.IsLockedPrerequisite(err))
		assert.Equal(t, ExitCodePlanRefused, getExitCode(err))
	})

	t.Run("check refused", func(t *testing.T) {
		_, err := runCLI(t, "plan", "activate", "leads", "--check", "--config", dir, "--tenant", "locked")
		require.ErrorIs(t, err, errActivationRefused)
		assert.True(t, dependency.IsLockedPrerequisite(err))
		assert.Equal(t, ExitCodePlanRefused, getExitCode(err))
	})

	t.Run("check unresolved", func(t *testing.T) {
		_, err := runCLI(t, "plan", "activate", "leads", "--check", "--config", dir, "--tenant", "broken")
		require.ErrorIs(t, err, errActivationRefused)
		assert.True(t, dependency.IsUnresolvedGraph(err))
		assert.Equal(t, ExitCodeInvalidGraph, getExitCode(err))
	})

	t.Run("unresolved", func(t *testing.T) {
		_, err := runCLI(t, "plan", "activate", "leads", "--config", dir, "--tenant", "broken")
		require.Error(t, err)
		assert.Equal(t, ExitCodeInvalidGraph, getExitCode(err))
	})

	t.Run("requires modules", func(t *testing.T) {
		_, err := runCLI(t, "plan", "activate", "--config", dir, "--tenant", "acme")
		require.Error(t, err)
	})
}

func TestPlanDeactivateCommand(t *testing.T) {
	dir := setupWorkspace(t)

	t.Run("active dependents", func(t *testing.T) {
		_, err := runCLI(t, "plan", "deactivate", "reports", "--config", dir, "--tenant", "live")
		require.Error(t, err)
		assert.True(t, dependency.IsActiveDependents(err))
		assert.Contains(t, err.Error(), "include the dependents in the batch")
		assert.Equal(t, ExitCodePlanRefused, getExitCode(err))
	})

	t.Run("whole batch", func(t *testing.T) {
		out, err := runCLI(t, "plan", "deactivate", "reports", "leads", "--config", dir, "--tenant", "live", "-o", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "direction: deactivate")
		assert.Less(t, strings.Index(out, "- leads"), strings.Index(out, "- reports"))
	})
}

func TestTenantsCommand(t *testing.T) {
	dir := setupWorkspace(t)

	out, err := runCLI(t, "tenants", "--config", dir)
	require.NoError(t, err)
	assert.Equal(t, "acme\nbroken\nlive\nlocked\n", out)

	out, err = runCLI(t, "tenants", "--config", dir, "-o", "json")
	require.NoError(t, err)
	var tenants []string
	require.NoError(t, json.Unmarshal([]byte(out), &tenants))
	assert.Len(t, tenants, 4)
}

func TestMemoryDriverIsRejected(t *testing.T) {
	dir := setupWorkspace(t)
	t.Setenv(config.EnvCatalogDriver, "memory")

	_, err := runCLI(t, "validate", "--config", dir, "--tenant", "acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "catalog.driver")
}

func TestSession_FileCatalog(t *testing.T) {
	_, err := (&session{source: catalog.NewMemoryStore()}).fileCatalog("watch")
	require.Error(t, err)
	assert.Equal(t, "watch requires the file catalog driver", err.Error())

	store := catalog.NewFileStore(t.TempDir())
	got, err := (&session{source: store}).fileCatalog("watch")
	require.NoError(t, err)
	assert.Same(t, store, got)
}

// syncBuffer lets the test read output while watchLoop writes it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchLoop_RevalidatesOnChange(t *testing.T) {
	store := catalog.NewMemoryStore()
	store.Put("acme", []dependency.Module{mod("leads", dependency.StateInactive)}, nil)

	out := &syncBuffer{}
	s := &session{
		tenantID:     "acme",
		source:       store,
		orchestrator: orchestrator.New(orchestrator.Config{Source: store}),
		formatter:    formatting.New(formatting.Options{}),
		out:          out,
	}

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- watchLoop(ctx, s, changes) }()

	assert.Eventually(t, func() bool {
		return strings.Count(out.String(), "is valid") == 1
	}, 2*time.Second, 10*time.Millisecond)

	store.Put("acme", []dependency.Module{mod("leads", dependency.StateInactive)}, []dependency.Edge{requiredEdge("leads", "crm")})
	changes <- struct{}{}

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "is invalid")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watchLoop did not stop")
	}
}
