package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"modgraph/internal/dependency"
)

// MemoryStore keeps tenant catalogs in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	tenants map[string]Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tenants: make(map[string]Snapshot)}
}

// Put replaces the catalog of tenantID. The slices are copied.
func (s *MemoryStore) Put(tenantID string, modules []dependency.Module, edges []dependency.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[tenantID] = Snapshot{
		TenantID: tenantID,
		Modules:  slices.Clone(modules),
		Edges:    slices.Clone(edges),
	}
}

// SetState changes the lifecycle state of one module, as the activation
// workflow would after executing a transition.
func (s *MemoryStore) SetState(tenantID, moduleID string, state dependency.LifecycleState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.tenants[tenantID]
	if !ok {
		return fmt.Errorf("tenant %s: %w", tenantID, ErrTenantNotFound)
	}
	modules := slices.Clone(snap.Modules)
	for i := range modules {
		if modules[i].ID == moduleID {
			modules[i].State = state
			snap.Modules = modules
			s.tenants[tenantID] = snap
			return nil
		}
	}
	return fmt.Errorf("tenant %s: module %s not found", tenantID, moduleID)
}

// Snapshot implements Snapshotter.
func (s *MemoryStore) Snapshot(_ context.Context, tenantID string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.tenants[tenantID]
	if !ok {
		return Snapshot{}, fmt.Errorf("tenant %s: %w", tenantID, ErrTenantNotFound)
	}
	return Snapshot{
		TenantID: tenantID,
		Modules:  slices.Clone(snap.Modules),
		Edges:    slices.Clone(snap.Edges),
	}, nil
}

// ListModules implements Source.
func (s *MemoryStore) ListModules(ctx context.Context, tenantID string) ([]dependency.Module, error) {
	snap, err := s.Snapshot(ctx, tenantID)
	return snap.Modules, err
}

// ListDependencyEdges implements Source.
func (s *MemoryStore) ListDependencyEdges(ctx context.Context, tenantID string) ([]dependency.Edge, error) {
	snap, err := s.Snapshot(ctx, tenantID)
	return snap.Edges, err
}
