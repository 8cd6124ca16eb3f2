package catalog

import (
	"context"
	"errors"
	"fmt"

	"modgraph/internal/dependency"
)

// Source supplies the modules and dependency edges of a tenant.
type Source interface {
	ListModules(ctx context.Context, tenantID string) ([]dependency.Module, error)
	ListDependencyEdges(ctx context.Context, tenantID string) ([]dependency.Edge, error)
}

// Snapshotter is implemented by sources that can read modules and edges in a
// single consistent read.
type Snapshotter interface {
	Snapshot(ctx context.Context, tenantID string) (Snapshot, error)
}

// Snapshot is one consistent view of a tenant's catalog.
type Snapshot struct {
	TenantID string
	Modules  []dependency.Module
	Edges    []dependency.Edge
}

// ErrTenantNotFound is returned when a source has no catalog for a tenant.
var ErrTenantNotFound = errors.New("tenant not found")

// Load reads a snapshot of tenantID from src, using Snapshotter when src
// implements it and two list calls otherwise.
func Load(ctx context.Context, src Source, tenantID string) (Snapshot, error) {
	if tenantID == "" {
		return Snapshot{}, fmt.Errorf("tenantID cannot be empty")
	}
	if s, ok := src.(Snapshotter); ok {
		return s.Snapshot(ctx, tenantID)
	}

	modules, err := src.ListModules(ctx, tenantID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to list modules for tenant %s: %w", tenantID, err)
	}
	edges, err := src.ListDependencyEdges(ctx, tenantID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to list dependency edges for tenant %s: %w", tenantID, err)
	}
	return Snapshot{TenantID: tenantID, Modules: modules, Edges: edges}, nil
}
