package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"modgraph/internal/dependency"
	"modgraph/pkg/logging"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Schema creates the tables PostgresStore reads. Rows are returned in
// position order so the engine sees modules and edges in insertion order.
const Schema = `
CREATE TABLE IF NOT EXISTS modules (
  tenant_id TEXT NOT NULL,
  module_id TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  lifecycle_state TEXT NOT NULL DEFAULT 'inactive',
  locked BOOLEAN NOT NULL DEFAULT FALSE,
  position SERIAL,
  PRIMARY KEY (tenant_id, module_id)
);

CREATE TABLE IF NOT EXISTS dependency_edges (
  tenant_id TEXT NOT NULL,
  source_module_id TEXT NOT NULL,
  target_module_id TEXT NOT NULL,
  dependency_type TEXT NOT NULL,
  priority TEXT NOT NULL,
  failure_impact INTEGER NOT NULL,
  mttr_estimate_minutes INTEGER NOT NULL DEFAULT 0,
  position SERIAL
);
CREATE INDEX IF NOT EXISTS idx_dependency_edges_tenant ON dependency_edges (tenant_id, position);
`

// PostgresStore reads tenant catalogs from PostgreSQL through the pgx driver.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens and pings dsn.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach catalog database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreWithDB wraps an already opened database.
func NewPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close releases the database pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the catalog tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return nil
}

// Snapshot implements Snapshotter. Modules and edges are read in one
// repeatable-read transaction.
func (s *PostgresStore) Snapshot(ctx context.Context, tenantID string) (Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to begin snapshot for tenant %s: %w", tenantID, err)
	}
	defer func() { _ = tx.Rollback() }()

	moduleRecords, err := queryModules(ctx, tx, tenantID)
	if err != nil {
		return Snapshot{}, err
	}
	edgeRecords, err := queryEdges(ctx, tx, tenantID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("failed to finish snapshot for tenant %s: %w", tenantID, err)
	}

	if len(moduleRecords) == 0 && len(edgeRecords) == 0 {
		return Snapshot{}, fmt.Errorf("tenant %s: %w", tenantID, ErrTenantNotFound)
	}

	modules, err := ConvertModules(tenantID, moduleRecords)
	if err != nil {
		return Snapshot{}, err
	}
	edges, err := ConvertEdges(tenantID, edgeRecords)
	if err != nil {
		return Snapshot{}, err
	}

	logging.Debug("Catalog", "Loaded %d modules and %d edges for tenant %s from postgres",
		len(modules), len(edges), tenantID)
	return Snapshot{TenantID: tenantID, Modules: modules, Edges: edges}, nil
}

// ListModules implements Source.
func (s *PostgresStore) ListModules(ctx context.Context, tenantID string) ([]dependency.Module, error) {
	records, err := queryModules(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	return ConvertModules(tenantID, records)
}

// ListDependencyEdges implements Source.
func (s *PostgresStore) ListDependencyEdges(ctx context.Context, tenantID string) ([]dependency.Edge, error) {
	records, err := queryEdges(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	return ConvertEdges(tenantID, records)
}

// SaveSnapshot replaces the catalog of tenantID inside one transaction.
func (s *PostgresStore) SaveSnapshot(ctx context.Context, tenantID string, modules []dependency.Module, edges []dependency.Edge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM dependency_edges WHERE tenant_id = $1`, tenantID); err != nil {
		return fmt.Errorf("failed to clear edges for tenant %s: %w", tenantID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM modules WHERE tenant_id = $1`, tenantID); err != nil {
		return fmt.Errorf("failed to clear modules for tenant %s: %w", tenantID, err)
	}
	for _, m := range modules {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO modules (tenant_id, module_id, name, lifecycle_state, locked)
VALUES ($1,$2,$3,$4,$5)`,
			tenantID, m.ID, m.Name, string(m.State), m.Locked); err != nil {
			return fmt.Errorf("failed to insert module %s: %w", m.ID, err)
		}
	}
	for _, e := range edges {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO dependency_edges (
  tenant_id, source_module_id, target_module_id, dependency_type, priority, failure_impact, mttr_estimate_minutes
)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			tenantID, e.Source, e.Target, string(e.Type), string(e.Priority), e.FailureImpact, e.MTTREstimateMinutes); err != nil {
			return fmt.Errorf("failed to insert edge %s: %w", e, err)
		}
	}
	return tx.Commit()
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryModules(ctx context.Context, q queryer, tenantID string) ([]ModuleRecord, error) {
	rows, err := q.QueryContext(ctx, `SELECT module_id, name, lifecycle_state, locked
FROM modules WHERE tenant_id = $1 ORDER BY position`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	var records []ModuleRecord
	for rows.Next() {
		var r ModuleRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.LifecycleState, &r.Locked); err != nil {
			return nil, fmt.Errorf("failed to scan module for tenant %s: %w", tenantID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func queryEdges(ctx context.Context, q queryer, tenantID string) ([]EdgeRecord, error) {
	rows, err := q.QueryContext(ctx, `SELECT source_module_id, target_module_id, dependency_type, priority,
  failure_impact, mttr_estimate_minutes
FROM dependency_edges WHERE tenant_id = $1 ORDER BY position`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dependency edges for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	var records []EdgeRecord
	for rows.Next() {
		var r EdgeRecord
		if err := rows.Scan(&r.Source, &r.Target, &r.Type, &r.Priority, &r.FailureImpact, &r.MTTREstimateMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan dependency edge for tenant %s: %w", tenantID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
