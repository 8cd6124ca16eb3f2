package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"modgraph/internal/dependency"
	"modgraph/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	modulesFileName      = "modules.yaml"
	dependenciesFileName = "dependencies.yaml"
)

type modulesFile struct {
	Modules []ModuleRecord `yaml:"modules"`
}

type dependenciesFile struct {
	Dependencies []EdgeRecord `yaml:"dependencies"`
}

// FileStore reads tenant catalogs from YAML files laid out as
// <root>/<tenant>/modules.yaml and <root>/<tenant>/dependencies.yaml.
type FileStore struct {
	mu   sync.RWMutex
	root string
}

// NewFileStore creates a FileStore rooted at root.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Root returns the catalog root directory.
func (fs *FileStore) Root() string {
	return fs.root
}

// TenantDir returns the directory holding the catalog of tenantID.
func (fs *FileStore) TenantDir(tenantID string) string {
	return filepath.Join(fs.root, sanitizeTenantID(tenantID))
}

// Snapshot implements Snapshotter. Both files are read under one read lock so
// a concurrent SaveSnapshot is never observed half-written.
func (fs *FileStore) Snapshot(ctx context.Context, tenantID string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	if tenantID == "" {
		return Snapshot{}, fmt.Errorf("tenantID cannot be empty")
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	dir := fs.TenantDir(tenantID)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, fmt.Errorf("tenant %s: %w", tenantID, ErrTenantNotFound)
	}

	var mf modulesFile
	if err := readYAML(filepath.Join(dir, modulesFileName), &mf); err != nil {
		return Snapshot{}, err
	}
	var df dependenciesFile
	if err := readYAML(filepath.Join(dir, dependenciesFileName), &df); err != nil {
		return Snapshot{}, err
	}

	modules, err := ConvertModules(tenantID, mf.Modules)
	if err != nil {
		return Snapshot{}, err
	}
	edges, err := ConvertEdges(tenantID, df.Dependencies)
	if err != nil {
		return Snapshot{}, err
	}

	logging.Debug("Catalog", "Loaded %d modules and %d edges for tenant %s from %s",
		len(modules), len(edges), tenantID, dir)
	return Snapshot{TenantID: tenantID, Modules: modules, Edges: edges}, nil
}

// ListModules implements Source.
func (fs *FileStore) ListModules(ctx context.Context, tenantID string) ([]dependency.Module, error) {
	snap, err := fs.Snapshot(ctx, tenantID)
	return snap.Modules, err
}

// ListDependencyEdges implements Source.
func (fs *FileStore) ListDependencyEdges(ctx context.Context, tenantID string) ([]dependency.Edge, error) {
	snap, err := fs.Snapshot(ctx, tenantID)
	return snap.Edges, err
}

// SaveSnapshot writes the catalog of tenantID, replacing both files.
func (fs *FileStore) SaveSnapshot(tenantID string, modules []dependency.Module, edges []dependency.Edge) error {
	if tenantID == "" {
		return fmt.Errorf("tenantID cannot be empty")
	}

	mf := modulesFile{Modules: make([]ModuleRecord, 0, len(modules))}
	for _, m := range modules {
		mf.Modules = append(mf.Modules, NewModuleRecord(m))
	}
	df := dependenciesFile{Dependencies: make([]EdgeRecord, 0, len(edges))}
	for _, e := range edges {
		df.Dependencies = append(df.Dependencies, NewEdgeRecord(e))
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	dir := fs.TenantDir(tenantID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := writeYAML(filepath.Join(dir, modulesFileName), mf); err != nil {
		return err
	}
	if err := writeYAML(filepath.Join(dir, dependenciesFileName), df); err != nil {
		return err
	}

	logging.Info("Catalog", "Saved %d modules and %d edges for tenant %s to %s",
		len(modules), len(edges), tenantID, dir)
	return nil
}

// ListTenants returns the tenant directories under the root, sorted.
func (fs *FileStore) ListTenants() ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list tenants in %s: %w", fs.root, err)
	}

	tenants := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			tenants = append(tenants, entry.Name())
		}
	}
	sort.Strings(tenants)
	return tenants, nil
}

// readYAML decodes path into out. A missing file leaves out untouched.
func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeYAML(path string, in interface{}) error {
	data, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// sanitizeTenantID ensures the tenant id is safe to use as a directory name
func sanitizeTenantID(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", ".", "_",
	)
	sanitized := replacer.Replace(strings.TrimSpace(name))

	// Replace spaces with underscores
	sanitized = strings.ReplaceAll(sanitized, " ", "_")

	// Collapse multiple consecutive underscores to single underscore
	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}

	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "unnamed"
	}
	return sanitized
}
