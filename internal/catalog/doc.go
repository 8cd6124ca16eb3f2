// Package catalog supplies tenant module catalogs to the dependency engine.
//
// A catalog is the list of modules of one tenant plus the dependency edges
// between them. Adapters implement Source, and Snapshotter when they can read
// both lists in one consistent read:
//
//   - FileStore: <root>/<tenant>/modules.yaml and dependencies.yaml
//   - PostgresStore: modules and dependency_edges tables via the pgx driver
//   - MemoryStore: in-process, for tests and embedding callers
//
// Records are validated at this boundary. A record with an empty id, an
// unknown lifecycle state, edge type or priority, a failure impact outside
// 1-5 or a negative MTTR is rejected with a *RecordError. Structural problems
// such as dangling targets or cycles are not checked here; they are the
// dependency validator's job.
//
// Watcher reports changes to a tenant directory of a FileStore so that
// callers can re-validate.
package catalog
