// Package orchestrator serves the dependency engine to its collaborators.
//
// The admin console asks for validation reports and graph views; the
// activation workflow asks for certified plans. Every request reads a fresh
// catalog snapshot from a catalog.Source and runs the pure analysis in
// internal/dependency on it. Nothing is cached between requests.
//
// # Operations
//
//   - GetValidationReport: missing and circular dependencies, ranked critical
//     edges and the IsValid gate. Concurrent requests for one tenant share a
//     single computation.
//   - GetDependencyGraphView: nodes and edges for rendering, each edge with its
//     risk score.
//   - CanActivate: whether an activation request would be certified.
//   - PlanActivation / PlanDeactivation: certified plans stamped with a UUID
//     and the tenant id, or a typed refusal from internal/dependency.
//
// # Audit and Metrics
//
// Each plan request, certified or refused, is passed to the optional
// AuditSink as a PlanRecord. Sink failures are logged and counted but never
// fail the request. Prometheus collectors count validations, plans by outcome
// and catalog load failures.
//
// # Concurrency
//
// An Orchestrator is safe for concurrent use. It does not serialise plan
// execution; the activation workflow must run at most one plan per tenant at
// a time so that deactivation checks stay valid until execution.
package orchestrator
