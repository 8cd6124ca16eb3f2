// Package dependency validates module dependency graphs and certifies the
// order in which modules may be activated or deactivated.
//
// # Core Concepts
//
// Module: a pluggable feature unit of a tenant, identified by ID, carrying its
// lifecycle state (inactive, pending_activation, active, pending_deactivation,
// locked).
//
// Edge: a directed relation Source -> Target meaning Source relies on Target.
// Each edge has a type (required, optional, recommended), a priority (P0..P3),
// a failure impact (1..5) and an MTTR estimate in minutes.
//
// Graph: an immutable snapshot built by Build from a flat module list and edge
// list, with forward (what a module relies on) and reverse (who relies on a
// module) adjacency.
//
// # Dependency Rules
//
//  1. Only Required edges decide validity. Optional and Recommended problems
//     are reported as advisories.
//  2. A Required edge to an unknown module is a missing dependency.
//  3. A cycle of Required edges is a circular dependency; a self-loop is a
//     cycle of length one.
//  4. A prerequisite is activated before anything relying on it, and
//     deactivated after.
//  5. Locked modules are never scheduled.
//  6. A module cannot be deactivated while an active module outside the batch
//     Requires it.
//
// # Operations
//
// Build: construct a Graph in Strict or Permissive mode.
//
// FindCycles: depth-first cycle search with deterministic, rotation-free output.
//
// Validate: produce a ValidationReport; never fails, never short-circuits.
//
// Rank: order edges by priority, failure impact and MTTR.
//
// PlanActivation / PlanDeactivation: topological order over a strict graph,
// or a typed error. PlanFromSnapshot chains validation and planning.
//
// # Usage Example
//
//	modules := []dependency.Module{
//	    {ID: "leads", Name: "Leads", State: dependency.StateInactive},
//	    {ID: "reports", Name: "Reports", State: dependency.StateInactive},
//	}
//	edges := []dependency.Edge{{
//	    Source: "leads", Target: "reports", Type: dependency.EdgeRequired,
//	    Priority: dependency.PriorityP1, FailureImpact: 3, MTTREstimateMinutes: 30,
//	}}
//
//	report := dependency.Validate(modules, edges)
//	// report.IsValid == true
//
//	plan, _, err := dependency.PlanFromSnapshot(dependency.DirectionActivate,
//	    modules, edges, []string{"reports", "leads"})
//	// plan.Order == ["reports", "leads"]
//
// # Thread Safety
//
// Nothing in this package keeps state between calls and a built Graph is
// never modified, so every function may be called concurrently. Serialising
// the execution of plans per tenant is up to the caller.
package dependency
