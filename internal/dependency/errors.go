package dependency

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MalformedEdgeReason classifies why strict graph construction rejected an edge.
type MalformedEdgeReason string

const (
	ReasonDanglingTarget MalformedEdgeReason = "dangling target"
	ReasonUnknownSource  MalformedEdgeReason = "unknown source"
	ReasonSelfLoop       MalformedEdgeReason = "self-referential edge"
	ReasonDuplicate      MalformedEdgeReason = "duplicate edge"
)

// MalformedEdgeError is returned by strict graph construction when an edge
// references a module that does not exist, points at its own source, or
// repeats an existing (source, target) pair.
type MalformedEdgeError struct {
	Edge   Edge
	Reason MalformedEdgeReason
}

func (e *MalformedEdgeError) Error() string {
	return fmt.Sprintf("malformed dependency %s -> %s: %s", e.Edge.Source, e.Edge.Target, e.Reason)
}

// IsMalformedEdge checks if an error is or wraps a MalformedEdgeError.
func IsMalformedEdge(err error) bool {
	var target *MalformedEdgeError
	return errors.As(err, &target)
}

// DuplicateModuleError is returned when two modules in a snapshot share an ID.
type DuplicateModuleError struct {
	ModuleID string
}

func (e *DuplicateModuleError) Error() string {
	return fmt.Sprintf("module %s is listed more than once", e.ModuleID)
}

// UnknownModuleError is returned when a plan request names a module that is
// not part of the graph.
type UnknownModuleError struct {
	ModuleIDs []string
}

func (e *UnknownModuleError) Error() string {
	return fmt.Sprintf("unknown module(s): %s", strings.Join(e.ModuleIDs, ", "))
}

// IsUnknownModule checks if an error is or wraps an UnknownModuleError.
func IsUnknownModule(err error) bool {
	var target *UnknownModuleError
	return errors.As(err, &target)
}

// UnresolvedGraphError is returned when planning touches modules that take part
// in a missing or circular Required dependency.
//
// The error carries the offending edges and cycles so that callers can show
// them instead of a generic failure.
type UnresolvedGraphError struct {
	MissingDependencies  []Edge
	CircularDependencies [][]string
}

func (e *UnresolvedGraphError) Error() string {
	var parts []string
	if len(e.MissingDependencies) > 0 {
		missing := make([]string, 0, len(e.MissingDependencies))
		for _, edge := range e.MissingDependencies {
			missing = append(missing, edge.Source+" -> "+edge.Target)
		}
		parts = append(parts, "missing "+strings.Join(missing, ", "))
	}
	if len(e.CircularDependencies) > 0 {
		cycles := make([]string, 0, len(e.CircularDependencies))
		for _, cycle := range e.CircularDependencies {
			cycles = append(cycles, "["+strings.Join(cycle, " -> ")+"]")
		}
		parts = append(parts, "circular "+strings.Join(cycles, ", "))
	}
	return "unresolved dependency graph: " + strings.Join(parts, "; ")
}

// IsUnresolvedGraph checks if an error is or wraps an UnresolvedGraphError.
func IsUnresolvedGraph(err error) bool {
	var target *UnresolvedGraphError
	return errors.As(err, &target)
}

// LockedPrerequisiteError is returned when activation needs a Locked module
// that is not already Active.
type LockedPrerequisiteError struct {
	ModuleID   string
	State      LifecycleState
	RequiredBy []string
}

func (e *LockedPrerequisiteError) Error() string {
	return fmt.Sprintf("prerequisite %s is locked and not active (required by %s)",
		e.ModuleID, strings.Join(e.RequiredBy, ", "))
}

// IsLockedPrerequisite checks if an error is or wraps a LockedPrerequisiteError.
func IsLockedPrerequisite(err error) bool {
	var target *LockedPrerequisiteError
	return errors.As(err, &target)
}

// ActiveDependentsError is returned when deactivation would strand modules that
// are still active and Required-depend on a module in the batch. Stranded maps
// each module of the batch to its active dependents outside the batch.
type ActiveDependentsError struct {
	Stranded map[string][]string
}

func (e *ActiveDependentsError) Error() string {
	ids := make([]string, 0, len(e.Stranded))
	for id := range e.Stranded {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s (needed by %s)", id, strings.Join(e.Stranded[id], ", ")))
	}
	return "cannot deactivate modules with active dependents: " + strings.Join(parts, "; ")
}

// IsActiveDependents checks if an error is or wraps an ActiveDependentsError.
func IsActiveDependents(err error) bool {
	var target *ActiveDependentsError
	return errors.As(err, &target)
}

// TransitionInProgressError is returned when a plan would include a module that
// is already pending activation or deactivation.
type TransitionInProgressError struct {
	ModuleID string
	State    LifecycleState
}

func (e *TransitionInProgressError) Error() string {
	return fmt.Sprintf("module %s is %s", e.ModuleID, e.State)
}

// IsTransitionInProgress checks if an error is or wraps a TransitionInProgressError.
func IsTransitionInProgress(err error) bool {
	var target *TransitionInProgressError
	return errors.As(err, &target)
}

// IllegalTransitionError is returned for a lifecycle change the workflow is not
// permitted to request.
type IllegalTransitionError struct {
	From LifecycleState
	To   LifecycleState
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal lifecycle transition %s -> %s", e.From, e.To)
}
