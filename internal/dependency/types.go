package dependency

import "fmt"

// LifecycleState is the activation state of a module inside a tenant.
type LifecycleState string

const (
	StateInactive            LifecycleState = "inactive"
	StatePendingActivation   LifecycleState = "pending_activation"
	StateActive              LifecycleState = "active"
	StatePendingDeactivation LifecycleState = "pending_deactivation"
	// StateLocked modules are managed outside this engine and never transition here.
	StateLocked LifecycleState = "locked"
)

// IsPending reports whether the state is one of the two in-flight states.
func (s LifecycleState) IsPending() bool {
	return s == StatePendingActivation || s == StatePendingDeactivation
}

// EdgeType is the severity class of a dependency edge.
type EdgeType string

const (
	EdgeRequired    EdgeType = "required"
	EdgeOptional    EdgeType = "optional"
	EdgeRecommended EdgeType = "recommended"
)

// weight orders edge types by severity: Required above Recommended above Optional.
func (t EdgeType) weight() int {
	switch t {
	case EdgeRequired:
		return 2
	case EdgeRecommended:
		return 1
	default:
		return 0
	}
}

// Priority ranks how severe a violated dependency is. P0 is the most severe.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// Severity returns 3 for P0 down to 0 for P3. Unknown priorities rank below P3.
func (p Priority) Severity() int {
	switch p {
	case PriorityP0:
		return 3
	case PriorityP1:
		return 2
	case PriorityP2:
		return 1
	case PriorityP3:
		return 0
	default:
		return -1
	}
}

// Module is a pluggable feature unit that can be switched on or off per tenant.
//
// Locked marks a module whose lifecycle is managed elsewhere while State
// still tells whether it is running. A module whose State is StateLocked is
// locked and not known to be active.
type Module struct {
	ID     string         `json:"id" yaml:"id"`
	Name   string         `json:"name" yaml:"name"`
	State  LifecycleState `json:"lifecycleState" yaml:"lifecycleState"`
	Locked bool           `json:"locked,omitempty" yaml:"locked,omitempty"`
}

// IsLocked reports whether the engine must leave the module alone.
func (m Module) IsLocked() bool {
	return m.Locked || m.State == StateLocked
}

// IsActive reports whether the module is currently running.
func (m Module) IsActive() bool {
	return m.State == StateActive
}

// inUse reports whether dependents of other modules count the module as
// running or about to run.
func (m Module) inUse() bool {
	return m.State == StateActive || m.State == StatePendingActivation
}

// Edge states that Source relies on Target.
type Edge struct {
	Source              string   `json:"source" yaml:"source"`
	Target              string   `json:"target" yaml:"target"`
	Type                EdgeType `json:"type" yaml:"type"`
	Priority            Priority `json:"priority" yaml:"priority"`
	FailureImpact       int      `json:"failureImpact" yaml:"failureImpact"`
	MTTREstimateMinutes int      `json:"mttrEstimateMinutes" yaml:"mttrEstimateMinutes"`
}

// IsRequired reports whether the edge participates in validity checks.
func (e Edge) IsRequired() bool {
	return e.Type == EdgeRequired
}

func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s (%s)", e.Source, e.Target, e.Type)
}

type edgeKey struct {
	source, target string
}

func (e Edge) key() edgeKey {
	return edgeKey{source: e.Source, target: e.Target}
}

// ValidationReport is the result of a validation run over one snapshot.
//
// IsValid only depends on MissingDependencies and CircularDependencies. The
// Advisory*, Orphaned* and Duplicate* fields are informational for the UI.
type ValidationReport struct {
	MissingDependencies   []Edge     `json:"missingDependencies"`
	CircularDependencies  [][]string `json:"circularDependencies"`
	CriticalDependencies  []Edge     `json:"criticalDependencies"`
	IsValid               bool       `json:"isValid"`
	AdvisoryCycles        [][]string `json:"advisoryCycles,omitempty"`
	AdvisoryMissing       []Edge     `json:"advisoryMissing,omitempty"`
	OrphanedDependencies  []Edge     `json:"orphanedDependencies,omitempty"`
	DuplicateDependencies []Edge     `json:"duplicateDependencies,omitempty"`
	DuplicateModules      []string   `json:"duplicateModules,omitempty"`
}

// Direction tells whether a plan activates or deactivates modules.
type Direction string

const (
	DirectionActivate   Direction = "activate"
	DirectionDeactivate Direction = "deactivate"
)

// ExclusionReason explains why a requested or implied module is not scheduled.
type ExclusionReason string

const (
	ExcludedLocked          ExclusionReason = "locked"
	ExcludedAlreadyActive   ExclusionReason = "already_active"
	ExcludedAlreadyInactive ExclusionReason = "already_inactive"
)

// Exclusion is a module left out of a plan.
type Exclusion struct {
	ModuleID string          `json:"moduleId"`
	Reason   ExclusionReason `json:"reason"`
}

// PlanStep lists the transitions the activation workflow may request for one
// module. Forward is applied in order on success; Rollback undoes a module
// that is stuck in its pending state.
type PlanStep struct {
	ModuleID string       `json:"moduleId"`
	Forward  []Transition `json:"forward"`
	Rollback Transition   `json:"rollback"`
}

// ActivationPlan is a certified order of module transitions.
type ActivationPlan struct {
	ID        string      `json:"id,omitempty"`
	TenantID  string      `json:"tenantId,omitempty"`
	Direction Direction   `json:"direction"`
	Order     []string    `json:"order"`
	Excluded  []Exclusion `json:"excluded"`
	Steps     []PlanStep  `json:"steps"`
}
