package dependency

// Transition is a single lifecycle change the activation workflow may request.
type Transition struct {
	From LifecycleState `json:"from"`
	To   LifecycleState `json:"to"`
}

// allowedTransitions is the complete state machine. Locked has no entry.
var allowedTransitions = map[LifecycleState][]LifecycleState{
	StateInactive:            {StatePendingActivation},
	StatePendingActivation:   {StateActive, StateInactive},
	StateActive:              {StatePendingDeactivation},
	StatePendingDeactivation: {StateInactive, StateActive},
}

var (
	activationSteps = []Transition{
		{From: StateInactive, To: StatePendingActivation},
		{From: StatePendingActivation, To: StateActive},
	}
	activationRollback = Transition{From: StatePendingActivation, To: StateInactive}

	deactivationSteps = []Transition{
		{From: StateActive, To: StatePendingDeactivation},
		{From: StatePendingDeactivation, To: StateInactive},
	}
	deactivationRollback = Transition{From: StatePendingDeactivation, To: StateActive}
)

// CanTransition reports whether the workflow may move a module from one state
// to another.
func CanTransition(from, to LifecycleState) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns an IllegalTransitionError unless CanTransition.
// A module flagged as locked can never transition, whatever its state.
func ValidateTransition(m Module, to LifecycleState) error {
	if m.IsLocked() || !CanTransition(m.State, to) {
		return &IllegalTransitionError{From: m.State, To: to}
	}
	return nil
}

func stepFor(id string, dir Direction) PlanStep {
	if dir == DirectionDeactivate {
		return PlanStep{
			ModuleID: id,
			Forward:  append([]Transition(nil), deactivationSteps...),
			Rollback: deactivationRollback,
		}
	}
	return PlanStep{
		ModuleID: id,
		Forward:  append([]Transition(nil), activationSteps...),
		Rollback: activationRollback,
	}
}
