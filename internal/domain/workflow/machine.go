package workflow

import (
	"context"
	"fmt"
)

// StateMachine tracks the current state of one report and validates triggers
// against the configured transition table.
type StateMachine interface {
	// State returns the current state.
	State() State

	// CanFire reports whether the trigger has at least one transition
	// configured from the current state. Guards are not evaluated.
	CanFire(trigger Trigger) bool

	// Fire executes the trigger, moving to the first target state whose
	// guard passes. It returns ErrInvalidTransition or ErrGuardFailed
	// without changing state when the trigger cannot be applied.
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers lists the triggers configured from the current state.
	PermittedTriggers() []Trigger
}

type stateMachine struct {
	current State
	table   transitionTable
}

func (m *stateMachine) State() State {
	return m.current
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	return len(m.table[m.current][trigger]) > 0
}

func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	transitions := m.table[m.current][trigger]
	if len(transitions) == 0 {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.current)
	}

	for _, t := range transitions {
		if t.guard == nil || t.guard(ctx) {
			m.current = t.to
			return nil
		}
	}

	return fmt.Errorf("%w: %s from %s", ErrGuardFailed, trigger, m.current)
}

func (m *stateMachine) PermittedTriggers() []Trigger {
	row := m.table[m.current]
	triggers := make([]Trigger, 0, len(row))
	for trigger := range row {
		triggers = append(triggers, trigger)
	}
	return triggers
}
