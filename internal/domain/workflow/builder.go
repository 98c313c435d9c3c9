package workflow

import (
	"context"
	"fmt"
)

// GuardFunc decides whether a configured transition may be taken.
type GuardFunc func(ctx context.Context) bool

// StateMachineBuilder assembles a transition table and builds machines from it.
type StateMachineBuilder interface {
	// Configure returns the configuration for the given state, creating it
	// if needed. Panics on an unknown state: the table is authored in code
	// and a bad state is a programming error.
	Configure(state State) StateConfiguration

	// Build snapshots the table into a machine starting at initialState.
	Build(initialState State) StateMachine
}

// StateConfiguration declares outgoing transitions for one state.
type StateConfiguration interface {
	// Permit allows trigger to move to toState unconditionally.
	Permit(trigger Trigger, toState State) StateConfiguration

	// PermitIf allows trigger to move to toState when guard passes. Multiple
	// PermitIf calls for the same trigger are tried in declaration order.
	PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration
}

type transition struct {
	to    State
	guard GuardFunc
}

type transitionTable map[State]map[Trigger][]transition

type stateConfig struct {
	table transitionTable
	from  State
}

type stateMachineBuilder struct {
	table transitionTable
}

// NewBuilder creates an empty state machine builder.
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{table: make(transitionTable)}
}

func (b *stateMachineBuilder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("workflow: invalid state %q", state))
	}
	if b.table[state] == nil {
		b.table[state] = make(map[Trigger][]transition)
	}
	return &stateConfig{table: b.table, from: state}
}

func (b *stateMachineBuilder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("workflow: invalid initial state %q", initialState))
	}

	// Snapshot so later Configure calls do not leak into built machines.
	snapshot := make(transitionTable, len(b.table))
	for state, row := range b.table {
		rowCopy := make(map[Trigger][]transition, len(row))
		for trigger, transitions := range row {
			rowCopy[trigger] = append([]transition(nil), transitions...)
		}
		snapshot[state] = rowCopy
	}

	return &stateMachine{current: initialState, table: snapshot}
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	return c.PermitIf(trigger, toState, nil)
}

func (c *stateConfig) PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("workflow: invalid target state %q", toState))
	}
	c.table[c.from][trigger] = append(c.table[c.from][trigger], transition{to: toState, guard: guard})
	return c
}
