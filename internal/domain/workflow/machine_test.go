package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateDraft, false},
		{StateSubmitted, false},
		{StateFacultyApproved, false},
		{StateSchoolChairApproved, false},
		{StateDeanSRICApproved, false},
		{StateDirectorApproved, false},
		{StateAuditApproved, false},
		{StateFinanceApproved, true},
		{StateCompleted, true},
		{StateRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"draft", StateDraft, true},
		{"terminal", StateRejected, true},
		{"unknown", State("ARCHIVED"), false},
		{"empty", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	NewBuilder().Configure(State("BOGUS"))
}

func TestMachine_FireUnconfiguredTrigger(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateDraft).Permit(TriggerSubmit, StateSubmitted)

	machine := builder.Build(StateDraft)
	err := machine.Fire(context.Background(), TriggerApprove)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
	}
	if machine.State() != StateDraft {
		t.Errorf("state moved to %s on failed fire", machine.State())
	}
}

func TestMachine_FireFollowsGuardOrder(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateSchoolChairApproved).
		PermitIf(TriggerApprove, StateDeanSRICApproved, func(ctx context.Context) bool { return false }).
		PermitIf(TriggerApprove, StateDirectorApproved, func(ctx context.Context) bool { return true })

	machine := builder.Build(StateSchoolChairApproved)
	if err := machine.Fire(context.Background(), TriggerApprove); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if machine.State() != StateDirectorApproved {
		t.Errorf("state = %s, want %s", machine.State(), StateDirectorApproved)
	}
}

func TestMachine_FireAllGuardsFail(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateSchoolChairApproved).
		PermitIf(TriggerApprove, StateAuditApproved, func(ctx context.Context) bool { return false })

	machine := builder.Build(StateSchoolChairApproved)
	err := machine.Fire(context.Background(), TriggerApprove)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want ErrGuardFailed", err)
	}
}

func TestMachine_BuildSnapshotsTable(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateDraft).Permit(TriggerSubmit, StateSubmitted)
	machine := builder.Build(StateDraft)

	// Transitions configured after Build must not affect the built machine.
	builder.Configure(StateDraft).Permit(TriggerReject, StateRejected)

	if machine.CanFire(TriggerReject) {
		t.Error("machine observed a transition configured after Build()")
	}
}

func TestMachine_PermittedTriggers(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateAuditApproved).
		Permit(TriggerApprove, StateFinanceApproved).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerSendBack, StateDraft)

	machine := builder.Build(StateAuditApproved)
	triggers := machine.PermittedTriggers()
	if len(triggers) != 3 {
		t.Errorf("PermittedTriggers() returned %d triggers, want 3", len(triggers))
	}

	machine = builder.Build(StateRejected)
	if len(machine.PermittedTriggers()) != 0 {
		t.Error("terminal state should have no permitted triggers")
	}
}
