package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when the trigger is not permitted
	// from the current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrGuardFailed is returned when the trigger exists but every guard
	// on it rejected the transition.
	ErrGuardFailed = errors.New("guard condition failed")
)
