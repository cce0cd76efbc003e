package lifecycle

import "fmt"

// InvalidTransitionError means the requested trigger is not defined for the
// job's current status. Not retryable: the caller asked for something the
// state machine forbids.
type InvalidTransitionError struct {
	From    string
	Trigger string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s from %s", e.Trigger, e.From)
}

// ValidationError means a precondition is missing required data (proof,
// reason, slot fields). Not retryable until the caller supplies it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}
