// Package lifecycle holds the delivery job state machine. It is pure
// state-to-state logic: guards validate a requested transition against the
// current job and return a typed error before anything is mutated. Callers
// own persistence and notification side effects.
package lifecycle

import (
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
)

// Statuses aliased from store for local use.
const (
	StatusPending         = store.StatusPending
	StatusScheduled       = store.StatusScheduled
	StatusAwaitingRelease = store.StatusAwaitingRelease
	StatusDelivered       = store.StatusDelivered
	StatusCancelled       = store.StatusCancelled
)

// Transition triggers.
const (
	TriggerAssign      = "assign"
	TriggerUnassign    = "unassign"
	TriggerHold        = "hold"
	TriggerRelease     = "release"
	TriggerDeliver     = "deliver"
	TriggerFailAttempt = "fail_attempt"
	TriggerCancel      = "cancel"
)

// ProofBundle is the driver-captured evidence attached when a delivery closes.
type ProofBundle struct {
	SignatureRef    string
	PhotoRefs       []string
	PaymentProofRef string
	Lat             float64
	Lon             float64
}

// Terminal reports whether a status admits no further transitions.
func Terminal(status string) bool {
	return status == StatusDelivered || status == StatusCancelled
}

// ValidShift reports whether s is one of the scheduling buckets.
func ValidShift(s string) bool {
	switch s {
	case store.ShiftMorning, store.ShiftAfternoon, store.ShiftCommercial:
		return true
	}
	return false
}

// CanAssign guards Pending/Scheduled -> Scheduled (assign or re-slot).
func CanAssign(j *store.Job, date string, vehicleID int64, shift string) error {
	if Terminal(j.Status) || j.Status == StatusAwaitingRelease {
		return &InvalidTransitionError{From: j.Status, Trigger: TriggerAssign}
	}
	if date == "" {
		return &ValidationError{Field: "scheduled_date", Reason: "a slot needs a date"}
	}
	if vehicleID == 0 {
		return &ValidationError{Field: "vehicle_id", Reason: "a slot needs a vehicle"}
	}
	if !ValidShift(shift) {
		return &ValidationError{Field: "shift", Reason: "unknown shift: " + shift}
	}
	return nil
}

// CanUnassign guards Scheduled -> Pending (drop back to triage).
func CanUnassign(j *store.Job) error {
	if j.Status != StatusScheduled {
		return &InvalidTransitionError{From: j.Status, Trigger: TriggerUnassign}
	}
	return nil
}

// CanHold guards Pending/Scheduled -> AwaitingRelease.
func CanHold(j *store.Job, reason string) error {
	if j.Status != StatusPending && j.Status != StatusScheduled {
		return &InvalidTransitionError{From: j.Status, Trigger: TriggerHold}
	}
	if reason == "" {
		return &ValidationError{Field: "hold_reason", Reason: "hold needs a reason"}
	}
	return nil
}

// CanRelease guards AwaitingRelease -> Pending.
func CanRelease(j *store.Job) error {
	if j.Status != StatusAwaitingRelease {
		return &InvalidTransitionError{From: j.Status, Trigger: TriggerRelease}
	}
	return nil
}

// CanDeliver guards Scheduled -> Delivered. Deliveries need a signature,
// at least one delivered-goods photo, and payment proof when money is due
// and none was captured before. Assistance visits close without proof.
func CanDeliver(j *store.Job, proof ProofBundle) error {
	if j.Status != StatusScheduled {
		return &InvalidTransitionError{From: j.Status, Trigger: TriggerDeliver}
	}
	if j.Kind != store.KindDelivery {
		return nil
	}
	if proof.SignatureRef == "" {
		return &ValidationError{Field: "signature_ref", Reason: "delivery needs the customer signature"}
	}
	if len(proof.PhotoRefs) == 0 {
		return &ValidationError{Field: "photo_refs", Reason: "delivery needs at least one photo"}
	}
	if j.PaymentDue > 0 && j.PaymentProofRef == "" && proof.PaymentProofRef == "" {
		return &ValidationError{Field: "payment_proof_ref", Reason: "payment due without proof"}
	}
	return nil
}

// CanFailAttempt guards Scheduled -> Pending (delivery attempt failed).
func CanFailAttempt(j *store.Job, photoRef, reason string) error {
	if j.Status != StatusScheduled {
		return &InvalidTransitionError{From: j.Status, Trigger: TriggerFailAttempt}
	}
	if photoRef == "" {
		return &ValidationError{Field: "photo_ref", Reason: "failed attempt needs a photo of the location"}
	}
	if reason == "" {
		return &ValidationError{Field: "reason", Reason: "failed attempt needs a reason"}
	}
	return nil
}

// CanCancel guards Pending/Scheduled/AwaitingRelease -> Cancelled.
func CanCancel(j *store.Job) error {
	if Terminal(j.Status) {
		return &InvalidTransitionError{From: j.Status, Trigger: TriggerCancel}
	}
	return nil
}
