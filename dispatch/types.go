package dispatch

import "fmt"

// DestinationKind discriminates where a move lands a job.
type DestinationKind int

const (
	DestTriage DestinationKind = iota + 1
	DestHold
	DestSlot
)

// Destination is where a job is being moved to. Build one with Triage,
// Hold or Slot rather than filling the struct directly.
type Destination struct {
	Kind      DestinationKind
	Reason    string // hold reason, DestHold only
	Date      string // YYYY-MM-DD, DestSlot only
	VehicleID int64  // DestSlot only
	Shift     string // DestSlot only
}

func Triage() Destination {
	return Destination{Kind: DestTriage}
}

func Hold(reason string) Destination {
	return Destination{Kind: DestHold, Reason: reason}
}

func Slot(date string, vehicleID int64, shift string) Destination {
	return Destination{Kind: DestSlot, Date: date, VehicleID: vehicleID, Shift: shift}
}

func (d Destination) String() string {
	switch d.Kind {
	case DestTriage:
		return "triage"
	case DestHold:
		return fmt.Sprintf("hold(%s)", d.Reason)
	case DestSlot:
		return fmt.Sprintf("slot(%s/%d/%s)", d.Date, d.VehicleID, d.Shift)
	}
	return "unknown"
}

// PersistenceError wraps a store failure during a move. The in-memory
// board has already been reloaded from the database when callers see
// this, so the caller's view matches what was actually committed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("dispatch: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Emitter receives dispatch outcomes. The engine package adapts its
// event bus to this.
type Emitter interface {
	EmitJobScheduled(jobID int64, publicRef, date string, vehicleID int64, shift string)
	EmitJobTriaged(jobID int64, publicRef string)
	EmitJobHeld(jobID int64, publicRef, reason string)
	EmitJobsRescheduled(oldDate string, moved, notified int)
}
