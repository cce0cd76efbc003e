package dispatch

import (
	"fmt"
	"log"
	"sync"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/lifecycle"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/notify"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
)

// Engine owns job placement. It keeps an in-memory copy of the open
// board so reads never hit the database, applies moves to that copy
// first, then persists. If the write fails the copy is reloaded from
// the database so the two can never drift.
type Engine struct {
	mu       sync.Mutex
	db       *store.DB
	notifier *notify.Notifier
	emitter  Emitter
	jobs     []*store.Job
}

func NewEngine(db *store.DB, notifier *notify.Notifier, emitter Emitter) *Engine {
	return &Engine{db: db, notifier: notifier, emitter: emitter}
}

// Refresh reloads the board from the database. Call once at startup
// and whenever another writer (tracker, optimizer) changes jobs.
func (e *Engine) Refresh() error {
	jobs, err := e.db.ListJobs("")
	if err != nil {
		return fmt.Errorf("dispatch: refresh: %w", err)
	}
	e.mu.Lock()
	e.jobs = jobs
	e.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the board slice. The Job pointers are
// shared, callers must treat them as read-only.
func (e *Engine) Snapshot() []*store.Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*store.Job, len(e.jobs))
	copy(out, e.jobs)
	return out
}

// Move places one job at dest. The transition is validated first, then
// applied to the in-memory board, then persisted. A persistence failure
// rolls the in-memory board back by reloading it and returns a
// *PersistenceError.
func (e *Engine) Move(jobID int64, dest Destination) (*store.Job, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	j := e.find(jobID)
	if j == nil {
		fresh, err := e.db.GetJob(jobID)
		if err != nil {
			return nil, fmt.Errorf("dispatch: job %d: %w", jobID, err)
		}
		e.jobs = append(e.jobs, fresh)
		j = fresh
	}

	var status, date, shift, holdReason string
	var vehicleID *int64
	switch dest.Kind {
	case DestSlot:
		if err := lifecycle.CanAssign(j, dest.Date, dest.VehicleID, dest.Shift); err != nil {
			return nil, err
		}
		// Re-issuing the same placement is a no-op, not an error.
		if j.Status == store.StatusScheduled && j.ScheduledDate == dest.Date &&
			j.VehicleID != nil && *j.VehicleID == dest.VehicleID && j.Shift == dest.Shift {
			return j, nil
		}
		vid := dest.VehicleID
		status, date, vehicleID, shift = store.StatusScheduled, dest.Date, &vid, dest.Shift
	case DestHold:
		if err := lifecycle.CanHold(j, dest.Reason); err != nil {
			return nil, err
		}
		status, holdReason = store.StatusAwaitingRelease, dest.Reason
	case DestTriage:
		if j.Status == store.StatusAwaitingRelease {
			if err := lifecycle.CanRelease(j); err != nil {
				return nil, err
			}
		} else {
			if j.Status == store.StatusPending && j.ScheduledDate == "" {
				return j, nil // already in triage
			}
			if err := lifecycle.CanUnassign(j); err != nil {
				return nil, err
			}
		}
		status = store.StatusPending
	default:
		return nil, fmt.Errorf("dispatch: bad destination kind %d", dest.Kind)
	}

	prev := *j
	j.Status = status
	j.ScheduledDate = date
	j.VehicleID = vehicleID
	j.Shift = shift
	j.HoldReason = holdReason
	j.RouteOrder = nil

	if err := e.db.UpdateJobSlot(j.ID, status, date, vehicleID, shift, holdReason); err != nil {
		*j = prev
		if rerr := e.reload(); rerr != nil {
			log.Printf("[dispatch] reload after failed move: %v", rerr)
		}
		return nil, &PersistenceError{Op: fmt.Sprintf("move %s to %s", j.PublicRef, dest), Err: err}
	}

	if err := e.db.AppendJobHistory(j.ID, status, "movido para "+dest.String()); err != nil {
		log.Printf("[dispatch] history for %s: %v", j.PublicRef, err)
	}
	e.emit(j, dest)
	return j, nil
}

// Cancel closes a job for good. Placement columns are left as they
// were for the audit trail.
func (e *Engine) Cancel(jobID int64, reason string) (*store.Job, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	j := e.find(jobID)
	if j == nil {
		var err error
		if j, err = e.db.GetJob(jobID); err != nil {
			return nil, fmt.Errorf("dispatch: job %d: %w", jobID, err)
		}
		e.jobs = append(e.jobs, j)
	}
	if err := lifecycle.CanCancel(j); err != nil {
		return nil, err
	}
	prev := j.Status
	j.Status = store.StatusCancelled
	if err := e.db.UpdateJobStatus(j.ID, store.StatusCancelled); err != nil {
		j.Status = prev
		return nil, &PersistenceError{Op: "cancel " + j.PublicRef, Err: err}
	}
	if err := e.db.AppendJobHistory(j.ID, store.StatusCancelled, reason); err != nil {
		log.Printf("[dispatch] history for %s: %v", j.PublicRef, err)
	}
	return j, nil
}

// BulkReschedule empties every slot on date back to triage and sends
// each affected customer one apology notice. A notice that fails to
// send is logged and skipped, the job still moves: the day is being
// cleared either way.
func (e *Engine) BulkReschedule(date string) (moved, notified int, err error) {
	jobs, err := e.db.ListScheduledJobsByDate(date)
	if err != nil {
		return 0, 0, fmt.Errorf("dispatch: bulk reschedule %s: %w", date, err)
	}

	e.mu.Lock()
	for _, j := range jobs {
		if err := e.db.UpdateJobSlot(j.ID, store.StatusPending, "", nil, "", ""); err != nil {
			log.Printf("[dispatch] bulk reschedule %s: %v", j.PublicRef, err)
			continue
		}
		if err := e.db.AppendJobHistory(j.ID, store.StatusPending, "reagendamento em massa de "+date); err != nil {
			log.Printf("[dispatch] history for %s: %v", j.PublicRef, err)
		}
		moved++
		if e.notifier != nil {
			if err := e.notifier.SendRescheduleNotice(j, date); err != nil {
				log.Printf("[dispatch] reschedule notice for %s: %v", j.PublicRef, err)
			} else {
				notified++
			}
		}
	}
	e.mu.Unlock()

	if err := e.Refresh(); err != nil {
		log.Printf("[dispatch] refresh after bulk reschedule: %v", err)
	}
	if e.emitter != nil && moved > 0 {
		e.emitter.EmitJobsRescheduled(date, moved, notified)
	}
	return moved, notified, nil
}

func (e *Engine) find(id int64) *store.Job {
	for _, j := range e.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

// reload replaces the board without taking the lock, callers hold it.
func (e *Engine) reload() error {
	jobs, err := e.db.ListJobs("")
	if err != nil {
		return err
	}
	e.jobs = jobs
	return nil
}

func (e *Engine) emit(j *store.Job, dest Destination) {
	if e.emitter == nil {
		return
	}
	switch dest.Kind {
	case DestSlot:
		e.emitter.EmitJobScheduled(j.ID, j.PublicRef, dest.Date, dest.VehicleID, dest.Shift)
	case DestHold:
		e.emitter.EmitJobHeld(j.ID, j.PublicRef, dest.Reason)
	case DestTriage:
		e.emitter.EmitJobTriaged(j.ID, j.PublicRef)
	}
}
