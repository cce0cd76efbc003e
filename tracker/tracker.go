// Package tracker follows routes as they run: who is on the road, where
// they are, and how each stop ended.
package tracker

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/lifecycle"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/livetrack"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/locator"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
)

// Emitter receives execution outcomes.
type Emitter interface {
	EmitRouteStarted(vehicleID int64, plate, shift string)
	EmitRouteFinished(vehicleID int64, plate string)
	EmitJobDelivered(jobID int64, publicRef string)
	EmitJobFailedAttempt(jobID int64, publicRef, reason string, attempts int)
}

// Tracker runs one position loop per vehicle that is out on a route and
// records how each stop ended.
type Tracker struct {
	mu       sync.Mutex
	db       *store.DB
	live     *livetrack.Manager
	provider locator.Provider
	emitter  Emitter
	interval time.Duration
	loops    map[int64]chan struct{}
}

func New(db *store.DB, live *livetrack.Manager, provider locator.Provider, emitter Emitter, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Tracker{
		db:       db,
		live:     live,
		provider: provider,
		emitter:  emitter,
		interval: interval,
		loops:    make(map[int64]chan struct{}),
	}
}

// StartRoute puts a vehicle in transit and begins polling its position.
// Starting a vehicle that is already in transit just updates driver and
// shift.
func (t *Tracker) StartRoute(vehicleID int64, driverName, shift string) error {
	if !lifecycle.ValidShift(shift) {
		return &lifecycle.ValidationError{Field: "shift", Reason: "unknown shift: " + shift}
	}
	v, err := t.db.GetVehicle(vehicleID)
	if err != nil {
		return fmt.Errorf("tracker: vehicle %d: %w", vehicleID, err)
	}
	if err := t.db.SetVehicleRoute(vehicleID, store.RouteInTransit, driverName, shift); err != nil {
		return fmt.Errorf("tracker: start route: %w", err)
	}
	if t.live != nil {
		t.live.RouteChanged(vehicleID)
	}

	t.mu.Lock()
	if _, running := t.loops[vehicleID]; !running {
		stop := make(chan struct{})
		t.loops[vehicleID] = stop
		go t.positionLoop(vehicleID, v.Plate, stop)
	}
	t.mu.Unlock()

	if t.emitter != nil {
		t.emitter.EmitRouteStarted(vehicleID, v.Plate, shift)
	}
	log.Printf("[tracker] route started: %s (%s, turno %s)", v.Plate, driverName, shift)
	return nil
}

// Resume restarts position loops for vehicles that were in transit
// when the process went down. No events are emitted, the routes never
// stopped.
func (t *Tracker) Resume() error {
	vehicles, err := t.db.ListVehicles()
	if err != nil {
		return fmt.Errorf("tracker: resume: %w", err)
	}
	resumed := 0
	t.mu.Lock()
	for _, v := range vehicles {
		if v.RouteStatus != store.RouteInTransit {
			continue
		}
		if _, running := t.loops[v.ID]; running {
			continue
		}
		stop := make(chan struct{})
		t.loops[v.ID] = stop
		go t.positionLoop(v.ID, v.Plate, stop)
		resumed++
	}
	t.mu.Unlock()
	if resumed > 0 {
		log.Printf("[tracker] resumed %d routes in transit", resumed)
	}
	return nil
}

// StopRoute puts a vehicle back to idle and stops its position loop.
func (t *Tracker) StopRoute(vehicleID int64) error {
	v, err := t.db.GetVehicle(vehicleID)
	if err != nil {
		return fmt.Errorf("tracker: vehicle %d: %w", vehicleID, err)
	}
	if err := t.db.SetVehicleRoute(vehicleID, store.RouteIdle, "", ""); err != nil {
		return fmt.Errorf("tracker: stop route: %w", err)
	}
	if t.live != nil {
		t.live.RouteChanged(vehicleID)
	}

	t.mu.Lock()
	if stop, running := t.loops[vehicleID]; running {
		close(stop)
		delete(t.loops, vehicleID)
	}
	t.mu.Unlock()

	if t.emitter != nil {
		t.emitter.EmitRouteFinished(vehicleID, v.Plate)
	}
	log.Printf("[tracker] route finished: %s", v.Plate)
	return nil
}

// Shutdown stops every running position loop.
func (t *Tracker) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, stop := range t.loops {
		close(stop)
		delete(t.loops, id)
	}
}

// positionLoop polls the locator until the route stops. A tick with no
// fix is skipped, the previous position stands.
func (t *Tracker) positionLoop(vehicleID int64, plate string, stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			pos, err := t.provider.ReadPosition(plate)
			if err != nil {
				if err != locator.ErrNoFix {
					log.Printf("[tracker] position %s: %v", plate, err)
				}
				continue
			}
			if err := t.live.RecordPosition(vehicleID, pos.Lat, pos.Lon); err != nil {
				log.Printf("[tracker] record position %s: %v", plate, err)
			}
		}
	}
}

// MarkDelivered closes a stop with its proof bundle.
func (t *Tracker) MarkDelivered(jobID int64, proof lifecycle.ProofBundle) (*store.Job, error) {
	j, err := t.db.GetJob(jobID)
	if err != nil {
		return nil, fmt.Errorf("tracker: job %d: %w", jobID, err)
	}
	if err := lifecycle.CanDeliver(j, proof); err != nil {
		return nil, err
	}
	if err := t.db.SetJobDelivered(jobID, proof.SignatureRef, proof.PhotoRefs, proof.PaymentProofRef, proof.Lat, proof.Lon); err != nil {
		return nil, fmt.Errorf("tracker: mark delivered: %w", err)
	}
	if err := t.db.AppendJobHistory(jobID, store.StatusDelivered, "entrega concluída"); err != nil {
		log.Printf("[tracker] history for %s: %v", j.PublicRef, err)
	}
	if t.emitter != nil {
		t.emitter.EmitJobDelivered(jobID, j.PublicRef)
	}
	return t.db.GetJob(jobID)
}

// MarkFailedAttempt records a visit that found nobody home (or any
// other failure the driver can photograph). The job goes back to triage
// with its attempt counter bumped, the photo stays on the job.
func (t *Tracker) MarkFailedAttempt(jobID int64, photoRef, reason string) (*store.Job, error) {
	j, err := t.db.GetJob(jobID)
	if err != nil {
		return nil, fmt.Errorf("tracker: job %d: %w", jobID, err)
	}
	if err := lifecycle.CanFailAttempt(j, photoRef, reason); err != nil {
		return nil, err
	}
	if err := t.db.RecordFailedAttempt(jobID, photoRef); err != nil {
		return nil, fmt.Errorf("tracker: failed attempt: %w", err)
	}
	if err := t.db.AppendJobHistory(jobID, store.StatusPending, "tentativa falhou: "+reason); err != nil {
		log.Printf("[tracker] history for %s: %v", j.PublicRef, err)
	}
	fresh, err := t.db.GetJob(jobID)
	if err != nil {
		return nil, err
	}
	if t.emitter != nil {
		t.emitter.EmitJobFailedAttempt(jobID, j.PublicRef, reason, fresh.AttemptCount)
	}
	return fresh, nil
}
