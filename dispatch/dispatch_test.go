package dispatch

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/config"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/lifecycle"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/notify"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type recordEmitter struct {
	scheduled   int
	triaged     int
	held        int
	rescheduled int
}

func (r *recordEmitter) EmitJobScheduled(int64, string, string, int64, string) { r.scheduled++ }
func (r *recordEmitter) EmitJobTriaged(int64, string)                          { r.triaged++ }
func (r *recordEmitter) EmitJobHeld(int64, string, string)                     { r.held++ }
func (r *recordEmitter) EmitJobsRescheduled(string, int, int)                  { r.rescheduled++ }

type singleCounter struct {
	sent int
	fail bool
}

func (s *singleCounter) SendBatch([]notify.Message) error { return nil }
func (s *singleCounter) SendSingle(notify.Message) error {
	if s.fail {
		return errors.New("gateway offline")
	}
	s.sent++
	return nil
}

func seedJob(t *testing.T, db *store.DB, name string) *store.Job {
	t.Helper()
	j := &store.Job{
		Kind:         store.KindDelivery,
		CustomerName: name,
		Address:      "Av. Itararé 55, Pedro II - PI",
	}
	if err := db.CreateJob(j); err != nil {
		t.Fatalf("create job: %v", err)
	}
	return j
}

func seedVehicle(t *testing.T, db *store.DB, plate string) *store.Vehicle {
	t.Helper()
	v := &store.Vehicle{Plate: plate, DriverName: "Carlos", Enabled: true}
	if err := db.CreateVehicle(v); err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	return v
}

func TestMoveToSlot(t *testing.T) {
	db := testDB(t)
	em := &recordEmitter{}
	eng := NewEngine(db, nil, em)
	if err := eng.Refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	j := seedJob(t, db, "Dona Maria")
	v := seedVehicle(t, db, "PIA-2C41")

	moved, err := eng.Move(j.ID, Slot("2025-06-10", v.ID, store.ShiftMorning))
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.Status != store.StatusScheduled || moved.ScheduledDate != "2025-06-10" {
		t.Fatalf("bad placement: %s %s", moved.Status, moved.ScheduledDate)
	}
	if em.scheduled != 1 {
		t.Fatalf("scheduled events = %d", em.scheduled)
	}

	got, err := db.GetJob(j.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.VehicleID == nil || *got.VehicleID != v.ID || got.Shift != store.ShiftMorning {
		t.Fatalf("slot not persisted: %+v", got)
	}
}

func TestMoveSameSlotTwice(t *testing.T) {
	db := testDB(t)
	em := &recordEmitter{}
	eng := NewEngine(db, nil, em)
	j := seedJob(t, db, "Seu Antônio")
	v := seedVehicle(t, db, "PIB-7K12")

	dest := Slot("2025-06-10", v.ID, store.ShiftAfternoon)
	if _, err := eng.Move(j.ID, dest); err != nil {
		t.Fatalf("first move: %v", err)
	}
	again, err := eng.Move(j.ID, dest)
	if err != nil {
		t.Fatalf("second move: %v", err)
	}
	if again.Status != store.StatusScheduled || again.ScheduledDate != "2025-06-10" {
		t.Fatalf("second move changed state: %+v", again)
	}
	if em.scheduled != 1 {
		t.Fatalf("re-issued move emitted again, scheduled events = %d", em.scheduled)
	}
}

func TestMoveClearsRouteOrder(t *testing.T) {
	db := testDB(t)
	eng := NewEngine(db, nil, nil)
	j := seedJob(t, db, "Francisca")
	v1 := seedVehicle(t, db, "PIC-1100")
	v2 := seedVehicle(t, db, "PIC-2200")

	if _, err := eng.Move(j.ID, Slot("2025-06-11", v1.ID, store.ShiftMorning)); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := db.SetJobRouteOrder(j.ID, 3); err != nil {
		t.Fatalf("route order: %v", err)
	}
	if err := eng.Refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	moved, err := eng.Move(j.ID, Slot("2025-06-11", v2.ID, store.ShiftMorning))
	if err != nil {
		t.Fatalf("re-slot: %v", err)
	}
	if moved.RouteOrder != nil {
		t.Fatal("route order should reset when the slot changes")
	}
	got, _ := db.GetJob(j.ID)
	if got.RouteOrder != nil {
		t.Fatal("route order survived in the database")
	}
}

func TestHoldAndRelease(t *testing.T) {
	db := testDB(t)
	em := &recordEmitter{}
	eng := NewEngine(db, nil, em)
	j := seedJob(t, db, "Raimundo")
	v := seedVehicle(t, db, "PID-9941")

	if _, err := eng.Move(j.ID, Slot("2025-06-12", v.ID, store.ShiftCommercial)); err != nil {
		t.Fatalf("slot: %v", err)
	}
	held, err := eng.Move(j.ID, Hold("aguardando pagamento do frete"))
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	if held.Status != store.StatusAwaitingRelease || held.ScheduledDate != "" || held.VehicleID != nil {
		t.Fatalf("hold kept placement: %+v", held)
	}
	if held.HoldReason == "" {
		t.Fatal("hold reason missing")
	}

	if _, err := eng.Move(j.ID, Hold("")); !errorsAsValidation(err) {
		t.Fatalf("empty reason accepted: %v", err)
	}

	released, err := eng.Move(j.ID, Triage())
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if released.Status != store.StatusPending || released.HoldReason != "" {
		t.Fatalf("release left residue: %+v", released)
	}
	if em.held != 1 || em.triaged != 1 {
		t.Fatalf("events: held=%d triaged=%d", em.held, em.triaged)
	}
}

func errorsAsValidation(err error) bool {
	var ve *lifecycle.ValidationError
	return errors.As(err, &ve)
}

func TestMoveTriageIdempotent(t *testing.T) {
	db := testDB(t)
	eng := NewEngine(db, nil, nil)
	j := seedJob(t, db, "Zilda")

	got, err := eng.Move(j.ID, Triage())
	if err != nil {
		t.Fatalf("triage on triage job: %v", err)
	}
	if got.Status != store.StatusPending {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestMoveRejectsDeliveredJob(t *testing.T) {
	db := testDB(t)
	eng := NewEngine(db, nil, nil)
	j := seedJob(t, db, "Edite")
	v := seedVehicle(t, db, "PIE-3321")

	if _, err := eng.Move(j.ID, Slot("2025-06-13", v.ID, store.ShiftMorning)); err != nil {
		t.Fatalf("slot: %v", err)
	}
	if err := db.SetJobDelivered(j.ID, "sig-1", []string{"foto-1"}, "", -4.42, -41.45); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if err := eng.Refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	_, err := eng.Move(j.ID, Slot("2025-06-14", v.ID, store.ShiftMorning))
	var ite *lifecycle.InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	db := testDB(t)
	eng := NewEngine(db, nil, nil)
	j := seedJob(t, db, "Osmar")

	got, err := eng.Cancel(j.ID, "pedido devolvido na loja")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != store.StatusCancelled {
		t.Fatalf("status = %s", got.Status)
	}
	if _, err := eng.Cancel(j.ID, "de novo"); err == nil {
		t.Fatal("cancelling a cancelled job should fail")
	}
}

func TestBulkReschedule(t *testing.T) {
	db := testDB(t)
	em := &recordEmitter{}
	tr := &singleCounter{}
	eng := NewEngine(db, notify.NewNotifier(db, tr, nil), em)
	v := seedVehicle(t, db, "PIF-8812")

	a := seedJob(t, db, "Ana")
	b := seedJob(t, db, "Bento")
	c := seedJob(t, db, "Cícero")
	for _, j := range []*store.Job{a, b} {
		if _, err := eng.Move(j.ID, Slot("2025-06-20", v.ID, store.ShiftMorning)); err != nil {
			t.Fatalf("slot: %v", err)
		}
	}
	if _, err := eng.Move(c.ID, Slot("2025-06-21", v.ID, store.ShiftMorning)); err != nil {
		t.Fatalf("slot: %v", err)
	}

	moved, notified, err := eng.BulkReschedule("2025-06-20")
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if moved != 2 || notified != 2 {
		t.Fatalf("moved=%d notified=%d", moved, notified)
	}
	if em.rescheduled != 1 {
		t.Fatalf("rescheduled events = %d", em.rescheduled)
	}

	for _, id := range []int64{a.ID, b.ID} {
		got, _ := db.GetJob(id)
		if got.Status != store.StatusPending || got.ScheduledDate != "" || got.VehicleID != nil {
			t.Fatalf("job %d still slotted: %+v", id, got)
		}
	}
	other, _ := db.GetJob(c.ID)
	if other.Status != store.StatusScheduled || other.ScheduledDate != "2025-06-21" {
		t.Fatalf("unrelated day touched: %+v", other)
	}
}

func TestBulkRescheduleNoticeFailureStillMoves(t *testing.T) {
	db := testDB(t)
	tr := &singleCounter{fail: true}
	eng := NewEngine(db, notify.NewNotifier(db, tr, nil), nil)
	v := seedVehicle(t, db, "PIG-4501")
	j := seedJob(t, db, "Dalva")
	if _, err := eng.Move(j.ID, Slot("2025-06-22", v.ID, store.ShiftAfternoon)); err != nil {
		t.Fatalf("slot: %v", err)
	}

	moved, notified, err := eng.BulkReschedule("2025-06-22")
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if moved != 1 || notified != 0 {
		t.Fatalf("moved=%d notified=%d", moved, notified)
	}
	got, _ := db.GetJob(j.ID)
	if got.Status != store.StatusPending {
		t.Fatalf("job not freed: %s", got.Status)
	}
}
