package board

import (
	"testing"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
)

func slotJob(id int64, date string, vehicleID int64, shift string, order *int) *store.Job {
	j := &store.Job{
		ID:            id,
		Status:        store.StatusScheduled,
		ScheduledDate: date,
		Shift:         shift,
		RouteOrder:    order,
	}
	if vehicleID != 0 {
		j.VehicleID = &vehicleID
	}
	if date == "" || vehicleID == 0 {
		j.Status = store.StatusPending
	}
	return j
}

func intp(n int) *int { return &n }

func TestForSlotOrdering(t *testing.T) {
	jobs := []*store.Job{
		slotJob(1, "2025-06-10", 7, store.ShiftMorning, nil),
		slotJob(2, "2025-06-10", 7, store.ShiftMorning, intp(2)),
		slotJob(3, "2025-06-10", 7, store.ShiftMorning, intp(1)),
		slotJob(4, "2025-06-10", 7, store.ShiftAfternoon, intp(1)), // wrong shift
		slotJob(5, "2025-06-10", 3, store.ShiftMorning, intp(1)),  // wrong vehicle
		slotJob(6, "2025-06-11", 7, store.ShiftMorning, intp(1)),  // wrong date
	}

	got := ForSlot(jobs, "2025-06-10", 7, store.ShiftMorning)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	// Ordered stops first by route order, unordered job last.
	wantIDs := []int64{3, 2, 1}
	for i, j := range got {
		if j.ID != wantIDs[i] {
			t.Errorf("pos %d: id = %d, want %d", i, j.ID, wantIDs[i])
		}
	}
}

func TestForSlotUnorderedKeepInputOrder(t *testing.T) {
	jobs := []*store.Job{
		slotJob(10, "2025-06-10", 7, store.ShiftMorning, nil),
		slotJob(11, "2025-06-10", 7, store.ShiftMorning, nil),
		slotJob(12, "2025-06-10", 7, store.ShiftMorning, nil),
	}
	got := ForSlot(jobs, "2025-06-10", 7, store.ShiftMorning)
	for i, want := range []int64{10, 11, 12} {
		if got[i].ID != want {
			t.Errorf("pos %d: id = %d, want %d", i, got[i].ID, want)
		}
	}
}

func TestTriageAndHeld(t *testing.T) {
	held := &store.Job{ID: 2, Status: store.StatusAwaitingRelease, HoldReason: "aguardando estoque"}
	delivered := &store.Job{ID: 3, Status: store.StatusDelivered}
	jobs := []*store.Job{
		slotJob(1, "", 0, "", nil), // triage
		held,
		delivered,
		slotJob(4, "2025-06-10", 7, store.ShiftMorning, nil), // placed
	}

	triage := Triage(jobs)
	if len(triage) != 1 || triage[0].ID != 1 {
		t.Errorf("triage = %v", triage)
	}
	heldSet := Held(jobs)
	if len(heldSet) != 1 || heldSet[0].ID != 2 {
		t.Errorf("held = %v", heldSet)
	}
}

func TestTriageExcludesSlottedJob(t *testing.T) {
	jobs := []*store.Job{slotJob(1, "2025-06-10", 7, store.ShiftMorning, nil)}
	if got := Triage(jobs); len(got) != 0 {
		t.Errorf("slotted job in triage: %v", got)
	}
	if got := ForSlot(jobs, "2025-06-10", 7, store.ShiftMorning); len(got) != 1 {
		t.Errorf("slotted job missing from slot: %v", got)
	}
}

func TestOccupancy(t *testing.T) {
	jobs := []*store.Job{
		slotJob(1, "2025-06-10", 7, store.ShiftMorning, nil),
		slotJob(2, "2025-06-10", 7, store.ShiftMorning, nil),
		slotJob(3, "2025-06-10", 7, store.ShiftAfternoon, nil),
		slotJob(4, "2025-06-09", 3, store.ShiftCommercial, nil),
		slotJob(5, "", 0, "", nil), // triage, not counted
	}
	got := Occupancy(jobs)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Date != "2025-06-09" || got[0].Count != 1 {
		t.Errorf("first cell = %+v", got[0])
	}
	if got[1].Shift != store.ShiftMorning || got[1].Count != 2 {
		t.Errorf("second cell = %+v", got[1])
	}
}
