package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/config"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	db, err := Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: dbPath},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

// --- Vehicle tests ---

func TestVehicleCRUD(t *testing.T) {
	db := testDB(t)

	v := &Vehicle{Name: "Fiorino 1", Plate: "PJX-2B41", Enabled: true}
	if err := db.CreateVehicle(v); err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.ID == 0 {
		t.Fatal("ID should be assigned")
	}

	got, err := db.GetVehicle(v.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Plate != "PJX-2B41" {
		t.Errorf("Plate = %q, want %q", got.Plate, "PJX-2B41")
	}
	if got.RouteStatus != RouteIdle {
		t.Errorf("RouteStatus = %q, want %q", got.RouteStatus, RouteIdle)
	}

	if err := db.UpdateVehiclePosition(v.ID, -4.4241, -41.4586); err != nil {
		t.Fatalf("update position: %v", err)
	}
	got, _ = db.GetVehicle(v.ID)
	if got.Latitude != -4.4241 || got.Longitude != -41.4586 {
		t.Errorf("position = (%v, %v)", got.Latitude, got.Longitude)
	}
	if got.LastUpdate == nil {
		t.Error("LastUpdate should be set after a position write")
	}

	if err := db.SetVehicleRoute(v.ID, RouteInTransit, "Carlos", ShiftMorning); err != nil {
		t.Fatalf("set route: %v", err)
	}
	got, _ = db.GetVehicle(v.ID)
	if got.RouteStatus != RouteInTransit || got.DriverName != "Carlos" || got.ActiveShift != ShiftMorning {
		t.Errorf("route = %q driver = %q shift = %q", got.RouteStatus, got.DriverName, got.ActiveShift)
	}
}

// --- Job tests ---

func TestJobCreateDefaults(t *testing.T) {
	db := testDB(t)

	j := &Job{CustomerName: "Dona Raimunda", CustomerPhone: "+5586999110001", OrderNumber: "PED-1042"}
	if err := db.CreateJob(j); err != nil {
		t.Fatalf("create: %v", err)
	}
	if j.ID == 0 {
		t.Fatal("ID should be assigned")
	}
	if j.PublicRef == "" {
		t.Error("PublicRef should be generated")
	}

	got, err := db.GetJob(j.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Kind != KindDelivery {
		t.Errorf("Kind = %q, want %q", got.Kind, KindDelivery)
	}
	if got.Status != StatusPending {
		t.Errorf("Status = %q, want %q", got.Status, StatusPending)
	}
	if got.ScheduledDate != "" || got.VehicleID != nil {
		t.Error("new job should be in triage")
	}
}

func TestJobSlotUpdate(t *testing.T) {
	db := testDB(t)

	v := &Vehicle{Plate: "PJX-0001", Enabled: true}
	if err := db.CreateVehicle(v); err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	j := &Job{CustomerName: "Seu Antônio"}
	if err := db.CreateJob(j); err != nil {
		t.Fatalf("create job: %v", err)
	}

	if err := db.UpdateJobSlot(j.ID, StatusScheduled, "2025-06-10", &v.ID, ShiftMorning, ""); err != nil {
		t.Fatalf("update slot: %v", err)
	}
	got, _ := db.GetJob(j.ID)
	if got.Status != StatusScheduled || got.ScheduledDate != "2025-06-10" || got.Shift != ShiftMorning {
		t.Errorf("slot = %q %q %q", got.Status, got.ScheduledDate, got.Shift)
	}
	if got.VehicleID == nil || *got.VehicleID != v.ID {
		t.Error("vehicle should be assigned")
	}
	if got.RouteOrder != nil {
		t.Error("route order should be cleared on slot change")
	}

	// Back to triage clears everything.
	if err := db.UpdateJobSlot(j.ID, StatusPending, "", nil, "", ""); err != nil {
		t.Fatalf("update slot triage: %v", err)
	}
	got, _ = db.GetJob(j.ID)
	if got.ScheduledDate != "" || got.VehicleID != nil || got.Shift != "" {
		t.Error("triage should clear date/vehicle/shift")
	}
}

func TestJobRouteOrder(t *testing.T) {
	db := testDB(t)

	j := &Job{CustomerName: "Cliente"}
	if err := db.CreateJob(j); err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := db.SetJobRouteOrder(j.ID, 3); err != nil {
		t.Fatalf("set route order: %v", err)
	}
	got, _ := db.GetJob(j.ID)
	if got.RouteOrder == nil || *got.RouteOrder != 3 {
		t.Errorf("RouteOrder = %v, want 3", got.RouteOrder)
	}
}

func TestJobNotifiedPair(t *testing.T) {
	db := testDB(t)

	j := &Job{CustomerName: "Cliente"}
	if err := db.CreateJob(j); err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := db.MarkJobNotified(j.ID, "2025-06-10", ShiftMorning); err != nil {
		t.Fatalf("mark notified: %v", err)
	}
	got, _ := db.GetJob(j.ID)
	if got.NotifiedDate != "2025-06-10" || got.NotifiedShift != ShiftMorning {
		t.Errorf("notified = %q %q", got.NotifiedDate, got.NotifiedShift)
	}
}

func TestRecordFailedAttempt(t *testing.T) {
	db := testDB(t)

	v := &Vehicle{Plate: "PJX-0002", Enabled: true}
	db.CreateVehicle(v)
	j := &Job{CustomerName: "Cliente"}
	db.CreateJob(j)
	db.UpdateJobSlot(j.ID, StatusScheduled, "2025-06-10", &v.ID, ShiftMorning, "")

	if err := db.RecordFailedAttempt(j.ID, "photos/loc-1.jpg"); err != nil {
		t.Fatalf("record attempt: %v", err)
	}
	got, _ := db.GetJob(j.ID)
	if got.Status != StatusPending {
		t.Errorf("Status = %q, want pending", got.Status)
	}
	if got.ScheduledDate != "" || got.VehicleID != nil {
		t.Error("failed attempt should return job to triage")
	}
	if got.AttemptCount != 1 {
		t.Errorf("AttemptCount = %d, want 1", got.AttemptCount)
	}
	if len(got.PhotoRefs) != 1 || got.PhotoRefs[0] != "photos/loc-1.jpg" {
		t.Errorf("PhotoRefs = %v", got.PhotoRefs)
	}

	// Counter only goes up.
	db.UpdateJobSlot(j.ID, StatusScheduled, "2025-06-11", &v.ID, ShiftAfternoon, "")
	db.RecordFailedAttempt(j.ID, "photos/loc-2.jpg")
	got, _ = db.GetJob(j.ID)
	if got.AttemptCount != 2 {
		t.Errorf("AttemptCount = %d, want 2", got.AttemptCount)
	}
}

func TestSetJobDelivered(t *testing.T) {
	db := testDB(t)

	j := &Job{CustomerName: "Cliente", PaymentDue: 150}
	db.CreateJob(j)

	err := db.SetJobDelivered(j.ID, "sig/abc.png", []string{"photos/entrega.jpg"}, "proofs/pix-42.png", -4.42, -41.45)
	if err != nil {
		t.Fatalf("set delivered: %v", err)
	}
	got, _ := db.GetJob(j.ID)
	if got.Status != StatusDelivered {
		t.Errorf("Status = %q, want delivered", got.Status)
	}
	if got.SignatureRef != "sig/abc.png" || got.PaymentProofRef != "proofs/pix-42.png" {
		t.Errorf("proof = %q %q", got.SignatureRef, got.PaymentProofRef)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}
}

func TestJobHistory(t *testing.T) {
	db := testDB(t)

	j := &Job{CustomerName: "Cliente"}
	db.CreateJob(j)
	db.AppendJobHistory(j.ID, StatusPending, "cliente ausente")
	db.AppendJobHistory(j.ID, StatusScheduled, "reagendado")

	entries, err := db.ListJobHistory(j.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Status != StatusScheduled {
		t.Errorf("newest first, got %q", entries[0].Status)
	}
}

// --- Outbox tests ---

func TestOutboxFlow(t *testing.T) {
	db := testDB(t)

	if err := db.EnqueueOutbox("entregahub.events", []byte(`{"a":1}`), "job.scheduled", "ref-1"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	msgs, err := db.ListPendingOutbox(10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("pending = %d, want 1", len(msgs))
	}
	if err := db.AckOutbox(msgs[0].ID); err != nil {
		t.Fatalf("ack: %v", err)
	}
	msgs, _ = db.ListPendingOutbox(10)
	if len(msgs) != 0 {
		t.Errorf("pending after ack = %d, want 0", len(msgs))
	}
}

func TestAuditTrail(t *testing.T) {
	db := testDB(t)

	j := &Job{Kind: KindDelivery, CustomerName: "Dona Maria", Address: "Av. Itararé 55"}
	if err := db.CreateJob(j); err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := db.AppendAudit("job", j.ID, j.PublicRef, "created", "", j.CustomerName, "admin"); err != nil {
		t.Fatalf("append audit: %v", err)
	}
	if err := db.AppendAudit("job", j.ID, j.PublicRef, "scheduled", "", "2025-06-10 morning", "system"); err != nil {
		t.Fatalf("append audit: %v", err)
	}
	if err := db.AppendAudit("vehicle", 99, "PIX-0001", "created", "", "", "admin"); err != nil {
		t.Fatalf("append audit: %v", err)
	}

	entries, err := db.ListAuditLog(10)
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	// Newest first
	if entries[0].EntityType != "vehicle" || entries[0].EntityRef != "PIX-0001" {
		t.Fatalf("head entry = %+v", entries[0])
	}

	jobTrail, err := db.ListEntityAudit("job", j.ID)
	if err != nil {
		t.Fatalf("list entity audit: %v", err)
	}
	if len(jobTrail) != 2 {
		t.Fatalf("job trail = %d, want 2", len(jobTrail))
	}
	for _, e := range jobTrail {
		if e.EntityRef != j.PublicRef {
			t.Fatalf("entry ref = %q, want %q", e.EntityRef, j.PublicRef)
		}
		if e.CreatedAt.IsZero() {
			t.Fatal("created_at not set")
		}
	}
}
