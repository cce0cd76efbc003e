package messaging

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDecodeEnvelope_JobScheduled(t *testing.T) {
	data := []byte(`{
		"msg_type": "job.scheduled",
		"msg_id": "abc-123",
		"hub_id": "hub",
		"timestamp": "2025-06-09T12:00:00Z",
		"payload": {
			"job_ref": "e0a1",
			"date": "2025-06-10",
			"vehicle_id": 3,
			"shift": "morning"
		}
	}`)

	env, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.MsgType != MsgJobScheduled {
		t.Errorf("msg_type = %q, want %q", env.MsgType, MsgJobScheduled)
	}
	if env.HubID != "hub" {
		t.Errorf("hub_id = %q, want %q", env.HubID, "hub")
	}

	p, ok := env.Payload.(JobScheduled)
	if !ok {
		t.Fatalf("payload type = %T, want JobScheduled", env.Payload)
	}
	if p.JobRef != "e0a1" {
		t.Errorf("job_ref = %q, want %q", p.JobRef, "e0a1")
	}
	if p.Date != "2025-06-10" || p.VehicleID != 3 || p.Shift != "morning" {
		t.Errorf("payload = %+v", p)
	}
}

func TestDecodeEnvelope_JobFailedAttempt(t *testing.T) {
	data := []byte(`{
		"msg_type": "job.failed_attempt",
		"msg_id": "msg-2",
		"hub_id": "hub",
		"timestamp": "2025-06-09T12:00:00Z",
		"payload": {"job_ref": "e0a2", "reason": "cliente ausente", "attempts": 2}
	}`)

	env, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	p, ok := env.Payload.(JobFailedAttempt)
	if !ok {
		t.Fatalf("payload type = %T, want JobFailedAttempt", env.Payload)
	}
	if p.Reason != "cliente ausente" {
		t.Errorf("reason = %q, want %q", p.Reason, "cliente ausente")
	}
	if p.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", p.Attempts)
	}
}

func TestDecodeEnvelope_UnknownType(t *testing.T) {
	data := []byte(`{
		"msg_type": "bogus",
		"msg_id": "msg-x",
		"hub_id": "hub",
		"timestamp": "2025-06-09T12:00:00Z",
		"payload": {}
	}`)

	if _, err := DecodeEnvelope(data); err == nil {
		t.Fatal("expected error for unknown msg_type")
	}
}

func TestDecodeEnvelope_InvalidJSON(t *testing.T) {
	if _, err := DecodeEnvelope([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestNewEnvelope(t *testing.T) {
	env := NewEnvelope(MsgRouteStarted, "hub", RouteStarted{VehicleID: 7, Plate: "PIA-2C41", Shift: "morning"})

	if env.MsgType != MsgRouteStarted {
		t.Errorf("msg_type = %q, want %q", env.MsgType, MsgRouteStarted)
	}
	if env.MsgID == "" {
		t.Error("msg_id should not be empty")
	}
	if env.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}
	p, ok := env.Payload.(RouteStarted)
	if !ok {
		t.Fatalf("payload type = %T, want RouteStarted", env.Payload)
	}
	if p.Plate != "PIA-2C41" {
		t.Errorf("plate = %q, want %q", p.Plate, "PIA-2C41")
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	original := NewEnvelope(MsgJobDelivered, "hub", JobDelivered{
		JobRef:      "e0a7",
		DeliveredAt: time.Date(2025, 6, 10, 15, 22, 0, 0, time.UTC),
	})

	data, err := original.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.MsgID != original.MsgID {
		t.Errorf("msg_id = %q, want %q", decoded.MsgID, original.MsgID)
	}
	p, ok := decoded.Payload.(JobDelivered)
	if !ok {
		t.Fatalf("payload type = %T, want JobDelivered", decoded.Payload)
	}
	if p.JobRef != "e0a7" {
		t.Errorf("job_ref = %q, want %q", p.JobRef, "e0a7")
	}
	if !p.DeliveredAt.Equal(original.Payload.(JobDelivered).DeliveredAt) {
		t.Errorf("delivered_at = %v", p.DeliveredAt)
	}
}

func TestEnvelopeEncode(t *testing.T) {
	env := NewEnvelope(MsgJobsRescheduled, "hub", JobsRescheduled{OldDate: "2025-06-20", Moved: 5, Notified: 4})

	data, err := env.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal encoded: %v", err)
	}
	if decoded["msg_type"] != MsgJobsRescheduled {
		t.Errorf("msg_type = %v", decoded["msg_type"])
	}
	payload, ok := decoded["payload"].(map[string]any)
	if !ok {
		t.Fatalf("payload type = %T, want map", decoded["payload"])
	}
	if payload["old_date"] != "2025-06-20" {
		t.Errorf("old_date = %v", payload["old_date"])
	}
}
