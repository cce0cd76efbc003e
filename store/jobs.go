package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Job kinds.
const (
	KindDelivery   = "delivery"
	KindAssistance = "assistance"
)

// Job statuses.
const (
	StatusPending         = "pending"
	StatusScheduled       = "scheduled"
	StatusAwaitingRelease = "awaiting_release"
	StatusDelivered       = "delivered"
	StatusCancelled       = "cancelled"
)

// Shifts.
const (
	ShiftMorning    = "morning"
	ShiftAfternoon  = "afternoon"
	ShiftCommercial = "commercial"
)

type Job struct {
	ID              int64      `json:"id"`
	PublicRef       string     `json:"public_ref"`
	Kind            string     `json:"kind"`
	CustomerName    string     `json:"customer_name"`
	CustomerPhone   string     `json:"customer_phone"`
	OrderNumber     string     `json:"order_number"`
	Address         string     `json:"address"`
	ScheduledDate   string     `json:"scheduled_date"` // YYYY-MM-DD, empty = triage
	Shift           string     `json:"shift"`
	VehicleID       *int64     `json:"vehicle_id,omitempty"`
	RouteOrder      *int       `json:"route_order,omitempty"`
	Status          string     `json:"status"`
	HoldReason      string     `json:"hold_reason"`
	NotifiedDate    string     `json:"notified_date"`
	NotifiedShift   string     `json:"notified_shift"`
	AttemptCount    int        `json:"attempt_count"`
	SignatureRef    string     `json:"signature_ref"`
	PhotoRefs       []string   `json:"photo_refs"`
	PaymentProofRef string     `json:"payment_proof_ref"`
	DeliveredLat    float64    `json:"delivered_lat"`
	DeliveredLon    float64    `json:"delivered_lon"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	PaymentDue      float64    `json:"payment_due"`
	PaymentMethod   string     `json:"payment_method"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type JobHistory struct {
	ID        int64     `json:"id"`
	JobID     int64     `json:"job_id"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

const jobSelectCols = `id, public_ref, kind, customer_name, customer_phone, order_number, address, scheduled_date, shift, vehicle_id, route_order, status, hold_reason, notified_date, notified_shift, attempt_count, signature_ref, photo_refs, payment_proof_ref, delivered_lat, delivered_lon, completed_at, payment_due, payment_method, created_at, updated_at`

func scanJob(row interface{ Scan(...any) error }) (*Job, error) {
	var j Job
	var vehicleID sql.NullInt64
	var routeOrder sql.NullInt64
	var photoRefs string
	var createdAt, updatedAt, completedAt any

	err := row.Scan(&j.ID, &j.PublicRef, &j.Kind, &j.CustomerName, &j.CustomerPhone,
		&j.OrderNumber, &j.Address, &j.ScheduledDate, &j.Shift, &vehicleID, &routeOrder,
		&j.Status, &j.HoldReason, &j.NotifiedDate, &j.NotifiedShift, &j.AttemptCount,
		&j.SignatureRef, &photoRefs, &j.PaymentProofRef, &j.DeliveredLat, &j.DeliveredLon,
		&completedAt, &j.PaymentDue, &j.PaymentMethod, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if vehicleID.Valid {
		j.VehicleID = &vehicleID.Int64
	}
	if routeOrder.Valid {
		o := int(routeOrder.Int64)
		j.RouteOrder = &o
	}
	if photoRefs != "" {
		json.Unmarshal([]byte(photoRefs), &j.PhotoRefs)
	}
	j.CompletedAt = parseTimePtr(completedAt)
	j.CreatedAt = parseTime(createdAt)
	j.UpdatedAt = parseTime(updatedAt)
	return &j, nil
}

func scanJobs(rows *sql.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func marshalPhotoRefs(refs []string) string {
	if refs == nil {
		refs = []string{}
	}
	data, _ := json.Marshal(refs)
	return string(data)
}

func (db *DB) CreateJob(j *Job) error {
	if j.PublicRef == "" {
		j.PublicRef = uuid.New().String()
	}
	if j.Kind == "" {
		j.Kind = KindDelivery
	}
	if j.Status == "" {
		j.Status = StatusPending
	}
	var vehicleID any
	if j.VehicleID != nil {
		vehicleID = *j.VehicleID
	}
	var routeOrder any
	if j.RouteOrder != nil {
		routeOrder = *j.RouteOrder
	}
	result, err := db.Exec(db.Q(`INSERT INTO jobs (public_ref, kind, customer_name, customer_phone, order_number, address, scheduled_date, shift, vehicle_id, route_order, status, hold_reason, payment_due, payment_method, photo_refs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		j.PublicRef, j.Kind, j.CustomerName, j.CustomerPhone, j.OrderNumber, j.Address,
		j.ScheduledDate, j.Shift, vehicleID, routeOrder, j.Status, j.HoldReason,
		j.PaymentDue, j.PaymentMethod, marshalPhotoRefs(j.PhotoRefs))
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create job last id: %w", err)
	}
	j.ID = id
	return nil
}

func (db *DB) GetJob(id int64) (*Job, error) {
	row := db.QueryRow(db.Q(`SELECT `+jobSelectCols+` FROM jobs WHERE id=?`), id)
	return scanJob(row)
}

func (db *DB) GetJobByRef(ref string) (*Job, error) {
	row := db.QueryRow(db.Q(`SELECT `+jobSelectCols+` FROM jobs WHERE public_ref=?`), ref)
	return scanJob(row)
}

// ListJobs returns jobs of a kind; empty kind returns all.
func (db *DB) ListJobs(kind string) ([]*Job, error) {
	var rows *sql.Rows
	var err error
	if kind == "" {
		rows, err = db.Query(`SELECT ` + jobSelectCols + ` FROM jobs ORDER BY id`)
	} else {
		rows, err = db.Query(db.Q(`SELECT `+jobSelectCols+` FROM jobs WHERE kind=? ORDER BY id`), kind)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// ListScheduledJobsByDate returns the scheduled jobs for one calendar date.
func (db *DB) ListScheduledJobsByDate(date string) ([]*Job, error) {
	rows, err := db.Query(db.Q(`SELECT `+jobSelectCols+` FROM jobs WHERE scheduled_date=? AND status=? ORDER BY id`), date, StatusScheduled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// UpdateJobSlot is the single write behind every placement change: assign to a
// slot, drop to triage, or hold. The route order is always cleared; a job that
// changes slot starts unordered.
func (db *DB) UpdateJobSlot(id int64, status, date string, vehicleID *int64, shift, holdReason string) error {
	var vid any
	if vehicleID != nil {
		vid = *vehicleID
	}
	_, err := db.Exec(db.Q(`UPDATE jobs SET status=?, scheduled_date=?, vehicle_id=?, shift=?, hold_reason=?, route_order=NULL, updated_at=datetime('now','localtime') WHERE id=?`),
		status, date, vid, shift, holdReason, id)
	return err
}

// UpdateJobStatus writes the status alone, leaving placement untouched.
func (db *DB) UpdateJobStatus(id int64, status string) error {
	_, err := db.Exec(db.Q(`UPDATE jobs SET status=?, updated_at=datetime('now','localtime') WHERE id=?`), status, id)
	return err
}

// SetJobRouteOrder persists one stop's position in its vehicle's sequence.
func (db *DB) SetJobRouteOrder(id int64, order int) error {
	_, err := db.Exec(db.Q(`UPDATE jobs SET route_order=?, updated_at=datetime('now','localtime') WHERE id=?`), order, id)
	return err
}

// MarkJobNotified records the (date, shift) pair a confirmed notification was sent for.
func (db *DB) MarkJobNotified(id int64, date, shift string) error {
	_, err := db.Exec(db.Q(`UPDATE jobs SET notified_date=?, notified_shift=?, updated_at=datetime('now','localtime') WHERE id=?`), date, shift, id)
	return err
}

// SetJobDelivered persists the proof bundle and moves the job to delivered.
func (db *DB) SetJobDelivered(id int64, signatureRef string, photoRefs []string, paymentProofRef string, lat, lon float64) error {
	_, err := db.Exec(db.Q(`UPDATE jobs SET status=?, signature_ref=?, photo_refs=?, payment_proof_ref=?, delivered_lat=?, delivered_lon=?, completed_at=datetime('now','localtime'), updated_at=datetime('now','localtime') WHERE id=?`),
		StatusDelivered, signatureRef, marshalPhotoRefs(photoRefs), paymentProofRef, lat, lon, id)
	return err
}

// RecordFailedAttempt returns a job to triage after a failed delivery attempt.
// The attempt counter only ever goes up.
func (db *DB) RecordFailedAttempt(id int64, photoRef string) error {
	j, err := db.GetJob(id)
	if err != nil {
		return err
	}
	photos := append(j.PhotoRefs, photoRef)
	_, err = db.Exec(db.Q(`UPDATE jobs SET status=?, scheduled_date='', vehicle_id=NULL, shift='', route_order=NULL, attempt_count=attempt_count+1, photo_refs=?, updated_at=datetime('now','localtime') WHERE id=?`),
		StatusPending, marshalPhotoRefs(photos), id)
	return err
}

func (db *DB) DeleteJob(id int64) error {
	if _, err := db.Exec(db.Q(`DELETE FROM job_history WHERE job_id=?`), id); err != nil {
		return err
	}
	_, err := db.Exec(db.Q(`DELETE FROM jobs WHERE id=?`), id)
	return err
}

func (db *DB) AppendJobHistory(jobID int64, status, detail string) error {
	_, err := db.Exec(db.Q(`INSERT INTO job_history (job_id, status, detail) VALUES (?, ?, ?)`), jobID, status, detail)
	return err
}

func (db *DB) ListJobHistory(jobID int64) ([]*JobHistory, error) {
	rows, err := db.Query(db.Q(`SELECT id, job_id, status, detail, created_at FROM job_history WHERE job_id=? ORDER BY id DESC`), jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []*JobHistory
	for rows.Next() {
		var h JobHistory
		var createdAt any
		if err := rows.Scan(&h.ID, &h.JobID, &h.Status, &h.Detail, &createdAt); err != nil {
			return nil, err
		}
		h.CreatedAt = parseTime(createdAt)
		entries = append(entries, &h)
	}
	return entries, rows.Err()
}
