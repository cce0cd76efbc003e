package store

import (
	"time"
)

// AuditEntry is one row of the back-office audit trail. EntityRef carries
// the human-facing key (job public_ref, vehicle plate) so entries stay
// readable after the entity itself is deleted.
type AuditEntry struct {
	ID         int64     `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	EntityRef  string    `json:"entity_ref"`
	Action     string    `json:"action"`
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	Actor      string    `json:"actor"`
	CreatedAt  time.Time `json:"created_at"`
}

const auditCols = `id, entity_type, entity_id, entity_ref, action, old_value, new_value, actor, created_at`

func scanAuditEntry(rows interface{ Scan(...any) error }) (*AuditEntry, error) {
	var e AuditEntry
	var createdAt any
	if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.EntityRef, &e.Action, &e.OldValue, &e.NewValue, &e.Actor, &createdAt); err != nil {
		return nil, err
	}
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}

func (db *DB) AppendAudit(entityType string, entityID int64, entityRef, action, oldValue, newValue, actor string) error {
	_, err := db.Exec(db.Q(`INSERT INTO audit_log (entity_type, entity_id, entity_ref, action, old_value, new_value, actor) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		entityType, entityID, entityRef, action, oldValue, newValue, actor)
	return err
}

func (db *DB) ListAuditLog(limit int) ([]*AuditEntry, error) {
	rows, err := db.Query(db.Q(`SELECT `+auditCols+` FROM audit_log ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []*AuditEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListEntityAudit returns the trail for one entity, newest first.
func (db *DB) ListEntityAudit(entityType string, entityID int64) ([]*AuditEntry, error) {
	rows, err := db.Query(db.Q(`SELECT `+auditCols+` FROM audit_log WHERE entity_type=? AND entity_id=? ORDER BY id DESC`), entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []*AuditEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
