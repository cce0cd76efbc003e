package store

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS vehicles (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    name          TEXT NOT NULL DEFAULT '',
    plate         TEXT NOT NULL UNIQUE,
    latitude      REAL NOT NULL DEFAULT 0,
    longitude     REAL NOT NULL DEFAULT 0,
    last_update   TEXT,
    route_status  TEXT NOT NULL DEFAULT 'idle',
    driver_name   TEXT NOT NULL DEFAULT '',
    active_shift  TEXT NOT NULL DEFAULT '',
    enabled       INTEGER NOT NULL DEFAULT 1,
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS jobs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    public_ref      TEXT NOT NULL UNIQUE,
    kind            TEXT NOT NULL DEFAULT 'delivery',
    customer_name   TEXT NOT NULL DEFAULT '',
    customer_phone  TEXT NOT NULL DEFAULT '',
    order_number    TEXT NOT NULL DEFAULT '',
    address         TEXT NOT NULL DEFAULT '',
    scheduled_date  TEXT NOT NULL DEFAULT '',
    shift           TEXT NOT NULL DEFAULT '',
    vehicle_id      INTEGER REFERENCES vehicles(id),
    route_order     INTEGER,
    status          TEXT NOT NULL DEFAULT 'pending',
    hold_reason     TEXT NOT NULL DEFAULT '',
    notified_date   TEXT NOT NULL DEFAULT '',
    notified_shift  TEXT NOT NULL DEFAULT '',
    attempt_count   INTEGER NOT NULL DEFAULT 0,
    signature_ref   TEXT NOT NULL DEFAULT '',
    photo_refs      TEXT NOT NULL DEFAULT '[]',
    payment_proof_ref TEXT NOT NULL DEFAULT '',
    delivered_lat   REAL NOT NULL DEFAULT 0,
    delivered_lon   REAL NOT NULL DEFAULT 0,
    completed_at    TEXT,
    payment_due     REAL NOT NULL DEFAULT 0,
    payment_method  TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at      TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_jobs_ref ON jobs(public_ref);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_slot ON jobs(scheduled_date, vehicle_id, shift);

CREATE TABLE IF NOT EXISTS job_history (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id      INTEGER NOT NULL REFERENCES jobs(id),
    status      TEXT NOT NULL DEFAULT '',
    detail      TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_job_history_job ON job_history(job_id);

CREATE TABLE IF NOT EXISTS outbox (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    topic       TEXT NOT NULL,
    payload     BLOB NOT NULL,
    msg_type    TEXT NOT NULL DEFAULT '',
    job_ref     TEXT NOT NULL DEFAULT '',
    retries     INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    sent_at     TEXT
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at);

CREATE TABLE IF NOT EXISTS audit_log (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    entity_type TEXT NOT NULL,
    entity_id   INTEGER NOT NULL,
    entity_ref  TEXT NOT NULL DEFAULT '',
    action      TEXT NOT NULL,
    old_value   TEXT NOT NULL DEFAULT '',
    new_value   TEXT NOT NULL DEFAULT '',
    actor       TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS admin_users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
`
