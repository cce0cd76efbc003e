package store

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS vehicles (
    id            BIGSERIAL PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    plate         TEXT NOT NULL UNIQUE,
    latitude      DOUBLE PRECISION NOT NULL DEFAULT 0,
    longitude     DOUBLE PRECISION NOT NULL DEFAULT 0,
    last_update   TIMESTAMPTZ,
    route_status  TEXT NOT NULL DEFAULT 'idle',
    driver_name   TEXT NOT NULL DEFAULT '',
    active_shift  TEXT NOT NULL DEFAULT '',
    enabled       BOOLEAN NOT NULL DEFAULT TRUE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS jobs (
    id              BIGSERIAL PRIMARY KEY,
    public_ref      TEXT NOT NULL UNIQUE,
    kind            TEXT NOT NULL DEFAULT 'delivery',
    customer_name   TEXT NOT NULL DEFAULT '',
    customer_phone  TEXT NOT NULL DEFAULT '',
    order_number    TEXT NOT NULL DEFAULT '',
    address         TEXT NOT NULL DEFAULT '',
    scheduled_date  TEXT NOT NULL DEFAULT '',
    shift           TEXT NOT NULL DEFAULT '',
    vehicle_id      BIGINT REFERENCES vehicles(id),
    route_order     INTEGER,
    status          TEXT NOT NULL DEFAULT 'pending',
    hold_reason     TEXT NOT NULL DEFAULT '',
    notified_date   TEXT NOT NULL DEFAULT '',
    notified_shift  TEXT NOT NULL DEFAULT '',
    attempt_count   INTEGER NOT NULL DEFAULT 0,
    signature_ref   TEXT NOT NULL DEFAULT '',
    photo_refs      TEXT NOT NULL DEFAULT '[]',
    payment_proof_ref TEXT NOT NULL DEFAULT '',
    delivered_lat   DOUBLE PRECISION NOT NULL DEFAULT 0,
    delivered_lon   DOUBLE PRECISION NOT NULL DEFAULT 0,
    completed_at    TIMESTAMPTZ,
    payment_due     DOUBLE PRECISION NOT NULL DEFAULT 0,
    payment_method  TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_jobs_ref ON jobs(public_ref);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_slot ON jobs(scheduled_date, vehicle_id, shift);

CREATE TABLE IF NOT EXISTS job_history (
    id          BIGSERIAL PRIMARY KEY,
    job_id      BIGINT NOT NULL REFERENCES jobs(id),
    status      TEXT NOT NULL DEFAULT '',
    detail      TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_job_history_job ON job_history(job_id);

CREATE TABLE IF NOT EXISTS outbox (
    id          BIGSERIAL PRIMARY KEY,
    topic       TEXT NOT NULL,
    payload     BYTEA NOT NULL,
    msg_type    TEXT NOT NULL DEFAULT '',
    job_ref     TEXT NOT NULL DEFAULT '',
    retries     INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    sent_at     TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at);

CREATE TABLE IF NOT EXISTS audit_log (
    id          BIGSERIAL PRIMARY KEY,
    entity_type TEXT NOT NULL,
    entity_id   BIGINT NOT NULL,
    entity_ref  TEXT NOT NULL DEFAULT '',
    action      TEXT NOT NULL,
    old_value   TEXT NOT NULL DEFAULT '',
    new_value   TEXT NOT NULL DEFAULT '',
    actor       TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS admin_users (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
