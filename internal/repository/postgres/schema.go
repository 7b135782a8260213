package postgres

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS departments (
	id          BIGSERIAL PRIMARY KEY,
	name        VARCHAR(100) NOT NULL UNIQUE,
	description TEXT
);

CREATE TABLE IF NOT EXISTS doctors (
	id             BIGSERIAL PRIMARY KEY,
	name           VARCHAR(100) NOT NULL,
	specialization VARCHAR(100),
	contact        VARCHAR(120),
	department_id  BIGINT NOT NULL REFERENCES departments(id)
);

CREATE TABLE IF NOT EXISTS patients (
	id            BIGSERIAL PRIMARY KEY,
	name          VARCHAR(100) NOT NULL,
	date_of_birth DATE,
	contact_info  VARCHAR(120),
	address       VARCHAR(200)
);

CREATE TABLE IF NOT EXISTS registrations (
	id            BIGSERIAL PRIMARY KEY,
	patient_id    BIGINT NOT NULL REFERENCES patients(id),
	doctor_id     BIGINT NOT NULL REFERENCES doctors(id),
	department_id BIGINT NOT NULL REFERENCES departments(id),
	visit_time    TIMESTAMPTZ NOT NULL,
	status        VARCHAR(50) NOT NULL DEFAULT 'scheduled',
	symptoms      TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_registrations_doctor_visit
	ON registrations (doctor_id, visit_time);
CREATE INDEX IF NOT EXISTS idx_registrations_patient_visit
	ON registrations (patient_id, visit_time);
CREATE INDEX IF NOT EXISTS idx_registrations_department
	ON registrations (department_id);

CREATE TABLE IF NOT EXISTS outbox_events (
	id            UUID PRIMARY KEY,
	event_type    VARCHAR(100) NOT NULL,
	payload       JSONB NOT NULL,
	status        VARCHAR(20) NOT NULL DEFAULT 'pending',
	error_message TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	processed_at  TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_outbox_events_status
	ON outbox_events (status, created_at);
`

// Migrate creates the schema if it does not exist yet.
func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
