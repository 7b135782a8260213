package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

// storeTx implements repository.Tx. All reads go through SELECT ... FOR
// UPDATE so concurrent schedulers targeting the same doctor or patient
// serialize on the row locks until commit.
type storeTx struct {
	tx *sqlx.Tx
}

func (t *storeTx) DoctorForUpdate(ctx context.Context, id int64) (*model.Doctor, error) {
	query := `
		SELECT id, name, specialization, contact, department_id
		FROM doctors
		WHERE id = $1
		FOR UPDATE
	`
	var doctor model.Doctor
	err := t.tx.GetContext(ctx, &doctor, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock doctor: %w", mapError(err))
	}
	return &doctor, nil
}

func (t *storeTx) PatientForUpdate(ctx context.Context, id int64) (*model.Patient, error) {
	query := `
		SELECT id, name, date_of_birth, contact_info, address
		FROM patients
		WHERE id = $1
		FOR UPDATE
	`
	var patient model.Patient
	err := t.tx.GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock patient: %w", mapError(err))
	}
	return &patient, nil
}

func (t *storeTx) Department(ctx context.Context, id int64) (*model.Department, error) {
	query := `
		SELECT id, name, description
		FROM departments
		WHERE id = $1
	`
	var department model.Department
	err := t.tx.GetContext(ctx, &department, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return &department, nil
}

func (t *storeTx) HasDoctorConflict(ctx context.Context, doctorID int64, at time.Time, window time.Duration) (bool, error) {
	query := `
		SELECT id FROM registrations
		WHERE doctor_id = $1
		AND status <> $2
		AND visit_time >= $3
		AND visit_time <= $4
		FOR UPDATE
	`
	return t.lockConflictRows(ctx, query, doctorID, at.Add(-window), at.Add(window))
}

func (t *storeTx) HasPatientConflict(ctx context.Context, patientID int64, at time.Time, window time.Duration) (bool, error) {
	query := `
		SELECT id FROM registrations
		WHERE patient_id = $1
		AND status <> $2
		AND visit_time >= $3
		AND visit_time <= $4
		FOR UPDATE
	`
	return t.lockConflictRows(ctx, query, patientID, at.Add(-window), at.Add(window))
}

func (t *storeTx) DoctorBookedAtMinute(ctx context.Context, doctorID int64, at time.Time) (bool, error) {
	query := `
		SELECT id FROM registrations
		WHERE doctor_id = $1
		AND status <> $2
		AND date_trunc('minute', visit_time) = $3
		FOR UPDATE
	`
	return t.lockConflictRowsExact(ctx, query, doctorID, at.Truncate(time.Minute))
}

func (t *storeTx) PatientBookedAtMinute(ctx context.Context, patientID int64, at time.Time) (bool, error) {
	query := `
		SELECT id FROM registrations
		WHERE patient_id = $1
		AND status <> $2
		AND date_trunc('minute', visit_time) = $3
		FOR UPDATE
	`
	return t.lockConflictRowsExact(ctx, query, patientID, at.Truncate(time.Minute))
}

// lockConflictRows locks and counts active registrations in [from, to].
// FOR UPDATE rules out aggregates, so the ids are fetched and counted.
func (t *storeTx) lockConflictRows(ctx context.Context, query string, ownerID int64, from, to time.Time) (bool, error) {
	var ids []int64
	err := t.tx.SelectContext(ctx, &ids, query, ownerID, model.RegistrationStatusCancelled, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to check conflicts: %w", mapError(err))
	}
	return len(ids) > 0, nil
}

func (t *storeTx) lockConflictRowsExact(ctx context.Context, query string, ownerID int64, minute time.Time) (bool, error) {
	var ids []int64
	err := t.tx.SelectContext(ctx, &ids, query, ownerID, model.RegistrationStatusCancelled, minute)
	if err != nil {
		return false, fmt.Errorf("failed to check minute conflicts: %w", mapError(err))
	}
	return len(ids) > 0, nil
}

func (t *storeTx) InsertRegistration(ctx context.Context, registration *model.Registration) error {
	query := `
		INSERT INTO registrations (
			patient_id, doctor_id, department_id,
			visit_time, status, symptoms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	if registration.Status == "" {
		registration.Status = model.RegistrationStatusScheduled
	}
	if registration.CreatedAt.IsZero() {
		registration.CreatedAt = time.Now()
	}
	err := t.tx.QueryRowxContext(ctx, query,
		registration.PatientID,
		registration.DoctorID,
		registration.DepartmentID,
		registration.VisitTime,
		registration.Status,
		registration.Symptoms,
		registration.CreatedAt,
	).Scan(&registration.ID)
	if err != nil {
		return fmt.Errorf("failed to insert registration: %w", mapError(err))
	}
	return nil
}

func (t *storeTx) RegistrationForUpdate(ctx context.Context, id int64) (*model.Registration, error) {
	query := `
		SELECT id, patient_id, doctor_id, department_id,
		       visit_time, status, symptoms, created_at
		FROM registrations
		WHERE id = $1
		FOR UPDATE
	`
	var registration model.Registration
	err := t.tx.GetContext(ctx, &registration, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock registration: %w", mapError(err))
	}
	return &registration, nil
}

func (t *storeTx) UpdateRegistrationStatus(ctx context.Context, id int64, status model.RegistrationStatus) error {
	query := `
		UPDATE registrations
		SET status = $1
		WHERE id = $2
	`
	result, err := t.tx.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update registration status: %w", mapError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (t *storeTx) DeleteRegistration(ctx context.Context, id int64) error {
	query := `
		DELETE FROM registrations
		WHERE id = $1
	`
	result, err := t.tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", mapError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (t *storeTx) InsertOutboxEvent(ctx context.Context, event *model.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (
			id, event_type, payload, status, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`
	_, err := t.tx.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.Payload,
		event.Status,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", mapError(err))
	}
	return nil
}
