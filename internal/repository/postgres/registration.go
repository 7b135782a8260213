package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type registrationRepository struct {
	db *sqlx.DB
}

func (r *registrationRepository) Get(ctx context.Context, id int64) (*model.Registration, error) {
	query := `
		SELECT id, patient_id, doctor_id, department_id,
		       visit_time, status, symptoms, created_at
		FROM registrations
		WHERE id = $1
	`
	var registration model.Registration
	err := r.db.GetContext(ctx, &registration, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &registration, nil
}

func (r *registrationRepository) List(ctx context.Context, filters *model.RegistrationFilters) ([]*model.Registration, error) {
	query := `
		SELECT id, patient_id, doctor_id, department_id,
		       visit_time, status, symptoms, created_at
		FROM registrations
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.DepartmentID != nil {
			query += fmt.Sprintf(" AND department_id = $%d", argCount)
			args = append(args, *filters.DepartmentID)
			argCount++
		}
		if filters.VisitDate != nil {
			query += fmt.Sprintf(" AND visit_time::date = $%d::date", argCount)
			args = append(args, *filters.VisitDate)
			argCount++
		}
		if filters.Status != nil {
			if *filters.Status == model.StatusFilterUnset {
				query += " AND (status IS NULL OR status = '')"
			} else {
				query += fmt.Sprintf(" AND status = $%d", argCount)
				args = append(args, *filters.Status)
				argCount++
			}
		}
	}

	query += " ORDER BY id ASC"

	var registrations []*model.Registration
	if err := r.db.SelectContext(ctx, &registrations, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return registrations, nil
}

func (r *registrationRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.Registration, error) {
	query := `
		SELECT id, patient_id, doctor_id, department_id,
		       visit_time, status, symptoms, created_at
		FROM registrations
		WHERE patient_id = $1
		ORDER BY id ASC
	`
	var registrations []*model.Registration
	if err := r.db.SelectContext(ctx, &registrations, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list registrations for patient: %w", err)
	}
	return registrations, nil
}
