package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/repository"
)

// Store implements repository.Store on top of a shared sqlx handle.
type Store struct {
	db            *sqlx.DB
	departments   *departmentRepository
	doctors       *doctorRepository
	patients      *patientRepository
	registrations *registrationRepository
	outbox        *outboxRepository
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:            db,
		departments:   &departmentRepository{db: db},
		doctors:       &doctorRepository{db: db},
		patients:      &patientRepository{db: db},
		registrations: &registrationRepository{db: db},
		outbox:        &outboxRepository{db: db},
	}
}

func (s *Store) Departments() repository.DepartmentRepository     { return s.departments }
func (s *Store) Doctors() repository.DoctorRepository             { return s.doctors }
func (s *Store) Patients() repository.PatientRepository           { return s.patients }
func (s *Store) Registrations() repository.RegistrationRepository { return s.registrations }
func (s *Store) Outbox() repository.OutboxRepository              { return s.outbox }

// WithTx executes fn within a transaction. Row locks taken through the Tx
// view are held until commit or rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&storeTx{tx: tx}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
