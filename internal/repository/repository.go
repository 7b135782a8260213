package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
)

// Sentinel errors surfaced by every store implementation.
var (
	ErrNotFound = errors.New("record not found")
	ErrReadOnly = errors.New("store is read-only")
	ErrConflict = errors.New("conflicting record exists")
)

type DepartmentRepository interface {
	Create(ctx context.Context, department *model.Department) error
	Get(ctx context.Context, id int64) (*model.Department, error)
	GetByName(ctx context.Context, name string) (*model.Department, error)
	List(ctx context.Context) ([]*model.Department, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	Get(ctx context.Context, id int64) (*model.Doctor, error)
	List(ctx context.Context) ([]*model.Doctor, error)
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id int64) (*model.Patient, error)
	List(ctx context.Context) ([]*model.Patient, error)
}

type RegistrationRepository interface {
	Get(ctx context.Context, id int64) (*model.Registration, error)
	List(ctx context.Context, filters *model.RegistrationFilters) ([]*model.Registration, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*model.Registration, error)
}

type OutboxRepository interface {
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

// Tx is the locked view the scheduler works against. Every read acquires
// a write-intent lock on the rows it touches; nothing becomes visible to
// other transactions until the WithTx callback returns nil and commits.
type Tx interface {
	DoctorForUpdate(ctx context.Context, id int64) (*model.Doctor, error)
	PatientForUpdate(ctx context.Context, id int64) (*model.Patient, error)
	Department(ctx context.Context, id int64) (*model.Department, error)

	// HasDoctorConflict reports whether an active registration for the
	// doctor has a visit time inside [at-window, at+window], inclusive.
	HasDoctorConflict(ctx context.Context, doctorID int64, at time.Time, window time.Duration) (bool, error)
	HasPatientConflict(ctx context.Context, patientID int64, at time.Time, window time.Duration) (bool, error)

	// DoctorBookedAtMinute reports whether an active registration for the
	// doctor falls in the same minute as at (minute-truncated comparison).
	DoctorBookedAtMinute(ctx context.Context, doctorID int64, at time.Time) (bool, error)
	PatientBookedAtMinute(ctx context.Context, patientID int64, at time.Time) (bool, error)

	InsertRegistration(ctx context.Context, registration *model.Registration) error
	RegistrationForUpdate(ctx context.Context, id int64) (*model.Registration, error)
	UpdateRegistrationStatus(ctx context.Context, id int64, status model.RegistrationStatus) error
	DeleteRegistration(ctx context.Context, id int64) error

	InsertOutboxEvent(ctx context.Context, event *model.OutboxEvent) error
}

// Store bundles the per-entity repositories with the transactional
// scheduler surface.
type Store interface {
	Departments() DepartmentRepository
	Doctors() DoctorRepository
	Patients() PatientRepository
	Registrations() RegistrationRepository
	Outbox() OutboxRepository

	// WithTx runs fn inside one transaction. A non-nil error rolls back
	// everything fn did, locks included.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
}
