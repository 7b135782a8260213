package memory

import (
	"context"
	"time"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

// storeTx runs with the store mutex already held by WithTx, so it reads
// and writes the maps directly. The mutex is the row lock: nothing else
// can observe or change store state until WithTx returns.
type storeTx struct {
	store *Store
}

func (t *storeTx) DoctorForUpdate(_ context.Context, id int64) (*model.Doctor, error) {
	doctor, ok := t.store.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *doctor
	return &copied, nil
}

func (t *storeTx) PatientForUpdate(_ context.Context, id int64) (*model.Patient, error) {
	patient, ok := t.store.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *patient
	return &copied, nil
}

func (t *storeTx) Department(_ context.Context, id int64) (*model.Department, error) {
	department, ok := t.store.departments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *department
	return &copied, nil
}

func (t *storeTx) HasDoctorConflict(_ context.Context, doctorID int64, at time.Time, window time.Duration) (bool, error) {
	for _, registration := range t.store.registrations {
		if registration.DoctorID != doctorID || !registration.Active() {
			continue
		}
		if withinWindow(registration.VisitTime, at, window) {
			return true, nil
		}
	}
	return false, nil
}

func (t *storeTx) HasPatientConflict(_ context.Context, patientID int64, at time.Time, window time.Duration) (bool, error) {
	for _, registration := range t.store.registrations {
		if registration.PatientID != patientID || !registration.Active() {
			continue
		}
		if withinWindow(registration.VisitTime, at, window) {
			return true, nil
		}
	}
	return false, nil
}

func (t *storeTx) DoctorBookedAtMinute(_ context.Context, doctorID int64, at time.Time) (bool, error) {
	minute := at.Truncate(time.Minute)
	for _, registration := range t.store.registrations {
		if registration.DoctorID != doctorID || !registration.Active() {
			continue
		}
		if registration.VisitTime.Truncate(time.Minute).Equal(minute) {
			return true, nil
		}
	}
	return false, nil
}

func (t *storeTx) PatientBookedAtMinute(_ context.Context, patientID int64, at time.Time) (bool, error) {
	minute := at.Truncate(time.Minute)
	for _, registration := range t.store.registrations {
		if registration.PatientID != patientID || !registration.Active() {
			continue
		}
		if registration.VisitTime.Truncate(time.Minute).Equal(minute) {
			return true, nil
		}
	}
	return false, nil
}

func (t *storeTx) InsertRegistration(_ context.Context, registration *model.Registration) error {
	if t.store.readOnly {
		return repository.ErrReadOnly
	}
	if registration.Status == "" {
		registration.Status = model.RegistrationStatusScheduled
	}
	if registration.CreatedAt.IsZero() {
		registration.CreatedAt = time.Now()
	}
	t.store.nextRegistrationID++
	registration.ID = t.store.nextRegistrationID
	copied := *registration
	t.store.registrations[registration.ID] = &copied
	return nil
}

func (t *storeTx) RegistrationForUpdate(_ context.Context, id int64) (*model.Registration, error) {
	registration, ok := t.store.registrations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *registration
	return &copied, nil
}

func (t *storeTx) UpdateRegistrationStatus(_ context.Context, id int64, status model.RegistrationStatus) error {
	if t.store.readOnly {
		return repository.ErrReadOnly
	}
	registration, ok := t.store.registrations[id]
	if !ok {
		return repository.ErrNotFound
	}
	registration.Status = status
	return nil
}

func (t *storeTx) DeleteRegistration(_ context.Context, id int64) error {
	if t.store.readOnly {
		return repository.ErrReadOnly
	}
	if _, ok := t.store.registrations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.store.registrations, id)
	return nil
}

func (t *storeTx) InsertOutboxEvent(_ context.Context, event *model.OutboxEvent) error {
	if t.store.readOnly {
		return repository.ErrReadOnly
	}
	copied := *event
	t.store.outbox = append(t.store.outbox, &copied)
	return nil
}

// withinWindow is a closed-interval test: a visit exactly window away
// still conflicts, one strictly beyond it does not.
func withinWindow(visit, at time.Time, window time.Duration) bool {
	diff := visit.Sub(at)
	if diff < 0 {
		diff = -diff
	}
	return diff <= window
}
