package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type departmentRepo struct {
	store *Store
}

func (r *departmentRepo) Create(_ context.Context, department *model.Department) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return repository.ErrReadOnly
	}
	for _, existing := range s.departments {
		if existing.Name == department.Name {
			return fmt.Errorf("%w: department name %q", repository.ErrConflict, department.Name)
		}
	}
	s.nextDepartmentID++
	department.ID = s.nextDepartmentID
	copied := *department
	s.departments[department.ID] = &copied
	return nil
}

func (r *departmentRepo) Get(_ context.Context, id int64) (*model.Department, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	department, ok := s.departments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *department
	return &copied, nil
}

func (r *departmentRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, department := range s.departments {
		if department.Name == name {
			copied := *department
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *departmentRepo) List(_ context.Context) ([]*model.Department, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Department, 0, len(s.departments))
	for id := int64(1); id <= s.nextDepartmentID; id++ {
		if department, ok := s.departments[id]; ok {
			copied := *department
			out = append(out, &copied)
		}
	}
	return out, nil
}

type doctorRepo struct {
	store *Store
}

func (r *doctorRepo) Create(_ context.Context, doctor *model.Doctor) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return repository.ErrReadOnly
	}
	s.nextDoctorID++
	doctor.ID = s.nextDoctorID
	copied := *doctor
	s.doctors[doctor.ID] = &copied
	return nil
}

func (r *doctorRepo) Get(_ context.Context, id int64) (*model.Doctor, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	doctor, ok := s.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *doctor
	return &copied, nil
}

func (r *doctorRepo) List(_ context.Context) ([]*model.Doctor, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Doctor, 0, len(s.doctors))
	for id := int64(1); id <= s.nextDoctorID; id++ {
		if doctor, ok := s.doctors[id]; ok {
			copied := *doctor
			out = append(out, &copied)
		}
	}
	return out, nil
}

type patientRepo struct {
	store *Store
}

func (r *patientRepo) Create(_ context.Context, patient *model.Patient) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return repository.ErrReadOnly
	}
	s.nextPatientID++
	patient.ID = s.nextPatientID
	copied := *patient
	s.patients[patient.ID] = &copied
	return nil
}

func (r *patientRepo) Get(_ context.Context, id int64) (*model.Patient, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	patient, ok := s.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *patient
	return &copied, nil
}

func (r *patientRepo) List(_ context.Context) ([]*model.Patient, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Patient, 0, len(s.patients))
	for id := int64(1); id <= s.nextPatientID; id++ {
		if patient, ok := s.patients[id]; ok {
			copied := *patient
			out = append(out, &copied)
		}
	}
	return out, nil
}

type registrationRepo struct {
	store *Store
}

func (r *registrationRepo) Get(_ context.Context, id int64) (*model.Registration, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	registration, ok := s.registrations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *registration
	return &copied, nil
}

func (r *registrationRepo) List(_ context.Context, filters *model.RegistrationFilters) ([]*model.Registration, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Registration
	for _, registration := range s.sortedRegistrations() {
		if filters != nil {
			if filters.DepartmentID != nil && registration.DepartmentID != *filters.DepartmentID {
				continue
			}
			if filters.VisitDate != nil && !sameCalendarDay(registration.VisitTime, *filters.VisitDate) {
				continue
			}
			if filters.Status != nil {
				if *filters.Status == model.StatusFilterUnset {
					if strings.TrimSpace(string(registration.Status)) != "" {
						continue
					}
				} else if string(registration.Status) != *filters.Status {
					continue
				}
			}
		}
		copied := *registration
		out = append(out, &copied)
	}
	return out, nil
}

func (r *registrationRepo) ListByPatient(_ context.Context, patientID int64) ([]*model.Registration, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Registration
	for _, registration := range s.sortedRegistrations() {
		if registration.PatientID == patientID {
			copied := *registration
			out = append(out, &copied)
		}
	}
	return out, nil
}

type outboxRepo struct {
	store *Store
}

func (r *outboxRepo) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.OutboxEvent
	for _, event := range s.outbox {
		if event.Status != model.OutboxStatusPending {
			continue
		}
		copied := *event
		out = append(out, &copied)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *outboxRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return repository.ErrReadOnly
	}
	for _, event := range s.outbox {
		if event.ID == id {
			event.Status = status
			event.ErrorMessage = errMsg
			if status == model.OutboxStatusProcessed {
				now := time.Now()
				event.ProcessedAt = &now
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *outboxRepo) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return 0, repository.ErrReadOnly
	}
	var kept []*model.OutboxEvent
	var removed int64
	for _, event := range s.outbox {
		if event.Status == model.OutboxStatusProcessed && event.ProcessedAt != nil && event.ProcessedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, event)
	}
	s.outbox = kept
	return removed, nil
}
