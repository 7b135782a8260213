package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

// ConflictWindow is the protected radius around a visit time. Two visits
// conflict when their timestamps differ by 14m59s or less; visits exactly
// 15 minutes apart do not conflict.
const ConflictWindow = 15*time.Minute - time.Second

// Service is the registration scheduler. It decides atomically, under the
// store's locking discipline, whether a (doctor, patient, time) booking may
// proceed, and owns the registration lifecycle afterwards.
type Service struct {
	store   repository.Store
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the wall clock used for the past-visit check.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRegistration books a visit. The full validate-check-insert
// sequence runs inside one store transaction with the doctor and patient
// rows locked, so two concurrent requests for the same slot cannot both
// pass the conflict checks.
func (s *Service) CreateRegistration(ctx context.Context, req *model.CreateRegistrationRequest) (*model.Registration, error) {
	if _, err := s.store.Patients().Get(ctx, req.PatientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", req.PatientID)
		}
		return nil, apperrors.Internal(err)
	}

	var timer *prometheus.Timer
	if s.metrics != nil {
		timer = prometheus.NewTimer(s.metrics.SchedulerLatency)
	}

	var registration *model.Registration
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		doctor, err := tx.DoctorForUpdate(ctx, req.DoctorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound("doctor", req.DoctorID)
			}
			return apperrors.Internal(err)
		}

		if _, err := tx.PatientForUpdate(ctx, req.PatientID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound("patient", req.PatientID)
			}
			return apperrors.Internal(err)
		}

		department, err := tx.Department(ctx, req.DepartmentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound("department", req.DepartmentID)
			}
			return apperrors.Internal(err)
		}

		if doctor.DepartmentID != department.ID {
			return apperrors.Validation("doctor must belong to the selected department")
		}

		if req.VisitTime.Before(s.now()) {
			return apperrors.Validation("visit time cannot be in the past")
		}

		busy, err := tx.HasDoctorConflict(ctx, req.DoctorID, req.VisitTime, ConflictWindow)
		if err != nil {
			return apperrors.Internal(err)
		}
		if busy {
			return apperrors.DoctorBusy()
		}

		busy, err = tx.HasPatientConflict(ctx, req.PatientID, req.VisitTime, ConflictWindow)
		if err != nil {
			return apperrors.Internal(err)
		}
		if busy {
			return apperrors.PatientBusy()
		}

		// Exact-minute re-checks. The window check above is authoritative;
		// these re-verify the narrowest case right before the insert.
		booked, err := tx.DoctorBookedAtMinute(ctx, req.DoctorID, req.VisitTime)
		if err != nil {
			return apperrors.Internal(err)
		}
		if booked {
			return apperrors.DoctorBusy()
		}

		booked, err = tx.PatientBookedAtMinute(ctx, req.PatientID, req.VisitTime)
		if err != nil {
			return apperrors.Internal(err)
		}
		if booked {
			return apperrors.PatientBusy()
		}

		registration = &model.Registration{
			PatientID:    req.PatientID,
			DoctorID:     req.DoctorID,
			DepartmentID: req.DepartmentID,
			VisitTime:    req.VisitTime,
			Status:       model.RegistrationStatusScheduled,
			Symptoms:     req.Symptoms,
			CreatedAt:    s.now(),
		}
		if err := tx.InsertRegistration(ctx, registration); err != nil {
			return apperrors.Internal(err)
		}

		return s.enqueueEvent(ctx, tx, model.EventRegistrationCreated, registration)
	})
	if timer != nil {
		timer.ObserveDuration()
	}
	if err != nil {
		s.countRejection(err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RegistrationsCreated.Inc()
	}
	s.logInfo("registration created", map[string]interface{}{
		"registration_id": registration.ID,
		"doctor_id":       registration.DoctorID,
		"patient_id":      registration.PatientID,
		"visit_time":      registration.VisitTime,
	})
	return registration, nil
}

func (s *Service) GetRegistration(ctx context.Context, id int64) (*model.Registration, error) {
	registration, err := s.store.Registrations().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("registration", id)
		}
		return nil, apperrors.Internal(err)
	}
	return registration, nil
}

func (s *Service) ListRegistrations(ctx context.Context, filters *model.RegistrationFilters) ([]*model.Registration, error) {
	registrations, err := s.store.Registrations().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return registrations, nil
}

func (s *Service) ListRegistrationsByPatient(ctx context.Context, patientID int64) ([]*model.Registration, error) {
	registrations, err := s.store.Registrations().ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for patient: %w", err)
	}
	return registrations, nil
}

// CompleteRegistration marks a registration completed. A store that
// refuses the write (read-only, connectivity) surfaces as a validation
// failure, never a crash; the transaction rolls back fully.
func (s *Service) CompleteRegistration(ctx context.Context, id int64) (*model.Registration, error) {
	var registration *model.Registration
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		current, err := tx.RegistrationForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound("registration", id)
			}
			return apperrors.ValidationWrap("failed to load registration", err)
		}

		if err := tx.UpdateRegistrationStatus(ctx, id, model.RegistrationStatusCompleted); err != nil {
			return apperrors.ValidationWrap("failed to persist registration status", err)
		}
		current.Status = model.RegistrationStatusCompleted
		registration = current

		return s.enqueueEvent(ctx, tx, model.EventRegistrationCompleted, registration)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RegistrationsCompleted.Inc()
	}
	s.logInfo("registration completed", map[string]interface{}{"registration_id": id})
	return registration, nil
}

// DeleteRegistration removes a registration record, with the same
// storage-failure handling as CompleteRegistration.
func (s *Service) DeleteRegistration(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		registration, err := tx.RegistrationForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound("registration", id)
			}
			return apperrors.ValidationWrap("failed to load registration", err)
		}

		if err := tx.DeleteRegistration(ctx, id); err != nil {
			return apperrors.ValidationWrap("failed to delete registration", err)
		}

		return s.enqueueEvent(ctx, tx, model.EventRegistrationDeleted, registration)
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RegistrationsDeleted.Inc()
	}
	s.logInfo("registration deleted", map[string]interface{}{"registration_id": id})
	return nil
}

func (s *Service) enqueueEvent(ctx context.Context, tx repository.Tx, eventType string, registration *model.Registration) error {
	event, err := model.NewOutboxEvent(eventType, registration)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to build outbox event: %w", err))
	}
	if err := tx.InsertOutboxEvent(ctx, event); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) countRejection(err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case apperrors.HasCode(err, apperrors.ErrDoctorBusy):
		s.metrics.RegistrationsRejected.WithLabelValues("doctor_busy").Inc()
	case apperrors.HasCode(err, apperrors.ErrPatientBusy):
		s.metrics.RegistrationsRejected.WithLabelValues("patient_busy").Inc()
	case apperrors.HasCode(err, apperrors.ErrValidation):
		s.metrics.RegistrationsRejected.WithLabelValues("validation").Inc()
	case apperrors.HasCode(err, apperrors.ErrNotFound):
		s.metrics.RegistrationsRejected.WithLabelValues("not_found").Inc()
	default:
		s.metrics.RegistrationsRejected.WithLabelValues("internal").Inc()
	}
}

func (s *Service) logInfo(msg string, fields map[string]interface{}) {
	if s.logger == nil {
		return
	}
	s.logger.WithFields(fields).Info(msg)
}
