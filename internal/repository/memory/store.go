package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

// Store is an in-memory repository.Store. One store-wide mutex stands in
// for row-level locks: WithTx holds it for the whole validate-check-commit
// sequence, so concurrent scheduling requests serialize exactly as the
// postgres driver's FOR UPDATE locks make them. It favors clarity over
// performance and doubles as the test double for the service layer.
type Store struct {
	mu sync.Mutex

	departments   map[int64]*model.Department
	doctors       map[int64]*model.Doctor
	patients      map[int64]*model.Patient
	registrations map[int64]*model.Registration
	outbox        []*model.OutboxEvent

	nextDepartmentID   int64
	nextDoctorID       int64
	nextPatientID      int64
	nextRegistrationID int64

	readOnly bool
}

func NewStore() *Store {
	return &Store{
		departments:   make(map[int64]*model.Department),
		doctors:       make(map[int64]*model.Doctor),
		patients:      make(map[int64]*model.Patient),
		registrations: make(map[int64]*model.Registration),
	}
}

// SetReadOnly makes every subsequent write fail with ErrReadOnly. It
// mirrors a database that stopped accepting writes.
func (s *Store) SetReadOnly(readOnly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readOnly = readOnly
}

func (s *Store) Departments() repository.DepartmentRepository     { return &departmentRepo{s} }
func (s *Store) Doctors() repository.DoctorRepository             { return &doctorRepo{s} }
func (s *Store) Patients() repository.PatientRepository           { return &patientRepo{s} }
func (s *Store) Registrations() repository.RegistrationRepository { return &registrationRepo{s} }
func (s *Store) Outbox() repository.OutboxRepository              { return &outboxRepo{s} }

// WithTx runs fn under the store mutex. State is snapshotted first and
// restored when fn fails, so a rejected transaction leaves nothing behind.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&storeTx{store: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

type snapshotState struct {
	registrations      map[int64]*model.Registration
	outboxLen          int
	nextRegistrationID int64
}

func (s *Store) snapshot() snapshotState {
	regs := make(map[int64]*model.Registration, len(s.registrations))
	for id, reg := range s.registrations {
		copied := *reg
		regs[id] = &copied
	}
	return snapshotState{
		registrations:      regs,
		outboxLen:          len(s.outbox),
		nextRegistrationID: s.nextRegistrationID,
	}
}

func (s *Store) restore(snap snapshotState) {
	s.registrations = snap.registrations
	s.outbox = s.outbox[:snap.outboxLen]
	s.nextRegistrationID = snap.nextRegistrationID
}

// sortedRegistrations returns registrations in insertion order.
func (s *Store) sortedRegistrations() []*model.Registration {
	out := make([]*model.Registration, 0, len(s.registrations))
	for _, reg := range s.registrations {
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
