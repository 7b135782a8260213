package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

func TestTransactionRollback(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(tx repository.Tx) error {
		reg := &model.Registration{
			PatientID:    1,
			DoctorID:     1,
			DepartmentID: 1,
			VisitTime:    time.Now().Add(time.Hour),
		}
		require.NoError(t, tx.InsertRegistration(ctx, reg))

		event, err := model.NewOutboxEvent(model.EventRegistrationCreated, reg)
		require.NoError(t, err)
		require.NoError(t, tx.InsertOutboxEvent(ctx, event))

		return boom
	})
	require.ErrorIs(t, err, boom)

	// Everything written inside the failed transaction is gone.
	regs, err := store.Registrations().List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, regs)

	events, err := store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)

	// The id sequence rewinds too, so the next insert reuses it.
	err = store.WithTx(ctx, func(tx repository.Tx) error {
		reg := &model.Registration{PatientID: 1, DoctorID: 1, DepartmentID: 1, VisitTime: time.Now().Add(time.Hour)}
		if err := tx.InsertRegistration(ctx, reg); err != nil {
			return err
		}
		assert.Equal(t, int64(1), reg.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestDepartmentNameUnique(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Departments().Create(ctx, &model.Department{Name: "Cardiology"}))

	err := store.Departments().Create(ctx, &model.Department{Name: "Cardiology"})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrConflict)

	got, err := store.Departments().GetByName(ctx, "Cardiology")
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", got.Name)

	_, err = store.Departments().GetByName(ctx, "Surgery")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListsKeepInsertionOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	names := []string{"Cardiology", "Surgery", "Pediatrics"}
	for _, name := range names {
		require.NoError(t, store.Departments().Create(ctx, &model.Department{Name: name}))
	}

	departments, err := store.Departments().List(ctx)
	require.NoError(t, err)
	require.Len(t, departments, len(names))
	for i, d := range departments {
		assert.Equal(t, names[i], d.Name)
	}
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	store.SetReadOnly(true)

	err := store.Departments().Create(ctx, &model.Department{Name: "Cardiology"})
	assert.ErrorIs(t, err, repository.ErrReadOnly)

	err = store.WithTx(ctx, func(tx repository.Tx) error {
		return tx.InsertRegistration(ctx, &model.Registration{PatientID: 1, DoctorID: 1, DepartmentID: 1})
	})
	assert.ErrorIs(t, err, repository.ErrReadOnly)
}

func TestConflictChecksIgnoreOtherRows(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	at := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	window := 15*time.Minute - time.Second

	err := store.WithTx(ctx, func(tx repository.Tx) error {
		require.NoError(t, tx.InsertRegistration(ctx, &model.Registration{
			PatientID: 1, DoctorID: 1, DepartmentID: 1, VisitTime: at,
		}))
		require.NoError(t, tx.InsertRegistration(ctx, &model.Registration{
			PatientID: 2, DoctorID: 2, DepartmentID: 1, VisitTime: at, Status: model.RegistrationStatusCancelled,
		}))
		return nil
	})
	require.NoError(t, err)

	err = store.WithTx(ctx, func(tx repository.Tx) error {
		busy, err := tx.HasDoctorConflict(ctx, 1, at.Add(10*time.Minute), window)
		require.NoError(t, err)
		assert.True(t, busy)

		// Doctor 2 only has a cancelled registration.
		busy, err = tx.HasDoctorConflict(ctx, 2, at, window)
		require.NoError(t, err)
		assert.False(t, busy)

		busy, err = tx.HasPatientConflict(ctx, 1, at.Add(-10*time.Minute), window)
		require.NoError(t, err)
		assert.True(t, busy)

		busy, err = tx.HasPatientConflict(ctx, 2, at, window)
		require.NoError(t, err)
		assert.False(t, busy)

		booked, err := tx.DoctorBookedAtMinute(ctx, 1, at.Add(30*time.Second))
		require.NoError(t, err)
		assert.True(t, booked)

		booked, err = tx.PatientBookedAtMinute(ctx, 1, at.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, booked)

		return nil
	})
	require.NoError(t, err)
}

func TestOutboxLifecycle(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var eventID [2]*model.OutboxEvent
	err := store.WithTx(ctx, func(tx repository.Tx) error {
		for i := range eventID {
			event, err := model.NewOutboxEvent(model.EventRegistrationCreated, map[string]int{"n": i})
			require.NoError(t, err)
			require.NoError(t, tx.InsertOutboxEvent(ctx, event))
			eventID[i] = event
		}
		return nil
	})
	require.NoError(t, err)

	pending, err := store.Outbox().GetPendingEvents(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, store.Outbox().UpdateStatus(ctx, eventID[0].ID, model.OutboxStatusProcessed, nil))

	pending, err = store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, eventID[1].ID, pending[0].ID)

	removed, err := store.Outbox().DeleteProcessedBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
