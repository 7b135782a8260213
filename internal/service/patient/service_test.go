package patient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

func TestCreatePatient(t *testing.T) {
	svc := NewService(memory.NewStore().Patients())
	ctx := context.Background()

	dob := time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)
	created, err := svc.CreatePatient(ctx, &model.CreatePatientRequest{
		Name:        " John Doe ",
		DateOfBirth: &dob,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "John Doe", created.Name)
	require.NotNil(t, created.DateOfBirth)
	assert.True(t, created.DateOfBirth.Equal(dob))

	_, err = svc.CreatePatient(ctx, &model.CreatePatientRequest{Name: "   "})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrValidation), "unexpected error: %v", err)
}

func TestGetAndListPatients(t *testing.T) {
	svc := NewService(memory.NewStore().Patients())
	ctx := context.Background()

	first, err := svc.CreatePatient(ctx, &model.CreatePatientRequest{Name: "John Doe"})
	require.NoError(t, err)
	_, err = svc.CreatePatient(ctx, &model.CreatePatientRequest{Name: "Jane Roe"})
	require.NoError(t, err)

	got, err := svc.GetPatient(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", got.Name)

	patients, err := svc.ListPatients(ctx)
	require.NoError(t, err)
	assert.Len(t, patients, 2)

	_, err = svc.GetPatient(ctx, 999)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}
