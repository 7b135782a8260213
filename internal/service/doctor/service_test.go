package doctor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

func TestCreateDoctor(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	department := &model.Department{Name: "Cardiology"}
	require.NoError(t, store.Departments().Create(ctx, department))

	svc := NewService(store.Doctors(), store.Departments())

	created, err := svc.CreateDoctor(ctx, &model.CreateDoctorRequest{
		Name:         " Dr. Adams ",
		DepartmentID: department.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Dr. Adams", created.Name)
	assert.Equal(t, department.ID, created.DepartmentID)

	// A doctor cannot be filed under a department that does not exist.
	_, err = svc.CreateDoctor(ctx, &model.CreateDoctorRequest{Name: "Dr. Baker", DepartmentID: 999})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound), "unexpected error: %v", err)

	_, err = svc.CreateDoctor(ctx, &model.CreateDoctorRequest{Name: "  ", DepartmentID: department.ID})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrValidation))
}

func TestGetAndListDoctors(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	department := &model.Department{Name: "Surgery"}
	require.NoError(t, store.Departments().Create(ctx, department))

	svc := NewService(store.Doctors(), store.Departments())

	first, err := svc.CreateDoctor(ctx, &model.CreateDoctorRequest{Name: "Dr. Adams", DepartmentID: department.ID})
	require.NoError(t, err)
	_, err = svc.CreateDoctor(ctx, &model.CreateDoctorRequest{Name: "Dr. Baker", DepartmentID: department.ID})
	require.NoError(t, err)

	got, err := svc.GetDoctor(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Adams", got.Name)

	doctors, err := svc.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Len(t, doctors, 2)

	_, err = svc.GetDoctor(ctx, 999)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}
