package department

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

func TestCreateDepartment(t *testing.T) {
	svc := NewService(memory.NewStore().Departments())
	ctx := context.Background()

	created, err := svc.CreateDepartment(ctx, &model.CreateDepartmentRequest{Name: "  Cardiology  "})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Cardiology", created.Name, "name is stored trimmed")

	// A second department with the same name is refused.
	_, err = svc.CreateDepartment(ctx, &model.CreateDepartmentRequest{Name: "Cardiology"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrValidation), "unexpected error: %v", err)

	_, err = svc.CreateDepartment(ctx, &model.CreateDepartmentRequest{Name: "   "})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrValidation))
}

func TestGetDepartmentCaching(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Departments())
	ctx := context.Background()

	created, err := svc.CreateDepartment(ctx, &model.CreateDepartmentRequest{Name: "Surgery"})
	require.NoError(t, err)

	got, err := svc.GetDepartment(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Surgery", got.Name)

	// Second read is served from the cache.
	cached, err := svc.GetDepartment(ctx, created.ID)
	require.NoError(t, err)
	assert.Same(t, got, cached)

	_, err = svc.GetDepartment(ctx, 999)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}

func TestListDepartmentsInvalidation(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Departments())
	ctx := context.Background()

	_, err := svc.CreateDepartment(ctx, &model.CreateDepartmentRequest{Name: "Cardiology"})
	require.NoError(t, err)

	departments, err := svc.ListDepartments(ctx)
	require.NoError(t, err)
	require.Len(t, departments, 1)

	// Creating flushes the cached list.
	_, err = svc.CreateDepartment(ctx, &model.CreateDepartmentRequest{Name: "Surgery"})
	require.NoError(t, err)

	departments, err = svc.ListDepartments(ctx)
	require.NoError(t, err)
	require.Len(t, departments, 2)
	assert.Equal(t, "Cardiology", departments[0].Name)
	assert.Equal(t, "Surgery", departments[1].Name)
}
