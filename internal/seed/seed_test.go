package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/pkg/logger"
)

func TestRunPopulatesStore(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, Run(ctx, store, logger.NewLogger(nil)))

	departmentList, err := store.Departments().List(ctx)
	require.NoError(t, err)
	assert.Len(t, departmentList, len(departments))

	doctorList, err := store.Doctors().List(ctx)
	require.NoError(t, err)
	assert.Len(t, doctorList, len(doctors))

	patientList, err := store.Patients().List(ctx)
	require.NoError(t, err)
	assert.Len(t, patientList, len(patients))

	// One scheduled visit per patient, each through the scheduler.
	registrations, err := store.Registrations().List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, registrations, len(patients))
}

func TestRunSkipsExistingDepartments(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, Run(ctx, store, logger.NewLogger(nil)))

	departmentList, err := store.Departments().List(ctx)
	require.NoError(t, err)
	firstCount := len(departmentList)

	// A second run re-uses the existing departments instead of failing
	// on the unique name constraint.
	require.NoError(t, Run(ctx, store, logger.NewLogger(nil)))

	departmentList, err = store.Departments().List(ctx)
	require.NoError(t, err)
	assert.Len(t, departmentList, firstCount)
}
