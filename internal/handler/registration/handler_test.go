package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	registrationService "github.com/jwalitptl/hospital-api/internal/service/registration"
)

type testEnv struct {
	router       *gin.Engine
	departmentID int64
	doctorID     int64
	patientID    int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	store := memory.NewStore()

	department := &model.Department{Name: "Cardiology"}
	require.NoError(t, store.Departments().Create(ctx, department))
	doctor := &model.Doctor{Name: "Dr. Adams", DepartmentID: department.ID}
	require.NoError(t, store.Doctors().Create(ctx, doctor))
	patient := &model.Patient{Name: "John Doe"}
	require.NoError(t, store.Patients().Create(ctx, patient))

	router := gin.New()
	h := NewHandler(registrationService.NewService(store))
	h.RegisterRoutes(router.Group("/api/v1"))

	return &testEnv{
		router:       router,
		departmentID: department.ID,
		doctorID:     doctor.ID,
		patientID:    patient.ID,
	}
}

func (e *testEnv) do(method, path string, body interface{}) (*httptest.ResponseRecorder, handler.Response) {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var resp handler.Response
	json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func (e *testEnv) createBody(visit time.Time) map[string]interface{} {
	return map[string]interface{}{
		"patient_id":    e.patientID,
		"doctor_id":     e.doctorID,
		"department_id": e.departmentID,
		"visit_time":    visit.Format(time.RFC3339),
	}
}

func TestRegistrationEndpoints(t *testing.T) {
	env := newTestEnv(t)
	visit := time.Now().Add(24 * time.Hour).Truncate(time.Minute)

	// Create
	rec, resp := env.do(http.MethodPost, "/api/v1/registrations", env.createBody(visit))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "success", resp.Status)

	created := resp.Data.(map[string]interface{})
	id := int64(created["id"].(float64))
	assert.Equal(t, "scheduled", created["status"])

	// Get
	rec, resp = env.do(http.MethodGet, fmt.Sprintf("/api/v1/registrations/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", resp.Status)

	// Same slot again conflicts.
	rec, resp = env.do(http.MethodPost, "/api/v1/registrations", env.createBody(visit))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Message, "time slot")

	// List, filtered by visit date.
	rec, resp = env.do(http.MethodGet, "/api/v1/registrations?visit_date="+visit.UTC().Format("2006-01-02"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// List for the patient.
	rec, _ = env.do(http.MethodGet, fmt.Sprintf("/api/v1/patients/%d/registrations", env.patientID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Complete
	rec, resp = env.do(http.MethodPost, fmt.Sprintf("/api/v1/registrations/%d/complete", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	completed := resp.Data.(map[string]interface{})
	assert.Equal(t, "completed", completed["status"])

	// Delete, then the record is gone.
	rec, _ = env.do(http.MethodDelete, fmt.Sprintf("/api/v1/registrations/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(http.MethodGet, fmt.Sprintf("/api/v1/registrations/%d", id), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegistrationErrorStatuses(t *testing.T) {
	env := newTestEnv(t)
	visit := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name string
		body map[string]interface{}
		code int
	}{
		{
			name: "missing fields",
			body: map[string]interface{}{"patient_id": env.patientID},
			code: http.StatusBadRequest,
		},
		{
			name: "unknown patient",
			body: map[string]interface{}{
				"patient_id":    999,
				"doctor_id":     env.doctorID,
				"department_id": env.departmentID,
				"visit_time":    visit.Format(time.RFC3339),
			},
			code: http.StatusNotFound,
		},
		{
			name: "past visit time",
			body: map[string]interface{}{
				"patient_id":    env.patientID,
				"doctor_id":     env.doctorID,
				"department_id": env.departmentID,
				"visit_time":    time.Now().Add(-time.Hour).Format(time.RFC3339),
			},
			code: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := env.do(http.MethodPost, "/api/v1/registrations", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.Equal(t, "error", resp.Status)
		})
	}

	// Malformed and unknown ids on the detail routes.
	rec, _ := env.do(http.MethodGet, "/api/v1/registrations/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(http.MethodGet, "/api/v1/registrations/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(http.MethodPost, "/api/v1/registrations/999/complete", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(http.MethodDelete, "/api/v1/registrations/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(http.MethodGet, "/api/v1/registrations?visit_date=not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
