package model

import "time"

type RegistrationStatus string

const (
	RegistrationStatusScheduled RegistrationStatus = "scheduled"
	RegistrationStatusCompleted RegistrationStatus = "completed"
	RegistrationStatusCancelled RegistrationStatus = "cancelled"
)

// StatusFilterUnset is the list-filter sentinel matching registrations
// whose status was never set.
const StatusFilterUnset = "__NONE__"

type Registration struct {
	ID           int64              `db:"id" json:"id"`
	PatientID    int64              `db:"patient_id" json:"patient_id"`
	DoctorID     int64              `db:"doctor_id" json:"doctor_id"`
	DepartmentID int64              `db:"department_id" json:"department_id"`
	VisitTime    time.Time          `db:"visit_time" json:"visit_time"`
	Status       RegistrationStatus `db:"status" json:"status"`
	Symptoms     *string            `db:"symptoms" json:"symptoms,omitempty"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
}

// Active reports whether the registration still occupies its time slot.
// Cancelled registrations never block new bookings.
func (r *Registration) Active() bool {
	return r.Status != RegistrationStatusCancelled
}

type CreateRegistrationRequest struct {
	PatientID    int64     `json:"patient_id" binding:"required,gt=0"`
	DoctorID     int64     `json:"doctor_id" binding:"required,gt=0"`
	DepartmentID int64     `json:"department_id" binding:"required,gt=0"`
	VisitTime    time.Time `json:"visit_time" binding:"required"`
	Symptoms     *string   `json:"symptoms" binding:"omitempty,max=2000"`
}

// RegistrationFilters narrows ListRegistrations. Nil fields are ignored.
// Status may be StatusFilterUnset to select rows with no status.
type RegistrationFilters struct {
	DepartmentID *int64
	VisitDate    *time.Time
	Status       *string
}
