package model

import "time"

type Patient struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	ContactInfo *string    `db:"contact_info" json:"contact_info,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
}

type CreatePatientRequest struct {
	Name        string     `json:"name" binding:"required,max=100"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	ContactInfo *string    `json:"contact_info" binding:"omitempty,max=120"`
	Address     *string    `json:"address" binding:"omitempty,max=200"`
}
