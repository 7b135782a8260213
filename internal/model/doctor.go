package model

type Doctor struct {
	ID             int64   `db:"id" json:"id"`
	Name           string  `db:"name" json:"name"`
	Specialization *string `db:"specialization" json:"specialization,omitempty"`
	Contact        *string `db:"contact" json:"contact,omitempty"`
	DepartmentID   int64   `db:"department_id" json:"department_id"`
}

type CreateDoctorRequest struct {
	Name           string  `json:"name" binding:"required,max=100"`
	DepartmentID   int64   `json:"department_id" binding:"required,gt=0"`
	Specialization *string `json:"specialization" binding:"omitempty,max=100"`
	Contact        *string `json:"contact" binding:"omitempty,max=120"`
}
