package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type departmentRepository struct {
	db *sqlx.DB
}

func (r *departmentRepository) Create(ctx context.Context, department *model.Department) error {
	query := `
		INSERT INTO departments (name, description)
		VALUES ($1, $2)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query,
		department.Name,
		department.Description,
	).Scan(&department.ID)
	if err != nil {
		if err = mapError(err); errors.Is(err, repository.ErrConflict) {
			return err
		}
		return fmt.Errorf("failed to create department: %w", err)
	}
	return nil
}

func (r *departmentRepository) Get(ctx context.Context, id int64) (*model.Department, error) {
	query := `
		SELECT id, name, description
		FROM departments
		WHERE id = $1
	`
	var department model.Department
	err := r.db.GetContext(ctx, &department, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return &department, nil
}

func (r *departmentRepository) GetByName(ctx context.Context, name string) (*model.Department, error) {
	query := `
		SELECT id, name, description
		FROM departments
		WHERE name = $1
	`
	var department model.Department
	err := r.db.GetContext(ctx, &department, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get department by name: %w", err)
	}
	return &department, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]*model.Department, error) {
	query := `
		SELECT id, name, description
		FROM departments
		ORDER BY id ASC
	`
	var departments []*model.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}
