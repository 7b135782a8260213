package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

type Service struct {
	repo        repository.DoctorRepository
	departments repository.DepartmentRepository
}

func NewService(repo repository.DoctorRepository, departments repository.DepartmentRepository) *Service {
	return &Service{repo: repo, departments: departments}
}

func (s *Service) CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("doctor name cannot be empty")
	}

	// The department must exist before a doctor can be filed under it.
	if _, err := s.departments.Get(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("department", req.DepartmentID)
		}
		return nil, apperrors.Internal(err)
	}

	doctor := &model.Doctor{
		Name:           name,
		DepartmentID:   req.DepartmentID,
		Specialization: req.Specialization,
		Contact:        req.Contact,
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create doctor: %w", err))
	}
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", id)
		}
		return nil, apperrors.Internal(err)
	}
	return doctor, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}
