package department

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

const (
	cacheTTL        = 15 * time.Minute
	cleanupInterval = 1 * time.Hour
	listCacheKey    = "departments:all"
)

// Service manages departments. Lookups are cached: departments are
// read-heavy, never deleted in this scope, and only Create invalidates.
type Service struct {
	repo  repository.DepartmentRepository
	cache *cache.Cache
}

func NewService(repo repository.DepartmentRepository) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(cacheTTL, cleanupInterval),
	}
}

func (s *Service) CreateDepartment(ctx context.Context, req *model.CreateDepartmentRequest) (*model.Department, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("department name cannot be empty")
	}

	department := &model.Department{
		Name:        name,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, department); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.Validation("department name must be unique")
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to create department: %w", err))
	}

	s.cache.Flush()
	return department, nil
}

func (s *Service) GetDepartment(ctx context.Context, id int64) (*model.Department, error) {
	key := fmt.Sprintf("departments:%d", id)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.Department), nil
	}

	department, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("department", id)
		}
		return nil, apperrors.Internal(err)
	}

	s.cache.Set(key, department, cache.DefaultExpiration)
	return department, nil
}

func (s *Service) ListDepartments(ctx context.Context) ([]*model.Department, error) {
	if cached, ok := s.cache.Get(listCacheKey); ok {
		return cached.([]*model.Department), nil
	}

	departments, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}

	s.cache.Set(listCacheKey, departments, cache.DefaultExpiration)
	return departments, nil
}
