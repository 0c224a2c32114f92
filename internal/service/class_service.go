package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-admission-api/internal/models"
	appErrors "github.com/noah-isme/sma-admission-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, schoolID string) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// ClassService resolves class/grade capacity for admission assignments.
type ClassService struct {
	repo   classRepository
	logger *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(repo classRepository, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, logger: logger}
}

// List returns the classes for a school.
func (s *ClassService) List(ctx context.Context, schoolID string) ([]models.Class, error) {
	classes, err := s.repo.List(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// Get returns a class with its grades and live enrollment counts.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// AvailableGrades filters the class grades to those below capacity.
func (s *ClassService) AvailableGrades(class *models.Class) []models.Grade {
	available := make([]models.Grade, 0, len(class.Grades))
	for _, g := range class.Grades {
		if g.Available() {
			available = append(available, g)
		}
	}
	return available
}

// DefaultGrade returns the first grade with remaining capacity in
// declaration order, or nil when every grade is full.
func (s *ClassService) DefaultGrade(class *models.Class) *models.Grade {
	for i := range class.Grades {
		if class.Grades[i].Available() {
			return &class.Grades[i]
		}
	}
	return nil
}

// SelectGrade resolves the grade for an assignment. An explicit request for
// a grade at capacity is rejected: the capacity ceiling holds on every code
// path, not just when defaulting. With no request, the default grade is
// used; nil with no error means no grade could be assigned.
func (s *ClassService) SelectGrade(class *models.Class, requestedGradeID string) (*models.Grade, error) {
	if requestedGradeID == "" {
		return s.DefaultGrade(class), nil
	}
	for i := range class.Grades {
		if class.Grades[i].ID != requestedGradeID {
			continue
		}
		if !class.Grades[i].Available() {
			return nil, appErrors.Clone(appErrors.ErrGradeFull, "grade is at capacity")
		}
		return &class.Grades[i], nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found in class")
}
