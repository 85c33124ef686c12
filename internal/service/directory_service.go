package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/maatram/scholarship-review-api/internal/models"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
)

type volunteerLister interface {
	List(ctx context.Context, filter models.VolunteerFilter) ([]models.Volunteer, error)
}

type studentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	CountByStatus(ctx context.Context) (map[models.StudentStatus]int, error)
}

// DirectoryService serves the roster listings behind assignment screens:
// volunteers by role, students by pipeline status.
type DirectoryService struct {
	volunteers volunteerLister
	students   studentLister
	logger     *zap.Logger
}

// NewDirectoryService constructs the directory service.
func NewDirectoryService(volunteers volunteerLister, students studentLister, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{volunteers: volunteers, students: students, logger: logger}
}

// Volunteers lists active volunteers holding the given role.
func (s *DirectoryService) Volunteers(ctx context.Context, role models.Role) ([]models.Volunteer, error) {
	active := true
	rows, err := s.volunteers.List(ctx, models.VolunteerFilter{Role: role, Active: &active})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list volunteers")
	}
	return rows, nil
}

// StudentsByStatus pages through students at the given pipeline status.
func (s *DirectoryService) StudentsByStatus(ctx context.Context, status models.StudentStatus, page, pageSize int) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.students.List(ctx, models.StudentFilter{Status: status, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return students, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// StatusCounts aggregates students per pipeline status for dashboards.
func (s *DirectoryService) StatusCounts(ctx context.Context) (map[models.StudentStatus]int, error) {
	counts, err := s.students.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	return counts, nil
}
