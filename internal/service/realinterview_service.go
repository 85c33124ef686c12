package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/workflow"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
)

type riRepository interface {
	FindByStudent(ctx context.Context, studentID string) (*models.RealInterview, error)
	EligiblePool(ctx context.Context) ([]models.InterviewAssignmentView, error)
	Assign(ctx context.Context, studentID, volunteerID string, interviewDate *time.Time) error
	ListCompleted(ctx context.Context) ([]models.InterviewAssignmentView, error)
	Stats(ctx context.Context) (*models.RIStats, error)
}

// RIAssignRequest assigns an in-person interviewer to an eligible student.
type RIAssignRequest struct {
	StudentID     string     `json:"studentId" validate:"required"`
	VolunteerID   string     `json:"volunteerId" validate:"required"`
	InterviewDate *time.Time `json:"interviewDate"`
}

// RealInterviewService coordinates the in-person interview stage. The
// interview itself happens offline; this service manages the eligible pool
// and assignments.
type RealInterviewService struct {
	repo       riRepository
	snapshots  snapshotLoader
	volunteers volunteerFinder
	audit      auditWriter
	cache      statsCache
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	statsTTL   time.Duration
}

// NewRealInterviewService constructs the real-interview service.
func NewRealInterviewService(repo riRepository, snapshots snapshotLoader, volunteers volunteerFinder, audit auditWriter, cache statsCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, statsTTL time.Duration) *RealInterviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RealInterviewService{
		repo:       repo,
		snapshots:  snapshots,
		volunteers: volunteers,
		audit:      audit,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		statsTTL:   statsTTL,
	}
}

// EligiblePool lists students cleared for an in-person interview: approved,
// recommended by the virtual interviewer, and not yet completed. Students
// with a pending assignment remain listed so they can be reassigned.
func (s *RealInterviewService) EligiblePool(ctx context.Context) ([]models.InterviewAssignmentView, error) {
	pool, err := s.repo.EligiblePool(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list eligible students")
	}
	return pool, nil
}

// Assign puts an in-person interviewer on an eligible student.
func (s *RealInterviewService) Assign(ctx context.Context, actorID string, req RIAssignRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	volunteer, err := s.volunteers.FindByID(ctx, req.VolunteerID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch volunteer")
	}
	if volunteer == nil || !volunteer.Active {
		return appErrors.Clone(appErrors.ErrNotFound, "volunteer not found or inactive")
	}
	if volunteer.Role != models.RoleRI {
		return appErrors.Clone(appErrors.ErrValidation, "volunteer does not have the real-interview role")
	}

	snap, err := s.snapshots.Load(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := workflow.CanAssignRI(*snap); err != nil {
		return err
	}

	if err := s.repo.Assign(ctx, req.StudentID, req.VolunteerID, req.InterviewDate); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign interviewer")
	}

	s.metrics.RecordTransition(string(workflow.StageRIPending))
	if s.audit != nil {
		raw, _ := json.Marshal(map[string]string{"volunteerId": req.VolunteerID})
		if err := s.audit.Insert(ctx, &models.AuditLog{
			ActorID:    &actorID,
			Action:     models.AuditActionAssign,
			Resource:   "real_interview",
			ResourceID: &req.StudentID,
			Payload:    raw,
		}); err != nil {
			s.logger.Warn("failed to record audit log", zap.Error(err))
		}
	}
	return nil
}

// Completed lists finished in-person interviews.
func (s *RealInterviewService) Completed(ctx context.Context) ([]models.InterviewAssignmentView, error) {
	rows, err := s.repo.ListCompleted(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list completed interviews")
	}
	return rows, nil
}

// Stats summarises the real-interview pipeline, cached briefly for the
// dashboard.
func (s *RealInterviewService) Stats(ctx context.Context) (*models.RIStats, error) {
	const key = "stats:ri"
	if s.cache != nil {
		var cached models.RIStats
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return &cached, nil
		}
		s.metrics.RecordCacheOperation(false)
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute stats")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, s.statsTTL); err != nil {
			s.logger.Warn("failed to cache ri stats", zap.Error(err))
		}
	}
	return stats, nil
}
