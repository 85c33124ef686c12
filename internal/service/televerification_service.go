package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/workflow"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
)

type tvRepository interface {
	FindByStudent(ctx context.Context, studentID string) (*models.TeleVerification, error)
	BulkAssign(ctx context.Context, volunteerID string, studentIDs []string) error
	ListAssigned(ctx context.Context, volunteerID string) ([]models.AssignedStudentView, error)
	SubmitReport(ctx context.Context, studentID string, status models.TVStatus, comments string, suggestion models.TVSuggestion, at time.Time) error
	ListSubmittedReports(ctx context.Context) ([]models.TVReportView, error)
	Stats(ctx context.Context, volunteerID string) (*models.StageStats, error)
}

type snapshotLoader interface {
	Load(ctx context.Context, studentID string) (*workflow.Snapshot, error)
}

type volunteerFinder interface {
	FindByID(ctx context.Context, volunteerID string) (*models.Volunteer, error)
}

type studentStatusUpdater interface {
	UpdateStatus(ctx context.Context, studentID string, status models.StudentStatus) error
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// BulkAssignRequest assigns one TV volunteer to a batch of students.
type BulkAssignRequest struct {
	VolunteerID string   `json:"volunteerId" validate:"required"`
	StudentIDs  []string `json:"studentIds" validate:"required,min=1,dive,required"`
}

// TVReportRequest is the volunteer's call outcome.
type TVReportRequest struct {
	StudentID  string `json:"studentId" validate:"required"`
	Status     string `json:"status" validate:"required,oneof=VERIFIED REJECTED"`
	Comments   string `json:"comments" validate:"required"`
	Suggestion string `json:"suggestion" validate:"required,oneof=SELECT REJECT ON_HOLD"`
}

// TVReviewRequest is the admin's decision on a submitted report.
type TVReviewRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	Decision  string `json:"decision" validate:"required,oneof=SELECT REJECT"`
}

// TeleVerificationService coordinates the phone-screening stage.
type TeleVerificationService struct {
	repo       tvRepository
	snapshots  snapshotLoader
	volunteers volunteerFinder
	students   studentStatusUpdater
	audit      auditWriter
	cache      statsCache
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	statsTTL   time.Duration
}

// NewTeleVerificationService constructs the tele-verification service.
func NewTeleVerificationService(repo tvRepository, snapshots snapshotLoader, volunteers volunteerFinder, students studentStatusUpdater, audit auditWriter, cache statsCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, statsTTL time.Duration) *TeleVerificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeleVerificationService{
		repo:       repo,
		snapshots:  snapshots,
		volunteers: volunteers,
		students:   students,
		audit:      audit,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		statsTTL:   statsTTL,
	}
}

// BulkAssign assigns a batch of students to one TV volunteer. The whole
// batch is validated before any write, and the write itself is a single
// transaction; either every student is assigned or none are.
func (s *TeleVerificationService) BulkAssign(ctx context.Context, actorID string, req BulkAssignRequest) error {
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
	if volunteer.Role != models.RoleTV {
		return appErrors.Clone(appErrors.ErrValidation, "volunteer does not have the tele-verification role")
	}

	for _, studentID := range req.StudentIDs {
		snap, err := s.snapshots.Load(ctx, studentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", studentID))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		if err := workflow.CanAssignTV(*snap); err != nil {
			return err
		}
	}

	if err := s.repo.BulkAssign(ctx, req.VolunteerID, req.StudentIDs); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign students")
	}

	s.metrics.RecordTransition(string(workflow.StageTVPending))
	s.recordAudit(ctx, actorID, models.AuditActionAssign, "televerification", req.VolunteerID, map[string]interface{}{
		"studentIds": req.StudentIDs,
	})
	return nil
}

// Queue returns the volunteer's pending call list.
func (s *TeleVerificationService) Queue(ctx context.Context, volunteerID string) ([]models.AssignedStudentView, error) {
	queue, err := s.repo.ListAssigned(ctx, volunteerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned students")
	}
	return queue, nil
}

// SubmitReport records a volunteer's call outcome for an assigned student.
func (s *TeleVerificationService) SubmitReport(ctx context.Context, volunteerID string, req TVReportRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}

	snap, err := s.snapshots.Load(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := workflow.CanSubmitTV(*snap, volunteerID); err != nil {
		return err
	}

	if err := s.repo.SubmitReport(ctx, req.StudentID, models.TVStatus(req.Status), req.Comments, models.TVSuggestion(req.Suggestion), time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit report")
	}

	s.metrics.RecordTransition(string(workflow.StageTVReviewed))
	s.recordAudit(ctx, volunteerID, models.AuditActionSubmitReport, "televerification", req.StudentID, map[string]interface{}{
		"status":     req.Status,
		"suggestion": req.Suggestion,
	})
	return nil
}

// Reports returns submitted reports still awaiting admin review.
func (s *TeleVerificationService) Reports(ctx context.Context) ([]models.TVReportView, error) {
	reports, err := s.repo.ListSubmittedReports(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	return reports, nil
}

// Review applies the admin's decision on a submitted tele-verification:
// SELECT advances the student into the home-visit pool, REJECT drops them
// from the pipeline.
func (s *TeleVerificationService) Review(ctx context.Context, actorID string, req TVReviewRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	snap, err := s.snapshots.Load(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := workflow.CanReviewTV(*snap); err != nil {
		return err
	}

	status := models.StudentStatusPV
	if req.Decision == "REJECT" {
		status = models.StudentStatusRejected
	}
	if err := s.students.UpdateStatus(ctx, req.StudentID, status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	s.metrics.RecordTransition(string(status))
	s.recordAudit(ctx, actorID, models.AuditActionReview, "televerification", req.StudentID, map[string]interface{}{
		"decision": req.Decision,
	})
	return nil
}

// Stats returns the volunteer's workload summary, cached briefly to keep
// dashboard polling cheap.
func (s *TeleVerificationService) Stats(ctx context.Context, volunteerID string) (*models.StageStats, error) {
	key := "stats:tv:" + volunteerID
	if s.cache != nil {
		var cached models.StageStats
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return &cached, nil
		}
		s.metrics.RecordCacheOperation(false)
	}

	stats, err := s.repo.Stats(ctx, volunteerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute stats")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, s.statsTTL); err != nil {
			s.logger.Warn("failed to cache tv stats", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *TeleVerificationService) recordAudit(ctx context.Context, actorID, action, resource, resourceID string, payload map[string]interface{}) {
	if s.audit == nil {
		return
	}
	raw, _ := json.Marshal(payload)
	if err := s.audit.Insert(ctx, &models.AuditLog{
		ActorID:    &actorID,
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		Payload:    raw,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
