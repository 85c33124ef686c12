package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/workflow"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
)

type viRepository interface {
	FindByStudent(ctx context.Context, studentID string) (*models.VirtualInterview, error)
	Assign(ctx context.Context, studentID, volunteerID string) error
	ListAssigned(ctx context.Context, volunteerID string) ([]models.AssignedStudentView, error)
	SubmitOutcome(ctx context.Context, studentID string, status models.VIStatus, recommendation models.VIRecommendation, comments string, at time.Time) error
	Pool(ctx context.Context) ([]models.InterviewAssignmentView, error)
	ListAll(ctx context.Context) ([]models.InterviewAssignmentView, error)
	Stats(ctx context.Context, volunteerID string) (*models.StageStats, error)
}

// interviewerResolver looks up interviewers by login ID or email; the
// assignment screen accepts either.
type interviewerResolver interface {
	FindByID(ctx context.Context, volunteerID string) (*models.Volunteer, error)
	FindByEmail(ctx context.Context, email string) (*models.Volunteer, error)
}

// VIAssignRequest assigns or reassigns an interviewer to a student. The
// volunteer may be referenced by login ID or email address.
type VIAssignRequest struct {
	StudentID   string `json:"studentId" validate:"required"`
	VolunteerID string `json:"volunteerId" validate:"required"`
}

// VIOutcomeRequest is the interviewer's verdict. Remarks carry the whole
// interview record, so a substantial write-up is required.
type VIOutcomeRequest struct {
	StudentID      string `json:"studentId" validate:"required"`
	Recommendation string `json:"recommendation" validate:"required,oneof=SELECT REJECT ON_HOLD"`
	Remarks        string `json:"remarks" validate:"required"`
}

// VirtualInterviewService coordinates the remote interview stage.
type VirtualInterviewService struct {
	repo       viRepository
	snapshots  snapshotLoader
	volunteers interviewerResolver
	audit      auditWriter
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	minRemarks int
}

// NewVirtualInterviewService constructs the virtual-interview service.
func NewVirtualInterviewService(repo viRepository, snapshots snapshotLoader, volunteers interviewerResolver, audit auditWriter, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, minRemarks int) *VirtualInterviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if minRemarks <= 0 {
		minRemarks = 50
	}
	return &VirtualInterviewService{
		repo:       repo,
		snapshots:  snapshots,
		volunteers: volunteers,
		audit:      audit,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		minRemarks: minRemarks,
	}
}

// Pool lists approved students available for interviewer assignment.
func (s *VirtualInterviewService) Pool(ctx context.Context) ([]models.InterviewAssignmentView, error) {
	pool, err := s.repo.Pool(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list interview pool")
	}
	return pool, nil
}

// Assign puts an interviewer on a student. Reassigning a pending interview
// overwrites the volunteer and resets the record; a submitted interview
// cannot be reassigned.
func (s *VirtualInterviewService) Assign(ctx context.Context, actorID string, req VIAssignRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	volunteer, err := s.resolveInterviewer(ctx, req.VolunteerID)
	if err != nil {
		return err
	}

	snap, err := s.snapshots.Load(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := workflow.CanAssignVI(*snap); err != nil {
		return err
	}

	if err := s.repo.Assign(ctx, req.StudentID, volunteer.VolunteerID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign interviewer")
	}

	s.metrics.RecordTransition(string(workflow.StageVIPending))
	s.recordAudit(ctx, actorID, models.AuditActionAssign, req.StudentID, map[string]interface{}{"volunteerId": volunteer.VolunteerID})
	return nil
}

func (s *VirtualInterviewService) resolveInterviewer(ctx context.Context, ref string) (*models.Volunteer, error) {
	var (
		volunteer *models.Volunteer
		err       error
	)
	if strings.Contains(ref, "@") {
		volunteer, err = s.volunteers.FindByEmail(ctx, ref)
	} else {
		volunteer, err = s.volunteers.FindByID(ctx, ref)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch volunteer")
	}
	if volunteer == nil || !volunteer.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "volunteer not found or inactive")
	}
	if volunteer.Role != models.RoleVI {
		return nil, appErrors.Clone(appErrors.ErrValidation, "volunteer does not have the virtual-interview role")
	}
	return volunteer, nil
}

// Queue returns the interviewer's pending list.
func (s *VirtualInterviewService) Queue(ctx context.Context, volunteerID string) ([]models.AssignedStudentView, error) {
	queue, err := s.repo.ListAssigned(ctx, volunteerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned students")
	}
	return queue, nil
}

// Submit records the interviewer's verdict. The remarks floor forces a
// written record substantial enough for the final decision meeting.
func (s *VirtualInterviewService) Submit(ctx context.Context, volunteerID string, req VIOutcomeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid outcome payload")
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.Remarks)) < s.minRemarks {
		return appErrors.Clone(appErrors.ErrValidation, "remarks must be substantial enough for the final review")
	}

	snap, err := s.snapshots.Load(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := workflow.CanSubmitVI(*snap, volunteerID); err != nil {
		return err
	}

	status := statusForRecommendation(models.VIRecommendation(req.Recommendation))
	if err := s.repo.SubmitOutcome(ctx, req.StudentID, status, models.VIRecommendation(req.Recommendation), req.Remarks, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit outcome")
	}

	s.metrics.RecordTransition(string(workflow.StageVIReviewed))
	s.recordAudit(ctx, volunteerID, models.AuditActionSubmitReport, req.StudentID, map[string]interface{}{
		"recommendation": req.Recommendation,
	})
	return nil
}

// ListAll returns every interview with identities for the overview screen.
func (s *VirtualInterviewService) ListAll(ctx context.Context) ([]models.InterviewAssignmentView, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list interviews")
	}
	return rows, nil
}

// Stats summarises the interviewer's workload.
func (s *VirtualInterviewService) Stats(ctx context.Context, volunteerID string) (*models.StageStats, error) {
	stats, err := s.repo.Stats(ctx, volunteerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute stats")
	}
	return stats, nil
}

// statusForRecommendation maps the interviewer's verdict to the stored
// interview status.
func statusForRecommendation(rec models.VIRecommendation) models.VIStatus {
	switch rec {
	case models.VIRecommendationSelect:
		return models.VIStatusRecommended
	case models.VIRecommendationReject:
		return models.VIStatusNotRecommended
	default:
		return models.VIStatusOnHold
	}
}

func (s *VirtualInterviewService) recordAudit(ctx context.Context, actorID, action, resourceID string, payload map[string]interface{}) {
	if s.audit == nil {
		return
	}
	raw, _ := json.Marshal(payload)
	if err := s.audit.Insert(ctx, &models.AuditLog{
		ActorID:    &actorID,
		Action:     action,
		Resource:   "virtual_interview",
		ResourceID: &resourceID,
		Payload:    raw,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
