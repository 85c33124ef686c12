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

type educationalRepository interface {
	FindByStudent(ctx context.Context, studentID string) (*models.EducationalDetails, error)
	Upsert(ctx context.Context, details *models.EducationalDetails) error
	FindScholarshipByStudent(ctx context.Context, studentID string) (*models.ScholarshipDetails, error)
	UpsertScholarship(ctx context.Context, details *models.ScholarshipDetails) error
}

// EducationalDetailsRequest captures a selected student's college placement.
// Year bounds keep out obvious typos without blocking legitimate records.
type EducationalDetailsRequest struct {
	StudentID     string `json:"studentId" validate:"required"`
	CollegeName   string `json:"collegeName" validate:"required"`
	Degree        string `json:"degree" validate:"required"`
	Stream        string `json:"stream" validate:"required"`
	Branch        string `json:"branch" validate:"required"`
	YearOfPassing int    `json:"yearOfPassing" validate:"required,min=1950,max=2050"`
}

// ScholarshipDetailsRequest records the grant particulars.
type ScholarshipDetailsRequest struct {
	StudentID     string     `json:"studentId" validate:"required"`
	Batch         string     `json:"batch" validate:"required"`
	College       string     `json:"college" validate:"required"`
	Branch        string     `json:"branch" validate:"required"`
	Stream        string     `json:"stream" validate:"required"`
	AdmissionDate *time.Time `json:"admissionDate"`
	Remarks       string     `json:"remarks"`
}

// EducationalService manages post-selection records.
type EducationalService struct {
	repo      educationalRepository
	snapshots snapshotLoader
	audit     auditWriter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEducationalService constructs the educational-details service.
func NewEducationalService(repo educationalRepository, snapshots snapshotLoader, audit auditWriter, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EducationalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EducationalService{repo: repo, snapshots: snapshots, audit: audit, metrics: metrics, validator: validate, logger: logger}
}

// Upsert stores the college placement for a selected student. Resubmitting
// the same payload is harmless; the row is updated in place.
func (s *EducationalService) Upsert(ctx context.Context, actorID string, req EducationalDetailsRequest) (*models.EducationalDetails, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid educational details payload")
	}

	snap, err := s.snapshots.Load(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := workflow.CanCaptureEducation(*snap); err != nil {
		return nil, err
	}

	details := &models.EducationalDetails{
		StudentID:     req.StudentID,
		CollegeName:   req.CollegeName,
		Degree:        req.Degree,
		Stream:        req.Stream,
		Branch:        req.Branch,
		YearOfPassing: req.YearOfPassing,
	}
	if err := s.repo.Upsert(ctx, details); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store educational details")
	}

	s.metrics.RecordTransition(string(workflow.StageEducationCaptured))
	s.recordAudit(ctx, actorID, req.StudentID, "educational_details")
	return details, nil
}

// Get fetches the college placement for a student.
func (s *EducationalService) Get(ctx context.Context, studentID string) (*models.EducationalDetails, error) {
	details, err := s.repo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch educational details")
	}
	if details == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "educational details not found")
	}
	return details, nil
}

// UpsertScholarship stores the grant particulars for a selected student.
func (s *EducationalService) UpsertScholarship(ctx context.Context, actorID string, req ScholarshipDetailsRequest) (*models.ScholarshipDetails, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scholarship details payload")
	}

	snap, err := s.snapshots.Load(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := workflow.CanCaptureEducation(*snap); err != nil {
		return nil, err
	}

	details := &models.ScholarshipDetails{
		StudentID:     req.StudentID,
		Batch:         req.Batch,
		College:       req.College,
		Branch:        req.Branch,
		Stream:        req.Stream,
		AdmissionDate: req.AdmissionDate,
		Remarks:       req.Remarks,
	}
	if err := s.repo.UpsertScholarship(ctx, details); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store scholarship details")
	}

	s.recordAudit(ctx, actorID, req.StudentID, "scholarship_details")
	return details, nil
}

// GetScholarship fetches the grant record for a student.
func (s *EducationalService) GetScholarship(ctx context.Context, studentID string) (*models.ScholarshipDetails, error) {
	details, err := s.repo.FindScholarshipByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch scholarship details")
	}
	if details == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "scholarship details not found")
	}
	return details, nil
}

func (s *EducationalService) recordAudit(ctx context.Context, actorID, studentID, resource string) {
	if s.audit == nil {
		return
	}
	raw, _ := json.Marshal(map[string]string{"studentId": studentID})
	if err := s.audit.Insert(ctx, &models.AuditLog{
		ActorID:    &actorID,
		Action:     models.AuditActionSubmitReport,
		Resource:   resource,
		ResourceID: &studentID,
		Payload:    raw,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.Error(err))
	}
}
