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

type finalStudentRepository interface {
	FindByID(ctx context.Context, studentID string) (*models.Student, error)
	UpdateStatus(ctx context.Context, studentID string, status models.StudentStatus) error
	SetFinalDecision(ctx context.Context, studentID string, decision models.FinalDecision, remarks string, at time.Time) error
}

type riCompleter interface {
	Complete(ctx context.Context, studentID string, recommendation string, remarks string, at time.Time) error
}

type selectedLister interface {
	ListSelected(ctx context.Context, decision models.FinalDecision) ([]models.SelectedStudentView, error)
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// FinalDecisionRequest carries the superadmin's verdict. The in-person
// interview happens offline, so its outcome is entered in the same call.
type FinalDecisionRequest struct {
	StudentID        string `json:"studentId" validate:"required"`
	Decision         string `json:"decision" validate:"required,oneof=SELECTED REJECTED"`
	Remarks          string `json:"remarks" validate:"required"`
	InterviewOutcome string `json:"interviewOutcome" validate:"required"`
	InterviewRemarks string `json:"interviewRemarks" validate:"required"`
}

// FinalDecisionService records the end-of-pipeline scholarship verdict.
type FinalDecisionService struct {
	students   finalStudentRepository
	interviews riCompleter
	selected   selectedLister
	snapshots  snapshotLoader
	audit      auditWriter
	cache      cacheInvalidator
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewFinalDecisionService constructs the final-decision service.
func NewFinalDecisionService(students finalStudentRepository, interviews riCompleter, selected selectedLister, snapshots snapshotLoader, audit auditWriter, cache cacheInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *FinalDecisionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinalDecisionService{
		students:   students,
		interviews: interviews,
		selected:   selected,
		snapshots:  snapshots,
		audit:      audit,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
	}
}

// Decide records the interview outcome and the scholarship verdict. Remarks
// are mandatory in both directions; a decision is final and cannot be
// re-entered.
func (s *FinalDecisionService) Decide(ctx context.Context, actorID string, req FinalDecisionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}

	snap, err := s.snapshots.Load(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := workflow.CanDecideFinal(*snap); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.interviews.Complete(ctx, req.StudentID, req.InterviewOutcome, req.InterviewRemarks, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrPrecondition, "real interview not assigned")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record interview outcome")
	}

	decision := models.FinalDecision(req.Decision)
	if err := s.students.SetFinalDecision(ctx, req.StudentID, decision, req.Remarks, now); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record decision")
	}
	if decision == models.FinalDecisionRejected {
		if err := s.students.UpdateStatus(ctx, req.StudentID, models.StudentStatusRejected); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student status")
		}
	}

	s.metrics.RecordTransition(string(workflow.StageFinalDecided))
	if s.cache != nil {
		// the decision shifts every dashboard aggregate
		if err := s.cache.DeleteByPattern(ctx, "analytics:*"); err != nil {
			s.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
		}
	}
	if s.audit != nil {
		raw, _ := json.Marshal(map[string]string{"decision": req.Decision})
		if err := s.audit.Insert(ctx, &models.AuditLog{
			ActorID:    &actorID,
			Action:     models.AuditActionFinalDecision,
			Resource:   "student",
			ResourceID: &req.StudentID,
			Payload:    raw,
		}); err != nil {
			s.logger.Warn("failed to record audit log", zap.Error(err))
		}
	}
	return nil
}

// SelectedStudents lists decided students joined with their educational
// details.
func (s *FinalDecisionService) SelectedStudents(ctx context.Context, decision models.FinalDecision) ([]models.SelectedStudentView, error) {
	if decision == "" {
		decision = models.FinalDecisionSelected
	}
	rows, err := s.selected.ListSelected(ctx, decision)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list selected students")
	}
	return rows, nil
}

// Profile assembles the full cross-stage view of one applicant.
func (s *FinalDecisionService) Profile(ctx context.Context, studentID string) (*models.StudentProfile, error) {
	snap, err := s.snapshots.Load(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return &models.StudentProfile{
		Student:   snap.Student,
		TV:        snap.TV,
		PV:        snap.PV,
		VI:        snap.VI,
		RI:        snap.RI,
		Education: snap.Education,
	}, nil
}
