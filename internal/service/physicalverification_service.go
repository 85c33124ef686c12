package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maatram/scholarship-review-api/internal/ai"
	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/workflow"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
	"github.com/maatram/scholarship-review-api/pkg/jobs"
	"github.com/maatram/scholarship-review-api/pkg/storage"
)

type pvRepository interface {
	FindByStudent(ctx context.Context, studentID string) (*models.PhysicalVerification, error)
	Assign(ctx context.Context, studentID, volunteerID string) error
	ListAssigned(ctx context.Context, volunteerID string) ([]models.AssignedStudentView, error)
	SubmitReport(ctx context.Context, studentID string, propertyType, whatYouSaw, comment string, audioURL *string, at time.Time) error
	CompleteAnalysis(ctx context.Context, studentID string, status models.PVStatus, sentiment string, score float64, elementsSummary string) error
	ListReports(ctx context.Context) ([]models.PVReportView, error)
	Stats(ctx context.Context, volunteerID string) (*models.StageStats, error)
}

type mediaRepository interface {
	InsertBatch(ctx context.Context, images []models.FinalImage) error
	ListByStudent(ctx context.Context, studentID string) ([]models.FinalImage, error)
	CountAccepted(ctx context.Context, studentID string) (int, error)
}

type studentReader interface {
	FindByID(ctx context.Context, studentID string) (*models.Student, error)
	Marks(ctx context.Context, studentID string) (map[string]models.Marks, error)
	SetAdminDecision(ctx context.Context, studentID string, status models.StudentStatus, remarks string) error
}

type analyzer interface {
	CheckImageQuality(ctx context.Context, filename string, data []byte) (ai.QualityResult, error)
	AnalyzeReport(ctx context.Context, remarks string, audioKey string) (ai.ReportAnalysis, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// UploadedFile carries one multipart upload through the service layer.
type UploadedFile struct {
	Filename string
	Data     []byte
}

// PVAssignRequest assigns a field volunteer to a student's home visit.
type PVAssignRequest struct {
	StudentID   string `json:"studentId" validate:"required"`
	VolunteerID string `json:"volunteerId" validate:"required"`
}

// PVReportRequest is the volunteer's home-visit report.
type PVReportRequest struct {
	StudentID      string `json:"studentId" validate:"required"`
	PropertyType   string `json:"propertyType" validate:"required"`
	WhatYouSaw     string `json:"whatYouSaw" validate:"required"`
	Comment        string `json:"comment" validate:"required"`
	Recommendation string `json:"recommendation" validate:"required,oneof=SELECT_FOR_SCHOLARSHIP REJECT ON_HOLD"`
	AudioKey       string `json:"audioKey"`
}

// PVDecisionRequest is the admin's decision after reviewing a completed
// report.
type PVDecisionRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	Decision  string `json:"decision" validate:"required,oneof=APPROVE REJECT"`
	Remarks   string `json:"remarks" validate:"required"`
}

// analysisPayload travels through the job queue between submission and the
// pipeline worker.
type analysisPayload struct {
	StudentID      string                  `json:"studentId"`
	Recommendation models.PVRecommendation `json:"recommendation"`
	Comment        string                  `json:"comment"`
	AudioKey       string                  `json:"audioKey"`
}

const analysisJobType = "pv_analysis"

// PhysicalVerificationService coordinates the home-visit stage: volunteer
// assignment, image uploads with quality screening, report submission and
// the asynchronous analysis pipeline.
type PhysicalVerificationService struct {
	repo       pvRepository
	media      mediaRepository
	students   studentReader
	snapshots  snapshotLoader
	volunteers volunteerFinder
	audit      auditWriter
	analyzer   analyzer
	queue      jobEnqueuer
	store      *storage.MediaStore
	signer     *storage.SignedURLSigner
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	minImages  int
}

// NewPhysicalVerificationService constructs the physical-verification service.
func NewPhysicalVerificationService(repo pvRepository, media mediaRepository, students studentReader, snapshots snapshotLoader, volunteers volunteerFinder, audit auditWriter, analyzer analyzer, queue jobEnqueuer, store *storage.MediaStore, signer *storage.SignedURLSigner, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, minImages int) *PhysicalVerificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if minImages < 1 {
		minImages = 1
	}
	return &PhysicalVerificationService{
		repo:       repo,
		media:      media,
		students:   students,
		snapshots:  snapshots,
		volunteers: volunteers,
		audit:      audit,
		analyzer:   analyzer,
		queue:      queue,
		store:      store,
		signer:     signer,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		minImages:  minImages,
	}
}

// SetQueue attaches the analysis queue after construction. The queue's
// worker handler is a method on this service, so the two cannot be built
// in a single pass.
func (s *PhysicalVerificationService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// Assign puts a PV volunteer on a student's home visit. A pending
// assignment is reassigned in place.
func (s *PhysicalVerificationService) Assign(ctx context.Context, actorID string, req PVAssignRequest) error {
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
	if volunteer.Role != models.RolePV {
		return appErrors.Clone(appErrors.ErrValidation, "volunteer does not have the physical-verification role")
	}

	snap, err := s.loadSnapshot(ctx, req.StudentID)
	if err != nil {
		return err
	}
	if err := workflow.CanAssignPV(*snap); err != nil {
		return err
	}

	if err := s.repo.Assign(ctx, req.StudentID, req.VolunteerID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign volunteer")
	}

	s.metrics.RecordTransition(string(workflow.StagePVPending))
	s.recordAudit(ctx, actorID, models.AuditActionAssign, req.StudentID, map[string]interface{}{"volunteerId": req.VolunteerID})
	return nil
}

// Queue returns the volunteer's pending visit list.
func (s *PhysicalVerificationService) Queue(ctx context.Context, volunteerID string) ([]models.AssignedStudentView, error) {
	queue, err := s.repo.ListAssigned(ctx, volunteerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned students")
	}
	return queue, nil
}

// QualityCheckBatch screens a batch of candidate images without storing
// anything, so the volunteer can retake bad shots in the field.
func (s *PhysicalVerificationService) QualityCheckBatch(ctx context.Context, files []UploadedFile) ([]models.QualityCheckResult, error) {
	if len(files) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no images provided")
	}
	results := make([]models.QualityCheckResult, 0, len(files))
	for _, file := range files {
		verdict, err := s.analyzer.CheckImageQuality(ctx, file.Filename, file.Data)
		if err != nil {
			s.logger.Warn("image quality check failed", zap.String("filename", file.Filename), zap.Error(err))
			results = append(results, models.QualityCheckResult{Filename: file.Filename, Status: models.ImageQualityBad, Reason: "quality service unavailable"})
			continue
		}
		results = append(results, models.QualityCheckResult{Filename: file.Filename, Status: verdict.Status, Reason: verdict.Reason})
	}
	return results, nil
}

// FinalUploadBatch screens and stores the volunteer's final image set for a
// student. Only quality-accepted images are persisted; the batch fails when
// the accepted count would stay below the configured floor.
func (s *PhysicalVerificationService) FinalUploadBatch(ctx context.Context, volunteerID, studentID string, files []UploadedFile) ([]models.QualityCheckResult, error) {
	if len(files) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no images provided")
	}

	snap, err := s.loadSnapshot(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if snap.PV == nil || snap.PV.VolunteerID != volunteerID {
		return nil, appErrors.Clone(appErrors.ErrNotAssigned, "")
	}
	if snap.PV.Status != models.PVStatusAssigned {
		return nil, appErrors.Clone(appErrors.ErrStageConflict, "physical verification already submitted")
	}

	results := make([]models.QualityCheckResult, 0, len(files))
	accepted := make([]models.FinalImage, 0, len(files))
	for _, file := range files {
		verdict, err := s.analyzer.CheckImageQuality(ctx, file.Filename, file.Data)
		if err != nil {
			s.logger.Warn("image quality check failed", zap.String("filename", file.Filename), zap.Error(err))
			results = append(results, models.QualityCheckResult{Filename: file.Filename, Status: models.ImageQualityBad, Reason: "quality service unavailable"})
			continue
		}
		if verdict.Status != models.ImageQualityGood {
			results = append(results, models.QualityCheckResult{Filename: file.Filename, Status: verdict.Status, Reason: verdict.Reason})
			continue
		}

		key, err := s.store.Save(studentID, file.Filename, file.Data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store image")
		}
		image := models.FinalImage{
			StudentID:     studentID,
			ImageKey:      key,
			QualityStatus: models.ImageQualityGood,
			IssuesFound:   verdict.Issues,
		}
		if verdict.Reason != "" {
			image.ConditionResult = &verdict.Reason
		}
		accepted = append(accepted, image)
		results = append(results, models.QualityCheckResult{Filename: file.Filename, Status: models.ImageQualityGood})
	}

	existing, err := s.media.CountAccepted(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count stored images")
	}
	if existing+len(accepted) < s.minImages {
		return results, appErrors.Clone(appErrors.ErrPrecondition, "minimum quality-accepted image count not met")
	}

	if err := s.media.InsertBatch(ctx, accepted); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store images")
	}
	return results, nil
}

// SaveAudio stores a voice note recorded during the visit and returns its
// storage key. Recordings can run long, so the upload is streamed into the
// temp area and only promoted once the copy completes; aborted uploads are
// left for the temp cleanup job.
func (s *PhysicalVerificationService) SaveAudio(ctx context.Context, volunteerID, studentID, filename string, audio io.Reader) (string, error) {
	snap, err := s.loadSnapshot(ctx, studentID)
	if err != nil {
		return "", err
	}
	if snap.PV == nil || snap.PV.VolunteerID != volunteerID {
		return "", appErrors.Clone(appErrors.ErrNotAssigned, "")
	}
	tempName, err := s.store.SaveStream(filename, audio)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store audio")
	}
	key, err := s.store.Promote(tempName, studentID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store audio")
	}
	return key, nil
}

// ImageCount reports how many quality-accepted images are stored for the
// student, so the client can show progress toward the floor.
func (s *PhysicalVerificationService) ImageCount(ctx context.Context, studentID string) (int, error) {
	count, err := s.media.CountAccepted(ctx, studentID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count stored images")
	}
	return count, nil
}

// Images lists the stored images for a student with signed download URLs.
func (s *PhysicalVerificationService) Images(ctx context.Context, studentID string) ([]models.ImageView, error) {
	images, err := s.media.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch images")
	}
	views := make([]models.ImageView, 0, len(images))
	for _, img := range images {
		view := models.ImageView{Condition: img.ConditionResult, Quality: img.QualityStatus, Issues: []string{}}
		if len(img.IssuesFound) > 0 {
			if err := json.Unmarshal(img.IssuesFound, &view.Issues); err != nil {
				s.logger.Warn("malformed issues payload", zap.Int64("imageId", img.ImageID))
			}
		}
		if s.signer != nil {
			if token, _, err := s.signer.Generate(studentID, img.ImageKey); err == nil {
				view.URL = "/api/media/" + token
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// SubmitReport records the volunteer's field report and hands it to the
// analysis pipeline. The record sits in PROCESSING until the pipeline
// finishes; callers poll Status.
func (s *PhysicalVerificationService) SubmitReport(ctx context.Context, volunteerID string, req PVReportRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}

	snap, err := s.loadSnapshot(ctx, req.StudentID)
	if err != nil {
		return err
	}
	if err := workflow.CanSubmitPV(*snap, volunteerID, s.minImages); err != nil {
		return err
	}

	var audioURL *string
	if req.AudioKey != "" {
		audioURL = &req.AudioKey
	}
	if err := s.repo.SubmitReport(ctx, req.StudentID, req.PropertyType, req.WhatYouSaw, req.Comment, audioURL, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit report")
	}

	payload := analysisPayload{
		StudentID:      req.StudentID,
		Recommendation: models.PVRecommendation(req.Recommendation),
		Comment:        req.Comment,
		AudioKey:       req.AudioKey,
	}
	if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: analysisJobType, Payload: payload}); err != nil {
		// The report is saved; the pipeline can be replayed by resubmitting.
		s.logger.Error("failed to enqueue analysis job", zap.String("studentId", req.StudentID), zap.Error(err))
	}

	s.metrics.RecordTransition(string(workflow.StagePVProcessing))
	s.recordAudit(ctx, volunteerID, models.AuditActionSubmitReport, req.StudentID, map[string]interface{}{
		"recommendation": req.Recommendation,
	})
	return nil
}

// ProcessAnalysis is the pipeline worker: it runs sentiment and summary
// extraction over the report, then finalises the PV status from the
// volunteer's recommendation.
func (s *PhysicalVerificationService) ProcessAnalysis(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(analysisPayload)
	if !ok {
		return errors.New("unexpected analysis payload type")
	}

	start := time.Now()
	analysis, err := s.analyzer.AnalyzeReport(ctx, payload.Comment, payload.AudioKey)
	if err != nil {
		s.metrics.RecordAnalysisJob("analysis_failed", time.Since(start))
		return err
	}

	status := payload.Recommendation.FinalStatus()
	if err := s.repo.CompleteAnalysis(ctx, payload.StudentID, status, analysis.Sentiment, analysis.Score, analysis.ElementsSummary); err != nil {
		s.metrics.RecordAnalysisJob("persist_failed", time.Since(start))
		return err
	}

	s.metrics.RecordAnalysisJob("completed", time.Since(start))
	s.metrics.RecordTransition(string(workflow.StagePVReviewed))
	s.logger.Info("analysis pipeline completed",
		zap.String("studentId", payload.StudentID),
		zap.String("status", string(status)),
		zap.String("sentiment", analysis.Sentiment))
	return nil
}

// Status returns the PV record for polling after submission.
func (s *PhysicalVerificationService) Status(ctx context.Context, volunteerID, studentID string) (*models.PhysicalVerification, error) {
	pv, err := s.repo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch physical verification")
	}
	if pv == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "physical verification not found")
	}
	if pv.VolunteerID != volunteerID {
		return nil, appErrors.Clone(appErrors.ErrNotAssigned, "")
	}
	return pv, nil
}

// Reports returns completed reports awaiting the admin decision.
func (s *PhysicalVerificationService) Reports(ctx context.Context) ([]models.PVReportView, error) {
	reports, err := s.repo.ListReports(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	return reports, nil
}

// Decide applies the admin's decision after physical verification: APPROVE
// moves the student into the interview pool, REJECT ends the pipeline.
// Remarks are mandatory either way.
func (s *PhysicalVerificationService) Decide(ctx context.Context, actorID string, req PVDecisionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}

	snap, err := s.loadSnapshot(ctx, req.StudentID)
	if err != nil {
		return err
	}
	if err := workflow.CanDecideAdmin(*snap); err != nil {
		return err
	}

	status := models.StudentStatusApproved
	if req.Decision == "REJECT" {
		status = models.StudentStatusRejected
	}
	if err := s.students.SetAdminDecision(ctx, req.StudentID, status, req.Remarks); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record decision")
	}

	s.metrics.RecordTransition(string(status))
	s.recordAudit(ctx, actorID, models.AuditActionReview, req.StudentID, map[string]interface{}{
		"decision": req.Decision,
	})
	return nil
}

// Bundle assembles the full applicant view for reviewers: student fields,
// stage records, marks, and signed URLs for stored media.
func (s *PhysicalVerificationService) Bundle(ctx context.Context, studentID string) (*models.StudentBundle, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	snap, err := s.loadSnapshot(ctx, studentID)
	if err != nil {
		return nil, err
	}

	bundle := &models.StudentBundle{Student: *student, TV: snap.TV, PV: snap.PV, Images: []models.ImageView{}}

	marks, err := s.students.Marks(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch marks")
	}
	if m, ok := marks["10"]; ok {
		bundle.Marks10 = &m
	}
	if m, ok := marks["12"]; ok {
		bundle.Marks12 = &m
	}

	images, err := s.media.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch images")
	}
	for _, img := range images {
		view := models.ImageView{Condition: img.ConditionResult, Quality: img.QualityStatus, Issues: []string{}}
		if len(img.IssuesFound) > 0 {
			if err := json.Unmarshal(img.IssuesFound, &view.Issues); err != nil {
				s.logger.Warn("malformed issues payload", zap.Int64("imageId", img.ImageID))
			}
		}
		if s.signer != nil {
			if token, _, err := s.signer.Generate(studentID, img.ImageKey); err == nil {
				view.URL = "/api/media/" + token
			}
		}
		bundle.Images = append(bundle.Images, view)
	}

	if snap.PV != nil && snap.PV.AudioURL != nil && s.signer != nil {
		if token, _, err := s.signer.Generate(studentID, *snap.PV.AudioURL); err == nil {
			url := "/api/media/" + token
			bundle.AudioURL = &url
		}
	}
	return bundle, nil
}

// Stats summarises the volunteer's workload.
func (s *PhysicalVerificationService) Stats(ctx context.Context, volunteerID string) (*models.StageStats, error) {
	stats, err := s.repo.Stats(ctx, volunteerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute stats")
	}
	return stats, nil
}

func (s *PhysicalVerificationService) loadSnapshot(ctx context.Context, studentID string) (*workflow.Snapshot, error) {
	snap, err := s.snapshots.Load(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return snap, nil
}

func (s *PhysicalVerificationService) recordAudit(ctx context.Context, actorID, action, resourceID string, payload map[string]interface{}) {
	if s.audit == nil {
		return
	}
	raw, _ := json.Marshal(payload)
	if err := s.audit.Insert(ctx, &models.AuditLog{
		ActorID:    &actorID,
		Action:     action,
		Resource:   "physical_verification",
		ResourceID: &resourceID,
		Payload:    raw,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
