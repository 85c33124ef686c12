package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maatram/scholarship-review-api/internal/ai"
	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/workflow"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
	"github.com/maatram/scholarship-review-api/pkg/jobs"
	"github.com/maatram/scholarship-review-api/pkg/storage"
)

type mockPVRepo struct {
	records     map[string]*models.PhysicalVerification
	submitted   []string
	completed   map[string]models.PVStatus
	completeErr error
}

func (m *mockPVRepo) FindByStudent(ctx context.Context, studentID string) (*models.PhysicalVerification, error) {
	return m.records[studentID], nil
}

func (m *mockPVRepo) Assign(ctx context.Context, studentID, volunteerID string) error {
	if m.records == nil {
		m.records = make(map[string]*models.PhysicalVerification)
	}
	m.records[studentID] = &models.PhysicalVerification{StudentID: studentID, VolunteerID: volunteerID, Status: models.PVStatusAssigned}
	return nil
}

func (m *mockPVRepo) ListAssigned(ctx context.Context, volunteerID string) ([]models.AssignedStudentView, error) {
	return nil, nil
}

func (m *mockPVRepo) SubmitReport(ctx context.Context, studentID string, propertyType, whatYouSaw, comment string, audioURL *string, at time.Time) error {
	m.submitted = append(m.submitted, studentID)
	return nil
}

func (m *mockPVRepo) CompleteAnalysis(ctx context.Context, studentID string, status models.PVStatus, sentiment string, score float64, elementsSummary string) error {
	if m.completeErr != nil {
		return m.completeErr
	}
	if m.completed == nil {
		m.completed = make(map[string]models.PVStatus)
	}
	m.completed[studentID] = status
	return nil
}

func (m *mockPVRepo) ListReports(ctx context.Context) ([]models.PVReportView, error) {
	return nil, nil
}

func (m *mockPVRepo) Stats(ctx context.Context, volunteerID string) (*models.StageStats, error) {
	return &models.StageStats{}, nil
}

type mockMediaRepo struct {
	inserted []models.FinalImage
	accepted int
}

func (m *mockMediaRepo) InsertBatch(ctx context.Context, images []models.FinalImage) error {
	m.inserted = append(m.inserted, images...)
	return nil
}

func (m *mockMediaRepo) ListByStudent(ctx context.Context, studentID string) ([]models.FinalImage, error) {
	return m.inserted, nil
}

func (m *mockMediaRepo) CountAccepted(ctx context.Context, studentID string) (int, error) {
	return m.accepted, nil
}

type mockStudentReader struct {
	students  map[string]*models.Student
	decisions map[string]models.StudentStatus
}

func (m *mockStudentReader) FindByID(ctx context.Context, studentID string) (*models.Student, error) {
	return m.students[studentID], nil
}

func (m *mockStudentReader) Marks(ctx context.Context, studentID string) (map[string]models.Marks, error) {
	return nil, nil
}

func (m *mockStudentReader) SetAdminDecision(ctx context.Context, studentID string, status models.StudentStatus, remarks string) error {
	if m.decisions == nil {
		m.decisions = make(map[string]models.StudentStatus)
	}
	m.decisions[studentID] = status
	return nil
}

type mockAnalyzer struct {
	badFiles   map[string]string
	checkErr   error
	analysis   ai.ReportAnalysis
	analyzeErr error
}

func (m *mockAnalyzer) CheckImageQuality(ctx context.Context, filename string, data []byte) (ai.QualityResult, error) {
	if m.checkErr != nil {
		return ai.QualityResult{}, m.checkErr
	}
	if reason, ok := m.badFiles[filename]; ok {
		return ai.QualityResult{Status: models.ImageQualityBad, Reason: reason}, nil
	}
	return ai.QualityResult{Status: models.ImageQualityGood}, nil
}

func (m *mockAnalyzer) AnalyzeReport(ctx context.Context, remarks, audioKey string) (ai.ReportAnalysis, error) {
	if m.analyzeErr != nil {
		return ai.ReportAnalysis{}, m.analyzeErr
	}
	return m.analysis, nil
}

type mockQueue struct {
	jobs []jobs.Job
	err  error
}

func (m *mockQueue) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func assignedPVSnapshot(volunteerID string, acceptedImages int) *workflow.Snapshot {
	return &workflow.Snapshot{
		Student:        models.Student{StudentID: "MTR001", Status: models.StudentStatusPV},
		PV:             &models.PhysicalVerification{StudentID: "MTR001", VolunteerID: volunteerID, Status: models.PVStatusAssigned},
		AcceptedImages: acceptedImages,
	}
}

func newPVService(t *testing.T, repo *mockPVRepo, media *mockMediaRepo, students *mockStudentReader, snapshots *mockSnapshotLoader, analyzer *mockAnalyzer, queue *mockQueue) *PhysicalVerificationService {
	t.Helper()
	store, err := storage.NewMediaStore(t.TempDir(), "")
	require.NoError(t, err)
	return NewPhysicalVerificationService(repo, media, students, snapshots, &mockVolunteerFinder{}, &mockAuditRepo{}, analyzer, queue, store, nil, NewMetricsService(), nil, nil, 3)
}

func TestFinalUploadBatchEnforcesImageFloor(t *testing.T) {
	media := &mockMediaRepo{}
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": assignedPVSnapshot("PV001", 0)}}
	analyzer := &mockAnalyzer{badFiles: map[string]string{"blurry.jpg": "image too blurry"}}
	svc := newPVService(t, &mockPVRepo{}, media, &mockStudentReader{}, snapshots, analyzer, &mockQueue{})

	// two accepted out of three is below the floor of three; nothing persists
	results, err := svc.FinalUploadBatch(context.Background(), "PV001", "MTR001", []UploadedFile{
		{Filename: "front.jpg", Data: []byte("a")},
		{Filename: "blurry.jpg", Data: []byte("b")},
		{Filename: "kitchen.jpg", Data: []byte("c")},
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "PRECONDITION_FAILED", appErr.Code)
	assert.Len(t, results, 3)
	assert.Empty(t, media.inserted)
}

func TestFinalUploadBatchStoresAcceptedImages(t *testing.T) {
	media := &mockMediaRepo{accepted: 1}
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": assignedPVSnapshot("PV001", 1)}}
	svc := newPVService(t, &mockPVRepo{}, media, &mockStudentReader{}, snapshots, &mockAnalyzer{}, &mockQueue{})

	results, err := svc.FinalUploadBatch(context.Background(), "PV001", "MTR001", []UploadedFile{
		{Filename: "front.jpg", Data: []byte("a")},
		{Filename: "interior.jpg", Data: []byte("b")},
	})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	require.Len(t, media.inserted, 2)
	for _, img := range media.inserted {
		assert.Equal(t, "MTR001", img.StudentID)
		assert.Equal(t, models.ImageQualityGood, img.QualityStatus)
		assert.NotEmpty(t, img.ImageKey)
	}
}

func TestFinalUploadBatchOwnership(t *testing.T) {
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": assignedPVSnapshot("PV001", 0)}}
	svc := newPVService(t, &mockPVRepo{}, &mockMediaRepo{}, &mockStudentReader{}, snapshots, &mockAnalyzer{}, &mockQueue{})

	_, err := svc.FinalUploadBatch(context.Background(), "PV999", "MTR001", []UploadedFile{{Filename: "front.jpg", Data: []byte("a")}})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_ASSIGNED", appErr.Code)
}

func TestSubmitReportEnqueuesAnalysis(t *testing.T) {
	repo := &mockPVRepo{}
	queue := &mockQueue{}
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": assignedPVSnapshot("PV001", 3)}}
	svc := newPVService(t, repo, &mockMediaRepo{}, &mockStudentReader{}, snapshots, &mockAnalyzer{}, queue)

	err := svc.SubmitReport(context.Background(), "PV001", PVReportRequest{
		StudentID:      "MTR001",
		PropertyType:   "Rented house",
		WhatYouSaw:     "Single-room tenement shared by five",
		Comment:        "Family depends on a single daily-wage income",
		Recommendation: "SELECT_FOR_SCHOLARSHIP",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"MTR001"}, repo.submitted)
	require.Len(t, queue.jobs, 1)
	payload, ok := queue.jobs[0].Payload.(analysisPayload)
	require.True(t, ok)
	assert.Equal(t, "MTR001", payload.StudentID)
	assert.Equal(t, models.PVRecommendationSelect, payload.Recommendation)
}

func TestSubmitReportRequiresImageFloor(t *testing.T) {
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": assignedPVSnapshot("PV001", 2)}}
	svc := newPVService(t, &mockPVRepo{}, &mockMediaRepo{}, &mockStudentReader{}, snapshots, &mockAnalyzer{}, &mockQueue{})

	err := svc.SubmitReport(context.Background(), "PV001", PVReportRequest{
		StudentID:      "MTR001",
		PropertyType:   "Own house",
		WhatYouSaw:     "Two-room house",
		Comment:        "Needs further verification",
		Recommendation: "ON_HOLD",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "PRECONDITION_FAILED", appErr.Code)
}

func TestSubmitReportSurvivesEnqueueFailure(t *testing.T) {
	repo := &mockPVRepo{}
	queue := &mockQueue{err: errors.New("queue stopped")}
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": assignedPVSnapshot("PV001", 3)}}
	svc := newPVService(t, repo, &mockMediaRepo{}, &mockStudentReader{}, snapshots, &mockAnalyzer{}, queue)

	err := svc.SubmitReport(context.Background(), "PV001", PVReportRequest{
		StudentID:      "MTR001",
		PropertyType:   "Rented house",
		WhatYouSaw:     "Asbestos-roof dwelling",
		Comment:        "Genuine need observed during the visit",
		Recommendation: "SELECT_FOR_SCHOLARSHIP",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"MTR001"}, repo.submitted)
}

func TestProcessAnalysisFinalisesStatus(t *testing.T) {
	repo := &mockPVRepo{}
	analyzer := &mockAnalyzer{analysis: ai.ReportAnalysis{Sentiment: "POSITIVE", Score: 0.92, ElementsSummary: "single income, strong academics"}}
	svc := newPVService(t, repo, &mockMediaRepo{}, &mockStudentReader{}, &mockSnapshotLoader{}, analyzer, &mockQueue{})

	err := svc.ProcessAnalysis(context.Background(), jobs.Job{
		ID:   "job-1",
		Type: "pv_analysis",
		Payload: analysisPayload{
			StudentID:      "MTR001",
			Recommendation: models.PVRecommendationSelect,
			Comment:        "Family depends on a single daily-wage income",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PVStatusSelect, repo.completed["MTR001"])
}

func TestProcessAnalysisPropagatesAnalyzerFailure(t *testing.T) {
	repo := &mockPVRepo{}
	analyzer := &mockAnalyzer{analyzeErr: errors.New("sentiment service down")}
	svc := newPVService(t, repo, &mockMediaRepo{}, &mockStudentReader{}, &mockSnapshotLoader{}, analyzer, &mockQueue{})

	err := svc.ProcessAnalysis(context.Background(), jobs.Job{
		ID:      "job-2",
		Type:    "pv_analysis",
		Payload: analysisPayload{StudentID: "MTR001", Recommendation: models.PVRecommendationReject},
	})
	require.Error(t, err)
	assert.Empty(t, repo.completed)
}

func TestSaveAudioStreamsIntoStudentUploads(t *testing.T) {
	base := t.TempDir()
	store, err := storage.NewMediaStore(base, "")
	require.NoError(t, err)
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": assignedPVSnapshot("PV001", 0)}}
	svc := NewPhysicalVerificationService(&mockPVRepo{}, &mockMediaRepo{}, &mockStudentReader{}, snapshots, &mockVolunteerFinder{}, &mockAuditRepo{}, &mockAnalyzer{}, &mockQueue{}, store, nil, NewMetricsService(), nil, nil, 3)

	key, err := svc.SaveAudio(context.Background(), "PV001", "MTR001", "visit_note.ogg", strings.NewReader("voice note payload"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "uploads/MTR001/"))

	file, err := store.Open(key)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "voice note payload", string(data))

	// nothing stays staged once the note is promoted
	entries, err := os.ReadDir(filepath.Join(base, "tmp"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = svc.SaveAudio(context.Background(), "PV999", "MTR001", "visit_note.ogg", strings.NewReader("x"))
	require.Error(t, err)
}

func TestDecideApprovesStudent(t *testing.T) {
	students := &mockStudentReader{}
	snap := assignedPVSnapshot("PV001", 3)
	snap.Student.Status = models.StudentStatusPending
	snap.PV.Status = models.PVStatusSelect
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": snap}}
	svc := newPVService(t, &mockPVRepo{}, &mockMediaRepo{}, students, snapshots, &mockAnalyzer{}, &mockQueue{})

	err := svc.Decide(context.Background(), "AD01", PVDecisionRequest{
		StudentID: "MTR001",
		Decision:  "APPROVE",
		Remarks:   "Field report confirms need",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusApproved, students.decisions["MTR001"])
}
