package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/workflow"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
)

type mockTVRepo struct {
	assignedVolunteer string
	assignedStudents  []string
	assignErr         error
	submitted         map[string]models.TVStatus
	statuses          map[string]models.StudentStatus
	stats             *models.StageStats
	statsCalls        int
}

func (m *mockTVRepo) FindByStudent(ctx context.Context, studentID string) (*models.TeleVerification, error) {
	return nil, nil
}

func (m *mockTVRepo) BulkAssign(ctx context.Context, volunteerID string, studentIDs []string) error {
	if m.assignErr != nil {
		return m.assignErr
	}
	m.assignedVolunteer = volunteerID
	m.assignedStudents = studentIDs
	return nil
}

func (m *mockTVRepo) ListAssigned(ctx context.Context, volunteerID string) ([]models.AssignedStudentView, error) {
	return nil, nil
}

func (m *mockTVRepo) SubmitReport(ctx context.Context, studentID string, status models.TVStatus, comments string, suggestion models.TVSuggestion, at time.Time) error {
	if m.submitted == nil {
		m.submitted = make(map[string]models.TVStatus)
	}
	m.submitted[studentID] = status
	return nil
}

func (m *mockTVRepo) ListSubmittedReports(ctx context.Context) ([]models.TVReportView, error) {
	return nil, nil
}

func (m *mockTVRepo) Stats(ctx context.Context, volunteerID string) (*models.StageStats, error) {
	m.statsCalls++
	return m.stats, nil
}

type mockStudentStatusRepo struct {
	statuses map[string]models.StudentStatus
}

func (m *mockStudentStatusRepo) UpdateStatus(ctx context.Context, studentID string, status models.StudentStatus) error {
	if m.statuses == nil {
		m.statuses = make(map[string]models.StudentStatus)
	}
	m.statuses[studentID] = status
	return nil
}

func newTVService(repo *mockTVRepo, snapshots *mockSnapshotLoader, volunteers *mockVolunteerFinder, students *mockStudentStatusRepo, cache statsCache) *TeleVerificationService {
	return NewTeleVerificationService(repo, snapshots, volunteers, students, &mockAuditRepo{}, cache, NewMetricsService(), nil, nil, 10*time.Second)
}

func freshSnapshot(id string) *workflow.Snapshot {
	return &workflow.Snapshot{Student: models.Student{StudentID: id, Status: models.StudentStatusNew}}
}

func TestTVServiceBulkAssign(t *testing.T) {
	repo := &mockTVRepo{}
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{
		"MTR001": freshSnapshot("MTR001"),
		"MTR002": freshSnapshot("MTR002"),
	}}
	volunteers := &mockVolunteerFinder{volunteers: map[string]*models.Volunteer{
		"TV001": activeVolunteer("TV001", models.RoleTV),
	}}
	svc := newTVService(repo, snapshots, volunteers, &mockStudentStatusRepo{}, nil)

	err := svc.BulkAssign(context.Background(), "ADMIN01", BulkAssignRequest{
		VolunteerID: "TV001",
		StudentIDs:  []string{"MTR001", "MTR002"},
	})
	require.NoError(t, err)
	assert.Equal(t, "TV001", repo.assignedVolunteer)
	assert.Equal(t, []string{"MTR001", "MTR002"}, repo.assignedStudents)
}

func TestTVServiceBulkAssignRejectsWholeBatchOnConflict(t *testing.T) {
	submitted := freshSnapshot("MTR002")
	submitted.Student.Status = models.StudentStatusTV
	submitted.TV = &models.TeleVerification{StudentID: "MTR002", VolunteerID: "TV009", Status: models.TVStatusVerified}

	repo := &mockTVRepo{}
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{
		"MTR001": freshSnapshot("MTR001"),
		"MTR002": submitted,
	}}
	volunteers := &mockVolunteerFinder{volunteers: map[string]*models.Volunteer{
		"TV001": activeVolunteer("TV001", models.RoleTV),
	}}
	svc := newTVService(repo, snapshots, volunteers, &mockStudentStatusRepo{}, nil)

	err := svc.BulkAssign(context.Background(), "ADMIN01", BulkAssignRequest{
		VolunteerID: "TV001",
		StudentIDs:  []string{"MTR001", "MTR002"},
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "STAGE_CONFLICT", appErr.Code)
	// nothing written for any student in the batch
	assert.Empty(t, repo.assignedStudents)
}

func TestTVServiceBulkAssignRejectsWrongRole(t *testing.T) {
	volunteers := &mockVolunteerFinder{volunteers: map[string]*models.Volunteer{
		"PV001": activeVolunteer("PV001", models.RolePV),
	}}
	svc := newTVService(&mockTVRepo{}, &mockSnapshotLoader{}, volunteers, &mockStudentStatusRepo{}, nil)

	err := svc.BulkAssign(context.Background(), "ADMIN01", BulkAssignRequest{
		VolunteerID: "PV001",
		StudentIDs:  []string{"MTR001"},
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTVServiceSubmitReportOwnership(t *testing.T) {
	snap := freshSnapshot("MTR001")
	snap.Student.Status = models.StudentStatusTV
	snap.TV = &models.TeleVerification{StudentID: "MTR001", VolunteerID: "TV001", Status: models.TVStatusAssigned}

	repo := &mockTVRepo{}
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": snap}}
	svc := newTVService(repo, snapshots, &mockVolunteerFinder{}, &mockStudentStatusRepo{}, nil)

	req := TVReportRequest{StudentID: "MTR001", Status: "VERIFIED", Comments: "spoke with parent", Suggestion: "SELECT"}

	err := svc.SubmitReport(context.Background(), "TV002", req)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_ASSIGNED", appErr.Code)

	require.NoError(t, svc.SubmitReport(context.Background(), "TV001", req))
	assert.Equal(t, models.TVStatusVerified, repo.submitted["MTR001"])
}

func TestTVServiceReviewAdvancesStudent(t *testing.T) {
	snap := freshSnapshot("MTR001")
	snap.Student.Status = models.StudentStatusTV
	snap.TV = &models.TeleVerification{StudentID: "MTR001", VolunteerID: "TV001", Status: models.TVStatusVerified}

	students := &mockStudentStatusRepo{}
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": snap}}
	svc := newTVService(&mockTVRepo{}, snapshots, &mockVolunteerFinder{}, students, nil)

	require.NoError(t, svc.Review(context.Background(), "ADMIN01", TVReviewRequest{StudentID: "MTR001", Decision: "SELECT"}))
	assert.Equal(t, models.StudentStatusPV, students.statuses["MTR001"])

	snap.Student.Status = models.StudentStatusTV
	require.NoError(t, svc.Review(context.Background(), "ADMIN01", TVReviewRequest{StudentID: "MTR001", Decision: "REJECT"}))
	assert.Equal(t, models.StudentStatusRejected, students.statuses["MTR001"])
}

func TestTVServiceStatsCaching(t *testing.T) {
	repo := &mockTVRepo{stats: &models.StageStats{TotalAssigned: 5, Completed: 2, Pending: 3}}
	cache := &mockCache{}
	svc := newTVService(repo, &mockSnapshotLoader{}, &mockVolunteerFinder{}, &mockStudentStatusRepo{}, cache)

	first, err := svc.Stats(context.Background(), "TV001")
	require.NoError(t, err)
	assert.Equal(t, 5, first.TotalAssigned)

	second, err := svc.Stats(context.Background(), "TV001")
	require.NoError(t, err)
	assert.Equal(t, 5, second.TotalAssigned)
	assert.Equal(t, 1, repo.statsCalls)
}
