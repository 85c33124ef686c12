package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/workflow"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
)

type mockEducationalRepo struct {
	details      map[string]*models.EducationalDetails
	scholarships map[string]*models.ScholarshipDetails
	upsertCalls  int
}

func (m *mockEducationalRepo) FindByStudent(ctx context.Context, studentID string) (*models.EducationalDetails, error) {
	return m.details[studentID], nil
}

func (m *mockEducationalRepo) Upsert(ctx context.Context, details *models.EducationalDetails) error {
	if m.details == nil {
		m.details = make(map[string]*models.EducationalDetails)
	}
	m.upsertCalls++
	m.details[details.StudentID] = details
	return nil
}

func (m *mockEducationalRepo) FindScholarshipByStudent(ctx context.Context, studentID string) (*models.ScholarshipDetails, error) {
	return m.scholarships[studentID], nil
}

func (m *mockEducationalRepo) UpsertScholarship(ctx context.Context, details *models.ScholarshipDetails) error {
	if m.scholarships == nil {
		m.scholarships = make(map[string]*models.ScholarshipDetails)
	}
	m.scholarships[details.StudentID] = details
	return nil
}

func selectedSnapshot(studentID string) *workflow.Snapshot {
	decision := models.FinalDecisionSelected
	return &workflow.Snapshot{Student: models.Student{
		StudentID:     studentID,
		Status:        models.StudentStatusApproved,
		FinalDecision: &decision,
	}}
}

func educationalRequest(studentID string) EducationalDetailsRequest {
	return EducationalDetailsRequest{
		StudentID:     studentID,
		CollegeName:   "Anna University",
		Degree:        "B.E.",
		Stream:        "Engineering",
		Branch:        "Computer Science",
		YearOfPassing: 2028,
	}
}

func TestEducationalUpsertIsIdempotent(t *testing.T) {
	repo := &mockEducationalRepo{}
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": selectedSnapshot("MTR001")}}
	svc := NewEducationalService(repo, snapshots, &mockAuditRepo{}, NewMetricsService(), nil, nil)

	first, err := svc.Upsert(context.Background(), "SA01", educationalRequest("MTR001"))
	require.NoError(t, err)

	req := educationalRequest("MTR001")
	req.Branch = "Electronics"
	second, err := svc.Upsert(context.Background(), "SA01", req)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.upsertCalls)
	assert.Equal(t, first.StudentID, second.StudentID)
	assert.Equal(t, "Electronics", repo.details["MTR001"].Branch)
}

func TestEducationalUpsertRejectsUndecidedStudent(t *testing.T) {
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": approvedSnapshot()}}
	svc := NewEducationalService(&mockEducationalRepo{}, snapshots, &mockAuditRepo{}, NewMetricsService(), nil, nil)

	_, err := svc.Upsert(context.Background(), "SA01", educationalRequest("MTR001"))
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "PRECONDITION_FAILED", appErr.Code)
	assert.Equal(t, 412, appErr.Status)
}

func TestEducationalUpsertRejectsFinallyRejectedStudent(t *testing.T) {
	decision := models.FinalDecisionRejected
	snap := &workflow.Snapshot{Student: models.Student{
		StudentID:     "MTR001",
		Status:        models.StudentStatusRejected,
		FinalDecision: &decision,
	}}
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": snap}}
	svc := NewEducationalService(&mockEducationalRepo{}, snapshots, &mockAuditRepo{}, NewMetricsService(), nil, nil)

	_, err := svc.Upsert(context.Background(), "SA01", educationalRequest("MTR001"))
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "PRECONDITION_FAILED", appErr.Code)
}

func TestEducationalUpsertYearBounds(t *testing.T) {
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": selectedSnapshot("MTR001")}}
	svc := NewEducationalService(&mockEducationalRepo{}, snapshots, &mockAuditRepo{}, NewMetricsService(), nil, nil)

	for _, year := range []int{1949, 2051} {
		req := educationalRequest("MTR001")
		req.YearOfPassing = year
		_, err := svc.Upsert(context.Background(), "SA01", req)
		require.Error(t, err)
		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	}
}

func TestEducationalGetMissing(t *testing.T) {
	svc := NewEducationalService(&mockEducationalRepo{}, &mockSnapshotLoader{}, &mockAuditRepo{}, NewMetricsService(), nil, nil)

	_, err := svc.Get(context.Background(), "MTR404")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestScholarshipUpsertRequiresSelection(t *testing.T) {
	repo := &mockEducationalRepo{}
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{
		"MTR001": selectedSnapshot("MTR001"),
		"MTR002": approvedSnapshot(),
	}}
	snapshots.snapshots["MTR002"].Student.StudentID = "MTR002"
	svc := NewEducationalService(repo, snapshots, &mockAuditRepo{}, NewMetricsService(), nil, nil)

	_, err := svc.UpsertScholarship(context.Background(), "SA01", ScholarshipDetailsRequest{
		StudentID: "MTR001",
		Batch:     "2026",
		College:   "Anna University",
		Branch:    "Computer Science",
		Stream:    "Engineering",
	})
	require.NoError(t, err)
	assert.NotNil(t, repo.scholarships["MTR001"])

	_, err = svc.UpsertScholarship(context.Background(), "SA01", ScholarshipDetailsRequest{
		StudentID: "MTR002",
		Batch:     "2026",
		College:   "Anna University",
		Branch:    "Computer Science",
		Stream:    "Engineering",
	})
	require.Error(t, err)
}
