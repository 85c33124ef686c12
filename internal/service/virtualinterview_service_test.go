package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/workflow"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
)

type mockVIRepo struct {
	assigned   map[string]string
	outcomes   map[string]models.VIStatus
	submitTime map[string]time.Time
}

func (m *mockVIRepo) FindByStudent(ctx context.Context, studentID string) (*models.VirtualInterview, error) {
	return nil, nil
}

func (m *mockVIRepo) Assign(ctx context.Context, studentID, volunteerID string) error {
	if m.assigned == nil {
		m.assigned = make(map[string]string)
	}
	m.assigned[studentID] = volunteerID
	return nil
}

func (m *mockVIRepo) ListAssigned(ctx context.Context, volunteerID string) ([]models.AssignedStudentView, error) {
	return nil, nil
}

func (m *mockVIRepo) SubmitOutcome(ctx context.Context, studentID string, status models.VIStatus, recommendation models.VIRecommendation, comments string, at time.Time) error {
	if m.outcomes == nil {
		m.outcomes = make(map[string]models.VIStatus)
		m.submitTime = make(map[string]time.Time)
	}
	m.outcomes[studentID] = status
	m.submitTime[studentID] = at
	return nil
}

func (m *mockVIRepo) Pool(ctx context.Context) ([]models.InterviewAssignmentView, error) {
	return nil, nil
}

func (m *mockVIRepo) ListAll(ctx context.Context) ([]models.InterviewAssignmentView, error) {
	return nil, nil
}

func (m *mockVIRepo) Stats(ctx context.Context, volunteerID string) (*models.StageStats, error) {
	return &models.StageStats{}, nil
}

func newVIService(repo *mockVIRepo, snapshots *mockSnapshotLoader, volunteers *mockVolunteerFinder) *VirtualInterviewService {
	return NewVirtualInterviewService(repo, snapshots, volunteers, &mockAuditRepo{}, NewMetricsService(), nil, nil, 50)
}

func pendingInterviewSnapshot(volunteerID string) *workflow.Snapshot {
	snap := approvedSnapshot()
	snap.VI = &models.VirtualInterview{StudentID: "MTR001", VolunteerID: volunteerID, Status: models.VIStatusPending}
	return snap
}

func TestVIServiceSubmitRejectsShortRemarks(t *testing.T) {
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": pendingInterviewSnapshot("VI001")}}
	svc := newVIService(&mockVIRepo{}, snapshots, &mockVolunteerFinder{})

	err := svc.Submit(context.Background(), "VI001", VIOutcomeRequest{
		StudentID:      "MTR001",
		Recommendation: "SELECT",
		Remarks:        "too short",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	// padding with whitespace does not satisfy the floor
	err = svc.Submit(context.Background(), "VI001", VIOutcomeRequest{
		StudentID:      "MTR001",
		Recommendation: "SELECT",
		Remarks:        "short" + strings.Repeat(" ", 60),
	})
	require.Error(t, err)
}

func TestVIServiceSubmitRemarksFloorIsExactly50(t *testing.T) {
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": pendingInterviewSnapshot("VI001")}}
	repo := &mockVIRepo{}
	svc := newVIService(repo, snapshots, &mockVolunteerFinder{})

	err := svc.Submit(context.Background(), "VI001", VIOutcomeRequest{
		StudentID:      "MTR001",
		Recommendation: "SELECT",
		Remarks:        strings.Repeat("a", 49),
	})
	require.Error(t, err)
	assert.Empty(t, repo.outcomes)

	err = svc.Submit(context.Background(), "VI001", VIOutcomeRequest{
		StudentID:      "MTR001",
		Recommendation: "SELECT",
		Remarks:        strings.Repeat("a", 50),
	})
	require.NoError(t, err)
	assert.Equal(t, models.VIStatusRecommended, repo.outcomes["MTR001"])
}

func TestVIServiceSubmitCountsRemarksInRunes(t *testing.T) {
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": pendingInterviewSnapshot("VI001")}}
	repo := &mockVIRepo{}
	svc := newVIService(repo, snapshots, &mockVolunteerFinder{})

	// 17 Tamil characters encode to 51 bytes; the floor counts characters,
	// so this is still far too short.
	err := svc.Submit(context.Background(), "VI001", VIOutcomeRequest{
		StudentID:      "MTR001",
		Recommendation: "SELECT",
		Remarks:        strings.Repeat("த", 17),
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	err = svc.Submit(context.Background(), "VI001", VIOutcomeRequest{
		StudentID:      "MTR001",
		Recommendation: "SELECT",
		Remarks:        strings.Repeat("த", 50),
	})
	require.NoError(t, err)
	assert.Equal(t, models.VIStatusRecommended, repo.outcomes["MTR001"])
}

func TestVIServiceSubmitMapsRecommendationToStatus(t *testing.T) {
	remarks := strings.Repeat("clear academic motivation and strong family need. ", 3)
	cases := []struct {
		recommendation string
		want           models.VIStatus
	}{
		{"SELECT", models.VIStatusRecommended},
		{"REJECT", models.VIStatusNotRecommended},
		{"ON_HOLD", models.VIStatusOnHold},
	}

	for _, tc := range cases {
		t.Run(tc.recommendation, func(t *testing.T) {
			repo := &mockVIRepo{}
			snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": pendingInterviewSnapshot("VI001")}}
			svc := newVIService(repo, snapshots, &mockVolunteerFinder{})

			err := svc.Submit(context.Background(), "VI001", VIOutcomeRequest{
				StudentID:      "MTR001",
				Recommendation: tc.recommendation,
				Remarks:        remarks,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, repo.outcomes["MTR001"])
		})
	}
}

func TestVIServiceSubmitOwnership(t *testing.T) {
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": pendingInterviewSnapshot("VI001")}}
	svc := newVIService(&mockVIRepo{}, snapshots, &mockVolunteerFinder{})

	err := svc.Submit(context.Background(), "VI999", VIOutcomeRequest{
		StudentID:      "MTR001",
		Recommendation: "SELECT",
		Remarks:        strings.Repeat("detailed interview notes covering every topic asked. ", 2),
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_ASSIGNED", appErr.Code)
	assert.Equal(t, 403, appErr.Status)
}

func TestVIServiceAssignRequiresApprovedStudent(t *testing.T) {
	notApproved := &workflow.Snapshot{Student: models.Student{StudentID: "MTR002", Status: models.StudentStatusPending}}
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR002": notApproved}}
	volunteers := &mockVolunteerFinder{volunteers: map[string]*models.Volunteer{
		"VI001": activeVolunteer("VI001", models.RoleVI),
	}}
	svc := newVIService(&mockVIRepo{}, snapshots, volunteers)

	err := svc.Assign(context.Background(), "SA01", VIAssignRequest{StudentID: "MTR002", VolunteerID: "VI001"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "PRECONDITION_FAILED", appErr.Code)
}

func TestVIServiceAssignByEmail(t *testing.T) {
	repo := &mockVIRepo{}
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": approvedSnapshot()}}
	interviewer := activeVolunteer("VI001", models.RoleVI)
	interviewer.Email = "interviewer@maatram.org"
	volunteers := &mockVolunteerFinder{volunteers: map[string]*models.Volunteer{"VI001": interviewer}}
	svc := newVIService(repo, snapshots, volunteers)

	err := svc.Assign(context.Background(), "SA01", VIAssignRequest{StudentID: "MTR001", VolunteerID: "interviewer@maatram.org"})
	require.NoError(t, err)
	assert.Equal(t, "VI001", repo.assigned["MTR001"])
}

func TestVIServiceReassignPendingInterview(t *testing.T) {
	repo := &mockVIRepo{}
	snapshots := &mockSnapshotLoader{snapshots: map[string]*workflow.Snapshot{"MTR001": pendingInterviewSnapshot("VI001")}}
	volunteers := &mockVolunteerFinder{volunteers: map[string]*models.Volunteer{
		"VI002": activeVolunteer("VI002", models.RoleVI),
	}}
	svc := newVIService(repo, snapshots, volunteers)

	err := svc.Assign(context.Background(), "SA01", VIAssignRequest{StudentID: "MTR001", VolunteerID: "VI002"})
	require.NoError(t, err)
	assert.Equal(t, "VI002", repo.assigned["MTR001"])
}
