package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maatram/scholarship-review-api/internal/middleware"
	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/service"
	"github.com/maatram/scholarship-review-api/internal/workflow"
)

type fakeTVRepo struct {
	assigned map[string]string
	reports  []models.TVReportView
	queue    []models.AssignedStudentView
}

func (f *fakeTVRepo) FindByStudent(context.Context, string) (*models.TeleVerification, error) {
	return nil, nil
}

func (f *fakeTVRepo) BulkAssign(_ context.Context, volunteerID string, studentIDs []string) error {
	if f.assigned == nil {
		f.assigned = map[string]string{}
	}
	for _, id := range studentIDs {
		f.assigned[id] = volunteerID
	}
	return nil
}

func (f *fakeTVRepo) ListAssigned(context.Context, string) ([]models.AssignedStudentView, error) {
	return f.queue, nil
}

func (f *fakeTVRepo) SubmitReport(context.Context, string, models.TVStatus, string, models.TVSuggestion, time.Time) error {
	return nil
}

func (f *fakeTVRepo) ListSubmittedReports(context.Context) ([]models.TVReportView, error) {
	return f.reports, nil
}

func (f *fakeTVRepo) Stats(context.Context, string) (*models.StageStats, error) {
	return &models.StageStats{}, nil
}

type fakeSnapshotLoader struct {
	snapshots map[string]*workflow.Snapshot
}

func (f *fakeSnapshotLoader) Load(_ context.Context, studentID string) (*workflow.Snapshot, error) {
	if snap, ok := f.snapshots[studentID]; ok {
		return snap, nil
	}
	return nil, sql.ErrNoRows
}

type fakeVolunteerFinder struct {
	volunteer *models.Volunteer
}

func (f *fakeVolunteerFinder) FindByID(context.Context, string) (*models.Volunteer, error) {
	return f.volunteer, nil
}

func newTVHandler(t *testing.T, repo *fakeTVRepo, snapshots *fakeSnapshotLoader, volunteers *fakeVolunteerFinder) *TeleVerificationHandler {
	t.Helper()
	svc := service.NewTeleVerificationService(repo, snapshots, volunteers, nil, nil, nil, service.NewMetricsService(), nil, nil, time.Minute)
	return NewTeleVerificationHandler(svc, nil)
}

func freshSnapshot(studentID string) *workflow.Snapshot {
	return &workflow.Snapshot{Student: models.Student{StudentID: studentID, Status: models.StudentStatusNew}}
}

func adminContext(rec *httptest.ResponseRecorder, method, target string, body []byte) *gin.Context {
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{VolunteerID: "ADM001", Role: models.RoleAdmin})
	return c
}

func TestTeleVerificationHandlerBulkAssign(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeTVRepo{}
	snapshots := &fakeSnapshotLoader{snapshots: map[string]*workflow.Snapshot{
		"MTR001": freshSnapshot("MTR001"),
		"MTR002": freshSnapshot("MTR002"),
	}}
	volunteers := &fakeVolunteerFinder{volunteer: &models.Volunteer{VolunteerID: "TV001", Role: models.RoleTV, Active: true}}
	handler := newTVHandler(t, repo, snapshots, volunteers)

	body, _ := json.Marshal(service.BulkAssignRequest{VolunteerID: "TV001", StudentIDs: []string{"MTR001", "MTR002"}})
	rec := httptest.NewRecorder()
	c := adminContext(rec, http.MethodPost, "/admin/api/assign-tv", body)

	handler.BulkAssign(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"MTR001": "TV001", "MTR002": "TV001"}, repo.assigned)
	var envelope struct {
		Data map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data["assigned"])
}

func TestTeleVerificationHandlerBulkAssignUnknownStudentAssignsNothing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeTVRepo{}
	snapshots := &fakeSnapshotLoader{snapshots: map[string]*workflow.Snapshot{
		"MTR001": freshSnapshot("MTR001"),
	}}
	volunteers := &fakeVolunteerFinder{volunteer: &models.Volunteer{VolunteerID: "TV001", Role: models.RoleTV, Active: true}}
	handler := newTVHandler(t, repo, snapshots, volunteers)

	body, _ := json.Marshal(service.BulkAssignRequest{VolunteerID: "TV001", StudentIDs: []string{"MTR001", "MTR404"}})
	rec := httptest.NewRecorder()
	c := adminContext(rec, http.MethodPost, "/admin/api/assign-tv", body)

	handler.BulkAssign(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, repo.assigned)
}

func TestTeleVerificationHandlerBulkAssignWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTVHandler(t, &fakeTVRepo{}, &fakeSnapshotLoader{}, &fakeVolunteerFinder{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/api/assign-tv", bytes.NewReader([]byte(`{}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.BulkAssign(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTeleVerificationHandlerSubmitRejectsBadSuggestion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTVHandler(t, &fakeTVRepo{}, &fakeSnapshotLoader{}, &fakeVolunteerFinder{})

	body := []byte(`{"studentId":"MTR001","status":"VERIFIED","comments":"spoke to family","suggestion":"MAYBE"}`)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/tv-volunteer/submit", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{VolunteerID: "TV001", Role: models.RoleTV})

	handler.Submit(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTeleVerificationHandlerReports(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeTVRepo{reports: []models.TVReportView{{TeleVerification: models.TeleVerification{StudentID: "MTR001"}}}}
	handler := newTVHandler(t, repo, &fakeSnapshotLoader{}, &fakeVolunteerFinder{})

	rec := httptest.NewRecorder()
	c := adminContext(rec, http.MethodGet, "/admin/api/submitted-tv-reports", nil)

	handler.Reports(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []models.TVReportView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "MTR001", envelope.Data[0].StudentID)
}
