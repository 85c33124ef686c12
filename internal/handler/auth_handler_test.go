package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/maatram/scholarship-review-api/internal/middleware"
	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/service"
	"github.com/maatram/scholarship-review-api/pkg/config"
)

type fakeVolunteerRepo struct {
	volunteer *models.Volunteer
	lastLogin time.Time
}

func (f *fakeVolunteerRepo) FindByID(context.Context, string) (*models.Volunteer, error) {
	return f.volunteer, nil
}

func (f *fakeVolunteerRepo) UpdateLastLogin(_ context.Context, _ string, at time.Time) error {
	f.lastLogin = at
	return nil
}

func newAuthHandler(t *testing.T, repo *fakeVolunteerRepo) *AuthHandler {
	t.Helper()
	svc := service.NewAuthService(repo, nil, nil, nil, config.JWTConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "maatram",
	})
	return NewAuthHandler(svc)
}

func activeTVVolunteer(t *testing.T) *models.Volunteer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.Volunteer{
		VolunteerID:  "TV001",
		Name:         "Anitha",
		Email:        "anitha@example.org",
		PasswordHash: string(hash),
		Role:         models.RoleTV,
		Active:       true,
	}
}

func TestAuthHandlerLoginSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeVolunteerRepo{volunteer: activeTVVolunteer(t)}
	handler := newAuthHandler(t, repo)

	body, _ := json.Marshal(map[string]string{"volunteerId": "TV001", "password": "s3cret"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.Token)
	assert.Equal(t, "TV001", envelope.Data.User.VolunteerID)
	assert.Equal(t, models.RoleTV, envelope.Data.User.Role)
	assert.False(t, repo.lastLogin.IsZero())
}

func TestAuthHandlerLoginWrongPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandler(t, &fakeVolunteerRepo{volunteer: activeTVVolunteer(t)})

	body, _ := json.Marshal(map[string]string{"volunteerId": "TV001", "password": "nope"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerLoginRejectsMissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandler(t, &fakeVolunteerRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader([]byte(`{"volunteerId":"TV001"}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerLoginInactiveAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	volunteer := activeTVVolunteer(t)
	volunteer.Active = false
	handler := newAuthHandler(t, &fakeVolunteerRepo{volunteer: volunteer})

	body, _ := json.Marshal(map[string]string{"volunteerId": "TV001", "password": "s3cret"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandler(t, &fakeVolunteerRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{VolunteerID: "TV001", Role: models.RoleTV, Name: "Anitha"})

	handler.Me(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.VolunteerInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "TV001", envelope.Data.VolunteerID)
}

func TestAuthHandlerMeWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandler(t, &fakeVolunteerRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/me", nil)

	handler.Me(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
