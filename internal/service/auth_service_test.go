package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/pkg/config"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
)

type mockAuthRepo struct {
	volunteer        *models.Volunteer
	findErr          error
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByID(ctx context.Context, volunteerID string) (*models.Volunteer, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.volunteer, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, volunteerID string, at time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func jwtConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "maatram-review"}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{volunteer: &models.Volunteer{
		VolunteerID:  "TV001",
		Name:         "Priya",
		Email:        "priya@example.com",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         models.RoleTV,
		Active:       true,
	}}
	audit := &mockAuditRepo{}
	svc := NewAuthService(repo, audit, nil, nil, jwtConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{VolunteerID: "TV001", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleTV, resp.User.Role)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.True(t, repo.lastLoginUpdated)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionLogin, audit.entries[0].Action)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{volunteer: &models.Volunteer{
		VolunteerID:  "TV001",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         models.RoleTV,
		Active:       true,
	}}
	svc := NewAuthService(repo, nil, nil, nil, jwtConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{VolunteerID: "TV001", Password: "wrong"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Equal(t, 401, appErr.Status)
}

func TestAuthServiceLoginUnknownVolunteer(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil, nil, nil, jwtConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{VolunteerID: "NOPE", Password: "whatever"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	repo := &mockAuthRepo{volunteer: &models.Volunteer{
		VolunteerID:  "TV001",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         models.RoleTV,
		Active:       false,
	}}
	svc := NewAuthService(repo, nil, nil, nil, jwtConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{VolunteerID: "TV001", Password: "secret123"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}
