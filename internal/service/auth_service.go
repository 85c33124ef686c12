package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/pkg/config"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
)

type authVolunteerRepository interface {
	FindByID(ctx context.Context, volunteerID string) (*models.Volunteer, error)
	UpdateLastLogin(ctx context.Context, volunteerID string, at time.Time) error
}

type auditWriter interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
}

// AuthService provides volunteer authentication.
type AuthService struct {
	repo      authVolunteerRepository
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.JWTConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authVolunteerRepository, audit auditWriter, validate *validator.Validate, logger *zap.Logger, cfg config.JWTConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{repo: repo, audit: audit, validator: validate, logger: logger, cfg: cfg}
}

// Login authenticates a volunteer and issues a signed token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	volunteer, err := s.repo.FindByID(ctx, req.VolunteerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch volunteer")
	}
	if volunteer == nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	if !volunteer.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(volunteer.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	token, err := s.generateToken(volunteer)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create token")
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, volunteer.VolunteerID, now); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}

	if s.audit != nil {
		payload, _ := json.Marshal(map[string]string{"role": string(volunteer.Role)})
		if err := s.audit.Insert(ctx, &models.AuditLog{
			ActorID:    &volunteer.VolunteerID,
			Action:     models.AuditActionLogin,
			Resource:   "auth",
			ResourceID: &volunteer.VolunteerID,
			Payload:    payload,
			IPAddress:  req.IP,
			UserAgent:  req.UserAgent,
		}); err != nil {
			s.logger.Warn("failed to record login audit log", zap.Error(err))
		}
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.cfg.Expiration.Seconds()),
		IssuedAt:  now,
		User: models.VolunteerInfo{
			VolunteerID: volunteer.VolunteerID,
			Name:        volunteer.Name,
			Email:       volunteer.Email,
			Role:        volunteer.Role,
		},
	}, nil
}

// ValidateToken parses and verifies an access token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) generateToken(v *models.Volunteer) (string, error) {
	now := time.Now().UTC()
	claims := models.JWTClaims{
		VolunteerID: v.VolunteerID,
		Role:        v.Role,
		Email:       v.Email,
		Name:        v.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   v.VolunteerID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}
