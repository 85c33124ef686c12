package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a volunteer.
type LoginRequest struct {
	VolunteerID string `json:"volunteerId" validate:"required"`
	Password    string `json:"password" validate:"required"`
	IP          string `json:"-"`
	UserAgent   string `json:"-"`
}

// LoginResponse returns the issued token and volunteer info.
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresIn int64         `json:"expires_in"`
	User      VolunteerInfo `json:"user"`
	IssuedAt  time.Time     `json:"issued_at"`
}

// VolunteerInfo describes the authenticated volunteer in responses.
type VolunteerInfo struct {
	VolunteerID string `json:"volunteerId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	VolunteerID string `json:"volunteer_id"`
	Role        Role   `json:"role"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	jwt.RegisteredClaims
}
