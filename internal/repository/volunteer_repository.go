package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/maatram/scholarship-review-api/internal/models"
)

// VolunteerRepository manages persistence for volunteer accounts.
type VolunteerRepository struct {
	db *sqlx.DB
}

// NewVolunteerRepository constructs a VolunteerRepository.
func NewVolunteerRepository(db *sqlx.DB) *VolunteerRepository {
	return &VolunteerRepository{db: db}
}

// FindByID fetches a volunteer by their login ID. Returns nil when absent.
func (r *VolunteerRepository) FindByID(ctx context.Context, volunteerID string) (*models.Volunteer, error) {
	const query = `SELECT volunteer_id, name, email, phone, password_hash, role, active, last_login, created_at
        FROM volunteers WHERE volunteer_id = $1`
	var v models.Volunteer
	if err := r.db.GetContext(ctx, &v, query, volunteerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find volunteer: %w", err)
	}
	return &v, nil
}

// List returns volunteers matching the filter, ordered by name.
func (r *VolunteerRepository) List(ctx context.Context, filter models.VolunteerFilter) ([]models.Volunteer, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, filter.Role)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(volunteer_id) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	query := fmt.Sprintf(`SELECT volunteer_id, name, email, phone, password_hash, role, active, last_login, created_at
        FROM volunteers WHERE %s ORDER BY name ASC`, strings.Join(conditions, " AND "))

	var volunteers []models.Volunteer
	if err := r.db.SelectContext(ctx, &volunteers, query, args...); err != nil {
		return nil, fmt.Errorf("list volunteers: %w", err)
	}
	return volunteers, nil
}

// FindByEmail fetches a volunteer by email. Interview assignment screens
// accept either the login ID or the email address.
func (r *VolunteerRepository) FindByEmail(ctx context.Context, email string) (*models.Volunteer, error) {
	const query = `SELECT volunteer_id, name, email, phone, password_hash, role, active, last_login, created_at
        FROM volunteers WHERE LOWER(email) = LOWER($1)`
	var v models.Volunteer
	if err := r.db.GetContext(ctx, &v, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find volunteer by email: %w", err)
	}
	return &v, nil
}

// UpdateLastLogin stamps a successful login.
func (r *VolunteerRepository) UpdateLastLogin(ctx context.Context, volunteerID string, at time.Time) error {
	const query = `UPDATE volunteers SET last_login = $2 WHERE volunteer_id = $1`
	if _, err := r.db.ExecContext(ctx, query, volunteerID, at); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

