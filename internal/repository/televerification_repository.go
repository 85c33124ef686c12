package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/maatram/scholarship-review-api/internal/models"
)

// TeleVerificationRepository manages persistence for tele-verification
// assignments and reports.
type TeleVerificationRepository struct {
	db *sqlx.DB
}

// NewTeleVerificationRepository constructs a TeleVerificationRepository.
func NewTeleVerificationRepository(db *sqlx.DB) *TeleVerificationRepository {
	return &TeleVerificationRepository{db: db}
}

const tvColumns = `tele_id, student_id, volunteer_id, status, comments, suggestion, verification_date, created_at`

// FindByStudent fetches the tele-verification row for a student. Returns nil
// when absent.
func (r *TeleVerificationRepository) FindByStudent(ctx context.Context, studentID string) (*models.TeleVerification, error) {
	query := fmt.Sprintf("SELECT %s FROM televerifications WHERE student_id = $1", tvColumns)
	var tv models.TeleVerification
	if err := r.db.GetContext(ctx, &tv, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find televerification: %w", err)
	}
	return &tv, nil
}

// BulkAssign assigns one volunteer to many students in a single transaction.
// Each student gets an upserted assignment row and their status tag moves to
// TV; any failure rolls the whole batch back.
func (r *TeleVerificationRepository) BulkAssign(ctx context.Context, volunteerID string, studentIDs []string) error {
	if len(studentIDs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk tv assign: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	const upsert = `INSERT INTO televerifications (student_id, volunteer_id, status, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (student_id) DO UPDATE SET volunteer_id = EXCLUDED.volunteer_id, status = EXCLUDED.status`
	const advance = `UPDATE students SET status = $2, updated_at = $3 WHERE student_id = $1`

	now := time.Now().UTC()
	for _, studentID := range studentIDs {
		if _, err := tx.ExecContext(ctx, upsert, studentID, volunteerID, models.TVStatusAssigned, now); err != nil {
			return fmt.Errorf("bulk tv assign student %s: %w", studentID, err)
		}
		res, err := tx.ExecContext(ctx, advance, studentID, models.StudentStatusTV, now)
		if err != nil {
			return fmt.Errorf("bulk tv assign student %s: %w", studentID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("bulk tv assign: unknown student %s", studentID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk tv assign: %w", err)
	}
	commit = true
	return nil
}

// ListAssigned returns the pending queue for a TV volunteer.
func (r *TeleVerificationRepository) ListAssigned(ctx context.Context, volunteerID string) ([]models.AssignedStudentView, error) {
	const query = `SELECT s.student_id, s.name, s.phone, s.district, tv.status
        FROM televerifications tv
        JOIN students s ON s.student_id = tv.student_id
        WHERE tv.volunteer_id = $1 AND tv.status IN ($2, $3)
        ORDER BY tv.created_at ASC`
	var queue []models.AssignedStudentView
	if err := r.db.SelectContext(ctx, &queue, query, volunteerID, models.TVStatusAssigned, models.TVStatusPending); err != nil {
		return nil, fmt.Errorf("list assigned televerifications: %w", err)
	}
	return queue, nil
}

// SubmitReport records the volunteer's call outcome on an existing assignment.
func (r *TeleVerificationRepository) SubmitReport(ctx context.Context, studentID string, status models.TVStatus, comments string, suggestion models.TVSuggestion, at time.Time) error {
	const query = `UPDATE televerifications
        SET status = $2, comments = $3, suggestion = $4, verification_date = $5
        WHERE student_id = $1`
	res, err := r.db.ExecContext(ctx, query, studentID, status, comments, suggestion, at)
	if err != nil {
		return fmt.Errorf("submit tv report: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListSubmittedReports returns submitted TV reports still awaiting admin
// review, joined with student and volunteer identity.
func (r *TeleVerificationRepository) ListSubmittedReports(ctx context.Context) ([]models.TVReportView, error) {
	const query = `SELECT tv.tele_id, tv.student_id, tv.volunteer_id, tv.status, tv.comments, tv.suggestion,
            tv.verification_date, tv.created_at,
            s.name AS student_name, s.district, v.name AS volunteer_name
        FROM televerifications tv
        JOIN students s ON s.student_id = tv.student_id
        JOIN volunteers v ON v.volunteer_id = tv.volunteer_id
        WHERE tv.status IN ($1, $2) AND s.status = $3
        ORDER BY tv.verification_date ASC`
	var reports []models.TVReportView
	if err := r.db.SelectContext(ctx, &reports, query, models.TVStatusVerified, models.TVStatusRejected, models.StudentStatusTV); err != nil {
		return nil, fmt.Errorf("list tv reports: %w", err)
	}
	return reports, nil
}

// Stats summarises a TV volunteer's workload.
func (r *TeleVerificationRepository) Stats(ctx context.Context, volunteerID string) (*models.StageStats, error) {
	const query = `SELECT COUNT(*) AS total_assigned,
            COUNT(*) FILTER (WHERE status IN ($2, $3)) AS completed,
            COUNT(*) FILTER (WHERE status NOT IN ($2, $3)) AS pending
        FROM televerifications WHERE volunteer_id = $1`
	var stats models.StageStats
	if err := r.db.GetContext(ctx, &stats, query, volunteerID, models.TVStatusVerified, models.TVStatusRejected); err != nil {
		return nil, fmt.Errorf("tv stats: %w", err)
	}
	return &stats, nil
}
