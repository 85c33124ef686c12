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

// PhysicalVerificationRepository manages persistence for home-visit
// assignments, reports and the analysis pipeline state.
type PhysicalVerificationRepository struct {
	db *sqlx.DB
}

// NewPhysicalVerificationRepository constructs a PhysicalVerificationRepository.
func NewPhysicalVerificationRepository(db *sqlx.DB) *PhysicalVerificationRepository {
	return &PhysicalVerificationRepository{db: db}
}

const pvColumns = `pv_id, student_id, volunteer_id, status, property_type, what_you_saw, comment,
        sentiment, sentiment_score, elements_summary, audio_url, verification_date, created_at`

// FindByStudent fetches the physical-verification row for a student. Returns
// nil when absent.
func (r *PhysicalVerificationRepository) FindByStudent(ctx context.Context, studentID string) (*models.PhysicalVerification, error) {
	query := fmt.Sprintf("SELECT %s FROM physical_verifications WHERE student_id = $1", pvColumns)
	var pv models.PhysicalVerification
	if err := r.db.GetContext(ctx, &pv, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find physical verification: %w", err)
	}
	return &pv, nil
}

// Assign upserts the volunteer assignment for a student's home visit.
// A pending assignment is overwritten in place.
func (r *PhysicalVerificationRepository) Assign(ctx context.Context, studentID, volunteerID string) error {
	const query = `INSERT INTO physical_verifications (student_id, volunteer_id, status, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (student_id) DO UPDATE SET volunteer_id = EXCLUDED.volunteer_id, status = EXCLUDED.status`
	if _, err := r.db.ExecContext(ctx, query, studentID, volunteerID, models.PVStatusAssigned, time.Now().UTC()); err != nil {
		return fmt.Errorf("assign physical verification: %w", err)
	}
	return nil
}

// ListAssigned returns the pending visit queue for a PV volunteer.
func (r *PhysicalVerificationRepository) ListAssigned(ctx context.Context, volunteerID string) ([]models.AssignedStudentView, error) {
	const query = `SELECT s.student_id, s.name, s.phone, s.district, pv.status
        FROM physical_verifications pv
        JOIN students s ON s.student_id = pv.student_id
        WHERE pv.volunteer_id = $1 AND pv.status = $2
        ORDER BY pv.created_at ASC`
	var queue []models.AssignedStudentView
	if err := r.db.SelectContext(ctx, &queue, query, volunteerID, models.PVStatusAssigned); err != nil {
		return nil, fmt.Errorf("list assigned physical verifications: %w", err)
	}
	return queue, nil
}

// SubmitReport stores the volunteer's field report and parks the record in
// PROCESSING until the analysis pipeline finishes.
func (r *PhysicalVerificationRepository) SubmitReport(ctx context.Context, studentID string, propertyType, whatYouSaw, comment string, audioURL *string, at time.Time) error {
	const query = `UPDATE physical_verifications
        SET status = $2, property_type = $3, what_you_saw = $4, comment = $5, audio_url = $6, verification_date = $7
        WHERE student_id = $1`
	res, err := r.db.ExecContext(ctx, query, studentID, models.PVStatusProcessing, propertyType, whatYouSaw, comment, audioURL, at)
	if err != nil {
		return fmt.Errorf("submit pv report: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CompleteAnalysis records the pipeline outcome: sentiment annotations plus
// the final status derived from the volunteer's recommendation. The student
// moves to PENDING in the same transaction so the admin queue and the PV
// record never disagree.
func (r *PhysicalVerificationRepository) CompleteAnalysis(ctx context.Context, studentID string, status models.PVStatus, sentiment string, score float64, elementsSummary string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin pv analysis completion: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	const update = `UPDATE physical_verifications
        SET status = $2, sentiment = $3, sentiment_score = $4, elements_summary = $5
        WHERE student_id = $1 AND status = $6`
	res, err := tx.ExecContext(ctx, update, studentID, status, sentiment, score, elementsSummary, models.PVStatusProcessing)
	if err != nil {
		return fmt.Errorf("complete pv analysis: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}

	const advance = `UPDATE students SET status = $2, updated_at = $3 WHERE student_id = $1 AND status = $4`
	if _, err := tx.ExecContext(ctx, advance, studentID, models.StudentStatusPending, time.Now().UTC(), models.StudentStatusPV); err != nil {
		return fmt.Errorf("complete pv analysis: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pv analysis completion: %w", err)
	}
	commit = true
	return nil
}

// ListReports returns completed PV reports awaiting the admin decision.
func (r *PhysicalVerificationRepository) ListReports(ctx context.Context) ([]models.PVReportView, error) {
	const query = `SELECT pv.pv_id, pv.student_id, pv.volunteer_id, pv.status, pv.property_type, pv.what_you_saw,
            pv.comment, pv.sentiment, pv.sentiment_score, pv.elements_summary, pv.audio_url,
            pv.verification_date, pv.created_at,
            s.name AS student_name, s.district, s.status AS student_status, v.name AS volunteer_name
        FROM physical_verifications pv
        JOIN students s ON s.student_id = pv.student_id
        JOIN volunteers v ON v.volunteer_id = pv.volunteer_id
        WHERE pv.status NOT IN ($1, $2) AND s.status = $3
        ORDER BY pv.verification_date ASC`
	var reports []models.PVReportView
	if err := r.db.SelectContext(ctx, &reports, query, models.PVStatusAssigned, models.PVStatusProcessing, models.StudentStatusPending); err != nil {
		return nil, fmt.Errorf("list pv reports: %w", err)
	}
	return reports, nil
}

// Stats summarises a PV volunteer's workload.
func (r *PhysicalVerificationRepository) Stats(ctx context.Context, volunteerID string) (*models.StageStats, error) {
	// empty volunteerID aggregates over every volunteer for the admin view
	const query = `SELECT COUNT(*) AS total_assigned,
            COUNT(*) FILTER (WHERE status NOT IN ($2, $3)) AS completed,
            COUNT(*) FILTER (WHERE status IN ($2, $3)) AS pending
        FROM physical_verifications WHERE ($1 = '' OR volunteer_id = $1)`
	var stats models.StageStats
	if err := r.db.GetContext(ctx, &stats, query, volunteerID, models.PVStatusAssigned, models.PVStatusProcessing); err != nil {
		return nil, fmt.Errorf("pv stats: %w", err)
	}
	return &stats, nil
}
