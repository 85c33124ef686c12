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

// VirtualInterviewRepository manages persistence for remote interview
// assignments and outcomes.
type VirtualInterviewRepository struct {
	db *sqlx.DB
}

// NewVirtualInterviewRepository constructs a VirtualInterviewRepository.
func NewVirtualInterviewRepository(db *sqlx.DB) *VirtualInterviewRepository {
	return &VirtualInterviewRepository{db: db}
}

const viColumns = `vi_id, student_id, volunteer_id, assigned_date, interview_date, status, overall_recommendation, comments`

// FindByStudent fetches the virtual-interview row for a student. Returns nil
// when absent.
func (r *VirtualInterviewRepository) FindByStudent(ctx context.Context, studentID string) (*models.VirtualInterview, error) {
	query := fmt.Sprintf("SELECT %s FROM virtual_interviews WHERE student_id = $1", viColumns)
	var vi models.VirtualInterview
	if err := r.db.GetContext(ctx, &vi, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find virtual interview: %w", err)
	}
	return &vi, nil
}

// Assign upserts the interviewer for a student. Reassignment overwrites the
// volunteer and resets the status to PENDING, clearing any stale verdict.
func (r *VirtualInterviewRepository) Assign(ctx context.Context, studentID, volunteerID string) error {
	const query = `INSERT INTO virtual_interviews (student_id, volunteer_id, assigned_date, status)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (student_id) DO UPDATE
        SET volunteer_id = EXCLUDED.volunteer_id, assigned_date = EXCLUDED.assigned_date,
            status = EXCLUDED.status, overall_recommendation = NULL, comments = NULL, interview_date = NULL`
	if _, err := r.db.ExecContext(ctx, query, studentID, volunteerID, time.Now().UTC(), models.VIStatusPending); err != nil {
		return fmt.Errorf("assign virtual interview: %w", err)
	}
	return nil
}

// ListAssigned returns the pending interview queue for a VI volunteer.
func (r *VirtualInterviewRepository) ListAssigned(ctx context.Context, volunteerID string) ([]models.AssignedStudentView, error) {
	const query = `SELECT s.student_id, s.name, s.phone, s.district, vi.status
        FROM virtual_interviews vi
        JOIN students s ON s.student_id = vi.student_id
        WHERE vi.volunteer_id = $1 AND vi.status = $2
        ORDER BY vi.assigned_date ASC`
	var queue []models.AssignedStudentView
	if err := r.db.SelectContext(ctx, &queue, query, volunteerID, models.VIStatusPending); err != nil {
		return nil, fmt.Errorf("list assigned virtual interviews: %w", err)
	}
	return queue, nil
}

// SubmitOutcome records the interviewer's verdict.
func (r *VirtualInterviewRepository) SubmitOutcome(ctx context.Context, studentID string, status models.VIStatus, recommendation models.VIRecommendation, comments string, at time.Time) error {
	const query = `UPDATE virtual_interviews
        SET status = $2, overall_recommendation = $3, comments = $4, interview_date = $5
        WHERE student_id = $1`
	res, err := r.db.ExecContext(ctx, query, studentID, status, recommendation, comments, at)
	if err != nil {
		return fmt.Errorf("submit virtual interview: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Pool lists approved students with their current interview assignment, if
// any, for the superadmin assignment screen. Students whose interview has
// been submitted drop out of the pool.
func (r *VirtualInterviewRepository) Pool(ctx context.Context) ([]models.InterviewAssignmentView, error) {
	const query = `SELECT s.student_id, s.name AS student_name, s.district, s.phone,
            vi.volunteer_id, v.name AS volunteer_name, v.email AS volunteer_email,
            vi.assigned_date, vi.interview_date, vi.status,
            vi.overall_recommendation AS recommendation, vi.comments
        FROM students s
        LEFT JOIN virtual_interviews vi ON vi.student_id = s.student_id
        LEFT JOIN volunteers v ON v.volunteer_id = vi.volunteer_id
        WHERE s.status = $1 AND (vi.student_id IS NULL OR vi.status = $2)
        ORDER BY s.name ASC`
	var pool []models.InterviewAssignmentView
	if err := r.db.SelectContext(ctx, &pool, query, models.StudentStatusApproved, models.VIStatusPending); err != nil {
		return nil, fmt.Errorf("virtual interview pool: %w", err)
	}
	return pool, nil
}

// ListAll returns every interview row with identities for the superadmin
// overview.
func (r *VirtualInterviewRepository) ListAll(ctx context.Context) ([]models.InterviewAssignmentView, error) {
	const query = `SELECT s.student_id, s.name AS student_name, s.district, s.phone,
            vi.volunteer_id, v.name AS volunteer_name, v.email AS volunteer_email,
            vi.assigned_date, vi.interview_date, vi.status,
            vi.overall_recommendation AS recommendation, vi.comments
        FROM virtual_interviews vi
        JOIN students s ON s.student_id = vi.student_id
        JOIN volunteers v ON v.volunteer_id = vi.volunteer_id
        ORDER BY vi.assigned_date DESC`
	var rows []models.InterviewAssignmentView
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list virtual interviews: %w", err)
	}
	return rows, nil
}

// Stats summarises a VI volunteer's workload.
func (r *VirtualInterviewRepository) Stats(ctx context.Context, volunteerID string) (*models.StageStats, error) {
	const query = `SELECT COUNT(*) AS total_assigned,
            COUNT(*) FILTER (WHERE status <> $2) AS completed,
            COUNT(*) FILTER (WHERE status = $2) AS pending
        FROM virtual_interviews WHERE volunteer_id = $1`
	var stats models.StageStats
	if err := r.db.GetContext(ctx, &stats, query, volunteerID, models.VIStatusPending); err != nil {
		return nil, fmt.Errorf("vi stats: %w", err)
	}
	return &stats, nil
}
