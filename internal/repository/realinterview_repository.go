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

// RealInterviewRepository manages persistence for in-person interview
// assignments. The interview itself happens offline; outcomes arrive with
// the superadmin's final decision.
type RealInterviewRepository struct {
	db *sqlx.DB
}

// NewRealInterviewRepository constructs a RealInterviewRepository.
func NewRealInterviewRepository(db *sqlx.DB) *RealInterviewRepository {
	return &RealInterviewRepository{db: db}
}

const riColumns = `ri_id, student_id, volunteer_id, assigned_date, interview_date, status, overall_recommendation, remarks`

// FindByStudent fetches the real-interview row for a student. Returns nil
// when absent.
func (r *RealInterviewRepository) FindByStudent(ctx context.Context, studentID string) (*models.RealInterview, error) {
	query := fmt.Sprintf("SELECT %s FROM real_interviews WHERE student_id = $1", riColumns)
	var ri models.RealInterview
	if err := r.db.GetContext(ctx, &ri, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find real interview: %w", err)
	}
	return &ri, nil
}

// EligiblePool lists students who cleared the virtual interview with a
// recommendation, remain approved, and have no completed real interview.
// Pending assignments stay in the pool so reassignment works.
func (r *RealInterviewRepository) EligiblePool(ctx context.Context) ([]models.InterviewAssignmentView, error) {
	const query = `SELECT s.student_id, s.name AS student_name, s.district, s.phone,
            ri.volunteer_id, v.name AS volunteer_name, v.email AS volunteer_email,
            ri.assigned_date, ri.interview_date, ri.status,
            ri.overall_recommendation AS recommendation, ri.remarks AS comments
        FROM students s
        JOIN virtual_interviews vi ON vi.student_id = s.student_id AND vi.status = $1
        LEFT JOIN real_interviews ri ON ri.student_id = s.student_id
        LEFT JOIN volunteers v ON v.volunteer_id = ri.volunteer_id
        WHERE s.status = $2 AND (ri.student_id IS NULL OR ri.status <> $3)
        ORDER BY s.name ASC`
	var pool []models.InterviewAssignmentView
	if err := r.db.SelectContext(ctx, &pool, query, models.VIStatusRecommended, models.StudentStatusApproved, models.RIStatusCompleted); err != nil {
		return nil, fmt.Errorf("real interview pool: %w", err)
	}
	return pool, nil
}

// Assign upserts the interviewer for a student's in-person interview.
// Reassignment resets the record to PENDING.
func (r *RealInterviewRepository) Assign(ctx context.Context, studentID, volunteerID string, interviewDate *time.Time) error {
	const query = `INSERT INTO real_interviews (student_id, volunteer_id, assigned_date, interview_date, status)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (student_id) DO UPDATE
        SET volunteer_id = EXCLUDED.volunteer_id, assigned_date = EXCLUDED.assigned_date,
            interview_date = EXCLUDED.interview_date, status = EXCLUDED.status,
            overall_recommendation = NULL, remarks = NULL`
	if _, err := r.db.ExecContext(ctx, query, studentID, volunteerID, time.Now().UTC(), interviewDate, models.RIStatusPending); err != nil {
		return fmt.Errorf("assign real interview: %w", err)
	}
	return nil
}

// Complete records the offline interview outcome entered at final-decision
// time.
func (r *RealInterviewRepository) Complete(ctx context.Context, studentID string, recommendation string, remarks string, at time.Time) error {
	const query = `UPDATE real_interviews
        SET status = $2, overall_recommendation = $3, remarks = $4, interview_date = COALESCE(interview_date, $5)
        WHERE student_id = $1`
	res, err := r.db.ExecContext(ctx, query, studentID, models.RIStatusCompleted, recommendation, remarks, at)
	if err != nil {
		return fmt.Errorf("complete real interview: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListCompleted lists finished in-person interviews with identities.
func (r *RealInterviewRepository) ListCompleted(ctx context.Context) ([]models.InterviewAssignmentView, error) {
	const query = `SELECT s.student_id, s.name AS student_name, s.district, s.phone,
            ri.volunteer_id, v.name AS volunteer_name, v.email AS volunteer_email,
            ri.assigned_date, ri.interview_date, ri.status,
            ri.overall_recommendation AS recommendation, ri.remarks AS comments
        FROM real_interviews ri
        JOIN students s ON s.student_id = ri.student_id
        LEFT JOIN volunteers v ON v.volunteer_id = ri.volunteer_id
        WHERE ri.status = $1
        ORDER BY ri.interview_date DESC NULLS LAST`
	var rows []models.InterviewAssignmentView
	if err := r.db.SelectContext(ctx, &rows, query, models.RIStatusCompleted); err != nil {
		return nil, fmt.Errorf("list completed real interviews: %w", err)
	}
	return rows, nil
}

// Stats summarises the real-interview pipeline for the dashboard.
func (r *RealInterviewRepository) Stats(ctx context.Context) (*models.RIStats, error) {
	const eligibleQuery = `SELECT COUNT(*)
        FROM students s
        JOIN virtual_interviews vi ON vi.student_id = s.student_id AND vi.status = $1
        LEFT JOIN real_interviews ri ON ri.student_id = s.student_id
        WHERE s.status = $2 AND (ri.student_id IS NULL OR ri.status <> $3)`
	var stats models.RIStats
	if err := r.db.GetContext(ctx, &stats.Eligible, eligibleQuery, models.VIStatusRecommended, models.StudentStatusApproved, models.RIStatusCompleted); err != nil {
		return nil, fmt.Errorf("ri stats: %w", err)
	}

	const countsQuery = `SELECT COUNT(*) FILTER (WHERE status = $1) AS assigned,
            COUNT(*) FILTER (WHERE status = $2) AS completed
        FROM real_interviews`
	row := struct {
		Assigned  int `db:"assigned"`
		Completed int `db:"completed"`
	}{}
	if err := r.db.GetContext(ctx, &row, countsQuery, models.RIStatusPending, models.RIStatusCompleted); err != nil {
		return nil, fmt.Errorf("ri stats: %w", err)
	}
	stats.Assigned = row.Assigned
	stats.Completed = row.Completed
	return &stats, nil
}
