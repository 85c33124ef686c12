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

// StudentRepository manages persistence for applicant records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `student_id, name, district, phone, email, gender, status, admin_remarks, selected,
        final_decision, final_remarks, final_decision_date, created_at, updated_at`

// List returns students matching the provided filters with pagination.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.District != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(district) = $%d", len(args)+1))
		args = append(args, strings.ToLower(filter.District))
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(student_id) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		studentColumns, where, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID. Returns nil when absent.
func (r *StudentRepository) FindByID(ctx context.Context, studentID string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE student_id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// UpdateStatus advances the pipeline stage tag on the student record.
func (r *StudentRepository) UpdateStatus(ctx context.Context, studentID string, status models.StudentStatus) error {
	const query = `UPDATE students SET status = $2, updated_at = $3 WHERE student_id = $1`
	res, err := r.db.ExecContext(ctx, query, studentID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update student status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetAdminDecision records the admin's post-PV decision together with remarks.
func (r *StudentRepository) SetAdminDecision(ctx context.Context, studentID string, status models.StudentStatus, remarks string) error {
	const query = `UPDATE students SET status = $2, admin_remarks = $3, updated_at = $4 WHERE student_id = $1`
	res, err := r.db.ExecContext(ctx, query, studentID, status, remarks, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set admin decision: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetFinalDecision records the superadmin's scholarship verdict. A SELECTED
// decision also flips the selected flag used by the selection dashboards.
func (r *StudentRepository) SetFinalDecision(ctx context.Context, studentID string, decision models.FinalDecision, remarks string, at time.Time) error {
	const query = `UPDATE students
        SET final_decision = $2, final_remarks = $3, final_decision_date = $4,
            selected = $5, updated_at = $6
        WHERE student_id = $1`
	selected := decision == models.FinalDecisionSelected
	res, err := r.db.ExecContext(ctx, query, studentID, decision, remarks, at, selected, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set final decision: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Marks fetches the 10th/12th marks bundle for a student.
func (r *StudentRepository) Marks(ctx context.Context, studentID string) (map[string]models.Marks, error) {
	const query = `SELECT student_id, standard, board, school, percentage, year_of_pass
        FROM student_marks WHERE student_id = $1`
	var rows []models.Marks
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("fetch marks: %w", err)
	}
	marks := make(map[string]models.Marks, len(rows))
	for _, m := range rows {
		marks[m.Standard] = m
	}
	return marks, nil
}

// CountByStatus returns the pipeline headcount per stage tag.
func (r *StudentRepository) CountByStatus(ctx context.Context) (map[models.StudentStatus]int, error) {
	const query = `SELECT status AS label, COUNT(*) AS count FROM students GROUP BY status`
	var buckets []models.DistributionBucket
	if err := r.db.SelectContext(ctx, &buckets, query); err != nil {
		return nil, fmt.Errorf("count students by status: %w", err)
	}
	counts := make(map[models.StudentStatus]int, len(buckets))
	for _, b := range buckets {
		counts[models.StudentStatus(b.Label)] = b.Count
	}
	return counts, nil
}
