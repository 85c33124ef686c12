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

// EducationalRepository manages persistence for post-selection records: the
// college placement and the scholarship grant particulars.
type EducationalRepository struct {
	db *sqlx.DB
}

// NewEducationalRepository constructs an EducationalRepository.
func NewEducationalRepository(db *sqlx.DB) *EducationalRepository {
	return &EducationalRepository{db: db}
}

// FindByStudent fetches the educational details for a student. Returns nil
// when absent.
func (r *EducationalRepository) FindByStudent(ctx context.Context, studentID string) (*models.EducationalDetails, error) {
	const query = `SELECT id, student_id, college_name, degree, stream, branch, year_of_passing, created_at, updated_at
        FROM educational_details WHERE student_id = $1`
	var details models.EducationalDetails
	if err := r.db.GetContext(ctx, &details, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find educational details: %w", err)
	}
	return &details, nil
}

// Upsert stores the college placement for a student. Resubmission updates
// the existing row in place.
func (r *EducationalRepository) Upsert(ctx context.Context, details *models.EducationalDetails) error {
	now := time.Now().UTC()
	if details.CreatedAt.IsZero() {
		details.CreatedAt = now
	}
	details.UpdatedAt = now
	const query = `INSERT INTO educational_details (student_id, college_name, degree, stream, branch, year_of_passing, created_at, updated_at)
        VALUES (:student_id, :college_name, :degree, :stream, :branch, :year_of_passing, :created_at, :updated_at)
        ON CONFLICT (student_id) DO UPDATE
        SET college_name = EXCLUDED.college_name, degree = EXCLUDED.degree, stream = EXCLUDED.stream,
            branch = EXCLUDED.branch, year_of_passing = EXCLUDED.year_of_passing, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, details); err != nil {
		return fmt.Errorf("upsert educational details: %w", err)
	}
	return nil
}

// FindScholarshipByStudent fetches the scholarship grant record for a
// student. Returns nil when absent.
func (r *EducationalRepository) FindScholarshipByStudent(ctx context.Context, studentID string) (*models.ScholarshipDetails, error) {
	const query = `SELECT id, student_id, batch, college, branch, stream, admission_date, remarks, updated_at
        FROM scholarship_details WHERE student_id = $1`
	var details models.ScholarshipDetails
	if err := r.db.GetContext(ctx, &details, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find scholarship details: %w", err)
	}
	return &details, nil
}

// UpsertScholarship stores the grant particulars, keyed by student.
func (r *EducationalRepository) UpsertScholarship(ctx context.Context, details *models.ScholarshipDetails) error {
	details.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO scholarship_details (student_id, batch, college, branch, stream, admission_date, remarks, updated_at)
        VALUES (:student_id, :batch, :college, :branch, :stream, :admission_date, :remarks, :updated_at)
        ON CONFLICT (student_id) DO UPDATE
        SET batch = EXCLUDED.batch, college = EXCLUDED.college, branch = EXCLUDED.branch,
            stream = EXCLUDED.stream, admission_date = EXCLUDED.admission_date,
            remarks = EXCLUDED.remarks, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, details); err != nil {
		return fmt.Errorf("upsert scholarship details: %w", err)
	}
	return nil
}

// ListSelected returns decided students joined with their educational
// details for the selection dashboards and exports.
func (r *EducationalRepository) ListSelected(ctx context.Context, decision models.FinalDecision) ([]models.SelectedStudentView, error) {
	const query = `SELECT s.student_id, s.name, s.district, s.phone, s.email,
            s.final_decision, s.final_decision_date,
            ed.college_name, ed.degree, ed.stream, ed.branch, ed.year_of_passing
        FROM students s
        LEFT JOIN educational_details ed ON ed.student_id = s.student_id
        WHERE s.final_decision = $1
        ORDER BY s.final_decision_date DESC, s.name ASC`
	var rows []models.SelectedStudentView
	if err := r.db.SelectContext(ctx, &rows, query, decision); err != nil {
		return nil, fmt.Errorf("list selected students: %w", err)
	}
	return rows, nil
}
