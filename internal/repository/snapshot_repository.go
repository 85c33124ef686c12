package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/workflow"
)

// SnapshotRepository assembles the per-student view the workflow engine
// validates transitions against.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs a SnapshotRepository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load gathers the student row and every stage sub-record. Returns
// sql.ErrNoRows when the student does not exist.
func (r *SnapshotRepository) Load(ctx context.Context, studentID string) (*workflow.Snapshot, error) {
	snap := &workflow.Snapshot{}

	query := fmt.Sprintf("SELECT %s FROM students WHERE student_id = $1", studentColumns)
	if err := r.db.GetContext(ctx, &snap.Student, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("load snapshot student: %w", err)
	}

	var tv models.TeleVerification
	query = fmt.Sprintf("SELECT %s FROM televerifications WHERE student_id = $1", tvColumns)
	switch err := r.db.GetContext(ctx, &tv, query, studentID); {
	case err == nil:
		snap.TV = &tv
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("load snapshot tv: %w", err)
	}

	var pv models.PhysicalVerification
	query = fmt.Sprintf("SELECT %s FROM physical_verifications WHERE student_id = $1", pvColumns)
	switch err := r.db.GetContext(ctx, &pv, query, studentID); {
	case err == nil:
		snap.PV = &pv
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("load snapshot pv: %w", err)
	}

	const countQuery = `SELECT COUNT(*) FROM final_images WHERE student_id = $1 AND quality_status = $2`
	if err := r.db.GetContext(ctx, &snap.AcceptedImages, countQuery, studentID, models.ImageQualityGood); err != nil {
		return nil, fmt.Errorf("load snapshot images: %w", err)
	}

	var vi models.VirtualInterview
	query = fmt.Sprintf("SELECT %s FROM virtual_interviews WHERE student_id = $1", viColumns)
	switch err := r.db.GetContext(ctx, &vi, query, studentID); {
	case err == nil:
		snap.VI = &vi
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("load snapshot vi: %w", err)
	}

	var ri models.RealInterview
	query = fmt.Sprintf("SELECT %s FROM real_interviews WHERE student_id = $1", riColumns)
	switch err := r.db.GetContext(ctx, &ri, query, studentID); {
	case err == nil:
		snap.RI = &ri
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("load snapshot ri: %w", err)
	}

	var education models.EducationalDetails
	const eduQuery = `SELECT id, student_id, college_name, degree, stream, branch, year_of_passing, created_at, updated_at
        FROM educational_details WHERE student_id = $1`
	switch err := r.db.GetContext(ctx, &education, eduQuery, studentID); {
	case err == nil:
		snap.Education = &education
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("load snapshot education: %w", err)
	}

	return snap, nil
}
