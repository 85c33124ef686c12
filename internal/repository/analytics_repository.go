package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/maatram/scholarship-review-api/internal/models"
)

// AnalyticsRepository runs the aggregate queries behind the admin analytics
// endpoints.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository constructs an AnalyticsRepository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Overview summarises outcomes for students that reached physical
// verification.
func (r *AnalyticsRepository) Overview(ctx context.Context) (*models.AnalyticsOverview, error) {
	const query = `SELECT COUNT(*) AS total,
            COUNT(*) FILTER (WHERE s.status = $1) AS selected,
            COUNT(*) FILTER (WHERE s.status = $2) AS rejected,
            COUNT(*) FILTER (WHERE s.status NOT IN ($1, $2)) AS pending
        FROM students s
        JOIN physical_verifications pv ON pv.student_id = s.student_id`
	var overview models.AnalyticsOverview
	if err := r.db.GetContext(ctx, &overview, query, models.StudentStatusApproved, models.StudentStatusRejected); err != nil {
		return nil, fmt.Errorf("analytics overview: %w", err)
	}
	return &overview, nil
}

// AIAccuracy compares the sentiment model's positive/negative verdict with
// the admin's approve/reject decision on decided students.
func (r *AnalyticsRepository) AIAccuracy(ctx context.Context) (*models.AIAccuracy, error) {
	const query = `SELECT COUNT(*) AS total,
            COUNT(*) FILTER (WHERE (UPPER(pv.sentiment) = 'POSITIVE' AND s.status = $1)
                OR (UPPER(pv.sentiment) = 'NEGATIVE' AND s.status = $2)) AS correct,
            COUNT(*) FILTER (WHERE (UPPER(pv.sentiment) = 'POSITIVE' AND s.status = $2)
                OR (UPPER(pv.sentiment) = 'NEGATIVE' AND s.status = $1)) AS wrong
        FROM physical_verifications pv
        JOIN students s ON s.student_id = pv.student_id
        WHERE pv.sentiment IS NOT NULL AND s.status IN ($1, $2)`
	var accuracy models.AIAccuracy
	if err := r.db.GetContext(ctx, &accuracy, query, models.StudentStatusApproved, models.StudentStatusRejected); err != nil {
		return nil, fmt.Errorf("ai accuracy: %w", err)
	}
	if accuracy.Total > 0 {
		accuracy.AccuracyPercent = float64(accuracy.Correct) / float64(accuracy.Total) * 100
	}
	return &accuracy, nil
}

// GenderDistribution buckets students that reached physical verification by
// gender.
func (r *AnalyticsRepository) GenderDistribution(ctx context.Context) ([]models.DistributionBucket, error) {
	const query = `SELECT s.gender AS label, COUNT(*) AS count
        FROM students s
        JOIN physical_verifications pv ON pv.student_id = s.student_id
        GROUP BY s.gender ORDER BY count DESC`
	return r.buckets(ctx, query)
}

// RejectionStageDistribution counts rejected students by the last stage
// they reached, derived from which stage records exist.
func (r *AnalyticsRepository) RejectionStageDistribution(ctx context.Context) ([]models.DistributionBucket, error) {
	const query = `SELECT CASE
            WHEN vi.student_id IS NOT NULL THEN 'VIRTUAL_INTERVIEW'
            WHEN pv.student_id IS NOT NULL THEN 'PHYSICAL_VERIFICATION'
            WHEN tv.student_id IS NOT NULL THEN 'TELE_VERIFICATION'
            ELSE 'SCREENING'
        END AS label, COUNT(*) AS count
        FROM students s
        LEFT JOIN televerifications tv ON tv.student_id = s.student_id
        LEFT JOIN physical_verifications pv ON pv.student_id = s.student_id
        LEFT JOIN virtual_interviews vi ON vi.student_id = s.student_id
        WHERE s.status = $1
        GROUP BY 1 ORDER BY count DESC`
	var buckets []models.DistributionBucket
	if err := r.db.SelectContext(ctx, &buckets, query, models.StudentStatusRejected); err != nil {
		return nil, fmt.Errorf("rejection stage distribution: %w", err)
	}
	return buckets, nil
}

// DistrictDistribution buckets the active pipeline by district.
func (r *AnalyticsRepository) DistrictDistribution(ctx context.Context) ([]models.DistributionBucket, error) {
	const query = `SELECT district AS label, COUNT(*) AS count
        FROM students GROUP BY district ORDER BY count DESC`
	return r.buckets(ctx, query)
}

// YearlyTrend buckets final decisions by year.
func (r *AnalyticsRepository) YearlyTrend(ctx context.Context) ([]models.DistributionBucket, error) {
	const query = `SELECT TO_CHAR(final_decision_date, 'YYYY') AS label, COUNT(*) AS count
        FROM students WHERE final_decision IS NOT NULL
        GROUP BY 1 ORDER BY 1 ASC`
	return r.buckets(ctx, query)
}

func (r *AnalyticsRepository) buckets(ctx context.Context, query string, args ...interface{}) ([]models.DistributionBucket, error) {
	var buckets []models.DistributionBucket
	if err := r.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, fmt.Errorf("distribution query: %w", err)
	}
	return buckets, nil
}
