package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/maatram/scholarship-review-api/internal/models"
)

// MediaRepository manages persistence for quality-accepted verification
// images.
type MediaRepository struct {
	db *sqlx.DB
}

// NewMediaRepository constructs a MediaRepository.
func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// InsertBatch stores a batch of accepted images for a student in a single
// transaction.
func (r *MediaRepository) InsertBatch(ctx context.Context, images []models.FinalImage) error {
	if len(images) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin image batch: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	const query = `INSERT INTO final_images (student_id, image_key, quality_status, condition_result, issues_found, created_at)
        VALUES (:student_id, :image_key, :quality_status, :condition_result, :issues_found, :created_at)`
	now := time.Now().UTC()
	for i := range images {
		if images[i].CreatedAt.IsZero() {
			images[i].CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, query, images[i]); err != nil {
			return fmt.Errorf("insert final image: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit image batch: %w", err)
	}
	commit = true
	return nil
}

// ListByStudent returns a student's stored images, newest last.
func (r *MediaRepository) ListByStudent(ctx context.Context, studentID string) ([]models.FinalImage, error) {
	const query = `SELECT image_id, student_id, image_key, quality_status, condition_result, issues_found, created_at
        FROM final_images WHERE student_id = $1 ORDER BY created_at ASC`
	var images []models.FinalImage
	if err := r.db.SelectContext(ctx, &images, query, studentID); err != nil {
		return nil, fmt.Errorf("list final images: %w", err)
	}
	return images, nil
}

// CountAccepted returns the number of quality-accepted images on file.
func (r *MediaRepository) CountAccepted(ctx context.Context, studentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM final_images WHERE student_id = $1 AND quality_status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, models.ImageQualityGood); err != nil {
		return 0, fmt.Errorf("count accepted images: %w", err)
	}
	return count, nil
}
