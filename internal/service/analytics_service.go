package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/maatram/scholarship-review-api/internal/models"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
)

type analyticsRepository interface {
	Overview(ctx context.Context) (*models.AnalyticsOverview, error)
	AIAccuracy(ctx context.Context) (*models.AIAccuracy, error)
	GenderDistribution(ctx context.Context) ([]models.DistributionBucket, error)
	RejectionStageDistribution(ctx context.Context) ([]models.DistributionBucket, error)
	DistrictDistribution(ctx context.Context) ([]models.DistributionBucket, error)
	YearlyTrend(ctx context.Context) ([]models.DistributionBucket, error)
}

type auditReader interface {
	ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// AnalyticsService serves the admin analytics dashboards. Every payload is
// cached; the aggregates walk multiple tables and the dashboards poll.
type AnalyticsService struct {
	repo    analyticsRepository
	audit   auditReader
	cache   statsCache
	metrics *MetricsService
	logger  *zap.Logger
	ttl     time.Duration
	enabled bool
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(repo analyticsRepository, audit auditReader, cache statsCache, metrics *MetricsService, logger *zap.Logger, ttl time.Duration, enabled bool) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &AnalyticsService{repo: repo, audit: audit, cache: cache, metrics: metrics, logger: logger, ttl: ttl, enabled: enabled}
}

// Enabled reports whether the analytics endpoints are switched on.
func (s *AnalyticsService) Enabled() bool {
	return s != nil && s.enabled
}

// Overview summarises outcomes for students that reached physical
// verification.
func (s *AnalyticsService) Overview(ctx context.Context) (*models.AnalyticsOverview, error) {
	var overview models.AnalyticsOverview
	err := s.cached(ctx, "analytics:overview", &overview, func() (interface{}, error) {
		return s.repo.Overview(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &overview, nil
}

// AIAccuracy compares the sentiment model's verdicts with admin decisions.
func (s *AnalyticsService) AIAccuracy(ctx context.Context) (*models.AIAccuracy, error) {
	var accuracy models.AIAccuracy
	err := s.cached(ctx, "analytics:ai_accuracy", &accuracy, func() (interface{}, error) {
		return s.repo.AIAccuracy(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &accuracy, nil
}

// Distribution returns the named bucket distribution.
func (s *AnalyticsService) Distribution(ctx context.Context, kind string) ([]models.DistributionBucket, error) {
	var fetch func() (interface{}, error)
	switch kind {
	case "gender":
		fetch = func() (interface{}, error) { return s.repo.GenderDistribution(ctx) }
	case "rejection-stage":
		fetch = func() (interface{}, error) { return s.repo.RejectionStageDistribution(ctx) }
	case "district":
		fetch = func() (interface{}, error) { return s.repo.DistrictDistribution(ctx) }
	case "yearly":
		fetch = func() (interface{}, error) { return s.repo.YearlyTrend(ctx) }
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown distribution kind")
	}

	var buckets []models.DistributionBucket
	if err := s.cached(ctx, "analytics:distribution:"+kind, &buckets, fetch); err != nil {
		return nil, err
	}
	return buckets, nil
}

// AuditTrail returns the most recent workflow mutations. The trail is read
// straight from the database; a forensic view must not serve stale entries.
func (s *AnalyticsService) AuditTrail(ctx context.Context, limit int) ([]models.AuditLog, error) {
	entries, err := s.audit.ListRecent(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	return entries, nil
}

func (s *AnalyticsService) cached(ctx context.Context, key string, dest interface{}, fetch func() (interface{}, error)) error {
	if s.cache != nil {
		if err := s.cache.Get(ctx, key, dest); err == nil {
			s.metrics.RecordCacheOperation(true)
			return nil
		}
		s.metrics.RecordCacheOperation(false)
	}

	value, err := fetch()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute analytics")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
			s.logger.Warn("failed to cache analytics payload", zap.String("key", key), zap.Error(err))
		}
	}

	// Round-trip through JSON so the caller's destination is filled the same
	// way a cache hit would fill it.
	raw, err := json.Marshal(value)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode analytics")
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode analytics")
	}
	return nil
}
