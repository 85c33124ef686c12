package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maatram/scholarship-review-api/internal/models"
)

type mockAnalyticsRepo struct {
	overviewCalls int
}

func (m *mockAnalyticsRepo) Overview(ctx context.Context) (*models.AnalyticsOverview, error) {
	m.overviewCalls++
	return &models.AnalyticsOverview{}, nil
}

func (m *mockAnalyticsRepo) AIAccuracy(ctx context.Context) (*models.AIAccuracy, error) {
	return &models.AIAccuracy{}, nil
}

func (m *mockAnalyticsRepo) GenderDistribution(ctx context.Context) ([]models.DistributionBucket, error) {
	return nil, nil
}

func (m *mockAnalyticsRepo) RejectionStageDistribution(ctx context.Context) ([]models.DistributionBucket, error) {
	return nil, nil
}

func (m *mockAnalyticsRepo) DistrictDistribution(ctx context.Context) ([]models.DistributionBucket, error) {
	return nil, nil
}

func (m *mockAnalyticsRepo) YearlyTrend(ctx context.Context) ([]models.DistributionBucket, error) {
	return nil, nil
}

func TestAnalyticsOverviewServesFromCache(t *testing.T) {
	repo := &mockAnalyticsRepo{}
	svc := NewAnalyticsService(repo, &mockAuditRepo{}, &mockCache{}, NewMetricsService(), nil, time.Minute, true)

	_, err := svc.Overview(context.Background())
	require.NoError(t, err)
	_, err = svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.overviewCalls)
}

func TestAnalyticsAuditTrail(t *testing.T) {
	actor := "AD01"
	audit := &mockAuditRepo{}
	for _, action := range []string{models.AuditActionAssign, models.AuditActionFinalDecision} {
		require.NoError(t, audit.Insert(context.Background(), &models.AuditLog{ActorID: &actor, Action: action, Resource: "student"}))
	}
	svc := NewAnalyticsService(&mockAnalyticsRepo{}, audit, nil, NewMetricsService(), nil, time.Minute, true)

	entries, err := svc.AuditTrail(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// newest first
	assert.Equal(t, models.AuditActionFinalDecision, entries[0].Action)

	entries, err = svc.AuditTrail(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
