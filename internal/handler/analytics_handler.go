package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maatram/scholarship-review-api/internal/service"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
	"github.com/maatram/scholarship-review-api/pkg/response"
)

// AnalyticsHandler exposes dashboard-ready analytics endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Overview godoc
// @Summary Pipeline overview counts
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/api/analytics/overview [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	overview, err := h.analytics.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// AIAccuracy godoc
// @Summary Sentiment-vs-decision accuracy
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/api/analytics/ai-accuracy [get]
func (h *AnalyticsHandler) AIAccuracy(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	accuracy, err := h.analytics.AIAccuracy(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, accuracy, nil)
}

// GenderDistribution godoc
// @Summary Applicant gender distribution
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/api/analytics/gender-distribution [get]
func (h *AnalyticsHandler) GenderDistribution(c *gin.Context) {
	h.distribution(c, "gender")
}

// RejectionDistribution godoc
// @Summary Rejections by pipeline stage
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/api/analytics/rejected-distribution [get]
func (h *AnalyticsHandler) RejectionDistribution(c *gin.Context) {
	h.distribution(c, "rejection-stage")
}

// DistrictDistribution godoc
// @Summary Applicants by district
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/api/analytics/district-distribution [get]
func (h *AnalyticsHandler) DistrictDistribution(c *gin.Context) {
	h.distribution(c, "district")
}

// YearlyTrend godoc
// @Summary Final decisions per year
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/api/analytics/yearly-trends [get]
func (h *AnalyticsHandler) YearlyTrend(c *gin.Context) {
	h.distribution(c, "yearly")
}

// AuditTrail godoc
// @Summary Recent workflow mutations, newest first
// @Tags Analytics
// @Produce json
// @Param limit query int false "Maximum entries to return" default(100)
// @Success 200 {object} response.Envelope
// @Router /admin/api/audit-logs [get]
func (h *AnalyticsHandler) AuditTrail(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := h.analytics.AuditTrail(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

func (h *AnalyticsHandler) distribution(c *gin.Context, kind string) {
	if !h.enabled(c) {
		return
	}
	buckets, err := h.analytics.Distribution(c.Request.Context(), kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, buckets, nil)
}

func (h *AnalyticsHandler) enabled(c *gin.Context) bool {
	if h.analytics == nil || !h.analytics.Enabled() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "analytics disabled"))
		return false
	}
	return true
}
