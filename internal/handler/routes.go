package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/maatram/scholarship-review-api/internal/middleware"
	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth      *AuthHandler
	TV        *TeleVerificationHandler
	PV        *PhysicalVerificationHandler
	VI        *VirtualInterviewHandler
	RI        *RealInterviewHandler
	Final     *FinalDecisionHandler
	Education *EducationalHandler
	Analytics *AnalyticsHandler
	Export    *ExportHandler
	Media     *MediaHandler
	Metrics   *MetricsHandler
}

// Register wires every route group onto the engine. Role areas mirror the
// client applications: admin console, field volunteers, interviewers and the
// superadmin screens.
func Register(r *gin.Engine, h Handlers, auth *service.AuthService) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	r.POST("/api/login", h.Auth.Login)
	r.GET("/api/media/:token", h.Media.Download)

	authed := r.Group("", middleware.JWT(auth))
	authed.POST("/api/logout", h.Auth.Logout)
	authed.GET("/api/me", h.Auth.Me)

	admin := authed.Group("/admin/api", middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/pv-volunteers", h.PV.Volunteers)
		admin.POST("/assign-pv-volunteer", h.PV.Assign)
		admin.GET("/completed-pv-students", h.PV.Reports)
		admin.GET("/pv-statistics", h.PV.AdminStats)
		admin.GET("/pending-students", h.PV.PendingStudents)
		admin.GET("/student/:id", h.PV.Bundle)
		admin.PUT("/final_status_update/:id", h.PV.Decide)

		admin.GET("/export/selected", h.Export.Selected)
		admin.GET("/audit-logs", h.Analytics.AuditTrail)

		analytics := admin.Group("/analytics")
		analytics.GET("/overview", h.Analytics.Overview)
		analytics.GET("/ai-accuracy", h.Analytics.AIAccuracy)
		analytics.GET("/gender-distribution", h.Analytics.GenderDistribution)
		analytics.GET("/rejected-distribution", h.Analytics.RejectionDistribution)
		analytics.GET("/district-distribution", h.Analytics.DistrictDistribution)
		analytics.GET("/yearly-trends", h.Analytics.YearlyTrend)
	}

	// TV admin screens are shared between the admin and tv_admin roles.
	tvAdmin := authed.Group("/admin/api", middleware.RequireRoles(models.RoleAdmin, models.RoleTVAdmin))
	{
		tvAdmin.GET("/unassigned-tv-students", h.TV.UnassignedStudents)
		tvAdmin.GET("/tv-volunteers", h.TV.Volunteers)
		tvAdmin.POST("/assign-tv", h.TV.BulkAssign)
		tvAdmin.GET("/submitted-tv-reports", h.TV.Reports)
		tvAdmin.POST("/review-tv-submission", h.TV.Review)
		tvAdmin.GET("/tv-selected-students", h.TV.SelectedStudents)
	}

	scholarship := authed.Group("/admin/scholarship", middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	{
		scholarship.GET("/:id", h.Education.GetScholarship)
		scholarship.POST("/:id", h.Education.SaveScholarship)
	}

	tv := authed.Group("/api/tv-volunteer", middleware.RequireRoles(models.RoleTV))
	{
		tv.GET("/assigned-students", h.TV.Queue)
		tv.POST("/submit", h.TV.Submit)
		tv.GET("/statistics", h.TV.Stats)
	}

	pv := authed.Group("/api/pv", middleware.RequireRoles(models.RolePV))
	{
		pv.GET("/assigned-students", h.PV.Queue)
		pv.GET("/statistics", h.PV.Stats)
		pv.GET("/student/:id", h.PV.Bundle)
		pv.POST("/batch-quality-check", h.PV.QualityCheck)
		pv.POST("/final-upload-batch", h.PV.FinalUpload)
		pv.POST("/save-audio", h.PV.SaveAudio)
		pv.GET("/image-count/:id", h.PV.ImageCount)
		pv.GET("/get-images/:id", h.PV.Images)
		pv.POST("/submit-pv", h.PV.Submit)
		pv.GET("/pv-status/:id", h.PV.Status)
	}

	vi := authed.Group("/vi/api", middleware.RequireRoles(models.RoleVI))
	{
		vi.GET("/assigned-students", h.VI.Queue)
		vi.GET("/student/:id", h.VI.Student)
		vi.POST("/submit-interview/:id", h.VI.Submit)
		vi.GET("/completed-interviews", h.VI.Completed)
		vi.GET("/statistics", h.VI.Stats)
	}

	superadmin := authed.Group("/superadmin/api", middleware.RequireRoles(models.RoleSuperAdmin))
	{
		superadmin.GET("/approved-students", h.VI.Pool)
		superadmin.GET("/vi-volunteers", h.VI.Volunteers)
		superadmin.POST("/assign-vi-volunteer", h.VI.Assign)
		superadmin.GET("/vi-assignments", h.VI.Assignments)
		superadmin.GET("/completed-vi", h.VI.Completed)
		superadmin.GET("/vi-details/:id", h.VI.Student)
		superadmin.GET("/students-for-final-decision", h.RI.EligiblePool)
		superadmin.POST("/final-decision/:id", h.Final.Decide)
		superadmin.GET("/selected-students", h.Final.SelectedStudents)
	}

	realInterview := authed.Group("/real-interview/api", middleware.RequireRoles(models.RoleSuperAdmin))
	{
		realInterview.GET("/eligible-students", h.RI.EligiblePool)
		realInterview.GET("/ri-volunteers", h.RI.Volunteers)
		realInterview.POST("/assign-volunteer", h.RI.Assign)
		realInterview.GET("/completed", h.RI.Completed)
		realInterview.GET("/stats", h.RI.Stats)
	}

	educational := authed.Group("/educational/api", middleware.RequireRoles(models.RoleSuperAdmin))
	{
		educational.POST("/save-details", h.Education.Save)
		educational.GET("/get-details/:id", h.Education.Get)
		educational.GET("/all-students-with-details", h.Education.AllWithDetails)
		educational.GET("/student-profile/:id", h.Final.Profile)
	}
}
