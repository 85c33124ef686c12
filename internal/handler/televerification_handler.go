package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/service"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
	"github.com/maatram/scholarship-review-api/pkg/response"
)

// TeleVerificationHandler exposes the tele-verification endpoints for both
// the calling volunteers and the TV admins who assign and review.
type TeleVerificationHandler struct {
	service   *service.TeleVerificationService
	directory *service.DirectoryService
}

// NewTeleVerificationHandler constructs the handler.
func NewTeleVerificationHandler(svc *service.TeleVerificationService, directory *service.DirectoryService) *TeleVerificationHandler {
	return &TeleVerificationHandler{service: svc, directory: directory}
}

// UnassignedStudents godoc
// @Summary List students awaiting a tele-verification volunteer
// @Tags TeleVerification
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/api/unassigned-tv-students [get]
func (h *TeleVerificationHandler) UnassignedStudents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	students, pagination, err := h.directory.StudentsByStatus(c.Request.Context(), models.StudentStatusNew, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Volunteers godoc
// @Summary List active tele-verification volunteers
// @Tags TeleVerification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/api/tv-volunteers [get]
func (h *TeleVerificationHandler) Volunteers(c *gin.Context) {
	volunteers, err := h.directory.Volunteers(c.Request.Context(), models.RoleTV)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, volunteers, nil)
}

// BulkAssign godoc
// @Summary Assign a batch of students to a TV volunteer
// @Description The batch is atomic: any invalid student rejects the whole request
// @Tags TeleVerification
// @Accept json
// @Produce json
// @Param payload body service.BulkAssignRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/api/assign-tv [post]
func (h *TeleVerificationHandler) BulkAssign(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	if err := h.service.BulkAssign(c.Request.Context(), claims.VolunteerID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"assigned": len(req.StudentIDs)}, nil)
}

// Queue godoc
// @Summary List the volunteer's assigned students
// @Tags TeleVerification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/tv-volunteer/assigned-students [get]
func (h *TeleVerificationHandler) Queue(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	queue, err := h.service.Queue(c.Request.Context(), claims.VolunteerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, queue, nil)
}

// Submit godoc
// @Summary Submit a tele-verification report
// @Tags TeleVerification
// @Accept json
// @Produce json
// @Param payload body service.TVReportRequest true "Report payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /api/tv-volunteer/submit [post]
func (h *TeleVerificationHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.TVReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	if err := h.service.SubmitReport(c.Request.Context(), claims.VolunteerID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"studentId": req.StudentID, "status": req.Status}, nil)
}

// Reports godoc
// @Summary List submitted tele-verification reports awaiting review
// @Tags TeleVerification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/api/submitted-tv-reports [get]
func (h *TeleVerificationHandler) Reports(c *gin.Context) {
	reports, err := h.service.Reports(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}

// Review godoc
// @Summary Review a submitted tele-verification report
// @Description SELECT advances the student to physical verification; REJECT ends the pipeline
// @Tags TeleVerification
// @Accept json
// @Produce json
// @Param payload body service.TVReviewRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/api/review-tv-submission [post]
func (h *TeleVerificationHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.TVReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	if err := h.service.Review(c.Request.Context(), claims.VolunteerID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"studentId": req.StudentID, "decision": req.Decision}, nil)
}

// SelectedStudents godoc
// @Summary List students cleared for physical verification
// @Tags TeleVerification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/api/tv-selected-students [get]
func (h *TeleVerificationHandler) SelectedStudents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	students, pagination, err := h.directory.StudentsByStatus(c.Request.Context(), models.StudentStatusPV, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Stats godoc
// @Summary Summarise the volunteer's workload
// @Tags TeleVerification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/tv-volunteer/statistics [get]
func (h *TeleVerificationHandler) Stats(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), claims.VolunteerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
