package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/service"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
	"github.com/maatram/scholarship-review-api/pkg/response"
)

// RealInterviewHandler exposes the in-person interview pool and assignment
// endpoints. The interview itself happens offline.
type RealInterviewHandler struct {
	service   *service.RealInterviewService
	directory *service.DirectoryService
}

// NewRealInterviewHandler constructs the handler.
func NewRealInterviewHandler(svc *service.RealInterviewService, directory *service.DirectoryService) *RealInterviewHandler {
	return &RealInterviewHandler{service: svc, directory: directory}
}

// EligiblePool godoc
// @Summary List students cleared for an in-person interview
// @Description Approved, recommended by the virtual interviewer, and not yet completed
// @Tags RealInterview
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /real-interview/api/eligible-students [get]
func (h *RealInterviewHandler) EligiblePool(c *gin.Context) {
	pool, err := h.service.EligiblePool(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pool, nil)
}

// Volunteers godoc
// @Summary List active real-interview volunteers
// @Tags RealInterview
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /real-interview/api/ri-volunteers [get]
func (h *RealInterviewHandler) Volunteers(c *gin.Context) {
	volunteers, err := h.directory.Volunteers(c.Request.Context(), models.RoleRI)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, volunteers, nil)
}

// Assign godoc
// @Summary Assign an in-person interviewer to an eligible student
// @Tags RealInterview
// @Accept json
// @Produce json
// @Param payload body service.RIAssignRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /real-interview/api/assign-volunteer [post]
func (h *RealInterviewHandler) Assign(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.RIAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	if err := h.service.Assign(c.Request.Context(), claims.VolunteerID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"studentId": req.StudentID, "volunteerId": req.VolunteerID}, nil)
}

// Completed godoc
// @Summary List finished in-person interviews
// @Tags RealInterview
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /real-interview/api/completed [get]
func (h *RealInterviewHandler) Completed(c *gin.Context) {
	rows, err := h.service.Completed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Stats godoc
// @Summary Summarise the real-interview pipeline
// @Tags RealInterview
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /real-interview/api/stats [get]
func (h *RealInterviewHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
