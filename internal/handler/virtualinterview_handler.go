package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/service"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
	"github.com/maatram/scholarship-review-api/pkg/response"
)

// VirtualInterviewHandler exposes the remote-interview endpoints for
// interviewers and the superadmin pool screens.
type VirtualInterviewHandler struct {
	service   *service.VirtualInterviewService
	final     *service.FinalDecisionService
	directory *service.DirectoryService
}

// NewVirtualInterviewHandler constructs the handler.
func NewVirtualInterviewHandler(svc *service.VirtualInterviewService, final *service.FinalDecisionService, directory *service.DirectoryService) *VirtualInterviewHandler {
	return &VirtualInterviewHandler{service: svc, final: final, directory: directory}
}

// Pool godoc
// @Summary List approved students available for interviewer assignment
// @Tags VirtualInterview
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /superadmin/api/approved-students [get]
func (h *VirtualInterviewHandler) Pool(c *gin.Context) {
	pool, err := h.service.Pool(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pool, nil)
}

// Volunteers godoc
// @Summary List active virtual-interview volunteers
// @Tags VirtualInterview
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /superadmin/api/vi-volunteers [get]
func (h *VirtualInterviewHandler) Volunteers(c *gin.Context) {
	volunteers, err := h.directory.Volunteers(c.Request.Context(), models.RoleVI)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, volunteers, nil)
}

// Assign godoc
// @Summary Assign an interviewer to an approved student
// @Tags VirtualInterview
// @Accept json
// @Produce json
// @Param payload body service.VIAssignRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /superadmin/api/assign-vi-volunteer [post]
func (h *VirtualInterviewHandler) Assign(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.VIAssignRequest
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

// Assignments godoc
// @Summary List every interview assignment with identities
// @Tags VirtualInterview
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /superadmin/api/vi-assignments [get]
func (h *VirtualInterviewHandler) Assignments(c *gin.Context) {
	rows, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Queue godoc
// @Summary List the interviewer's pending students
// @Tags VirtualInterview
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /vi/api/assigned-students [get]
func (h *VirtualInterviewHandler) Queue(c *gin.Context) {
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

// Student godoc
// @Summary Full applicant profile for the interviewer
// @Tags VirtualInterview
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /vi/api/student/{id} [get]
func (h *VirtualInterviewHandler) Student(c *gin.Context) {
	profile, err := h.final.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Submit godoc
// @Summary Record the interviewer's verdict
// @Description Remarks must be substantial enough for the final review
// @Tags VirtualInterview
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.VIOutcomeRequest true "Outcome payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /vi/api/submit-interview/{id} [post]
func (h *VirtualInterviewHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.VIOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid outcome payload"))
		return
	}
	if req.StudentID == "" {
		req.StudentID = c.Param("id")
	}

	if err := h.service.Submit(c.Request.Context(), claims.VolunteerID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"studentId": req.StudentID, "recommendation": req.Recommendation}, nil)
}

// Completed godoc
// @Summary List completed interviews
// @Tags VirtualInterview
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /vi/api/completed-interviews [get]
func (h *VirtualInterviewHandler) Completed(c *gin.Context) {
	rows, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	completed := rows[:0:0]
	for _, row := range rows {
		if row.Status != nil && models.VIStatus(*row.Status).Terminal() {
			completed = append(completed, row)
		}
	}
	response.JSON(c, http.StatusOK, completed, nil)
}

// Stats godoc
// @Summary Summarise the interviewer's workload
// @Tags VirtualInterview
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /vi/api/statistics [get]
func (h *VirtualInterviewHandler) Stats(c *gin.Context) {
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
