package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/service"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
	"github.com/maatram/scholarship-review-api/pkg/response"
)

// FinalDecisionHandler exposes the end-of-pipeline superadmin endpoints.
type FinalDecisionHandler struct {
	service *service.FinalDecisionService
}

// NewFinalDecisionHandler constructs the handler.
func NewFinalDecisionHandler(svc *service.FinalDecisionService) *FinalDecisionHandler {
	return &FinalDecisionHandler{service: svc}
}

// Decide godoc
// @Summary Record the final scholarship decision
// @Description The offline interview outcome is entered in the same call
// @Tags FinalDecision
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.FinalDecisionRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /superadmin/api/final-decision/{id} [post]
func (h *FinalDecisionHandler) Decide(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.FinalDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}
	if req.StudentID == "" {
		req.StudentID = c.Param("id")
	}

	if err := h.service.Decide(c.Request.Context(), claims.VolunteerID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"studentId": req.StudentID, "decision": req.Decision}, nil)
}

// SelectedStudents godoc
// @Summary List decided students with educational details
// @Tags FinalDecision
// @Produce json
// @Param decision query string false "SELECTED or REJECTED (default SELECTED)"
// @Success 200 {object} response.Envelope
// @Router /superadmin/api/selected-students [get]
func (h *FinalDecisionHandler) SelectedStudents(c *gin.Context) {
	decision := models.FinalDecision(c.Query("decision"))
	rows, err := h.service.SelectedStudents(c.Request.Context(), decision)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Profile godoc
// @Summary Full cross-stage profile of one applicant
// @Tags FinalDecision
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /educational/api/student-profile/{id} [get]
func (h *FinalDecisionHandler) Profile(c *gin.Context) {
	profile, err := h.service.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}
