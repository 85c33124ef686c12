package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maatram/scholarship-review-api/internal/service"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
	"github.com/maatram/scholarship-review-api/pkg/response"
)

// EducationalHandler exposes post-selection record endpoints.
type EducationalHandler struct {
	service *service.EducationalService
	final   *service.FinalDecisionService
}

// NewEducationalHandler constructs the handler.
func NewEducationalHandler(svc *service.EducationalService, final *service.FinalDecisionService) *EducationalHandler {
	return &EducationalHandler{service: svc, final: final}
}

// Save godoc
// @Summary Store the college placement for a selected student
// @Description Resubmitting updates the row in place
// @Tags Educational
// @Accept json
// @Produce json
// @Param payload body service.EducationalDetailsRequest true "Details payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /educational/api/save-details [post]
func (h *EducationalHandler) Save(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.EducationalDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid details payload"))
		return
	}

	details, err := h.service.Upsert(c.Request.Context(), claims.VolunteerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// Get godoc
// @Summary Fetch the college placement for a student
// @Tags Educational
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /educational/api/get-details/{id} [get]
func (h *EducationalHandler) Get(c *gin.Context) {
	details, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// AllWithDetails godoc
// @Summary List selected students joined with their educational details
// @Tags Educational
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /educational/api/all-students-with-details [get]
func (h *EducationalHandler) AllWithDetails(c *gin.Context) {
	rows, err := h.final.SelectedStudents(c.Request.Context(), "")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// SaveScholarship godoc
// @Summary Store the scholarship grant particulars
// @Tags Educational
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.ScholarshipDetailsRequest true "Scholarship payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /admin/scholarship/{id} [post]
func (h *EducationalHandler) SaveScholarship(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.ScholarshipDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scholarship payload"))
		return
	}
	if req.StudentID == "" {
		req.StudentID = c.Param("id")
	}

	details, err := h.service.UpsertScholarship(c.Request.Context(), claims.VolunteerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// GetScholarship godoc
// @Summary Fetch the scholarship grant record for a student
// @Tags Educational
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/scholarship/{id} [get]
func (h *EducationalHandler) GetScholarship(c *gin.Context) {
	details, err := h.service.GetScholarship(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}
