package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/service"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
	"github.com/maatram/scholarship-review-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Authenticate volunteer
// @Description Authenticate volunteer by id and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /api/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary End session
// @Description Tokens are stateless; the client discards its copy
// @Tags Authentication
// @Produce json
// @Success 204 {object} response.Envelope
// @Router /api/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	response.NoContent(c)
}

// Me godoc
// @Summary Get current volunteer
// @Description Returns the authenticated volunteer's info
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /api/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	info := models.VolunteerInfo{
		VolunteerID: claims.VolunteerID,
		Name:        claims.Name,
		Email:       claims.Email,
		Role:        claims.Role,
	}
	response.JSON(c, http.StatusOK, info, nil)
}
