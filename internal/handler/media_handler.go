package handler

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/maatram/scholarship-review-api/internal/service"
	"github.com/maatram/scholarship-review-api/pkg/response"
)

// MediaHandler streams stored verification media behind signed tokens.
type MediaHandler struct {
	service *service.MediaService
}

// NewMediaHandler constructs the handler.
func NewMediaHandler(svc *service.MediaService) *MediaHandler {
	return &MediaHandler{service: svc}
}

// Download godoc
// @Summary Download a stored image or voice note
// @Description The token is a signed, expiring reference minted by the API
// @Tags Media
// @Produce application/octet-stream
// @Param token path string true "Signed media token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/media/{token} [get]
func (h *MediaHandler) Download(c *gin.Context) {
	file, err := h.service.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(file.Name()))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
