package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/service"
	"github.com/maatram/scholarship-review-api/pkg/response"
)

// ExportHandler streams CSV/PDF exports of the final selection list.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Selected godoc
// @Summary Export the final selection list
// @Tags Exports
// @Produce application/octet-stream
// @Param format query string false "csv or pdf (default csv)"
// @Param decision query string false "SELECTED or REJECTED (default SELECTED)"
// @Success 200 {file} file
// @Router /admin/api/export/selected [get]
func (h *ExportHandler) Selected(c *gin.Context) {
	decision := models.FinalDecision(c.Query("decision"))
	result, err := h.service.SelectedStudents(c.Request.Context(), decision, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.DataFromReader(http.StatusOK, int64(len(result.Data)), result.ContentType, bytes.NewReader(result.Data), nil)
}
