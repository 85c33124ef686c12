package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/service"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
	"github.com/maatram/scholarship-review-api/pkg/response"
)

// PhysicalVerificationHandler exposes the home-visit endpoints for field
// volunteers and the admin review queue.
type PhysicalVerificationHandler struct {
	service        *service.PhysicalVerificationService
	directory      *service.DirectoryService
	maxUploadBytes int64
}

// NewPhysicalVerificationHandler constructs the handler.
func NewPhysicalVerificationHandler(svc *service.PhysicalVerificationService, directory *service.DirectoryService, maxUploadBytes int64) *PhysicalVerificationHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 15 * 1024 * 1024
	}
	return &PhysicalVerificationHandler{service: svc, directory: directory, maxUploadBytes: maxUploadBytes}
}

// Volunteers godoc
// @Summary List active physical-verification volunteers
// @Tags PhysicalVerification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/api/pv-volunteers [get]
func (h *PhysicalVerificationHandler) Volunteers(c *gin.Context) {
	volunteers, err := h.directory.Volunteers(c.Request.Context(), models.RolePV)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, volunteers, nil)
}

// Assign godoc
// @Summary Assign a field volunteer to a student's home visit
// @Tags PhysicalVerification
// @Accept json
// @Produce json
// @Param payload body service.PVAssignRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/api/assign-pv-volunteer [post]
func (h *PhysicalVerificationHandler) Assign(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.PVAssignRequest
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

// Queue godoc
// @Summary List the volunteer's assigned home visits
// @Tags PhysicalVerification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/pv/assigned-students [get]
func (h *PhysicalVerificationHandler) Queue(c *gin.Context) {
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

// QualityCheck godoc
// @Summary Screen a batch of candidate images
// @Description Nothing is stored; bad shots can be retaken in the field
// @Tags PhysicalVerification
// @Accept multipart/form-data
// @Produce json
// @Param images formData file true "Candidate images"
// @Success 200 {object} response.Envelope
// @Router /api/pv/batch-quality-check [post]
func (h *PhysicalVerificationHandler) QualityCheck(c *gin.Context) {
	files, err := h.readUploads(c, "images")
	if err != nil {
		response.Error(c, err)
		return
	}
	results, err := h.service.QualityCheckBatch(c.Request.Context(), files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// FinalUpload godoc
// @Summary Store the final image set for a student
// @Description Only quality-accepted images persist; the batch fails below the image floor
// @Tags PhysicalVerification
// @Accept multipart/form-data
// @Produce json
// @Param studentId formData string true "Student ID"
// @Param images formData file true "Final images"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /api/pv/final-upload-batch [post]
func (h *PhysicalVerificationHandler) FinalUpload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	studentID := c.PostForm("studentId")
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId is required"))
		return
	}
	files, err := h.readUploads(c, "images")
	if err != nil {
		response.Error(c, err)
		return
	}
	results, err := h.service.FinalUploadBatch(c.Request.Context(), claims.VolunteerID, studentID, files)
	if err != nil {
		// partial results accompany the floor failure so the client can
		// show which shots were rejected
		if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrPrecondition.Code && results != nil {
			c.JSON(appErr.Status, response.Envelope{Data: results, Error: appErr})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// SaveAudio godoc
// @Summary Store a voice note recorded during the visit
// @Tags PhysicalVerification
// @Accept multipart/form-data
// @Produce json
// @Param studentId formData string true "Student ID"
// @Param audio formData file true "Voice note"
// @Success 200 {object} response.Envelope
// @Router /api/pv/save-audio [post]
func (h *PhysicalVerificationHandler) SaveAudio(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	studentID := c.PostForm("studentId")
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId is required"))
		return
	}
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "audio file is required"))
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds the upload size limit"))
		return
	}
	audio, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer audio.Close() //nolint:errcheck
	key, err := h.service.SaveAudio(c.Request.Context(), claims.VolunteerID, studentID, fileHeader.Filename, audio)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"audioKey": key}, nil)
}

// ImageCount godoc
// @Summary Count quality-accepted images stored for a student
// @Tags PhysicalVerification
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /api/pv/image-count/{id} [get]
func (h *PhysicalVerificationHandler) ImageCount(c *gin.Context) {
	count, err := h.service.ImageCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"count": count}, nil)
}

// Images godoc
// @Summary List stored images for a student with signed URLs
// @Tags PhysicalVerification
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /api/pv/get-images/{id} [get]
func (h *PhysicalVerificationHandler) Images(c *gin.Context) {
	images, err := h.service.Images(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, images, nil)
}

// Submit godoc
// @Summary Submit the home-visit report
// @Description The report enters the analysis pipeline; poll pv-status for completion
// @Tags PhysicalVerification
// @Accept json
// @Produce json
// @Param payload body service.PVReportRequest true "Report payload"
// @Success 202 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /api/pv/submit-pv [post]
func (h *PhysicalVerificationHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.PVReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	if err := h.service.SubmitReport(c.Request.Context(), claims.VolunteerID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"studentId": req.StudentID, "status": models.PVStatusProcessing}, nil)
}

// Status godoc
// @Summary Poll the analysis status of a submitted report
// @Tags PhysicalVerification
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /api/pv/pv-status/{id} [get]
func (h *PhysicalVerificationHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	pv, err := h.service.Status(c.Request.Context(), claims.VolunteerID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pv, nil)
}

// Reports godoc
// @Summary List completed reports awaiting the admin decision
// @Tags PhysicalVerification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/api/completed-pv-students [get]
func (h *PhysicalVerificationHandler) Reports(c *gin.Context) {
	reports, err := h.service.Reports(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}

// PendingStudents godoc
// @Summary List students awaiting the admin decision
// @Tags PhysicalVerification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/api/pending-students [get]
func (h *PhysicalVerificationHandler) PendingStudents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	students, pagination, err := h.directory.StudentsByStatus(c.Request.Context(), models.StudentStatusPending, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Bundle godoc
// @Summary Full applicant detail for review
// @Description Student fields, stage records, marks and signed media URLs
// @Tags PhysicalVerification
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /admin/api/student/{id} [get]
func (h *PhysicalVerificationHandler) Bundle(c *gin.Context) {
	bundle, err := h.service.Bundle(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bundle, nil)
}

// Decide godoc
// @Summary Record the admin decision after physical verification
// @Tags PhysicalVerification
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.PVDecisionRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/api/final_status_update/{id} [put]
func (h *PhysicalVerificationHandler) Decide(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.PVDecisionRequest
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

// Stats godoc
// @Summary Summarise the volunteer's workload
// @Tags PhysicalVerification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/pv/statistics [get]
func (h *PhysicalVerificationHandler) Stats(c *gin.Context) {
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

// AdminStats godoc
// @Summary Summarise the home-visit stage across all volunteers
// @Tags PhysicalVerification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/api/pv-statistics [get]
func (h *PhysicalVerificationHandler) AdminStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), "")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

func (h *PhysicalVerificationHandler) readUploads(c *gin.Context, field string) ([]service.UploadedFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "multipart form required")
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no images provided")
	}

	files := make([]service.UploadedFile, 0, len(headers))
	for _, header := range headers {
		file, err := h.openUpload(header)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func (h *PhysicalVerificationHandler) openUpload(header *multipart.FileHeader) (service.UploadedFile, error) {
	if header.Size > h.maxUploadBytes {
		return service.UploadedFile{}, appErrors.Clone(appErrors.ErrValidation, "file exceeds the upload size limit")
	}
	f, err := header.Open()
	if err != nil {
		return service.UploadedFile{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	defer f.Close() //nolint:errcheck
	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		return service.UploadedFile{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	if int64(len(data)) > h.maxUploadBytes {
		return service.UploadedFile{}, appErrors.Clone(appErrors.ErrValidation, "file exceeds the upload size limit")
	}
	return service.UploadedFile{Filename: header.Filename, Data: data}, nil
}
