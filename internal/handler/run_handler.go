package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"planfill/internal/config"
	"planfill/internal/service"
)

// RunHandler handles the asynchronous run endpoints.
type RunHandler struct {
	runService service.RunService
	s3cfg      *config.S3Config
	logger     *zap.Logger
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runService service.RunService, s3cfg *config.S3Config, logger *zap.Logger) *RunHandler {
	return &RunHandler{runService: runService, s3cfg: s3cfg, logger: logger}
}

// Submit handles POST /api/v1/runs
// @Summary Queue an asynchronous fill run
// @Description Upload a template plus form metadata; the run is processed in the background and the result fetched later with the returned token
// @Tags runs
// @Accept multipart/form-data
// @Produce json
// @Param template formData file true "Template to fill (docx or xlsx)"
// @Param outline formData string true "Course outline for this lesson"
// @Param notify_email formData string false "Email address notified when the run finishes"
// @Success 201 {object} Response{data=SubmitRunResponse} "Run queued"
// @Failure 400 {object} ErrorResponseBody "Missing template or outline, or unsupported type"
// @Failure 413 {object} ErrorResponseBody "Template too large"
// @Security ApiKeyAuth
// @Router /runs [post]
func (h *RunHandler) Submit(c *gin.Context) {
	upload, err := readTemplateUpload(c, h.s3cfg.MaxFileSizeMB)
	if err != nil {
		handleUploadError(c, h.logger, err)
		return
	}

	notifyEmail := upload.UserContext["notify_email"]
	delete(upload.UserContext, "notify_email")

	run, token, err := h.runService.SubmitRun(c.Request.Context(), &service.SubmitRunInput{
		TemplateName: upload.Name,
		ContentType:  upload.ContentType,
		Template:     upload.Data,
		UserContext:  upload.UserContext,
		NotifyEmail:  notifyEmail,
	})
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondCreated(c, SubmitRunResponse{
		Run:           run,
		DownloadToken: token,
		DownloadPath:  fmt.Sprintf("/api/v1/runs/%s/download?token=%s", run.ID, token),
	})
}

// List handles GET /api/v1/runs
// @Summary List fill runs
// @Description List runs ordered by creation time, newest first
// @Tags runs
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Run,meta=PagMeta} "List of runs"
// @Security ApiKeyAuth
// @Router /runs [get]
func (h *RunHandler) List(c *gin.Context) {
	offset, limit := paginationParams(c)

	runs, total, err := h.runService.ListRuns(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondPaginated(c, runs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/runs/:id
// @Summary Get a fill run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} Response{data=domain.Run} "Run details"
// @Failure 404 {object} ErrorResponseBody "Run not found"
// @Security ApiKeyAuth
// @Router /runs/{id} [get]
func (h *RunHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid run id")
		return
	}

	run, err := h.runService.GetRun(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, run)
}

// Download handles GET /api/v1/runs/:id/download
// @Summary Download a completed run's output
// @Description Streams the generated document; requires the download token issued at submission
// @Tags runs
// @Produce application/octet-stream
// @Param id path string true "Run ID"
// @Param token query string true "Download token from run submission"
// @Success 200 {file} binary "Completed document"
// @Failure 401 {object} ErrorResponseBody "Missing or invalid token"
// @Failure 404 {object} ErrorResponseBody "Run not found"
// @Failure 409 {object} ErrorResponseBody "Run output not ready"
// @Router /runs/{id}/download [get]
func (h *RunHandler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid run id")
		return
	}
	token := c.Query("token")
	if token == "" {
		RespondError(c, http.StatusUnauthorized, "MISSING_TOKEN", "token query parameter is required")
		return
	}

	out, err := h.runService.DownloadRunOutput(c.Request.Context(), id, token)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.FileName))
	c.Data(http.StatusOK, out.ContentType, out.Document)
}

// Link handles GET /api/v1/runs/:id/link
// @Summary Get a presigned download link for a completed run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} Response{data=PresignedLinkResponse} "Presigned URL"
// @Failure 404 {object} ErrorResponseBody "Run not found"
// @Failure 409 {object} ErrorResponseBody "Run output not ready"
// @Security ApiKeyAuth
// @Router /runs/{id}/link [get]
func (h *RunHandler) Link(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid run id")
		return
	}

	url, err := h.runService.PresignRunOutput(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, PresignedLinkResponse{DownloadURL: url, ExpiresInSecs: h.s3cfg.PresignExpiry})
}

// paginationParams reads offset/limit query parameters with defaults
// and a hard cap on limit.
func paginationParams(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return offset, limit
}
