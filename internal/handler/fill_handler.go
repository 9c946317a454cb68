package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"planfill/internal/config"
	"planfill/internal/csvexport"
	"planfill/internal/domain"
	"planfill/internal/service"
)

// FillHandler handles the synchronous fill and inspection endpoints.
type FillHandler struct {
	runService service.RunService
	s3cfg      *config.S3Config
	logger     *zap.Logger
}

// NewFillHandler creates a new FillHandler.
func NewFillHandler(runService service.RunService, s3cfg *config.S3Config, logger *zap.Logger) *FillHandler {
	return &FillHandler{runService: runService, s3cfg: s3cfg, logger: logger}
}

// templateUpload is a parsed multipart template submission.
type templateUpload struct {
	Name        string
	ContentType string
	Data        []byte
	UserContext domain.UserContext
}

// readTemplateUpload extracts the template file and the remaining form
// fields from a multipart request. Every non-file form field becomes a
// user context entry.
func readTemplateUpload(c *gin.Context, maxFileSizeMB int64) (*templateUpload, error) {
	file, header, err := c.Request.FormFile("template")
	if err != nil {
		return nil, fmt.Errorf("template field is required")
	}
	defer func() { _ = file.Close() }()

	maxBytes := maxFileSizeMB * 1024 * 1024
	if header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	contentType, err := resolveContentType(header)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	userCtx := domain.UserContext{}
	if c.Request.MultipartForm != nil {
		for field, values := range c.Request.MultipartForm.Value {
			if len(values) > 0 && strings.TrimSpace(values[0]) != "" {
				userCtx[field] = strings.TrimSpace(values[0])
			}
		}
	}

	return &templateUpload{
		Name:        header.Filename,
		ContentType: contentType,
		Data:        data,
		UserContext: userCtx,
	}, nil
}

// resolveContentType maps the upload to a supported MIME type, trusting
// the file extension over the client-supplied header.
func resolveContentType(header *multipart.FileHeader) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	if tt, ok := domain.AllowedExtensions[ext]; ok {
		return domain.AllowedTemplateTypes[tt], nil
	}
	if _, ok := domain.AllowedContentTypes[header.Header.Get("Content-Type")]; ok {
		return header.Header.Get("Content-Type"), nil
	}
	return "", domain.ErrUnsupportedFileType
}

// Generate handles POST /api/v1/generate
// @Summary Fill a template synchronously
// @Description Upload a lesson-plan template (docx or xlsx) plus form metadata; the completed document is streamed back
// @Tags fill
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param template formData file true "Template to fill (docx or xlsx)"
// @Param outline formData string true "Course outline for this lesson"
// @Param course formData string false "Course name (deterministic override)"
// @Param instructor formData string false "Instructor name (deterministic override)"
// @Param class formData string false "Class name (deterministic override)"
// @Success 200 {file} binary "Completed document"
// @Failure 400 {object} ErrorResponseBody "Missing template or outline, or unsupported type"
// @Failure 413 {object} ErrorResponseBody "Template too large"
// @Failure 422 {object} ErrorResponseBody "No fill-in structure found"
// @Failure 502 {object} ErrorResponseBody "All generation batches failed"
// @Security ApiKeyAuth
// @Router /generate [post]
func (h *FillHandler) Generate(c *gin.Context) {
	upload, err := readTemplateUpload(c, h.s3cfg.MaxFileSizeMB)
	if err != nil {
		handleUploadError(c, h.logger, err)
		return
	}

	out, err := h.runService.Generate(c.Request.Context(), &service.GenerateInput{
		TemplateName: upload.Name,
		ContentType:  upload.ContentType,
		Template:     upload.Data,
		UserContext:  upload.UserContext,
	})
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.FileName))
	c.Header("X-Binding-Count", fmt.Sprintf("%d", out.Run.BindingCount))
	c.Header("X-Fill-Count", fmt.Sprintf("%d", out.Run.FillCount))
	c.Data(http.StatusOK, out.ContentType, out.Document)
}

// Inspect handles POST /api/v1/inspect
// @Summary Inspect a template's fill-in structure
// @Description Upload a template and get the inferred label-to-cell structure back, as JSON or CSV
// @Tags fill
// @Accept multipart/form-data
// @Produce json
// @Param template formData file true "Template to inspect (docx or xlsx)"
// @Param format query string false "Response format: json (default) or csv"
// @Success 200 {object} Response{data=[]domain.Binding} "Inferred structure"
// @Failure 400 {object} ErrorResponseBody "Missing template or unsupported type"
// @Failure 422 {object} ErrorResponseBody "No fill-in structure found"
// @Security ApiKeyAuth
// @Router /inspect [post]
func (h *FillHandler) Inspect(c *gin.Context) {
	upload, err := readTemplateUpload(c, h.s3cfg.MaxFileSizeMB)
	if err != nil {
		handleUploadError(c, h.logger, err)
		return
	}

	structure, err := h.runService.Inspect(c.Request.Context(), upload.ContentType, upload.Data)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	if c.Query("format") == "csv" {
		c.Header("Content-Disposition", `attachment; filename="structure.csv"`)
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)
		if err := csvexport.Export(c.Writer, structure); err != nil {
			h.logger.Error("writing structure csv", zap.Error(err))
		}
		return
	}

	RespondOK(c, structure)
}

// handleUploadError distinguishes form-level problems from domain errors.
func handleUploadError(c *gin.Context, logger *zap.Logger, err error) {
	switch err {
	case domain.ErrFileTooLarge, domain.ErrUnsupportedFileType:
		HandleError(c, logger, err)
	default:
		RespondError(c, http.StatusBadRequest, "MISSING_TEMPLATE", err.Error())
	}
}
