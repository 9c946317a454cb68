package domain

// TemplateType represents the allowed template container types.
type TemplateType string

const (
	TemplateTypeDOCX TemplateType = "docx"
	TemplateTypeXLSX TemplateType = "xlsx"
)

// AllowedTemplateTypes maps TemplateType to its MIME content type.
var AllowedTemplateTypes = map[TemplateType]string{
	TemplateTypeDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	TemplateTypeXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// AllowedContentTypes maps MIME content types back to TemplateType.
var AllowedContentTypes = map[string]TemplateType{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": TemplateTypeDOCX,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       TemplateTypeXLSX,
}

// AllowedExtensions maps file extensions (without dot) to TemplateType.
var AllowedExtensions = map[string]TemplateType{
	"docx": TemplateTypeDOCX,
	"xlsx": TemplateTypeXLSX,
}

// RunStatus represents the lifecycle of a fill run.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)
