package domain

import "errors"

var (
	ErrNoCell              = errors.New("no such cell")
	ErrMissingTopic        = errors.New("course outline is required")
	ErrMissingCredential   = errors.New("generator credential is missing")
	ErrNoStructure         = errors.New("no fill-in structure found in template")
	ErrGenerationFailed    = errors.New("all generation batches failed")
	ErrRunNotFound         = errors.New("run not found")
	ErrRunNotReady         = errors.New("run output is not ready")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidToken        = errors.New("invalid or expired download token")
	ErrUnsupportedFileType = errors.New("unsupported template file type")
	ErrInvalidTemplate     = errors.New("template cannot be parsed")
	ErrFileTooLarge        = errors.New("template exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("template upload to storage failed")
)
