package document

import (
	"planfill/internal/domain"
	"planfill/internal/port"
)

// Open loads template bytes into the container adapter selected by MIME
// content type.
func Open(data []byte, contentType string) (port.TableDocument, error) {
	switch domain.AllowedContentTypes[contentType] {
	case domain.TemplateTypeDOCX:
		return OpenDocx(data)
	case domain.TemplateTypeXLSX:
		return OpenXlsx(data)
	default:
		return nil, domain.ErrUnsupportedFileType
	}
}
