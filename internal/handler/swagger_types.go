package handler

import (
	"planfill/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// SubmitRunResponse is returned when a run is queued.
type SubmitRunResponse struct {
	Run           *domain.Run `json:"run"`
	DownloadToken string      `json:"download_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	DownloadPath  string      `json:"download_path" example:"/api/v1/runs/550e8400-e29b-41d4-a716-446655440000/download?token=..."`
}

// PresignedLinkResponse carries a time-limited direct download URL.
type PresignedLinkResponse struct {
	DownloadURL   string `json:"download_url" example:"https://s3.amazonaws.com/planfill-runs/...?X-Amz-Signature=..."`
	ExpiresInSecs int64  `json:"expires_in_secs" example:"3600"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
