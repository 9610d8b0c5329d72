package models

// ErrorResponse is the envelope for failed API calls.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

// LocationRequest is the payload for setting a session's delivery location.
type LocationRequest struct {
	Location string `json:"location" binding:"required"`
}

// SearchRequest is the payload for a session search.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}
