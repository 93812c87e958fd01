package api

import "time"

// StatusResponse is the GET /api/status payload.
type StatusResponse struct {
	Tracked       int   `json:"tracked" example:"2" validate:"required"`
	Markers       int   `json:"markers" example:"17" validate:"required"`
	Processed     int64 `json:"processed" example:"17" validate:"required"`
	Dropped       int64 `json:"dropped" example:"1" validate:"required"`
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600" validate:"required"`
}

// MarkerItem is one processed-file marker in the API response.
type MarkerItem struct {
	Path        string    `json:"path" example:"/pdirs/run1.dat" validate:"required"`
	ModTime     time.Time `json:"mtime" validate:"required"`
	ProcessedAt time.Time `json:"processed_at" validate:"required"`
}

// MarkerListResponse wraps the persisted marker listing.
type MarkerListResponse struct {
	Markers []MarkerItem `json:"markers" validate:"required"`
	Total   int          `json:"total" example:"17" validate:"required"`
}
