package api

import (
	"log/slog"
	"net/http"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetStatus handles GET /api/status.
//
//	@Summary		Current watcher state and lifetime counters
//	@Tags			status
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) GetStatus(w http.ResponseWriter, _ *http.Request) {
	status, err := h.svc.Status()
	if err != nil {
		slog.Error("status failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ListMarkers handles GET /api/markers.
//
//	@Summary		List persisted processed-file markers
//	@Tags			markers
//	@Produce		json
//	@Success		200	{object}	MarkerListResponse
//	@Security		BearerAuth
//	@Router			/markers [get]
func (h *Handler) ListMarkers(w http.ResponseWriter, _ *http.Request) {
	all, err := h.svc.Markers()
	if err != nil {
		slog.Error("list markers failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	items := make([]MarkerItem, 0, len(all))
	for _, m := range all {
		items = append(items, MarkerItem{
			Path:        m.Path,
			ModTime:     m.ModTime,
			ProcessedAt: m.ProcessedAt,
		})
	}
	writeJSON(w, http.StatusOK, MarkerListResponse{
		Markers: items,
		Total:   len(items),
	})
}
