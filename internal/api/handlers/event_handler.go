package handlers

import (
	"net/http"
	"strconv"

	"github.com/lmoren/taskdeck-be/internal/models"
	"github.com/lmoren/taskdeck-be/internal/services"
	"github.com/rs/zerolog/log"
)

// EventHandler handles HTTP requests for the activity log.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent handles the request to get recent activity.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 20 // Default limit
	}

	events, err := h.service.GetRecentEvents(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve events")
		writeServiceError(w, err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{"events": events})
}
