package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/community-cert-dashboard/internal/models"
	"github.com/community-cert-dashboard/internal/service"
)

// EventHandler handles event CRUD endpoints
type EventHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(services *service.Services, log zerolog.Logger) *EventHandler {
	return &EventHandler{
		services: services,
		log:      log.With().Str("handler", "event").Logger(),
	}
}

// List handles GET /v1/events
func (h *EventHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)

	events, err := h.services.Event.List(ctx, profile)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// Save handles POST /v1/events
// Creates when the body carries no id, updates otherwise.
func (h *EventHandler) Save(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)

	var event models.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if event.Name == "" || event.Date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and date are required"})
		return
	}

	created := event.ID == ""
	saved, err := h.services.Event.Save(ctx, profile, event)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, saved)
}

// Delete handles DELETE /v1/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	profile := currentProfile(c)
	id := c.Param("id")

	if err := h.services.Event.Delete(ctx, profile, id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "message": "event deleted"})
}
