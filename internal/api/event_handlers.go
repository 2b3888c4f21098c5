package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/handvault/backend/internal/service"
)

// EventHandler handles event endpoints
type EventHandler struct {
	events *service.EventService
	log    *logrus.Logger
}

func NewEventHandler(events *service.EventService, log *logrus.Logger) *EventHandler {
	return &EventHandler{events: events, log: log}
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(c *gin.Context) {
	events, err := h.events.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch events.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Event name is required."})
		return
	}

	event, err := h.events.Create(c.Request.Context(), body.Name)
	if err != nil {
		respondError(c, h.log, err, "Failed to create event.")
		return
	}
	c.JSON(http.StatusCreated, event)
}

// GetEvent handles GET /events/{eventId}
func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		respondError(c, h.log, err, "Failed to read event data")
		return
	}
	c.JSON(http.StatusOK, event)
}
