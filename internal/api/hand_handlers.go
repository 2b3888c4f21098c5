package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/handvault/backend/internal/service"
)

// HandHandler handles hand upload, review and analysis endpoints
type HandHandler struct {
	hands       *service.HandService
	log         *logrus.Logger
	maxUploadMB int64
}

func NewHandHandler(hands *service.HandService, log *logrus.Logger, maxUploadMB int64) *HandHandler {
	return &HandHandler{hands: hands, log: log, maxUploadMB: maxUploadMB}
}

// ListHands handles GET /events/{eventId}/hands
func (h *HandHandler) ListHands(c *gin.Context) {
	hands, err := h.hands.ListByEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		respondError(c, h.log, err, "Failed to read hands data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"hands": hands})
}

// UploadHand handles POST /events/{eventId}/upload
func (h *HandHandler) UploadHand(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(h.maxUploadMB << 20); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}
	defer file.Close()

	hand, err := h.hands.Upload(c.Request.Context(), c.Param("eventId"), file, header)
	if err != nil {
		respondError(c, h.log, err, "File upload failed")
		return
	}
	c.JSON(http.StatusCreated, hand)
}

// GetHand handles GET /hands/{handId}
func (h *HandHandler) GetHand(c *gin.Context) {
	hand, err := h.hands.Get(c.Request.Context(), c.Param("handId"))
	if err != nil {
		respondError(c, h.log, err, "Failed to read hand data")
		return
	}
	c.JSON(http.StatusOK, hand)
}

// UpdateHand handles PUT /hands/{handId}
func (h *HandHandler) UpdateHand(c *gin.Context) {
	var body struct {
		TextHistory *string `json:"textHistory"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.TextHistory == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "textHistory is required and must be a string"})
		return
	}

	hand, err := h.hands.UpdateText(c.Request.Context(), c.Param("handId"), *body.TextHistory)
	if err != nil {
		respondError(c, h.log, err, "Failed to update hand data")
		return
	}
	c.JSON(http.StatusOK, hand)
}

// AnalyzeHand handles POST /hands/{handId}/analyze
func (h *HandHandler) AnalyzeHand(c *gin.Context) {
	hand, err := h.hands.Analyze(c.Request.Context(), c.Param("handId"))
	if err != nil {
		respondError(c, h.log, err, "Analysis failed")
		return
	}
	c.JSON(http.StatusOK, hand)
}
