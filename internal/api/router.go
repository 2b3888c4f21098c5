package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/handvault/backend/internal/middleware"
	"github.com/handvault/backend/internal/service"
)

// RouterConfig carries everything route registration needs.
type RouterConfig struct {
	Events      *service.EventService
	Hands       *service.HandService
	Log         *logrus.Logger
	UploadsDir  string
	MaxUploadMB int64
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(rc RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(rc.Log))
	r.Use(middleware.Recovery(rc.Log))

	eventHandler := NewEventHandler(rc.Events, rc.Log)
	handHandler := NewHandHandler(rc.Hands, rc.Log, rc.MaxUploadMB)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/events", eventHandler.ListEvents)
	r.POST("/events", eventHandler.CreateEvent)
	r.GET("/events/:eventId", eventHandler.GetEvent)
	r.GET("/events/:eventId/hands", handHandler.ListHands)
	r.POST("/events/:eventId/upload", handHandler.UploadHand)

	r.GET("/hands/:handId", handHandler.GetHand)
	r.PUT("/hands/:handId", handHandler.UpdateHand)
	r.POST("/hands/:handId/analyze", handHandler.AnalyzeHand)

	// Uploaded videos are exposed under the same path stored on each hand.
	r.Static("/uploads", rc.UploadsDir)

	return r
}
