package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/handvault/backend/internal/service"
)

// respondError maps the service error taxonomy onto HTTP status codes with
// a JSON message body. fallback is the client-facing message for untyped
// (storage or unexpected) failures.
func respondError(c *gin.Context, log *logrus.Logger, err error, fallback string) {
	var (
		validationErr *service.ValidationError
		notFoundErr   *service.NotFoundError
		conflictErr   *service.ConflictError
		analysisErr   *service.AnalysisError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"message": validationErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"message": conflictErr.Message})
	case errors.As(err, &analysisErr):
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Analysis failed"})
	default:
		log.WithError(err).WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
	}
}
