package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Recovery catches panics and turns them into a 500 JSON response.
func Recovery(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"panic":  r,
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("Panic recovered")

				if !c.Writer.Written() {
					c.JSON(http.StatusInternalServerError, gin.H{
						"message": "An unexpected error occurred",
					})
				}
				c.Abort()
			}
		}()

		c.Next()
	}
}
