package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hurricanefence/packslips/internal/repository"
)

func (s *Server) handleHealthz(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// handleReadyz additionally proves the database answers.
func (s *Server) handleReadyz(c *gin.Context) {
	if err := repository.HealthCheck(c.Request.Context(), s.db, 2*time.Second); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
		return
	}
	c.String(http.StatusOK, "READY")
}
