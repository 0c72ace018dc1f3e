package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleListVendors serves the registry for the review UI dropdown.
func (s *Server) handleListVendors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"vendors": s.vendors.List()})
}

// handleGetVendor serves one vendor's full profile.
func (s *Server) handleGetVendor(c *gin.Context) {
	v := s.vendors.Get(c.Param("id"))
	if v == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": v})
}
