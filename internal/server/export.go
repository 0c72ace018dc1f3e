package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// handleExport streams an XLSX of all submitted pack slips.
func (s *Server) handleExport(c *gin.Context) {
	data, err := s.exporter.ExportSubmittedXLSX(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	name := fmt.Sprintf("pack-slips-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
