package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hurricanefence/packslips/internal/entity"
)

// handleUpload accepts a multipart upload under field "file", sniffs
// its real content type, and runs it through the pipeline. An optional
// "vendor" field pre-selects the vendor (treated as a user choice).
func (s *Server) handleUpload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No file uploaded. Expected multipart field name 'file'.",
		})
		return
	}
	if fh.Size > s.cfg.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file exceeds %d MB limit", s.cfg.MaxUploadSize>>20),
		})
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadSize+1))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if int64(len(raw)) > s.cfg.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file exceeds %d MB limit", s.cfg.MaxUploadSize>>20),
		})
		return
	}

	// Sniff the content rather than trusting the declared type; browsers
	// and Slack both misreport scanned documents.
	mime := mimetype.Detect(raw).String()

	doc := entity.Document{
		ID:       uuid.New(),
		Bytes:    raw,
		MimeType: mime,
		FileName: fh.Filename,
		FileSize: len(raw),
	}

	ps, err := s.processor.Process(c.Request.Context(), doc, c.PostForm("vendor"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        ps.ID,
		"status":    ps.Status,
		"reviewUrl": fmt.Sprintf("/review.html?id=%s", ps.ID),
	})
}
