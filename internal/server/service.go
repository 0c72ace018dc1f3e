// Package server is the HTTP surface: upload intake, review and
// submission APIs, vendor catalog, Slack event intake, and the XLSX
// export.
package server

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hurricanefence/packslips/internal/common"
	"github.com/hurricanefence/packslips/internal/export"
	"github.com/hurricanefence/packslips/internal/pipeline"
	"github.com/hurricanefence/packslips/internal/repository"
	"github.com/hurricanefence/packslips/internal/slack"
	"github.com/hurricanefence/packslips/internal/vendor"
)

// Server wires handlers to their dependencies.
type Server struct {
	cfg       common.ServerConfig
	processor *pipeline.Processor
	repo      repository.PackSlipRepository
	vendors   *vendor.Registry
	exporter  *export.Service
	slackCfg  common.SlackConfig
	slackH    *slack.Handler
	dedupe    *slack.DedupeCache
	db        *sql.DB
	logger    *slog.Logger
}

func New(
	cfg common.ServerConfig,
	processor *pipeline.Processor,
	repo repository.PackSlipRepository,
	vendors *vendor.Registry,
	exporter *export.Service,
	slackCfg common.SlackConfig,
	slackH *slack.Handler,
	dedupe *slack.DedupeCache,
	db *sql.DB,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:       cfg,
		processor: processor,
		repo:      repo,
		vendors:   vendors,
		exporter:  exporter,
		slackCfg:  slackCfg,
		slackH:    slackH,
		dedupe:    dedupe,
		db:        db,
		logger:    logger,
	}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	if s.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(RequestID(), AccessLog(s.logger), gin.Recovery())
	r.MaxMultipartMemory = s.cfg.MaxUploadSize

	r.GET("/healthz", s.handleHealthz)
	r.GET("/readyz", s.handleReadyz)

	r.POST("/upload", s.handleUpload)
	r.GET("/review/:id", s.handleReview)
	r.GET("/packs/:id", s.handleGetPack)
	r.POST("/packs/:id/vendor", s.handleSetVendor)
	r.POST("/packs/:id/submit", s.handleSubmit)
	r.POST("/submit/:id", s.handleSubmit)

	r.GET("/vendors", s.handleListVendors)
	r.GET("/vendors/:id", s.handleGetVendor)

	r.GET("/export.xlsx", s.handleExport)

	r.POST("/slack/events", s.handleSlackEvents)

	return r
}

// respondError maps application errors onto HTTP statuses.
func (s *Server) respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrUnsupportedFileType):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, common.ErrExtractionFailed):
		status = http.StatusUnprocessableEntity
	}

	var appErr *common.AppError
	if errors.As(err, &appErr) {
		c.JSON(status, gin.H{"error": appErr.Message, "code": appErr.Code})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
