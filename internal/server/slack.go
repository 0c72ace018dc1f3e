package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hurricanefence/packslips/internal/slack"
)

// handleSlackEvents is the Events API endpoint. It verifies the request
// signature over the raw body, answers URL-verification challenges,
// drops redelivered events, acknowledges within Slack's deadline, and
// processes the payload off the request goroutine.
func (s *Server) handleSlackEvents(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	err = slack.VerifySignature(
		s.slackCfg.SigningSecret,
		c.GetHeader("X-Slack-Request-Timestamp"),
		c.GetHeader("X-Slack-Signature"),
		body,
		time.Now(),
	)
	if err != nil {
		s.logger.Warn("rejected slack request", "error", err,
			"request_id", c.GetString("request_id"))
		c.Status(http.StatusUnauthorized)
		return
	}

	var payload slack.EventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.String(http.StatusBadRequest, "Invalid JSON")
		return
	}

	if payload.Type == "url_verification" {
		c.String(http.StatusOK, payload.Challenge)
		return
	}

	if payload.EventID != "" {
		key := payload.EventID + ":" + c.GetHeader("X-Slack-Retry-Num")
		if s.dedupe.Seen(key) {
			s.logger.Info("skipped duplicate slack event", "dedupe_key", key)
			c.Status(http.StatusOK)
			return
		}
	}

	// Ack immediately; Slack redelivers anything not answered in 3s.
	c.Status(http.StatusOK)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.slackH.HandleEvent(ctx, &payload)
	}()
}
