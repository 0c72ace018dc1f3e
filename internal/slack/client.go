package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hurricanefence/packslips/internal/common"
)

const apiBaseURL = "https://slack.com/api"

// Client is a thin wrapper over the pieces of the Slack Web API this
// service uses: posting thread replies and downloading shared files.
type Client struct {
	botToken string
	base     string
	http     *http.Client
	logger   *slog.Logger
}

func NewClient(botToken string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		botToken: botToken,
		base:     apiBaseURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// Message is a chat.postMessage request.
type Message struct {
	Channel  string `json:"channel"`
	ThreadTS string `json:"thread_ts,omitempty"`
	Text     string `json:"text"`
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// PostMessage sends a message, retrying rate limits and 5xx responses.
func (c *Client) PostMessage(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = common.WithRetry(ctx, common.RetryOptions{
		Retries:     3,
		ShouldRetry: apiRetryable,
	}, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.base+"/chat.postMessage", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		req.Header.Set("Authorization", "Bearer "+c.botToken)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return &httpStatusError{code: resp.StatusCode}
		}

		var ar apiResponse
		if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
			return err
		}
		if !ar.OK {
			return fmt.Errorf("slack api error: %s", ar.Error)
		}
		return nil
	})
	if err != nil {
		c.logger.Error("failed to post message", "channel", msg.Channel, "error", err)
	}
	return err
}

// DownloadFile fetches a url_private file using the bot token.
func (c *Client) DownloadFile(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := common.WithRetry(ctx, common.RetryOptions{
		Retries:     2,
		ShouldRetry: apiRetryable,
	}, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.botToken)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return &httpStatusError{code: resp.StatusCode}
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("file download returned status %d", resp.StatusCode)
		}

		data, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, common.WrapError(err, "download slack file")
	}
	return data, nil
}

type httpStatusError struct {
	code int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("slack returned status %d", e.code)
}

func apiRetryable(err error) bool {
	var se *httpStatusError
	if errors.As(err, &se) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return false
}
