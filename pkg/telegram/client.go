// Package telegram provides a client for the Telegram Bot API, limited
// to the sendMessage call this project needs.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the Telegram operations.
type Client interface {
	// SendMessage posts a plain-text message to the configured chat.
	SendMessage(ctx context.Context, text string) error
}

// Option configures the Telegram client.
type Option func(*httpClient)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL  string
	botToken string
	chatID   string
	http     *http.Client
}

// NewClient creates a Telegram Bot API client bound to one chat.
func NewClient(botToken, chatID string, opts ...Option) Client {
	c := &httpClient{
		baseURL:  "https://api.telegram.org",
		botToken: botToken,
		chatID:   chatID,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (c *httpClient) SendMessage(ctx context.Context, text string) error {
	reqURL := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)

	payload, err := json.Marshal(sendMessageRequest{ChatID: c.chatID, Text: text})
	if err != nil {
		return eris.Wrap(err, "telegram: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "telegram: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "telegram: send message")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "telegram: read response body")
	}

	var result apiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return eris.Errorf("telegram: status %d: %s", resp.StatusCode, string(body))
	}
	if !result.OK {
		return eris.Errorf("telegram: api error: %s", result.Description)
	}

	return nil
}
