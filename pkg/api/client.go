package api

// FORM RELAY CLIENT

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Client struct {
	url        string
	accessKey  string
	httpClient *http.Client
	logger     *zap.Logger
}

type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewClient(url, accessKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:       url,
		accessKey: accessKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Submit posts the form fields as one JSON object. The relay answers with a
// JSON body carrying a human readable message; anything but 200 is an error.
func (c *Client) Submit(ctx context.Context, fields map[string]string) (SubmitResponse, error) {
	payload := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	if c.accessKey != "" {
		payload["access_key"] = c.accessKey
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("read response: %w", err)
	}

	var out SubmitResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return SubmitResponse{}, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("Form relay rejected submission",
			zap.Int("status", resp.StatusCode),
			zap.String("message", out.Message))
		return out, fmt.Errorf("unexpected status: %d: %s", resp.StatusCode, out.Message)
	}

	return out, nil
}
