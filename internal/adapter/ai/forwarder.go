// Package ai implements the forwarder to the external AI service.
// The gateway is a transparent pass-through: success bodies are relayed
// byte-for-byte and upstream failures keep their own status and message.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/arturoeanton/devmind-gateway/internal/port"
)

// Client implements port.Forwarder against the AI service's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a forwarder for the AI service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Forward POSTs payload as JSON to path and returns the upstream body
// verbatim on 2xx. Exactly one attempt is made per call; the timeout
// bounds the whole round trip.
func (c *Client) Forward(ctx context.Context, path string, payload any, timeout time.Duration) (json.RawMessage, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failure or timeout: no upstream status to relay.
		return nil, &port.UpstreamError{Status: http.StatusInternalServerError, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &port.UpstreamError{Status: http.StatusInternalServerError, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &port.UpstreamError{
			Status:  resp.StatusCode,
			Message: extractMessage(body),
		}
	}

	return body, nil
}

// extractMessage pulls a human-readable error out of an upstream failure
// body. FastAPI reports errors as {"detail": ...}; {"error": ...} is
// accepted as a fallback, then the raw body itself.
func extractMessage(body []byte) string {
	var envelope struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Detail != "" {
			return envelope.Detail
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return "upstream request failed"
}
