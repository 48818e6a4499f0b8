// Package client provides the Go client for the DevMind Gateway.
// It holds the session bearer token in a TokenStore, attaches it to every
// request, and clears it when the gateway rejects the session with a 401 —
// the single token-invalidation path, there is no silent refresh.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a typed client for the gateway's HTTP API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenStore
	onUnauthorized func()
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenStore replaces the default in-memory token store, e.g. with a
// FileTokenStore so the session survives process restarts.
func WithTokenStore(ts TokenStore) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithOnUnauthorized registers a hook fired after a 401 response has
// cleared the stored token. Applications typically use it to drive the
// user back to their login flow.
func WithOnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a gateway client.
// Ingest and doc generation can run for minutes, so the default HTTP
// client carries a 5 minute timeout.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		tokens:     NewMemoryTokenStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from the gateway: its status code and
// the message from the {error: ...} envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway error (%d): %s", e.Status, e.Message)
}

// --- response types ---

// User is the public user record returned by register and login.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthResponse bundles a session token with the user it belongs to.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// IngestResponse reports the result of a repository ingestion.
type IngestResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	FilesProcessed int    `json:"files_processed"`
	ChunksAdded    int    `json:"chunks_added"`
}

// AskResponse carries the assistant's answer.
type AskResponse struct {
	Answer string `json:"answer"`
}

// ExplainResponse carries a code explanation.
type ExplainResponse struct {
	Explanation string `json:"explanation"`
}

// GenerateDocsResponse carries generated documentation in Markdown.
type GenerateDocsResponse struct {
	Documentation string `json:"documentation"`
}

// HealthResponse is the gateway liveness probe result.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// --- operations ---

// Register creates an account and stores the returned session token.
func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"email": email, "password": password, "name": name,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.tokens.Set(out.Token)
	return &out, nil
}

// Login authenticates and stores the returned session token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.tokens.Set(out.Token)
	return &out, nil
}

// Logout drops the stored session token.
func (c *Client) Logout() {
	c.tokens.Clear()
}

// Ingest asks the gateway to index a repository. Branch may be empty.
func (c *Client) Ingest(ctx context.Context, repoURL, repoID, branch string) (*IngestResponse, error) {
	payload := map[string]string{"repo_url": repoURL, "repo_id": repoID}
	if branch != "" {
		payload["branch"] = branch
	}
	var out IngestResponse
	if err := c.do(ctx, http.MethodPost, "/api/repo/ingest", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ask asks the assistant a question about an ingested repository.
func (c *Client) Ask(ctx context.Context, question, repoID string) (*AskResponse, error) {
	var out AskResponse
	err := c.do(ctx, http.MethodPost, "/api/ai/ask", map[string]string{
		"question": question, "repo_id": repoID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Explain requests an explanation of a code snippet. Language may be
// empty; the gateway defaults it.
func (c *Client) Explain(ctx context.Context, code, language string) (*ExplainResponse, error) {
	payload := map[string]string{"code": code}
	if language != "" {
		payload["language"] = language
	}
	var out ExplainResponse
	if err := c.do(ctx, http.MethodPost, "/api/ai/explain", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateDocs requests generated documentation for a repository.
func (c *Client) GenerateDocs(ctx context.Context, repoID string) (*GenerateDocsResponse, error) {
	var out GenerateDocsResponse
	err := c.do(ctx, http.MethodPost, "/api/ai/generate-docs", map[string]string{
		"repo_id": repoID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Health probes the gateway.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do runs one request: JSON in, JSON out, bearer token attached when the
// store holds one. A 401 clears the store and fires the unauthorized hook
// before the error is returned.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Clear()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func errorMessage(raw []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(raw))
}
