package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arturoeanton/devmind-gateway/internal/auth"
	"github.com/arturoeanton/devmind-gateway/internal/domain"
	"github.com/arturoeanton/devmind-gateway/internal/port"
	"github.com/arturoeanton/devmind-gateway/internal/service"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- stubs ---

type forwardCall struct {
	Path    string
	Payload json.RawMessage
	Timeout time.Duration
}

type stubForwarder struct {
	calls    []forwardCall
	response json.RawMessage
	err      error
}

func (f *stubForwarder) Forward(ctx context.Context, path string, payload any, timeout time.Duration) (json.RawMessage, error) {
	raw, _ := json.Marshal(payload)
	f.calls = append(f.calls, forwardCall{Path: path, Payload: raw, Timeout: timeout})
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type mapStore struct {
	byEmail map[string]*domain.User
}

func newMapStore() *mapStore {
	return &mapStore{byEmail: make(map[string]*domain.User)}
}

func (m *mapStore) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	if _, exists := m.byEmail[u.Email]; exists {
		return nil, port.ErrDuplicateEmail
	}
	c := *u
	m.byEmail[u.Email] = &c
	return &c, nil
}

func (m *mapStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := m.byEmail[email]; ok {
		c := *u
		return &c, nil
	}
	return nil, port.ErrUserNotFound
}

func (m *mapStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u.Public(), nil
		}
	}
	return nil, port.ErrUserNotFound
}

// --- harness ---

type harness struct {
	app       *fiber.App
	forwarder *stubForwarder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	store := newMapStore()
	fwd := &stubForwarder{response: json.RawMessage(`{}`)}

	app := NewApp(RouterDeps{
		AppName:     "DevMind Gateway (test)",
		AuthService: service.NewAuthService(store, tokens),
		Tokens:      tokens,
		Store:       store,
		Forwarder:   fwd,
		AITimeout:   5 * time.Second,
		CORSOrigin:  "http://localhost:3000",
	})
	return &harness{app: app, forwarder: fwd}
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func (h *harness) register(t *testing.T, email, password string) string {
	t.Helper()
	resp := h.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode(t, resp)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// --- auth routes ---

func TestRegister(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email": "a@b.com", "password": "secret1", "name": "Alice",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decode(t, resp)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "a@b.com", user["email"])
	assert.Equal(t, "Alice", user["name"])
	assert.NotEmpty(t, user["id"])
	assert.NotContains(t, user, "password_hash")
}

func TestRegister_MissingFields(t *testing.T) {
	h := newHarness(t)

	for _, body := range []fiber.Map{
		{"email": "a@b.com"},
		{"password": "secret1"},
		{},
	} {
		resp := h.do(t, http.MethodPost, "/api/auth/register", "", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Email and password required", decode(t, resp)["error"])
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h := newHarness(t)
	h.register(t, "a@b.com", "secret1")

	resp := h.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email": "a@b.com", "password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already registered", decode(t, resp)["error"])
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	h.register(t, "a@b.com", "secret1")

	resp := h.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "a@b.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "a@b.com", body["user"].(map[string]any)["email"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h := newHarness(t)
	h.register(t, "a@b.com", "secret1")

	// Wrong password and unknown email produce the same response.
	for _, body := range []fiber.Map{
		{"email": "a@b.com", "password": "wrong"},
		{"email": "nobody@b.com", "password": "secret1"},
	} {
		resp := h.do(t, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid credentials", decode(t, resp)["error"])
	}
}

// --- protected routes: auth gating ---

func TestProtectedRoutes_RequireToken(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{
		"/api/repo/ingest",
		"/api/ai/ask",
		"/api/ai/explain",
		"/api/ai/generate-docs",
	} {
		resp := h.do(t, http.MethodPost, path, "", fiber.Map{})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "No token provided", decode(t, resp)["error"], path)
	}
	assert.Empty(t, h.forwarder.calls, "forwarder must never run for unauthenticated requests")
}

// --- forwarding routes ---

func TestAsk_RelaysUpstream(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "a@b.com", "secret1")
	h.forwarder.response = json.RawMessage(`{"answer":"it is a gateway"}`)

	resp := h.do(t, http.MethodPost, "/api/ai/ask", token, fiber.Map{
		"question": "what is this repo?", "repo_id": "x/y",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "it is a gateway", decode(t, resp)["answer"])

	require.Len(t, h.forwarder.calls, 1)
	call := h.forwarder.calls[0]
	assert.Equal(t, "/api/ask", call.Path)
	assert.JSONEq(t, `{"question":"what is this repo?","repo_id":"x/y"}`, string(call.Payload))
}

func TestAsk_MissingQuestion(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "a@b.com", "secret1")

	resp := h.do(t, http.MethodPost, "/api/ai/ask", token, fiber.Map{"repo_id": "x/y"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "question required", decode(t, resp)["error"])
	assert.Empty(t, h.forwarder.calls)
}

func TestExplain_DefaultsLanguage(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "a@b.com", "secret1")
	h.forwarder.response = json.RawMessage(`{"explanation":"prints hello"}`)

	resp := h.do(t, http.MethodPost, "/api/ai/explain", token, fiber.Map{
		"code": "print('hello')",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, h.forwarder.calls, 1)
	call := h.forwarder.calls[0]
	assert.Equal(t, "/api/explain", call.Path)
	assert.JSONEq(t, `{"code":"print('hello')","language":"python"}`, string(call.Payload))
}

func TestExplain_MissingCode(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "a@b.com", "secret1")

	resp := h.do(t, http.MethodPost, "/api/ai/explain", token, fiber.Map{"language": "go"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "code required", decode(t, resp)["error"])
	assert.Empty(t, h.forwarder.calls)
}

func TestIngest_RelaysUpstream(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "a@b.com", "secret1")
	h.forwarder.response = json.RawMessage(`{"success":true,"message":"ok","files_processed":12,"chunks_added":80}`)

	resp := h.do(t, http.MethodPost, "/api/repo/ingest", token, fiber.Map{
		"repo_url": "https://github.com/x/y.git", "repo_id": "x/y", "branch": "main",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.EqualValues(t, 12, body["files_processed"])
	assert.EqualValues(t, 80, body["chunks_added"])

	require.Len(t, h.forwarder.calls, 1)
	call := h.forwarder.calls[0]
	assert.Equal(t, "/api/ingest", call.Path)
	assert.JSONEq(t, `{"repo_url":"https://github.com/x/y.git","repo_id":"x/y","branch":"main"}`, string(call.Payload))
}

func TestIngest_MissingFields(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "a@b.com", "secret1")

	resp := h.do(t, http.MethodPost, "/api/repo/ingest", token, fiber.Map{"repo_url": "https://github.com/x/y.git"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "repo_url and repo_id required", decode(t, resp)["error"])
	assert.Empty(t, h.forwarder.calls)
}

func TestGenerateDocs_RelaysUpstream(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "a@b.com", "secret1")
	h.forwarder.response = json.RawMessage(`{"documentation":"# Project"}`)

	resp := h.do(t, http.MethodPost, "/api/ai/generate-docs", token, fiber.Map{"repo_id": "x/y"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "# Project", decode(t, resp)["documentation"])

	require.Len(t, h.forwarder.calls, 1)
	assert.Equal(t, "/api/generate-docs", h.forwarder.calls[0].Path)
}

func TestForwarding_UpstreamError(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "a@b.com", "secret1")
	h.forwarder.err = &port.UpstreamError{Status: http.StatusServiceUnavailable, Message: "overloaded"}

	resp := h.do(t, http.MethodPost, "/api/ai/ask", token, fiber.Map{"question": "q"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "overloaded", decode(t, resp)["error"])
}

// --- surface ---

func TestHealth(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "gateway", body["service"])
}

func TestNotFound(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not found", decode(t, resp)["error"])
}
