package handler

import (
	"time"

	"github.com/arturoeanton/devmind-gateway/internal/port"
	"github.com/gofiber/fiber/v3"
)

// defaultLanguage is assumed when an explain request omits the language.
const defaultLanguage = "python"

// AIHandler forwards question-answering, code explanation, and
// documentation generation to the AI service.
type AIHandler struct {
	forwarder port.Forwarder
	timeout   time.Duration
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(forwarder port.Forwarder, timeout time.Duration) *AIHandler {
	return &AIHandler{forwarder: forwarder, timeout: timeout}
}

// Register sets up AI routes on the given (auth-gated) router.
func (h *AIHandler) Register(router fiber.Router) {
	router.Post("/ask", h.Ask)
	router.Post("/explain", h.Explain)
	router.Post("/generate-docs", h.GenerateDocs)
}

// Ask forwards a question about an ingested repository and relays the
// upstream's {answer} unchanged.
func (h *AIHandler) Ask(c fiber.Ctx) error {
	var body struct {
		Question string `json:"question"`
		RepoID   string `json:"repo_id,omitempty"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "question required",
		})
	}

	raw, err := h.forwarder.Forward(c.Context(), "/api/ask", body, h.timeout)
	return relayUpstream(c, raw, err)
}

// Explain forwards a code snippet for explanation and relays the
// upstream's {explanation} unchanged.
func (h *AIHandler) Explain(c fiber.Ctx) error {
	var body struct {
		Code     string `json:"code"`
		Language string `json:"language"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "code required",
		})
	}
	if body.Language == "" {
		body.Language = defaultLanguage
	}

	raw, err := h.forwarder.Forward(c.Context(), "/api/explain", body, h.timeout)
	return relayUpstream(c, raw, err)
}

// GenerateDocs forwards a documentation-generation request and relays the
// upstream's {documentation} unchanged.
func (h *AIHandler) GenerateDocs(c fiber.Ctx) error {
	var body struct {
		RepoID string `json:"repo_id,omitempty"`
	}
	// No required fields: a missing repo_id means "all ingested repos".
	_ = c.Bind().JSON(&body)

	raw, err := h.forwarder.Forward(c.Context(), "/api/generate-docs", body, h.timeout)
	return relayUpstream(c, raw, err)
}
