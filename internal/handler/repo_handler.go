package handler

import (
	"time"

	"github.com/arturoeanton/devmind-gateway/internal/port"
	"github.com/gofiber/fiber/v3"
)

// RepoHandler forwards repository ingestion to the AI service.
type RepoHandler struct {
	forwarder port.Forwarder
	timeout   time.Duration
}

// NewRepoHandler creates a new repo handler. The timeout bounds each
// upstream call; ingestion can take several minutes on large repos.
func NewRepoHandler(forwarder port.Forwarder, timeout time.Duration) *RepoHandler {
	return &RepoHandler{forwarder: forwarder, timeout: timeout}
}

// Register sets up repo routes on the given (auth-gated) router.
func (h *RepoHandler) Register(router fiber.Router) {
	router.Post("/ingest", h.Ingest)
}

// Ingest asks the AI service to clone, chunk, and index a repository.
// The upstream's {files_processed, chunks_added} body is relayed unchanged.
func (h *RepoHandler) Ingest(c fiber.Ctx) error {
	var body struct {
		RepoURL string `json:"repo_url"`
		RepoID  string `json:"repo_id"`
		Branch  string `json:"branch,omitempty"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.RepoURL == "" || body.RepoID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "repo_url and repo_id required",
		})
	}

	raw, err := h.forwarder.Forward(c.Context(), "/api/ingest", body, h.timeout)
	return relayUpstream(c, raw, err)
}
