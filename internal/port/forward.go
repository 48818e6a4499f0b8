package port

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Forwarder translates a validated gateway request into one HTTP call
// against the external AI service. Implementations make exactly one
// attempt per call: ingestion and generation are expensive and not safely
// idempotent to retry.
type Forwarder interface {
	// Forward POSTs payload as JSON to path on the AI service and returns
	// the upstream response body verbatim on 2xx. Any failure — transport,
	// timeout, or a non-2xx status — is returned as an *UpstreamError.
	Forward(ctx context.Context, path string, payload any, timeout time.Duration) (json.RawMessage, error)
}

// UpstreamError carries the AI service's failure back to the client:
// the upstream's own status code (500 when it reported none) and a
// human-readable message extracted from its error body.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (%d): %s", e.Status, e.Message)
}
