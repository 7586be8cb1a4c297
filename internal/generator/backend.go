// internal/generator/backend.go
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Backend is one upstream model API able to complete a plan prompt into raw
// text that should contain a JSON object.
type Backend interface {
	Name() string
	Configured() bool
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// ErrNotConfigured is returned by backends without a credential.
var ErrNotConfigured = errors.New("generation backend has no credential")

// StatusError is a non-2xx reply from an upstream API. Status carries the
// provider status string where the API has one (e.g. RESOURCE_EXHAUSTED).
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("upstream status %d (%s): %s", e.Code, e.Status, e.Body)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Code, e.Body)
}

// credentialRejected reports provider statuses that mean a bad or missing key.
func (e *StatusError) credentialRejected() bool {
	switch e.Code {
	case 401, 403:
		return true
	}
	switch e.Status {
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return true
	}
	return strings.Contains(e.Body, "API_KEY_INVALID") || strings.Contains(e.Body, "API key not valid")
}

func (e *StatusError) quotaExhausted() bool {
	return e.Code == 402 || e.Code == 429 || e.Status == "RESOURCE_EXHAUSTED"
}
