package assistant

import (
	"context"

	domainerrors "github.com/tasktiles/tasktiles-server/internal/errors"
)

// Unavailable is the LLM used when no API key is configured. Every chat
// turn fails with a transient error, which the dispatcher surfaces as a
// retry reply.
type Unavailable struct{}

func (Unavailable) Decide(context.Context, DecideRequest) (*Decision, error) {
	return nil, domainerrors.Transient("language model is not configured")
}
