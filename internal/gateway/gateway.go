package gateway

import (
	"context"

	"github.com/civicpulse/request-notifier/internal/domain"
)

// Receipt is the gateway's acknowledgement of an accepted message.
type Receipt struct {
	ID     string
	Status string
}

// Gateway abstracts delivery to an external push service.
// Mocking this interface in tests gives full control over gateway behaviour
// without making real HTTP calls.
type Gateway interface {
	// Send makes exactly one delivery attempt.
	Send(ctx context.Context, msg *domain.PushMessage) (*Receipt, error)
}
