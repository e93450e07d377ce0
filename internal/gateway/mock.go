package gateway

import (
	"context"
	"sync"

	"github.com/civicpulse/request-notifier/internal/domain"
)

// MockGateway records every message and answers with SendErr, if set.
type MockGateway struct {
	mu   sync.Mutex
	sent []domain.PushMessage

	SendErr error
	// OnSend, when set, runs before the result is returned.
	OnSend func(msg *domain.PushMessage)
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) Send(_ context.Context, msg *domain.PushMessage) (*Receipt, error) {
	m.mu.Lock()
	m.sent = append(m.sent, *msg)
	m.mu.Unlock()

	if m.OnSend != nil {
		m.OnSend(msg)
	}
	if m.SendErr != nil {
		return nil, m.SendErr
	}
	return &Receipt{ID: "mock-receipt", Status: "ok"}, nil
}

// Sent returns a copy of every message passed to Send.
func (m *MockGateway) Sent() []domain.PushMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PushMessage(nil), m.sent...)
}

var _ Gateway = (*MockGateway)(nil)
