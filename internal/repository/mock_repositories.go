package repository

import (
	"context"
	"sync"
	"time"

	"github.com/civicpulse/request-notifier/internal/domain"
)

// MockUserRepository is a hand-written, in-memory UserRepository used in
// unit tests. No mock-generation library needed.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Optional error override, set in tests to simulate store failures.
	GetByIDErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

// Put stores a copy of u.
func (m *MockUserRepository) Put(u *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *u
	if u.DeviceInfo != nil {
		dev := *u.DeviceInfo
		clone.DeviceInfo = &dev
	}
	m.users[u.ID] = &clone
}

func (m *MockUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

// MockEventRepository is an in-memory EventRepository.
type MockEventRepository struct {
	mu     sync.RWMutex
	events map[string]*domain.StoredEvent
	order  []string

	GetErr error
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{events: make(map[string]*domain.StoredEvent)}
}

// Add stores e as an unprocessed event created at createdAt.
func (m *MockEventRepository) Add(e domain.ChangeEvent, createdAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.EventID] = &domain.StoredEvent{ChangeEvent: e, CreatedAt: createdAt}
	m.order = append(m.order, e.EventID)
}

// IsProcessed reports whether MarkProcessed was called for id.
func (m *MockEventRepository) IsProcessed(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.events[id]
	return ok && e.ProcessedAt != nil
}

func (m *MockEventRepository) Get(_ context.Context, id string) (*domain.StoredEvent, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (m *MockEventRepository) MarkProcessed(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.events[id]; ok && e.ProcessedAt == nil {
		e.ProcessedAt = &at
	}
	return nil
}

func (m *MockEventRepository) FindUnprocessed(_ context.Context, olderThan time.Time, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for _, id := range m.order {
		e := m.events[id]
		if e.ProcessedAt != nil || e.CreatedAt.After(olderThan) {
			continue
		}
		ids = append(ids, id)
		if len(ids) == limit {
			break
		}
	}
	return ids, nil
}

// MockErrorLogRepository is an in-memory ErrorLogRepository.
type MockErrorLogRepository struct {
	mu      sync.RWMutex
	records []domain.NotificationErrorRecord

	AppendErr error
}

func NewMockErrorLogRepository() *MockErrorLogRepository {
	return &MockErrorLogRepository{}
}

func (m *MockErrorLogRepository) Append(_ context.Context, rec *domain.NotificationErrorRecord) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *rec)
	return nil
}

// Records returns a copy of everything appended so far.
func (m *MockErrorLogRepository) Records() []domain.NotificationErrorRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.NotificationErrorRecord(nil), m.records...)
}

// MockDeliveryLedger is an in-memory DeliveryLedger with the same
// claimed/sent semantics as the persistent ledgers.
type MockDeliveryLedger struct {
	mu      sync.Mutex
	entries map[string]*mockDelivery

	// ClaimTimeout is how long an unsent claim blocks other claimants.
	ClaimTimeout time.Duration
	// Now is the ledger's clock; tests advance it to age claims.
	Now func() time.Time

	ClaimErr    error
	MarkSentErr error
}

type mockDelivery struct {
	requestID string
	claimedAt time.Time
	sent      bool
}

func NewMockDeliveryLedger() *MockDeliveryLedger {
	return &MockDeliveryLedger{
		entries:      make(map[string]*mockDelivery),
		ClaimTimeout: time.Minute,
		Now:          time.Now,
	}
}

func (m *MockDeliveryLedger) Claim(_ context.Context, key, requestID string) (bool, error) {
	if m.ClaimErr != nil {
		return false, m.ClaimErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.Now()
	if e, ok := m.entries[key]; ok {
		if e.sent || now.Sub(e.claimedAt) <= m.ClaimTimeout {
			return false, nil
		}
	}
	m.entries[key] = &mockDelivery{requestID: requestID, claimedAt: now}
	return true, nil
}

func (m *MockDeliveryLedger) MarkSent(_ context.Context, key string) error {
	if m.MarkSentErr != nil {
		return m.MarkSentErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok {
		e.sent = true
	}
	return nil
}

// IsSent reports whether key has been marked sent.
func (m *MockDeliveryLedger) IsSent(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	return ok && e.sent
}

var (
	_ UserRepository     = (*MockUserRepository)(nil)
	_ EventRepository    = (*MockEventRepository)(nil)
	_ ErrorLogRepository = (*MockErrorLogRepository)(nil)
	_ DeliveryLedger     = (*MockDeliveryLedger)(nil)
)
