package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// ServiceRequest is one snapshot of a citizen service request.
// UserID is kept raw because producers are not trusted to send a string.
type ServiceRequest struct {
	ID        string          `json:"id,omitempty"`
	Status    Status          `json:"status"`
	UserID    json.RawMessage `json:"userId,omitempty"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

// ChangeEvent is one committed update of a service request: the record
// immediately before and immediately after the write.
type ChangeEvent struct {
	// EventID identifies the update, stable across redeliveries. Optional.
	EventID   string         `json:"eventId,omitempty"`
	RequestID string         `json:"requestId"`
	Before    ServiceRequest `json:"before"`
	After     ServiceRequest `json:"after"`
}

func (e *ChangeEvent) Validate() error {
	if strings.TrimSpace(e.RequestID) == "" {
		return ErrMissingRequestID
	}
	return nil
}

// DedupKey identifies the update for the delivery ledger.
// Returns "" when the event carries nothing stable enough to key on.
func (e *ChangeEvent) DedupKey() string {
	if e.EventID != "" {
		return "event:" + e.EventID
	}
	if e.After.UpdatedAt != nil {
		return strings.Join([]string{
			"update",
			e.RequestID,
			string(e.Before.Status),
			string(e.After.Status),
			e.After.UpdatedAt.UTC().Format(time.RFC3339Nano),
		}, "|")
	}
	return ""
}

// StoredEvent is a change event persisted in the outbox.
type StoredEvent struct {
	ChangeEvent
	CreatedAt   time.Time
	ProcessedAt *time.Time
}
