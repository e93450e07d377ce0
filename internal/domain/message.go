package domain

import "time"

// MessageTypeStatusChange tags the payload of status-change notifications.
const MessageTypeStatusChange = "status_change"

// StatusText is the human-readable title/body shown for a status.
type StatusText struct {
	Title string `yaml:"title" json:"title"`
	Body  string `yaml:"body" json:"body"`
}

// DeliveryHint carries platform delivery options.
type DeliveryHint struct {
	Sound     string
	Priority  string
	ChannelID string
}

// PushData is the structured payload attached to a status-change push.
type PushData struct {
	RequestID string `json:"requestId"`
	NewStatus string `json:"newStatus"`
	OldStatus string `json:"oldStatus"`
	Type      string `json:"type"`
	UserID    string `json:"userId"`
}

// PushMessage is a composed notification addressed to one device.
type PushMessage struct {
	To    string
	Title string
	Body  string
	Data  PushData
	Hint  DeliveryHint
}

// NotificationErrorRecord is an append-only diagnostic entry written when a
// delivery fails.
type NotificationErrorRecord struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"requestId"`
	UserID       string    `json:"userId"`
	ErrorMessage string    `json:"error"`
	Stack        string    `json:"stack"`
	OldStatus    string    `json:"oldStatus"`
	NewStatus    string    `json:"newStatus"`
	CreatedAt    time.Time `json:"timestamp"`
}
