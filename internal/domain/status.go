package domain

import (
	"encoding/json"
	"strings"
)

// Status is the lifecycle label of a service request. Producers may store
// labels outside the known set; those are preserved verbatim and are never
// terminal.
type Status string

const (
	StatusDraft      Status = "Draft"
	StatusInProgress Status = "In progress"
	StatusRejected   Status = "Rejected"
	StatusCompleted  Status = "Completed"
)

// ParseStatus normalises a stored label.
func ParseStatus(label string) Status {
	return Status(strings.TrimSpace(label))
}

func (s Status) IsKnown() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether a transition into s is announced to the owner.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCompleted:
		return true
	case StatusDraft, StatusInProgress:
		return false
	}
	return false
}

// TerminalStatuses lists every status for which IsTerminal is true.
func TerminalStatuses() []Status {
	return []Status{StatusRejected, StatusCompleted}
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var label string
	if err := json.Unmarshal(b, &label); err != nil {
		// Non-string labels are tolerated and read as an empty status.
		*s = ""
		return nil
	}
	*s = ParseStatus(label)
	return nil
}
