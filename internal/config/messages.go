package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/civicpulse/request-notifier/internal/domain"
)

// DefaultMessages is the status → text table used when no MESSAGES_FILE is set.
func DefaultMessages() map[domain.Status]domain.StatusText {
	return map[domain.Status]domain.StatusText{
		domain.StatusCompleted: {
			Title: "Request Completed",
			Body:  "Your service request has been completed. Thank you for helping improve your city.",
		},
		domain.StatusRejected: {
			Title: "Request Rejected",
			Body:  "Your service request was rejected. Open the app to see the details.",
		},
	}
}

// messagesFile is the YAML layout:
//
//	statuses:
//	  Completed: {title: ..., body: ...}
//	  Rejected:  {title: ..., body: ...}
type messagesFile struct {
	Statuses map[string]domain.StatusText `yaml:"statuses"`
}

// LoadMessages returns DefaultMessages overlaid with the entries of the YAML
// file at path. An empty path returns the defaults.
func LoadMessages(path string) (map[domain.Status]domain.StatusText, error) {
	messages := DefaultMessages()
	if path == "" {
		return messages, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read messages file: %w", err)
	}

	var mf messagesFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse messages file: %w", err)
	}

	for label, text := range mf.Statuses {
		status := domain.ParseStatus(label)
		if !status.IsTerminal() {
			return nil, fmt.Errorf("messages file: %q is not a terminal status", label)
		}
		if text.Title == "" || text.Body == "" {
			return nil, fmt.Errorf("messages file: %q needs both title and body", label)
		}
		messages[status] = text
	}
	return messages, nil
}
