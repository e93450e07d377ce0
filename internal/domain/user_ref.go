package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// UserKind is the only entity kind a request owner may reference.
const UserKind = "users"

// UserRef is a typed reference to a user record.
type UserRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// NewUserRef builds a reference to the user with the given bare ID.
func NewUserRef(id string) UserRef {
	return UserRef{Kind: UserKind, ID: id}
}

// Path renders the reference in the legacy "/users/<id>" form.
func (r UserRef) Path() string {
	return "/" + r.Kind + "/" + r.ID
}

// ParseUserRef resolves the raw userId field of a request snapshot.
//
// Accepted forms are a typed object {"kind":"users","id":"abc"} and the legacy
// path string "/users/abc" (the leading slash and the kind segment are optional).
// Anything else, or a blank ID, is ErrMalformedUserRef.
func ParseUserRef(raw json.RawMessage) (UserRef, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return UserRef{}, ErrMalformedUserRef
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return UserRef{}, ErrMalformedUserRef
		}
		return parseUserPath(s)
	case '{':
		var ref UserRef
		if err := json.Unmarshal(raw, &ref); err != nil {
			return UserRef{}, ErrMalformedUserRef
		}
		ref.ID = strings.TrimSpace(ref.ID)
		if ref.Kind == "" {
			ref.Kind = UserKind
		}
		if ref.Kind != UserKind || ref.ID == "" || strings.Contains(ref.ID, "/") {
			return UserRef{}, ErrMalformedUserRef
		}
		return ref, nil
	}
	return UserRef{}, ErrMalformedUserRef
}

func parseUserPath(s string) (UserRef, error) {
	s = strings.TrimLeft(strings.TrimSpace(s), "/")
	id := s
	if i := strings.LastIndex(s, "/"); i >= 0 {
		if s[:i] != UserKind {
			return UserRef{}, ErrMalformedUserRef
		}
		id = s[i+1:]
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return UserRef{}, ErrMalformedUserRef
	}
	return NewUserRef(id), nil
}
