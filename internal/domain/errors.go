package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound         = errors.New("not found")
	ErrMalformedUserRef = errors.New("malformed user reference")
	ErrMissingRequestID = errors.New("requestId must not be empty")
	ErrInvalidEnvelope  = errors.New("invalid push envelope")
	ErrQueueFull        = errors.New("queue is at capacity, try again later")
)
