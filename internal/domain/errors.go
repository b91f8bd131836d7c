package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the request boundary. Handlers map these to HTTP
// statuses; services return them wrapped with context.
var (
	// ErrInvalidCredentials indicates a failed email/password check.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates a missing, malformed or expired session token.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnknownTenant indicates that no tenant matches the declared shop
	// domain. Webhook processing never creates tenants implicitly.
	ErrUnknownTenant = errors.New("unknown tenant")

	// ErrNotFound indicates a missing resource other than a tenant.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates malformed or incomplete input.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateRegistration indicates that the email or shop domain is
	// already registered.
	ErrDuplicateRegistration = errors.New("already registered")

	// ErrUnhandledTopic indicates a webhook topic no handler accepts.
	ErrUnhandledTopic = errors.New("unhandled webhook topic")
)

// UpstreamError carries the status and body of a failed commerce-platform
// API call instead of swallowing them.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream request failed: status %d: %s", e.Status, e.Body)
}

// PersistenceError wraps a failed store operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
