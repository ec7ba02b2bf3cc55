package types

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ConfigurationError reports a missing or invalid setting. It stops an
// operation before any state is mutated.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// NewConfigurationError creates a ConfigurationError.
func NewConfigurationError(format string, args ...interface{}) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// ConcurrencyError is returned when a run is started while another is active.
type ConcurrencyError struct {
	RunID     string
	StartedAt *time.Time
}

func (e *ConcurrencyError) Error() string {
	if e.StartedAt != nil {
		return fmt.Sprintf("review run %s already in progress since %s", e.RunID, e.StartedAt.Format(time.RFC3339))
	}
	return fmt.Sprintf("review run %s already in progress", e.RunID)
}

// TransportError wraps a failed or timed out call to an external service.
type TransportError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError wraps err, flagging deadline overruns as timeouts.
func NewTransportError(op string, err error) error {
	return &TransportError{Op: op, Err: err, Timeout: errors.Is(err, context.DeadlineExceeded)}
}

// ParseError reports a malformed response.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Reason
}

// NewParseError creates a ParseError keeping a bounded excerpt of raw.
func NewParseError(reason, raw string) error {
	const maxRaw = 512
	if len(raw) > maxRaw {
		raw = raw[:maxRaw]
	}
	return &ParseError{Reason: reason, Raw: raw}
}

// NotFoundError reports a missing pending change or topic.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsConcurrency(err error) bool {
	var target *ConcurrencyError
	return errors.As(err, &target)
}

func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

func IsParse(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
