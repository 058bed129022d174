// Package mail delivers rendered emails through an authenticated transport.
package mail

import "context"

// FailureKind categorizes a dispatch failure so callers can give actionable
// guidance.
type FailureKind string

const (
	FailureNone           FailureKind = ""
	FailureInvalidAddress FailureKind = "invalid_address"
	FailureMissingConfig  FailureKind = "missing_config"
	FailureAuth           FailureKind = "auth"
	FailureTransport      FailureKind = "transport"
)

// Result is the outcome of one delivery attempt. Dispatch failures are
// surfaced here as values; nothing is thrown past the dispatch boundary.
type Result struct {
	Success bool        `json:"success"`
	Kind    FailureKind `json:"failure_kind,omitempty"`
	Message string      `json:"message"`
}

// Sent builds a success result.
func Sent(message string) Result {
	return Result{Success: true, Message: message}
}

// Failed builds a failure result.
func Failed(kind FailureKind, message string) Result {
	return Result{Success: false, Kind: kind, Message: message}
}

// Dispatcher sends one email per invocation, at most once; the caller decides
// whether to retry.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, body string) Result
}
