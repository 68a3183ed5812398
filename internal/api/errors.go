package api

import (
	"errors"
	"fmt"
)

// Client construction errors.
var (
	// ErrInvalidEndpoint is returned when the endpoint is not an absolute
	// http(s) URL.
	ErrInvalidEndpoint = errors.New("invalid API endpoint: expected absolute http(s) URL")

	// ErrMissingAPIKey is returned when the client is constructed without
	// a credential. Config validation normally catches this first; the
	// check here keeps the client safe to construct directly.
	ErrMissingAPIKey = errors.New("missing API key")
)

// CallError describes a failed API call: either a non-2xx response or a
// transport-level fault. It carries the server-provided detail when one
// could be decoded, so log lines can show what the server actually said.
type CallError struct {
	// Method is the RPC method name that failed.
	Method string

	// StatusCode is the HTTP status, or zero for transport-level faults
	// (DNS failure, connection reset, timeout).
	StatusCode int

	// Detail is the server's error message, or the raw response text when
	// the error body could not be decoded.
	Detail string

	// Err is the underlying transport error, if any.
	Err error
}

// Error implements the error interface.
func (e *CallError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("api call %s: transport fault: %v", e.Method, e.Err)
	}
	if e.Detail != "" {
		return fmt.Sprintf("api call %s: status %d: %s", e.Method, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api call %s: status %d", e.Method, e.StatusCode)
}

// Unwrap exposes the underlying transport error for errors.Is/As.
func (e *CallError) Unwrap() error {
	return e.Err
}
