package llm

import (
	"errors"
	"fmt"
	"strings"

	"kisansetu-be/pkg/advisory"
)

// ErrorKind classifies a failed model call.
type ErrorKind string

const (
	KindTransport  ErrorKind = "transport"
	KindStatusCode ErrorKind = "status_code"
	KindInvariant  ErrorKind = "invariant"
)

// ProviderError is returned by every provider in this module. It always matches
// advisory.ErrInferenceUnavailable under errors.Is.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s error", e.Provider, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ProviderError) Unwrap() []error {
	if e.Err != nil {
		return []error{advisory.ErrInferenceUnavailable, e.Err}
	}
	return []error{advisory.ErrInferenceUnavailable}
}

func NewTransportError(provider string, err error) error {
	return &ProviderError{Provider: provider, Kind: KindTransport, Err: err}
}

func NewStatusError(provider string, status int, body string) error {
	return &ProviderError{Provider: provider, Kind: KindStatusCode, Status: status, Message: truncate(body, 300)}
}

func NewInvariantError(provider, message string) error {
	return &ProviderError{Provider: provider, Kind: KindInvariant, Message: message}
}

// AsProviderError extracts a ProviderError from an error chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
