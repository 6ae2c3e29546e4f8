// Package apperrors defines the error taxonomy shared by the lookups, the
// pipeline and the command line.
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Exit codes returned by the integrador binary.
const (
	ExitSuccess       = 0
	ExitErrorGeneric  = 1
	ExitErrorUsage    = 2
	ExitErrorNotFound = 3
	ExitErrorUpstream = 4
	ExitErrorParse    = 5
	ExitErrorConfig   = 6
	ExitErrorCanceled = 130
)

// ErrNotFound is matched by every NotFoundError through errors.Is.
var ErrNotFound = errors.New("can not find zipcode")

// TransportError reports a failed round trip: DNS, connection, timeout or a
// non-2xx status from the upstream service.
type TransportError struct {
	Service    string
	URL        string
	StatusCode int
	Cause      error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: request to %s returned status %d", e.Service, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: request to %s failed: %v", e.Service, e.URL, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// ParseError reports a body that is not valid JSON or does not have the
// expected top-level shape.
type ParseError struct {
	Service string
	URL     string
	Cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: invalid response from %s: %v", e.Service, e.URL, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// NotFoundError is raised when the address service explicitly flags the key
// as unknown.
type NotFoundError struct {
	Service string
	Key     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s: %q", e.Service, ErrNotFound.Error(), e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConfigError represents invalid user configuration.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// UsageError signals a bad command line invocation.
type UsageError struct {
	Message string
}

func (e UsageError) Error() string { return e.Message }

// ExitCode maps an error returned by the pipeline or the command line to the
// process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		usageErr     UsageError
		configErr    ConfigError
		notFoundErr  *NotFoundError
		transportErr *TransportError
		parseErr     *ParseError
	)
	switch {
	case errors.As(err, &usageErr):
		return ExitErrorUsage
	case errors.As(err, &configErr):
		return ExitErrorConfig
	case errors.As(err, &notFoundErr):
		return ExitErrorNotFound
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &transportErr):
		return ExitErrorUpstream
	case errors.As(err, &parseErr):
		return ExitErrorParse
	default:
		return ExitErrorGeneric
	}
}

// Kind returns a short label for metrics and logs.
func Kind(err error) string {
	var (
		notFoundErr  *NotFoundError
		transportErr *TransportError
		parseErr     *ParseError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &notFoundErr):
		return "not_found"
	case interrupted(err):
		return "canceled"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "error"
	}
}

// interrupted reports whether err stems from the caller giving up, either by
// cancellation or by an expired deadline.
func interrupted(err error) bool {
	for _, target := range []error{context.Canceled, context.DeadlineExceeded} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
