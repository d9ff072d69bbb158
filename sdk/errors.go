package sdk

import (
	"errors"
	"fmt"
)

// ErrorKind classifies API failures. The distinction is load bearing:
// callers route each kind to a different user visible outcome.
type ErrorKind int

const (
	// KindDomain is a job level failure reported by the server.
	KindDomain ErrorKind = iota
	// KindUnauthenticated means the call was rejected with 401. The caller
	// should run the login flow and may retry afterwards.
	KindUnauthenticated
	// KindInsufficientBalance means the call was rejected with 402. It is
	// user actionable and non fatal.
	KindInsufficientBalance
	// KindTransport means the request itself could not complete.
	KindTransport
)

const (
	fallbackRequestFailed = "request failed"
	// FallbackPollFailed is the generic message surfaced when a status
	// poll cannot complete. Poll failures are local only and never mean
	// the job itself failed.
	FallbackPollFailed = "status check failed"
)

type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("unexpected status: %d", e.StatusCode)
	}
	return fallbackRequestFailed
}

// Kind classifies any error returned by the client. Errors that are not
// an *APIError are transport failures by definition: the request never
// produced a server response.
func Kind(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransport
}

func IsUnauthenticated(err error) bool {
	return err != nil && Kind(err) == KindUnauthenticated
}

func IsInsufficientBalance(err error) bool {
	return err != nil && Kind(err) == KindInsufficientBalance
}
