package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

type FailureKind string

const (
	KindNetwork       FailureKind = "network"
	KindTimeout       FailureKind = "timeout"
	KindEmptyDocument FailureKind = "empty_document"
	KindHTTPStatus    FailureKind = "http_status"
)

type FetchError struct {
	Kind   FailureKind
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == KindHTTPStatus:
		return fmt.Sprintf("fetch %s: http status %d", e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt may succeed. Client errors other than 429 are
// final.
func (e *FetchError) Retryable() bool {
	if e.Kind != KindHTTPStatus {
		return true
	}
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// IsRetryable is true for any error carrying a Retryable() bool that says so.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}

func KindOf(err error) FailureKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
