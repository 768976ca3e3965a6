package crawler

import (
	"errors"
	"fmt"
)

// FetchErrorKind classifies fetch failures so callers can distinguish a
// network problem from a hostile status code or an unsolvable challenge.
type FetchErrorKind string

// Fetch failure classes.
const (
	FetchTransport       FetchErrorKind = "transport"
	FetchStatus          FetchErrorKind = "status"
	FetchDecode          FetchErrorKind = "decode"
	FetchCaptchaUnsolved FetchErrorKind = "captcha_unsolved"
)

// FetchError wraps a failed fetch with its classification. StatusCode is
// only meaningful for the FetchStatus kind.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchStatus:
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	case FetchCaptchaUnsolved:
		return fmt.Sprintf("fetch %s: captcha challenge unsolved", e.URL)
	default:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError builds a classified fetch error.
func NewFetchError(kind FetchErrorKind, url string, statusCode int, err error) *FetchError {
	return &FetchError{Kind: kind, URL: url, StatusCode: statusCode, Err: err}
}

// IsCaptchaUnsolved reports whether err is a fetch error caused by a
// challenge the solver could not clear.
func IsCaptchaUnsolved(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == FetchCaptchaUnsolved
}

// IsTransient reports whether err looks like a transient transport failure
// worth retrying at the engine level.
func IsTransient(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == FetchTransport
}

// DispatchError marks a media asset that could not be handed to the sink.
// It never aborts the surrounding traversal.
type DispatchError struct {
	AssetURL string
	Err      error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s: %v", e.AssetURL, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *DispatchError) Unwrap() error {
	return e.Err
}
