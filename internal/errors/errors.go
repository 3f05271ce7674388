package errors

import (
	stderrors "errors"
	"fmt"
)

// Code classifies a fetch failure. The set is closed: callers switch on it to
// decide whether a retry can help.
type Code string

const (
	// CodeInvalidIdentifier means the upstream rejected the series or
	// indicator code. Retrying cannot help.
	CodeInvalidIdentifier Code = "INVALID_IDENTIFIER"
	// CodeAuthenticationRequired means a required API key is absent or was
	// rejected. Reported before any network call when statically known.
	CodeAuthenticationRequired Code = "AUTHENTICATION_REQUIRED"
	// CodeUpstreamUnavailable covers transport failures and upstream 5xx
	// responses. The caller may retry; this layer never does.
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	// CodeMalformedResponse means the upstream answered but the body did not
	// match the expected schema.
	CodeMalformedResponse Code = "MALFORMED_RESPONSE"
)

// FetchError is a structured fetch failure carrying the provider name and
// the identifier that was being fetched.
type FetchError struct {
	Code    Code   `json:"code"`
	Source  string `json:"source"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: %s %q: %s", e.Code, e.Source, e.ID, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Source, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// InvalidIdentifier reports an identifier the upstream does not know.
func InvalidIdentifier(source, id, message string) *FetchError {
	return &FetchError{Code: CodeInvalidIdentifier, Source: source, ID: id, Message: message}
}

// AuthenticationRequired reports a missing or rejected API key.
func AuthenticationRequired(source, id, message string) *FetchError {
	return &FetchError{Code: CodeAuthenticationRequired, Source: source, ID: id, Message: message}
}

// UpstreamUnavailable reports a transport failure or upstream server error.
func UpstreamUnavailable(source, id string, err error) *FetchError {
	return &FetchError{
		Code:    CodeUpstreamUnavailable,
		Source:  source,
		ID:      id,
		Message: messageOf(err, "upstream unavailable"),
		Err:     err,
	}
}

// MalformedResponse reports a response body that did not match the expected
// schema.
func MalformedResponse(source, id string, err error) *FetchError {
	return &FetchError{
		Code:    CodeMalformedResponse,
		Source:  source,
		ID:      id,
		Message: messageOf(err, "malformed upstream response"),
		Err:     err,
	}
}

func messageOf(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}

// CodeOf extracts the classification of err, or "" when err is not a
// FetchError.
func CodeOf(err error) Code {
	var fe *FetchError
	if stderrors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// IsInvalidIdentifier reports whether err is an INVALID_IDENTIFIER failure.
func IsInvalidIdentifier(err error) bool { return CodeOf(err) == CodeInvalidIdentifier }

// IsAuthenticationRequired reports whether err is an AUTHENTICATION_REQUIRED
// failure.
func IsAuthenticationRequired(err error) bool { return CodeOf(err) == CodeAuthenticationRequired }

// IsUpstreamUnavailable reports whether err is an UPSTREAM_UNAVAILABLE
// failure.
func IsUpstreamUnavailable(err error) bool { return CodeOf(err) == CodeUpstreamUnavailable }

// IsMalformedResponse reports whether err is a MALFORMED_RESPONSE failure.
func IsMalformedResponse(err error) bool { return CodeOf(err) == CodeMalformedResponse }
