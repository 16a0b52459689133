package pilldoc

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure. Every error surfaced to a tool caller
// carries exactly one kind so the client can branch without string matching.
type Kind string

const (
	KindConfig     Kind = "CONFIG_ERROR"
	KindValidation Kind = "VALIDATION_ERROR"
	KindAuth       Kind = "AUTH_ERROR"
	KindRemote     Kind = "REMOTE_ERROR"
	KindNotFound   Kind = "NOT_FOUND"
	KindAmbiguous  Kind = "AMBIGUOUS_MATCH"
)

// maxBodyPreview bounds how much of a remote response body is kept on an
// error for diagnostics.
const maxBodyPreview = 2048

// Error is the typed error for all pilldoc pipeline failures.
type Error struct {
	Kind     Kind
	Message  string
	Endpoint string // remote path or URL, when a remote call was involved
	Status   int    // HTTP status, when a remote call was involved
	Body     string // truncated remote response body
	Step     string // pipeline step ("accounts", "user", "update", ...)
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (endpoint=%s status=%d)", e.Kind, e.Message, e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// WithStep returns a copy of the error tagged with the pipeline step name.
func (e *Error) WithStep(step string) *Error {
	dup := *e
	dup.Step = step
	return &dup
}

// ToMap renders the error as the structured object tool callers receive.
func (e *Error) ToMap() map[string]interface{} {
	out := map[string]interface{}{
		"kind":    string(e.Kind),
		"message": e.Message,
	}
	if e.Endpoint != "" {
		out["endpoint"] = e.Endpoint
	}
	if e.Status != 0 {
		out["status"] = e.Status
	}
	if e.Body != "" {
		out["body"] = e.Body
	}
	if e.Step != "" {
		out["step"] = e.Step
	}
	return out
}

// ConfigErrorf reports missing or contradictory configuration.
func ConfigErrorf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConfig, Message: fmt.Sprintf(format, args...)}
}

// ValidationErrorf reports malformed or out-of-range tool input.
func ValidationErrorf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// AuthErrorf reports a login rejected by the remote, or a rejected token.
func AuthErrorf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuth, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf reports zero search matches.
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Ambiguousf reports multiple matches without disambiguation.
func Ambiguousf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAmbiguous, Message: fmt.Sprintf(format, args...)}
}

// remoteError wraps a non-2xx remote response. 401/403 are classified as auth
// failures so the paginator can trigger its single token refresh.
func remoteError(endpoint string, status int, body string, msg string) *Error {
	kind := KindRemote
	if status == 401 || status == 403 {
		kind = KindAuth
	}
	if len(body) > maxBodyPreview {
		body = body[:maxBodyPreview]
	}
	return &Error{Kind: kind, Message: msg, Endpoint: endpoint, Status: status, Body: body}
}

// RemoteErrorf reports a non-auth remote failure with no response (transport
// error, timeout).
func RemoteErrorf(endpoint string, format string, args ...interface{}) *Error {
	return &Error{Kind: KindRemote, Message: fmt.Sprintf(format, args...), Endpoint: endpoint}
}

// KindOf extracts the taxonomy kind from any error. Untyped errors map to
// REMOTE_ERROR, which is the only place they can originate.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindRemote
}

// IsAuth reports whether the error is an authentication failure.
func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}

// AsError converts any error to a *Error, wrapping untyped ones as remote
// failures so tool results always carry a kind.
func AsError(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return &Error{Kind: KindRemote, Message: err.Error()}
}
