package api

import "fmt"

// Kind discriminates gateway failures so callers can pick a message.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindEmptyResponse
	KindDecode
	KindStatus
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindEmptyResponse:
		return "empty response"
	case KindDecode:
		return "decode"
	case KindStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call that fails.
type Error struct {
	Kind Kind
	// StatusCode is set for KindStatus.
	StatusCode int
	Err        error
}

// Sentinels for errors.Is. ErrStatus matches any status code.
var (
	ErrNetwork       = &Error{Kind: KindNetwork}
	ErrEmptyResponse = &Error{Kind: KindEmptyResponse}
	ErrDecode        = &Error{Kind: KindDecode}
	ErrStatus        = &Error{Kind: KindStatus}
)

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindNetwork:
		msg = "network error"
	case KindEmptyResponse:
		msg = "empty response"
	case KindDecode:
		msg = "unexpected response format"
	case KindStatus:
		msg = fmt.Sprintf("invalid response: %d", e.StatusCode)
	default:
		msg = "api error"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind, and on StatusCode when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.StatusCode == 0 || t.StatusCode == e.StatusCode)
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
