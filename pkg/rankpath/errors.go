package rankpath

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why a call failed. The displayed text of every kind is a
// single line; Kind lets callers tell the causes apart.
type Kind int

const (
	// KindTransport covers network, TLS, timeout and cancellation failures.
	KindTransport Kind = iota + 1
	// KindAPI is a non-2xx response from RankPath.
	KindAPI
	// KindDecode is a 2xx response whose body does not match the expected shape.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAPI:
		return "api"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

var (
	// ErrNotFound matches API errors returned with status 404.
	ErrNotFound = errors.New("rankpath: not found")
	// ErrInvalidArgument is returned before any request is sent when an
	// argument cannot form a valid request.
	ErrInvalidArgument = errors.New("rankpath: invalid argument")
)

// Error is returned by every Client operation that reaches the network.
type Error struct {
	Kind       Kind
	StatusCode int
	// Code and Message come from the upstream error body. When the body is
	// not parseable Code holds the HTTP status line and Message is empty.
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case KindAPI:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case KindDecode:
		return fmt.Sprintf("failed to decode response: %v", e.Err)
	default:
		return fmt.Sprintf("request failed: %v", e.Err)
	}
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports 404 API errors as ErrNotFound.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e != nil && e.Kind == KindAPI && e.StatusCode == http.StatusNotFound
}

// KindOf returns the Kind of err, or 0 when err is not a *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

func decodeError(err error) *Error {
	return &Error{Kind: KindDecode, Err: err}
}
