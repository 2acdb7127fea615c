package router

import (
	"errors"

	"github.com/netroute/netroute/internal/classify"
)

// Kind identifies which stage of a call produced an error.
type Kind int

const (
	// KindBuild means the URL could not be assembled; nothing was sent.
	KindBuild Kind = iota + 1
	// KindTransport means no HTTP response was received.
	KindTransport
	// KindCanceled means the context ended before a response arrived.
	KindCanceled
	// KindStatus means the response status classified as a failure.
	KindStatus
	// KindNoData means a successful response carried no body.
	KindNoData
	// KindDecode means the body could not be decoded into the target type.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindBuild:
		return "build"
	case KindTransport:
		return "transport"
	case KindCanceled:
		return "canceled"
	case KindStatus:
		return "status"
	case KindNoData:
		return "no_data"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is the single failure outcome of a call. Error() returns Message
// unchanged so callers can show it to users as-is.
type Error struct {
	Kind    Kind
	Message string
	// StatusCode is set when a response was received.
	StatusCode int
	// Category is the classifier verdict for KindStatus, KindNoData and
	// KindDecode errors.
	Category classify.Category
	Err      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}
