package calendar

import (
	"errors"
	"fmt"
)

// Kind classifies calendar errors so callers can map them to structured
// failures without string matching.
type Kind string

const (
	KindCalendarNotFound   Kind = "calendar_not_found"
	KindCalendarParseError Kind = "calendar_parse_error"
	KindCalendarWriteError Kind = "calendar_write_error"
	KindInvalidInterval    Kind = "invalid_interval"
	KindSlotAlreadyBlocked Kind = "slot_already_blocked"
	KindSlotNotAvailable   Kind = "slot_not_available"
	KindIndexOutOfRange    Kind = "index_out_of_range"
)

// Error is a calendar failure with a machine-readable kind and a
// human-readable message. Errors are surfaced to the caller as-is; the core
// never retries or silently recovers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a calendar error with the given kind.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func newError(kind Kind, format string, args ...any) *Error {
	return NewError(kind, format, args...)
}

func wrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or the empty string if err is not a
// calendar error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsKind reports whether err is a calendar error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
