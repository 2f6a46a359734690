package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the calendar core can surface, so the
// command layer can render messages without parsing error strings.
type ErrorKind int

const (
	// Malformed or logically inconsistent input.
	KindValidation ErrorKind = iota + 1
	// The operation would produce two live events with the same
	// (subject, start, end) identity.
	KindConflict
	// A selector or lookup key resolved to nothing.
	KindNotFound
	// A selector without an end time resolved to more than one event.
	KindAmbiguous
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not found"
	case KindAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Error is the core's boundary error. Subject names the offending event when
// one is known.
type Error struct {
	Kind    ErrorKind
	Subject string
	msg     string
}

func (e *Error) Error() string {
	if e.Subject == "" {
		return e.msg
	}
	return fmt.Sprintf("%s (subject: %q)", e.msg, e.Subject)
}

func NewValidationError(subject, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Subject: subject, msg: fmt.Sprintf(format, args...)}
}

func NewConflictError(subject, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Subject: subject, msg: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(subject, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Subject: subject, msg: fmt.Sprintf(format, args...)}
}

func NewAmbiguousError(subject, format string, args ...any) *Error {
	return &Error{Kind: KindAmbiguous, Subject: subject, msg: fmt.Sprintf(format, args...)}
}

// KindOf digs the boundary kind out of a (possibly wrapped) error chain.
// Returns 0 for errors that did not originate in the core.
func KindOf(err error) ErrorKind {
	var coreErr *Error
	if errors.As(err, &coreErr) {
		return coreErr.Kind
	}
	return 0
}
