// Package simerrors defines the failure kinds the simulation engine can
// surface, per the error handling design: a small set of comparable kinds
// rather than a deep exception hierarchy.
package simerrors

import (
	"errors"
	"fmt"
)

// Kind identifies a class of simulation failure.
type Kind string

const (
	SettingError         Kind = "setting-error"
	MarginNotEnough      Kind = "margin-not-enough"
	MarginUndefined      Kind = "margin-undefined"
	OrderNotCancellable  Kind = "order-not-cancellable"
	DataDownloadError    Kind = "data-download-error"
	NotADirectory        Kind = "not-a-directory"
	UnsupportedFrequency Kind = "unsupported-frequency"
)

// Error wraps a Kind with a human-readable message. Build one with New or
// Newf, or with Sentinel for a message-less value to match against.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets errors.Is(err, simerrors.Sentinel(simerrors.MarginNotEnough))
// match any *Error of the same kind, ignoring the message. KindOf reads
// the kind directly without building a sentinel.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New builds an *Error for the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an *Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err if it (or something it wraps) is a *Error,
// and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Sentinel returns a comparable *Error value of the given kind with no
// message, suitable for use with errors.Is at call sites that only care
// about the kind, e.g. errors.Is(err, simerrors.Sentinel(simerrors.MarginUndefined)).
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}
