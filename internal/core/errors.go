// Package core holds the data model and error taxonomy shared by every
// manager: request/result types, the on-disk file classification, and the
// enumerated error kinds of spec §7.
package core

import (
	"errors"
	"fmt"
)

// Kind enumerates the error taxonomy of spec §7. Kinds are values, not
// control flow — callers switch on them instead of catching exception
// subclasses.
type Kind string

const (
	KindInvalidInput    Kind = "invalid_input"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindMalformedConfig Kind = "malformed_config"
	KindTemplateError   Kind = "template_error"
	KindIOFailure       Kind = "io_failure"
	KindCancelled       Kind = "cancelled"
	KindProbeFailure    Kind = "probe_failure"
)

// Error is the concrete error type returned across manager boundaries. It
// carries the operation and target so higher layers can enrich log lines
// without re-classifying the failure.
type Error struct {
	Kind      Kind
	Operation string
	Target    string
	Field     string
	Reason    string
	Err       error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: field %q: %s", e.Operation, e.Kind, e.Field, e.Reason)
	}
	if e.Target != "" {
		return fmt.Sprintf("%s: %s: %s: %s", e.Operation, e.Kind, e.Target, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Operation, e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, core.KindNotFound) style checks work by comparing
// Kind through a sentinel wrapper; callers more commonly use KindOf below.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// KindOf extracts the Kind from err, defaulting to "" when err is not (or
// does not wrap) a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// New builds a *Error for the common case of no wrapped cause.
func New(kind Kind, operation, reason string) *Error {
	return &Error{Kind: kind, Operation: operation, Reason: reason}
}

// NewField builds an InvalidInput error naming the offending field.
func NewField(operation, field, reason string) *Error {
	return &Error{Kind: KindInvalidInput, Operation: operation, Field: field, Reason: reason}
}

// NewTarget builds an error naming the file/target the operation acted on.
func NewTarget(kind Kind, operation, target, reason string) *Error {
	return &Error{Kind: kind, Operation: operation, Target: target, Reason: reason}
}

// Wrap attaches a lower-level cause to a taxonomy kind.
func Wrap(kind Kind, operation, target string, err error) *Error {
	return &Error{Kind: kind, Operation: operation, Target: target, Reason: err.Error(), Err: err}
}
