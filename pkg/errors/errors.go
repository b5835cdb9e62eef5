// Package errors defines the coded errors serdegraph reports.
//
// Input problems (a bad model, rules or config file, an unknown output
// format) are *[Error] values carrying a [Code]. Failures of the resolution
// engine have their own types so callers can recover the identifiers at
// fault:
//
//	var ue *errors.UnresolvedReferenceError
//	if stderrors.As(err, &ue) {
//	    fmt.Println(ue.Source, ue.Reference)
//	}
//
// [Is] matches both kinds by code anywhere in a wrap chain:
//
//	if errors.Is(err, errors.ErrCodeInvalidModel) { ... }
package errors

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Code is a stable, machine-readable error class.
type Code string

const (
	ErrCodeInvalidModel  Code = "INVALID_MODEL"
	ErrCodeInvalidRules  Code = "INVALID_RULES"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	ErrCodeDecomposition       Code = "DECOMPOSITION"
	ErrCodeUnresolvedReference Code = "UNRESOLVED_REFERENCE"
	ErrCodeOrphanImpl          Code = "ORPHAN_IMPL"
	ErrCodeFrozenRegistry      Code = "FROZEN_REGISTRY"
)

// Error pairs a code with a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the first coded error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode returns the code of the first *Error or engine error in err's
// chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c interface{ Code() Code }
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// UserMessage is err's text without the code of its first *Error, for
// printing to people rather than scripts.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	return strings.Replace(err.Error(), string(e.Code)+": ", "", 1)
}

// DecompositionError reports an identifier without the "::" separator.
// Registry keys are always qualified, so the run cannot continue.
type DecompositionError struct {
	ID string
}

func (e *DecompositionError) Error() string {
	return fmt.Sprintf("cannot decompose identifier %q: missing \"::\" separator", e.ID)
}

func (e *DecompositionError) Code() Code { return ErrCodeDecomposition }

// UnresolvedReferenceError reports a field reference that no heuristic,
// pair or skip rule accounts for.
type UnresolvedReferenceError struct {
	// Source is the type declaring the field.
	Source string
	// Reference is the field's type as written in the model.
	Reference string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("could not resolve struct or enum: %s, field: %s", e.Source, e.Reference)
}

func (e *UnresolvedReferenceError) Code() Code { return ErrCodeUnresolvedReference }

// UnresolvedReferences is every unresolved reference of one build, ordered
// by (Source, Reference).
type UnresolvedReferences struct {
	Errs []*UnresolvedReferenceError
}

// NewUnresolvedReferences sorts a copy of errs. It returns nil for an empty
// slice; compare against nil before returning the result as an error.
func NewUnresolvedReferences(errs []*UnresolvedReferenceError) *UnresolvedReferences {
	if len(errs) == 0 {
		return nil
	}
	sorted := slices.SortedFunc(slices.Values(errs), func(a, b *UnresolvedReferenceError) int {
		return cmp.Or(cmp.Compare(a.Source, b.Source), cmp.Compare(a.Reference, b.Reference))
	})
	return &UnresolvedReferences{Errs: sorted}
}

func (e *UnresolvedReferences) Error() string {
	if len(e.Errs) == 1 {
		return e.Errs[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d unresolved references:", len(e.Errs))
	for _, ue := range e.Errs {
		fmt.Fprintf(&b, "\n  %s -> %s", ue.Source, ue.Reference)
	}
	return b.String()
}

// Unwrap lets errors.As reach the individual references.
func (e *UnresolvedReferences) Unwrap() []error {
	out := make([]error, len(e.Errs))
	for i, ue := range e.Errs {
		out[i] = ue
	}
	return out
}

func (e *UnresolvedReferences) Code() Code { return ErrCodeUnresolvedReference }
