package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so the session can report them without inspecting messages.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindInvalidReference
	KindExtraction
	KindGeneration
	KindResolution
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFoundError"
	case KindInvalidReference:
		return "InvalidReferenceError"
	case KindExtraction:
		return "ExtractionError"
	case KindGeneration:
		return "GenerationError"
	case KindResolution:
		return "ResolutionError"
	}
	return "Error"
}

// Error is the error type returned by extractors, the resolver and the generator.
type Error struct {
	Kind ErrorKind
	Op   string // e.g. "pdf extract", "transcript"
	Ref  string // path, URL or video ID the operation was working on
	Err  error
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrInvalidReference = &Error{Kind: KindInvalidReference}
	ErrExtraction       = &Error{Kind: KindExtraction}
	ErrGeneration       = &Error{Kind: KindGeneration}
	ErrResolution       = &Error{Kind: KindResolution}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op
	}
	if e.Ref != "" {
		msg += " " + e.Ref
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Ref == "" && t.Err == nil && t.Kind == e.Kind
}

// Errorf builds an *Error of the given kind around a formatted cause.
func Errorf(kind ErrorKind, op, ref, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Ref: ref, Err: fmt.Errorf(format, args...)}
}

// Wrap returns nil for a nil err, otherwise an *Error of the given kind around err.
func Wrap(kind ErrorKind, op, ref string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Ref: ref, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
