// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

package fyaml

import (
	"errors"
	"fmt"

	"github.com/0k/fyaml/internal/engine"
)

// Sentinel errors for the failure classes of the package. Errors
// returned by this package wrap one of these, so callers can classify
// with errors.Is and recover details with errors.As where a structured
// type exists.
var (
	// ErrEngine reports that a structural operation was rejected, for
	// example a path that does not resolve to an editable parent.
	ErrEngine = errors.New("engine call failed")

	// ErrParse reports invalid YAML input. Failures with a known
	// source position are *ParseError values wrapping ErrParse.
	ErrParse = errors.New("parse failed")

	// ErrIO reports a failure reading a stream's underlying input.
	ErrIO = errors.New("i/o failed")

	// ErrAlloc reports that the engine could not allocate a buffer
	// for input or scalar content. The engine here allocates on the
	// Go heap, so the class is reserved and not normally observed.
	ErrAlloc = errors.New("buffer allocation failed")

	// ErrEncoding reports scalar text that is not valid UTF-8.
	ErrEncoding = errors.New("invalid text encoding")

	// ErrTypeMismatch reports an operation applied to the wrong node
	// kind; see TypeMismatchError.
	ErrTypeMismatch = errors.New("node type mismatch")

	// ErrDocumentMismatch reports nodes from different documents, or
	// different editor sessions, used in one operation.
	ErrDocumentMismatch = errors.New("nodes belong to different documents")

	// ErrMutateWhileIterating reports a structural mutation attempted
	// while an iteration over the same document is in progress.
	ErrMutateWhileIterating = errors.New("cannot mutate document while iterating")

	// ErrScalarTooLarge reports a scalar whose length exceeds
	// MaxScalarLen.
	ErrScalarTooLarge = errors.New("scalar length exceeds sanity limit")
)

// MaxScalarLen bounds the length of scalar content accepted from the
// engine. Anything longer indicates a corrupt length, not real data.
const MaxScalarLen = 1 << 30

// A ParseError is a parse failure with a source position. Line and
// Column are 1-based; Column counts bytes. A zero Line means the
// engine could not attribute a position at all.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse failed at %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return "parse failed: " + e.Message
}

func (e *ParseError) Unwrap() error { return ErrParse }

// Location returns the position of the failure, if one is known.
func (e *ParseError) Location() (line, col int, ok bool) {
	return e.Line, e.Column, e.Line > 0
}

// A TypeMismatchError describes what kind of node an operation needed
// and what it actually found.
type TypeMismatchError struct {
	Want string // the kind (or kinds) the operation accepts
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("node type mismatch: want %s, got %s", e.Want, e.Got)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// A ScalarSizeError reports the length that tripped ErrScalarTooLarge.
type ScalarSizeError struct {
	Len int
}

func (e *ScalarSizeError) Error() string {
	return fmt.Sprintf("scalar length %d exceeds sanity limit %d", e.Len, MaxScalarLen)
}

func (e *ScalarSizeError) Unwrap() error { return ErrScalarTooLarge }

// mismatch builds the TypeMismatchError for an operation that needs
// want but found a node of kind k.
func mismatch(want string, k engine.Kind) error {
	return &TypeMismatchError{Want: want, Got: k.String()}
}

// engineErr wraps a rejected structural operation.
func engineErr(err error) error {
	return fmt.Errorf("%w: %v", ErrEngine, err)
}

func engineErrf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEngine, fmt.Sprintf(format, args...))
}

// parseFailure converts an engine-reported failure into the public
// error shape: located failures become *ParseError, the rest wrap
// ErrParse directly.
func parseFailure(f *engine.ParseFailure) error {
	if f == nil {
		return nil
	}
	if f.IO {
		return fmt.Errorf("%w: %s", ErrIO, f.Msg)
	}
	if f.Line > 0 {
		return &ParseError{Message: f.Msg, Line: f.Line, Column: f.Col}
	}
	return fmt.Errorf("%w: %s", ErrParse, f.Msg)
}
