// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Import errors.
	ErrFatal             = errors.New("fatal import error")
	ErrMalformedRecord   = errors.New("malformed record")
	ErrUnsupportedFormat = errors.New("unsupported import file type")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ImportKind classifies an import failure.
type ImportKind int

// Import failure kinds. Both abort the import without a partial result.
const (
	// KindFatal covers I/O failures and input that is not well-formed.
	KindFatal ImportKind = iota
	// KindMalformedRecord covers CSV rows whose field count does not match.
	KindMalformedRecord
)

func (k ImportKind) String() string {
	switch k {
	case KindMalformedRecord:
		return "malformed record"
	default:
		return "fatal"
	}
}

// ImportError is returned by importers when a file cannot be imported.
type ImportError struct {
	Err     error
	Message string
	Line    int
	Kind    ImportKind
}

func (e *ImportError) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *ImportError) Is(target error) bool {
	switch e.Kind {
	case KindMalformedRecord:
		return target == ErrMalformedRecord
	default:
		return target == ErrFatal
	}
}

// NewFatalError wraps an I/O or well-formedness failure.
func NewFatalError(message string, err error) error {
	return &ImportError{Kind: KindFatal, Message: message, Err: err}
}

// NewMalformedRecordError reports a record that does not fit the file's layout.
func NewMalformedRecordError(line int, message string) error {
	return &ImportError{Kind: KindMalformedRecord, Message: message, Line: line}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
