package core

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error taxonomy
// =============================================================================

// Sentinel errors used to classify failures with errors.Is.
var (
	// ErrParse marks structural failures: a required pattern or file is
	// missing or duplicated, or a script convention is violated.
	ErrParse = errors.New("parse error")
	// ErrValue marks values that were found but cannot be interpreted.
	ErrValue = errors.New("value error")
	// ErrNotFound marks a missing input path.
	ErrNotFound = errors.New("not found")
	// ErrInconsistent marks inputs that parse individually but disagree,
	// such as a scan with no configuration document in effect.
	ErrInconsistent = errors.New("inconsistent inputs")
)

// ParseError reports a structural parse failure.
type ParseError struct {
	File    string // Source file, if known
	Fact    string // The fact or record that could not be located
	Message string
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Fact != "" {
		msg = fmt.Sprintf("%s: %s", e.Fact, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, msg)
	}
	return msg
}

// Is lets errors.Is(err, ErrParse) match any *ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// NewParseError builds a ParseError with a formatted message.
func NewParseError(file, fact, format string, args ...any) *ParseError {
	return &ParseError{File: file, Fact: fact, Message: fmt.Sprintf(format, args...)}
}

// ValueError reports a value that is present but malformed.
type ValueError struct {
	File    string
	Message string
}

func (e *ValueError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// Is lets errors.Is(err, ErrValue) match any *ValueError.
func (e *ValueError) Is(target error) bool {
	return target == ErrValue
}

// NewValueError builds a ValueError with a formatted message.
func NewValueError(file, format string, args ...any) *ValueError {
	return &ValueError{File: file, Message: fmt.Sprintf(format, args...)}
}

// Recoverable reports whether a batch driver may skip the item that
// produced err and continue with the rest.
func Recoverable(err error) bool {
	return errors.Is(err, ErrParse) || errors.Is(err, ErrValue) || errors.Is(err, ErrInconsistent)
}
