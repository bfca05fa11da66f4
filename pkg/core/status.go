package core

import "fmt"

// StepStatus represents the execution status of a step
type StepStatus int

const (
	StatusPending   StepStatus = iota // Not yet started, or no step definition matched
	StatusRunning                     // Currently executing
	StatusPassed                      // Completed successfully
	StatusFailed                      // Assertion failed (expected behavior didn't occur)
	StatusErrored                     // Unexpected error (no browser, config, connection)
	StatusSkipped                     // Previous step failed
	StatusUndefined                   // No step definition matched the step text
)

// String returns the string representation of StepStatus
func (s StepStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusErrored:
		return "errored"
	case StatusSkipped:
		return "skipped"
	case StatusUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s StepStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status written by MarshalText.
func (s *StepStatus) UnmarshalText(text []byte) error {
	for st := StatusPending; st <= StatusUndefined; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown step status %q", text)
}

// IsTerminal returns true if the status is a final state
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusErrored, StatusSkipped, StatusUndefined:
		return true
	default:
		return false
	}
}

// IsSuccess returns true if the status indicates success
func (s StepStatus) IsSuccess() bool {
	return s == StatusPassed
}

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone       ErrorCategory = iota // No error
	ErrCategoryAssertion                       // Element not found, text mismatch, visibility check failed
	ErrCategoryTimeout                         // Operation timed out
	ErrCategoryConnection                      // No session, grid unreachable
	ErrCategoryConfig                          // Unknown browser, missing required option
	ErrCategoryUnknown                         // Error not produced by this package
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryAssertion:
		return "assertion"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryConnection:
		return "connection"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}

// MarshalText encodes the category by name.
func (c ErrorCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category written by MarshalText.
func (c *ErrorCategory) UnmarshalText(text []byte) error {
	for cat := ErrCategoryNone; cat <= ErrCategoryUnknown; cat++ {
		if cat.String() == string(text) {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown error category %q", text)
}

// StatusForError maps a failed step's error to Failed (assertions) or Errored.
func StatusForError(err error) StepStatus {
	if err == nil {
		return StatusPassed
	}
	if CategoryOf(err) == ErrCategoryAssertion {
		return StatusFailed
	}
	return StatusErrored
}
