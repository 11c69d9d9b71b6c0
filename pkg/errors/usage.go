package errors

import (
	"fmt"
	"time"
)

// UsageError represents a caller contract violation detected by an edit engine.
//
// It wraps a sentinel cause with the context needed to find the offending
// call site: the operation being performed, the engine that rejected it and
// the command being declared at the time (if any).
type UsageError struct {
	Operation  string                 // What operation was being performed
	EngineID   string                 // Which engine
	Command    string                 // Innermost declaring command (if applicable)
	Timestamp  time.Time              // When error occurred
	Attributes map[string]interface{} // Additional context (optional)
	Cause      error                  // Underlying error
}

// NewUsageError creates a UsageError wrapping cause.
//
// Returns nil if cause is nil (no error to wrap).
//
// Example:
//
//	if len(e.nesting) == 0 {
//	    return NewUsageError("complete command", e.ID(), "", ErrNoOpenCommand)
//	}
func NewUsageError(operation, engineID, command string, cause error) *UsageError {
	if cause == nil {
		return nil
	}

	return &UsageError{
		Operation: operation,
		EngineID:  engineID,
		Command:   command,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

// NewUsageErrorWithAttrs creates a UsageError with additional attributes.
//
// Returns nil if cause is nil (no error to wrap).
func NewUsageErrorWithAttrs(operation, engineID, command string, cause error, attrs map[string]interface{}) *UsageError {
	err := NewUsageError(operation, engineID, command, cause)
	if err == nil {
		return nil
	}
	err.Attributes = attrs
	return err
}

// Error implements the error interface.
//
// Format: "operation: engine={id} command={name}: {cause}"
// If command is empty, it's omitted from the message.
func (e *UsageError) Error() string {
	if e == nil {
		return "<nil UsageError>"
	}

	if e.Command != "" {
		return fmt.Sprintf("%s: engine=%s command=%q: %v", e.Operation, e.EngineID, e.Command, e.Cause)
	}
	return fmt.Sprintf("%s: engine=%s: %v", e.Operation, e.EngineID, e.Cause)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *UsageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
