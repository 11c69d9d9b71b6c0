package engine

import (
	"errors"

	goerrors "github.com/dshills/goundo/pkg/errors"
)

// Usage errors. They are always returned wrapped in *errors.UsageError.
var (
	// ErrNoOpenCommand is returned when completing or discarding with no command being declared.
	ErrNoOpenCommand = errors.New("no command is being declared")
	// ErrEngineMismatch is returned when an engine records while another engine is active.
	ErrEngineMismatch = errors.New("engine is not the active engine")
	// ErrNotReplaying is returned when a command is executed outside undo or redo.
	ErrNotReplaying = errors.New("command executed outside undo/redo")
	// ErrEmptyCommand is returned when an empty command is executed.
	ErrEmptyCommand = errors.New("command has no variations")
	// ErrNoNestedCommand is returned when undo steps into a declaring command
	// whose last child is not a command.
	ErrNoNestedCommand = errors.New("declaring command has no nested command to undo")
	// ErrNilTarget is returned when a variation has no property or collection.
	ErrNilTarget = errors.New("variation has no target")
)

func (e *Engine) usageError(operation string, cause error) error {
	command := ""
	if top := e.Declaring(); top != nil {
		command = top.Name
	}
	return goerrors.NewUsageError(operation, e.id, command, cause)
}

func (e *Engine) usageErrorWithAttrs(operation string, cause error, attrs map[string]interface{}) error {
	command := ""
	if top := e.Declaring(); top != nil {
		command = top.Name
	}
	return goerrors.NewUsageErrorWithAttrs(operation, e.id, command, cause, attrs)
}
