package engine

import "fmt"

// Status is the execution status of an engine.
// Only a Running engine records variations.
type Status int

const (
	StatusCreated Status = iota
	StatusRunning
	StatusPaused
	StatusStopped
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusStopped:
		return "stopped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Mode tells whether the engine is replaying history.
// Undoing and Redoing are mutually exclusive.
type Mode int

const (
	ModeIdle Mode = iota
	ModeUndoing
	ModeRedoing
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeUndoing:
		return "undoing"
	case ModeRedoing:
		return "redoing"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Existence is the document lifecycle marker maintained by the engine.
type Existence int

const (
	// ExistenceNew is a document that has never been saved nor edited.
	ExistenceNew Existence = iota
	// ExistenceModified is a document with unsaved edits.
	ExistenceModified
	// ExistenceSaved is a document whose edits have been persisted.
	ExistenceSaved
)

// String returns the existence name.
func (x Existence) String() string {
	switch x {
	case ExistenceNew:
		return "new"
	case ExistenceModified:
		return "modified"
	case ExistenceSaved:
		return "saved"
	default:
		return fmt.Sprintf("existence(%d)", int(x))
	}
}
