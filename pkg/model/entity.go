// Package model provides the building blocks entities use to take part in
// edit engine history: a binding to an engine, typed field accessors and
// editable sequence and map collections.
//
// Every intercepted write goes through the entity's bound engine before it
// takes effect. Unbound entities (for instance while being loaded) are
// edited directly and nothing is recorded.
package model

import (
	"errors"

	"github.com/dshills/goundo/pkg/engine"
)

var (
	// ErrTypeMismatch is returned when a stored value does not fit the field or collection type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrIndexOutOfRange is returned when a sequence index is invalid.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNotFound is returned when an item or key is missing.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned when adding a key that already exists.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrBadParameters is returned when a mutation receives malformed parameters.
	ErrBadParameters = errors.New("bad mutation parameters")
)

// Editable is implemented by entities that may be bound to an edit engine.
type Editable interface {
	Editor() *engine.Engine
}

// Entity is embedded by editable entity types.
type Entity struct {
	editor *engine.Engine
}

// Bind attaches the entity to e. A nil engine detaches it.
func (x *Entity) Bind(e *engine.Engine) {
	x.editor = e
}

// Editor returns the bound engine, or nil.
func (x *Entity) Editor() *engine.Engine {
	if x == nil {
		return nil
	}
	return x.editor
}
