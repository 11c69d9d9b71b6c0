package engine

import "github.com/dshills/goundo/pkg/opcode"

// Property is the read/write capability of one field of an entity type.
//
// Write must assign the value without going back through the engine; the
// engine calls it while replaying, after it has recorded the inverse itself.
type Property interface {
	// Name identifies the field, for diagnostics only.
	Name() string
	// Read returns the current value of the field on instance.
	Read(instance any) any
	// Write assigns value to the field on instance.
	Write(instance any, value any) error
	// ChangesExistenceStatus reports whether editing this field marks the
	// document as modified.
	ChangesExistenceStatus() bool
}

// Collection is an editable container attached to an owning entity.
//
// Apply performs a mutation without notifying the engine. InverseParameters
// is asked before the mutation runs and returns the parameters that make
// the inverse op-code restore the current state.
type Collection interface {
	Vocabulary() opcode.Vocabulary
	Apply(op opcode.Code, params []any) error
	InverseParameters(op opcode.Code, params []any) ([]any, error)
	// Owner returns the entity the collection belongs to.
	Owner() any
	ChangesExistenceStatus() bool
}
