package model

import "fmt"

// Field is the explicit read/write capability of one field of entity type E.
// It implements engine.Property.
type Field[E Editable, V any] struct {
	name             string
	get              func(E) V
	set              func(E, V)
	changesExistence bool
}

// NewField creates a field accessor. Edits mark the document as modified.
func NewField[E Editable, V any](name string, get func(E) V, set func(E, V)) *Field[E, V] {
	return &Field[E, V]{
		name:             name,
		get:              get,
		set:              set,
		changesExistence: true,
	}
}

// Cosmetic returns the field flagged so that edits do not mark the document as modified.
func (f *Field[E, V]) Cosmetic() *Field[E, V] {
	f.changesExistence = false
	return f
}

// Name returns the field name.
func (f *Field[E, V]) Name() string { return f.name }

// ChangesExistenceStatus reports whether edits mark the document as modified.
func (f *Field[E, V]) ChangesExistenceStatus() bool { return f.changesExistence }

// Get returns the current value on entity.
func (f *Field[E, V]) Get(entity E) V {
	return f.get(entity)
}

// Set records the previous value with the entity's engine, then assigns value.
func (f *Field[E, V]) Set(entity E, value V) error {
	if ed := entity.Editor(); ed != nil {
		if err := ed.RecordAssignment(f, entity, f.get(entity)); err != nil {
			return err
		}
	}
	f.set(entity, value)
	return nil
}

// Read implements engine.Property.
func (f *Field[E, V]) Read(instance any) any {
	entity, ok := instance.(E)
	if !ok {
		return nil
	}
	return f.get(entity)
}

// Write implements engine.Property. It never records.
func (f *Field[E, V]) Write(instance any, value any) error {
	entity, ok := instance.(E)
	if !ok {
		return fmt.Errorf("%w: field %s cannot be written on %T", ErrTypeMismatch, f.name, instance)
	}
	v, err := paramAs[V](value)
	if err != nil {
		return fmt.Errorf("field %s: %w", f.name, err)
	}
	f.set(entity, v)
	return nil
}

// paramAs converts a stored value back to T. A nil value yields the zero value.
func paramAs[T any](value any) (T, error) {
	var zero T
	if value == nil {
		return zero, nil
	}
	v, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: expected %T, got %T", ErrTypeMismatch, zero, value)
	}
	return v, nil
}
