package model

import (
	"fmt"

	"github.com/dshills/goundo/pkg/engine"
	"github.com/dshills/goundo/pkg/opcode"
)

// List is an editable sequence owned by an entity.
//
// Mutation parameters by op-code:
//
//	Add      [item] appends, [item, index] inserts at index
//	Remove   [item] removes the first occurrence, [item, index] removes at index
//	Insert   [index, item]
//	RemoveAt [index]
//	Set      [index, item]
//	Clear    [] empties the list, [keep] truncates it to keep items
//	Populate [items...] appends
//	Resize   [n, tail...] truncates to n, or grows to n filling from tail then zero values
type List[T comparable] struct {
	owner            Editable
	items            []T
	changesExistence bool
}

// NewList creates a list owned by owner holding a copy of items.
func NewList[T comparable](owner Editable, items ...T) *List[T] {
	return &List[T]{
		owner:            owner,
		items:            append([]T(nil), items...),
		changesExistence: true,
	}
}

// Len returns the number of items.
func (l *List[T]) Len() int { return len(l.items) }

// At returns the item at index i. It panics if i is out of range.
func (l *List[T]) At(i int) T { return l.items[i] }

// Items returns a copy of the items.
func (l *List[T]) Items() []T {
	return append([]T(nil), l.items...)
}

// IndexOf returns the index of the first occurrence of item, or -1.
func (l *List[T]) IndexOf(item T) int {
	for i, it := range l.items {
		if it == item {
			return i
		}
	}
	return -1
}

// Contains reports whether item is in the list.
func (l *List[T]) Contains(item T) bool {
	return l.IndexOf(item) >= 0
}

// Add appends item.
func (l *List[T]) Add(item T) error {
	return l.mutate(opcode.SeqAdd, item)
}

// Remove removes the first occurrence of item and reports whether it was found.
func (l *List[T]) Remove(item T) (bool, error) {
	idx := l.IndexOf(item)
	if idx < 0 {
		return false, nil
	}
	return true, l.mutate(opcode.SeqRemove, item, idx)
}

// Insert inserts item at index.
func (l *List[T]) Insert(index int, item T) error {
	return l.mutate(opcode.SeqInsert, index, item)
}

// RemoveAt removes the item at index.
func (l *List[T]) RemoveAt(index int) error {
	return l.mutate(opcode.SeqRemoveAt, index)
}

// Set replaces the item at index.
func (l *List[T]) Set(index int, item T) error {
	return l.mutate(opcode.SeqSet, index, item)
}

// Clear removes every item.
func (l *List[T]) Clear() error {
	if len(l.items) == 0 {
		return nil
	}
	return l.mutate(opcode.SeqClear)
}

// Populate appends items.
func (l *List[T]) Populate(items ...T) error {
	if len(items) == 0 {
		return nil
	}
	params := make([]any, len(items))
	for i, it := range items {
		params[i] = it
	}
	return l.mutate(opcode.SeqPopulate, params...)
}

// Resize truncates the list or grows it with zero values.
func (l *List[T]) Resize(n int) error {
	return l.mutate(opcode.SeqResize, n)
}

func (l *List[T]) mutate(op opcode.Code, params ...any) error {
	if l.owner != nil {
		if ed := l.owner.Editor(); ed != nil {
			if err := ed.RecordMutation(l, op, params); err != nil {
				return err
			}
		}
	}
	return l.Apply(op, params)
}

// Vocabulary implements engine.Collection.
func (l *List[T]) Vocabulary() opcode.Vocabulary { return opcode.Sequence }

// Owner implements engine.Collection.
func (l *List[T]) Owner() any { return l.owner }

// ChangesExistenceStatus implements engine.Collection.
func (l *List[T]) ChangesExistenceStatus() bool { return l.changesExistence }

// Cosmetic flags the list so that edits do not mark the document as modified.
func (l *List[T]) Cosmetic() *List[T] {
	l.changesExistence = false
	return l
}

// Apply implements engine.Collection. It never records.
func (l *List[T]) Apply(op opcode.Code, params []any) error {
	switch op {
	case opcode.SeqAdd:
		item, err := itemParam[T](params, 0)
		if err != nil {
			return err
		}
		if len(params) > 1 {
			idx, err := l.indexParam(params, 1, true)
			if err != nil {
				return err
			}
			l.insert(idx, item)
			return nil
		}
		l.items = append(l.items, item)

	case opcode.SeqRemove:
		idx, err := l.removeIndex(params)
		if err != nil {
			return err
		}
		l.removeAt(idx)

	case opcode.SeqInsert:
		idx, err := l.indexParam(params, 0, true)
		if err != nil {
			return err
		}
		item, err := itemParam[T](params, 1)
		if err != nil {
			return err
		}
		l.insert(idx, item)

	case opcode.SeqRemoveAt:
		idx, err := l.indexParam(params, 0, false)
		if err != nil {
			return err
		}
		l.removeAt(idx)

	case opcode.SeqSet:
		idx, err := l.indexParam(params, 0, false)
		if err != nil {
			return err
		}
		item, err := itemParam[T](params, 1)
		if err != nil {
			return err
		}
		l.items[idx] = item

	case opcode.SeqClear:
		keep := 0
		if len(params) > 0 {
			k, err := l.indexParam(params, 0, true)
			if err != nil {
				return err
			}
			keep = k
		}
		l.truncate(keep)

	case opcode.SeqPopulate:
		items, err := itemsParam[T](params, 0)
		if err != nil {
			return err
		}
		l.items = append(l.items, items...)

	case opcode.SeqResize:
		n, err := sizeParam(params, 0)
		if err != nil {
			return err
		}
		tail, err := itemsParam[T](params, 1)
		if err != nil {
			return err
		}
		if n <= len(l.items) {
			l.truncate(n)
			return nil
		}
		grow := n - len(l.items)
		for i := 0; i < grow; i++ {
			var item T
			if i < len(tail) {
				item = tail[i]
			}
			l.items = append(l.items, item)
		}

	default:
		return fmt.Errorf("%w: %q in sequence vocabulary", opcode.ErrUnknownCode, op.String())
	}
	return nil
}

// InverseParameters implements engine.Collection. It must be called before
// the mutation is applied.
func (l *List[T]) InverseParameters(op opcode.Code, params []any) ([]any, error) {
	switch op {
	case opcode.SeqAdd:
		item, err := itemParam[T](params, 0)
		if err != nil {
			return nil, err
		}
		idx := len(l.items)
		if len(params) > 1 {
			if idx, err = l.indexParam(params, 1, true); err != nil {
				return nil, err
			}
		}
		return []any{item, idx}, nil

	case opcode.SeqRemove:
		idx, err := l.removeIndex(params)
		if err != nil {
			return nil, err
		}
		return []any{l.items[idx], idx}, nil

	case opcode.SeqInsert:
		idx, err := l.indexParam(params, 0, true)
		if err != nil {
			return nil, err
		}
		return []any{idx}, nil

	case opcode.SeqRemoveAt, opcode.SeqSet:
		idx, err := l.indexParam(params, 0, false)
		if err != nil {
			return nil, err
		}
		return []any{idx, l.items[idx]}, nil

	case opcode.SeqClear:
		keep := 0
		if len(params) > 0 {
			k, err := l.indexParam(params, 0, true)
			if err != nil {
				return nil, err
			}
			keep = k
		}
		removed := make([]any, 0, len(l.items)-keep)
		for _, it := range l.items[keep:] {
			removed = append(removed, it)
		}
		return removed, nil

	case opcode.SeqPopulate:
		return []any{len(l.items)}, nil

	case opcode.SeqResize:
		n, err := sizeParam(params, 0)
		if err != nil {
			return nil, err
		}
		inverse := []any{len(l.items)}
		if n < len(l.items) {
			for _, it := range l.items[n:] {
				inverse = append(inverse, it)
			}
		}
		return inverse, nil

	default:
		return nil, fmt.Errorf("%w: %q in sequence vocabulary", opcode.ErrUnknownCode, op.String())
	}
}

// removeIndex resolves the index targeted by Remove parameters.
func (l *List[T]) removeIndex(params []any) (int, error) {
	item, err := itemParam[T](params, 0)
	if err != nil {
		return 0, err
	}
	if len(params) > 1 {
		idx, err := l.indexParam(params, 1, false)
		if err != nil {
			return 0, err
		}
		if l.items[idx] != item {
			return 0, fmt.Errorf("%w: item %v is not at index %d", ErrNotFound, item, idx)
		}
		return idx, nil
	}
	idx := l.IndexOf(item)
	if idx < 0 {
		return 0, fmt.Errorf("%w: item %v", ErrNotFound, item)
	}
	return idx, nil
}

// indexParam reads params[pos] as an index. With inclusive, len(items) is allowed.
func (l *List[T]) indexParam(params []any, pos int, inclusive bool) (int, error) {
	if pos >= len(params) {
		return 0, fmt.Errorf("%w: missing index at position %d", ErrBadParameters, pos)
	}
	idx, ok := params[pos].(int)
	if !ok {
		return 0, fmt.Errorf("%w: index must be int, got %T", ErrBadParameters, params[pos])
	}
	limit := len(l.items)
	if !inclusive {
		limit--
	}
	if idx < 0 || idx > limit {
		return 0, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, idx, len(l.items))
	}
	return idx, nil
}

func (l *List[T]) insert(idx int, item T) {
	var zero T
	l.items = append(l.items, zero)
	copy(l.items[idx+1:], l.items[idx:])
	l.items[idx] = item
}

func (l *List[T]) removeAt(idx int) {
	var zero T
	copy(l.items[idx:], l.items[idx+1:])
	l.items[len(l.items)-1] = zero
	l.items = l.items[:len(l.items)-1]
}

func (l *List[T]) truncate(n int) {
	var zero T
	for i := n; i < len(l.items); i++ {
		l.items[i] = zero
	}
	l.items = l.items[:n]
}

var _ engine.Collection = (*List[int])(nil)

func itemParam[T any](params []any, pos int) (T, error) {
	if pos >= len(params) {
		var zero T
		return zero, fmt.Errorf("%w: missing item at position %d", ErrBadParameters, pos)
	}
	return paramAs[T](params[pos])
}

func itemsParam[T any](params []any, from int) ([]T, error) {
	if from >= len(params) {
		return nil, nil
	}
	items := make([]T, 0, len(params)-from)
	for _, p := range params[from:] {
		it, err := paramAs[T](p)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func sizeParam(params []any, pos int) (int, error) {
	if pos >= len(params) {
		return 0, fmt.Errorf("%w: missing size", ErrBadParameters)
	}
	n, ok := params[pos].(int)
	if !ok || n < 0 {
		return 0, fmt.Errorf("%w: size must be a non-negative int, got %v", ErrBadParameters, params[pos])
	}
	return n, nil
}
