package model

import (
	"fmt"

	"github.com/dshills/goundo/pkg/engine"
	"github.com/dshills/goundo/pkg/opcode"
)

// Pair is one key/value entry of a Dict.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Dict is an editable map owned by an entity.
//
// Mutation parameters by op-code:
//
//	Add       [Pair]      key must be absent
//	Remove    [Pair]      key must be present
//	KeyAdd    [key, value] key must be absent
//	KeyRemove [key]       key must be present
//	KeySet    [key, value] sets, [key] deletes
//	Clear     [keys...]   removes the listed keys, absent keys are skipped
//	Populate  [Pair...]   keys must be absent
type Dict[K comparable, V any] struct {
	owner            Editable
	entries          map[K]V
	changesExistence bool
}

// NewDict creates a dict owned by owner holding a copy of entries.
func NewDict[K comparable, V any](owner Editable, entries map[K]V) *Dict[K, V] {
	d := &Dict[K, V]{
		owner:            owner,
		entries:          make(map[K]V, len(entries)),
		changesExistence: true,
	}
	for k, v := range entries {
		d.entries[k] = v
	}
	return d
}

// Len returns the number of entries.
func (d *Dict[K, V]) Len() int { return len(d.entries) }

// Get returns the value stored under key.
func (d *Dict[K, V]) Get(key K) (V, bool) {
	v, ok := d.entries[key]
	return v, ok
}

// Has reports whether key is present.
func (d *Dict[K, V]) Has(key K) bool {
	_, ok := d.entries[key]
	return ok
}

// Map returns a copy of the entries.
func (d *Dict[K, V]) Map() map[K]V {
	m := make(map[K]V, len(d.entries))
	for k, v := range d.entries {
		m[k] = v
	}
	return m
}

// Keys returns the keys in unspecified order.
func (d *Dict[K, V]) Keys() []K {
	keys := make([]K, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	return keys
}

// AddPair adds an entry whose key must be absent.
func (d *Dict[K, V]) AddPair(p Pair[K, V]) error {
	return d.mutate(opcode.MapAdd, p)
}

// RemovePair removes the entry for p.Key.
func (d *Dict[K, V]) RemovePair(p Pair[K, V]) error {
	return d.mutate(opcode.MapRemove, p)
}

// Add adds key with value. The key must be absent.
func (d *Dict[K, V]) Add(key K, value V) error {
	return d.mutate(opcode.MapKeyAdd, key, value)
}

// Delete removes key and reports whether it was present.
func (d *Dict[K, V]) Delete(key K) (bool, error) {
	if !d.Has(key) {
		return false, nil
	}
	return true, d.mutate(opcode.MapKeyRemove, key)
}

// Set stores value under key, adding the key if needed.
func (d *Dict[K, V]) Set(key K, value V) error {
	return d.mutate(opcode.MapKeySet, key, value)
}

// Clear removes every entry.
func (d *Dict[K, V]) Clear() error {
	if len(d.entries) == 0 {
		return nil
	}
	keys := make([]any, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	return d.mutate(opcode.MapClear, keys...)
}

// Populate adds entries whose keys must all be absent.
func (d *Dict[K, V]) Populate(pairs ...Pair[K, V]) error {
	if len(pairs) == 0 {
		return nil
	}
	params := make([]any, len(pairs))
	for i, p := range pairs {
		params[i] = p
	}
	return d.mutate(opcode.MapPopulate, params...)
}

func (d *Dict[K, V]) mutate(op opcode.Code, params ...any) error {
	if d.owner != nil {
		if ed := d.owner.Editor(); ed != nil {
			if err := ed.RecordMutation(d, op, params); err != nil {
				return err
			}
		}
	}
	return d.Apply(op, params)
}

// Vocabulary implements engine.Collection.
func (d *Dict[K, V]) Vocabulary() opcode.Vocabulary { return opcode.Map }

// Owner implements engine.Collection.
func (d *Dict[K, V]) Owner() any { return d.owner }

// ChangesExistenceStatus implements engine.Collection.
func (d *Dict[K, V]) ChangesExistenceStatus() bool { return d.changesExistence }

// Cosmetic flags the dict so that edits do not mark the document as modified.
func (d *Dict[K, V]) Cosmetic() *Dict[K, V] {
	d.changesExistence = false
	return d
}

// Apply implements engine.Collection. It never records.
func (d *Dict[K, V]) Apply(op opcode.Code, params []any) error {
	switch op {
	case opcode.MapAdd:
		p, err := pairParam[K, V](params, 0)
		if err != nil {
			return err
		}
		return d.add(p.Key, p.Value)

	case opcode.MapRemove:
		p, err := pairParam[K, V](params, 0)
		if err != nil {
			return err
		}
		return d.remove(p.Key)

	case opcode.MapKeyAdd:
		key, value, err := keyValueParams[K, V](params)
		if err != nil {
			return err
		}
		return d.add(key, value)

	case opcode.MapKeyRemove:
		key, err := keyParam[K](params, 0)
		if err != nil {
			return err
		}
		return d.remove(key)

	case opcode.MapKeySet:
		key, err := keyParam[K](params, 0)
		if err != nil {
			return err
		}
		if len(params) < 2 {
			delete(d.entries, key)
			return nil
		}
		value, err := itemParam[V](params, 1)
		if err != nil {
			return err
		}
		d.entries[key] = value

	case opcode.MapClear:
		keys, err := keysParam[K](params)
		if err != nil {
			return err
		}
		for _, k := range keys {
			delete(d.entries, k)
		}

	case opcode.MapPopulate:
		pairs, err := d.populatePairs(params)
		if err != nil {
			return err
		}
		for _, p := range pairs {
			d.entries[p.Key] = p.Value
		}

	default:
		return fmt.Errorf("%w: %q in map vocabulary", opcode.ErrUnknownCode, op.String())
	}
	return nil
}

// InverseParameters implements engine.Collection. It must be called before
// the mutation is applied.
func (d *Dict[K, V]) InverseParameters(op opcode.Code, params []any) ([]any, error) {
	switch op {
	case opcode.MapAdd:
		p, err := pairParam[K, V](params, 0)
		if err != nil {
			return nil, err
		}
		if d.Has(p.Key) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateKey, p.Key)
		}
		return []any{p}, nil

	case opcode.MapRemove:
		p, err := pairParam[K, V](params, 0)
		if err != nil {
			return nil, err
		}
		current, ok := d.entries[p.Key]
		if !ok {
			return nil, fmt.Errorf("%w: key %v", ErrNotFound, p.Key)
		}
		return []any{Pair[K, V]{Key: p.Key, Value: current}}, nil

	case opcode.MapKeyAdd:
		key, _, err := keyValueParams[K, V](params)
		if err != nil {
			return nil, err
		}
		if d.Has(key) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateKey, key)
		}
		return []any{key}, nil

	case opcode.MapKeyRemove:
		key, err := keyParam[K](params, 0)
		if err != nil {
			return nil, err
		}
		current, ok := d.entries[key]
		if !ok {
			return nil, fmt.Errorf("%w: key %v", ErrNotFound, key)
		}
		return []any{key, current}, nil

	case opcode.MapKeySet:
		key, err := keyParam[K](params, 0)
		if err != nil {
			return nil, err
		}
		if current, ok := d.entries[key]; ok {
			return []any{key, current}, nil
		}
		return []any{key}, nil

	case opcode.MapClear:
		keys, err := keysParam[K](params)
		if err != nil {
			return nil, err
		}
		restore := make([]any, 0, len(keys))
		for _, k := range keys {
			if v, ok := d.entries[k]; ok {
				restore = append(restore, Pair[K, V]{Key: k, Value: v})
			}
		}
		return restore, nil

	case opcode.MapPopulate:
		pairs, err := d.populatePairs(params)
		if err != nil {
			return nil, err
		}
		keys := make([]any, len(pairs))
		for i, p := range pairs {
			keys[i] = p.Key
		}
		return keys, nil

	default:
		return nil, fmt.Errorf("%w: %q in map vocabulary", opcode.ErrUnknownCode, op.String())
	}
}

func (d *Dict[K, V]) add(key K, value V) error {
	if d.Has(key) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, key)
	}
	d.entries[key] = value
	return nil
}

func (d *Dict[K, V]) remove(key K) error {
	if !d.Has(key) {
		return fmt.Errorf("%w: key %v", ErrNotFound, key)
	}
	delete(d.entries, key)
	return nil
}

// populatePairs decodes Populate parameters and checks every key is absent.
func (d *Dict[K, V]) populatePairs(params []any) ([]Pair[K, V], error) {
	pairs := make([]Pair[K, V], 0, len(params))
	seen := make(map[K]bool, len(params))
	for i := range params {
		p, err := pairParam[K, V](params, i)
		if err != nil {
			return nil, err
		}
		if d.Has(p.Key) || seen[p.Key] {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateKey, p.Key)
		}
		seen[p.Key] = true
		pairs = append(pairs, p)
	}
	return pairs, nil
}

var _ engine.Collection = (*Dict[string, int])(nil)

func pairParam[K comparable, V any](params []any, pos int) (Pair[K, V], error) {
	if pos >= len(params) {
		return Pair[K, V]{}, fmt.Errorf("%w: missing pair at position %d", ErrBadParameters, pos)
	}
	p, ok := params[pos].(Pair[K, V])
	if !ok {
		return Pair[K, V]{}, fmt.Errorf("%w: expected %T, got %T", ErrBadParameters, Pair[K, V]{}, params[pos])
	}
	return p, nil
}

func keyParam[K comparable](params []any, pos int) (K, error) {
	var zero K
	if pos >= len(params) {
		return zero, fmt.Errorf("%w: missing key", ErrBadParameters)
	}
	k, ok := params[pos].(K)
	if !ok {
		return zero, fmt.Errorf("%w: expected key %T, got %T", ErrBadParameters, zero, params[pos])
	}
	return k, nil
}

func keysParam[K comparable](params []any) ([]K, error) {
	keys := make([]K, 0, len(params))
	for i := range params {
		k, err := keyParam[K](params, i)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func keyValueParams[K comparable, V any](params []any) (K, V, error) {
	var zero V
	key, err := keyParam[K](params, 0)
	if err != nil {
		return key, zero, err
	}
	value, err := itemParam[V](params, 1)
	if err != nil {
		return key, zero, err
	}
	return key, value, nil
}
