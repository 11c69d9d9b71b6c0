// Package opcode defines the closed mutation vocabularies understood by
// editable collections and the fixed inverse mapping between their codes.
//
// Every code pairs with exactly one inverse inside its vocabulary, and the
// mapping is an involution: Inverse(Inverse(c)) == c. Set, KeySet and Resize
// are their own inverses.
package opcode

import (
	"errors"
	"fmt"
)

// ErrUnknownCode is returned when a code is not part of the requested vocabulary.
var ErrUnknownCode = errors.New("unknown op-code")

// Code is the single-character tag of a collection mutation.
type Code byte

// String returns the code as a one-character string.
func (c Code) String() string {
	return string(rune(c))
}

// Vocabulary identifies the family of mutations a collection understands.
type Vocabulary int

const (
	// Sequence is the vocabulary of ordered, index-addressable collections.
	Sequence Vocabulary = iota
	// Map is the vocabulary of key-addressed collections.
	Map
)

// String returns the vocabulary name.
func (v Vocabulary) String() string {
	switch v {
	case Sequence:
		return "sequence"
	case Map:
		return "map"
	default:
		return fmt.Sprintf("vocabulary(%d)", int(v))
	}
}

// Sequence op-codes.
const (
	SeqAdd      Code = 'A'
	SeqRemove   Code = 'R'
	SeqInsert   Code = 'I'
	SeqRemoveAt Code = 'T'
	SeqSet      Code = 'S'
	SeqClear    Code = 'C'
	SeqPopulate Code = 'P'
	SeqResize   Code = 'Z'
)

// Map op-codes.
const (
	MapAdd       Code = 'A'
	MapRemove    Code = 'R'
	MapKeyAdd    Code = 'K'
	MapKeyRemove Code = 'D'
	MapKeySet    Code = 'S'
	MapClear     Code = 'C'
	MapPopulate  Code = 'P'
)

var sequenceInverse = map[Code]Code{
	SeqAdd:      SeqRemove,
	SeqRemove:   SeqAdd,
	SeqClear:    SeqPopulate,
	SeqPopulate: SeqClear,
	SeqInsert:   SeqRemoveAt,
	SeqRemoveAt: SeqInsert,
	SeqSet:      SeqSet,
	SeqResize:   SeqResize,
}

var mapInverse = map[Code]Code{
	MapAdd:       MapRemove,
	MapRemove:    MapAdd,
	MapClear:     MapPopulate,
	MapPopulate:  MapClear,
	MapKeyAdd:    MapKeyRemove,
	MapKeyRemove: MapKeyAdd,
	MapKeySet:    MapKeySet,
}

var sequenceNames = map[Code]string{
	SeqAdd:      "Add",
	SeqRemove:   "Remove",
	SeqInsert:   "Insert",
	SeqRemoveAt: "RemoveAt",
	SeqSet:      "Set",
	SeqClear:    "Clear",
	SeqPopulate: "Populate",
	SeqResize:   "Resize",
}

var mapNames = map[Code]string{
	MapAdd:       "Add",
	MapRemove:    "Remove",
	MapKeyAdd:    "KeyAdd",
	MapKeyRemove: "KeyRemove",
	MapKeySet:    "KeySet",
	MapClear:     "Clear",
	MapPopulate:  "Populate",
}

func table(v Vocabulary) (map[Code]Code, error) {
	switch v {
	case Sequence:
		return sequenceInverse, nil
	case Map:
		return mapInverse, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCode, v)
	}
}

// Inverse returns the code that undoes c within vocabulary v.
func Inverse(c Code, v Vocabulary) (Code, error) {
	t, err := table(v)
	if err != nil {
		return 0, err
	}
	inv, ok := t[c]
	if !ok {
		return 0, fmt.Errorf("%w: %q in %s vocabulary", ErrUnknownCode, c.String(), v)
	}
	return inv, nil
}

// MustInverse is like Inverse but panics on an unrecognized code.
func MustInverse(c Code, v Vocabulary) Code {
	inv, err := Inverse(c, v)
	if err != nil {
		panic(err)
	}
	return inv
}

// Valid reports whether c belongs to vocabulary v.
func Valid(c Code, v Vocabulary) bool {
	_, err := Inverse(c, v)
	return err == nil
}

// Name returns the human-readable operation name of c within v,
// or the raw code when it is not recognized.
func Name(c Code, v Vocabulary) string {
	var names map[Code]string
	switch v {
	case Sequence:
		names = sequenceNames
	case Map:
		names = mapNames
	}
	if n, ok := names[c]; ok {
		return n
	}
	return c.String()
}

// Codes lists every code of vocabulary v in a stable order.
func Codes(v Vocabulary) []Code {
	switch v {
	case Sequence:
		return []Code{SeqAdd, SeqRemove, SeqInsert, SeqRemoveAt, SeqSet, SeqClear, SeqPopulate, SeqResize}
	case Map:
		return []Code{MapAdd, MapRemove, MapKeyAdd, MapKeyRemove, MapKeySet, MapClear, MapPopulate}
	default:
		return nil
	}
}
