package opcode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInverse_Involution(t *testing.T) {
	for _, v := range []Vocabulary{Sequence, Map} {
		for _, c := range Codes(v) {
			inv, err := Inverse(c, v)
			require.NoError(t, err, "code %s in %s", c, v)

			back, err := Inverse(inv, v)
			require.NoError(t, err)
			assert.Equal(t, c, back, "inverse of inverse of %s in %s", Name(c, v), v)
		}
	}
}

func TestInverse_Pairs(t *testing.T) {
	tests := []struct {
		name string
		code Code
		voc  Vocabulary
		want Code
	}{
		{"sequence add", SeqAdd, Sequence, SeqRemove},
		{"sequence clear", SeqClear, Sequence, SeqPopulate},
		{"sequence insert", SeqInsert, Sequence, SeqRemoveAt},
		{"sequence set is self inverse", SeqSet, Sequence, SeqSet},
		{"sequence resize is self inverse", SeqResize, Sequence, SeqResize},
		{"map add", MapAdd, Map, MapRemove},
		{"map populate", MapPopulate, Map, MapClear},
		{"map key add", MapKeyAdd, Map, MapKeyRemove},
		{"map key set is self inverse", MapKeySet, Map, MapKeySet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Inverse(tt.code, tt.voc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInverse_UnknownCode(t *testing.T) {
	_, err := Inverse('Q', Sequence)
	assert.True(t, errors.Is(err, ErrUnknownCode))

	// Resize only exists for sequences.
	_, err = Inverse(SeqResize, Map)
	assert.True(t, errors.Is(err, ErrUnknownCode))

	_, err = Inverse(SeqAdd, Vocabulary(9))
	assert.True(t, errors.Is(err, ErrUnknownCode))

	assert.Panics(t, func() { MustInverse('Q', Map) })
}

func TestName(t *testing.T) {
	assert.Equal(t, "RemoveAt", Name(SeqRemoveAt, Sequence))
	assert.Equal(t, "KeyRemove", Name(MapKeyRemove, Map))
	assert.Equal(t, "Q", Name('Q', Map))
	assert.True(t, Valid(MapKeySet, Map))
	assert.False(t, Valid(MapKeyAdd, Sequence))
}
