package model_test

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/goundo/pkg/engine"
	"github.com/dshills/goundo/pkg/model"
	"github.com/dshills/goundo/pkg/opcode"
)

type note struct {
	model.Entity
	Title string
	Color string
	Tags  *model.List[string]
	Attrs *model.Dict[string, int]
}

var (
	titleField = model.NewField("Title",
		func(n *note) string { return n.Title },
		func(n *note, v string) { n.Title = v })
	colorField = model.NewField("Color",
		func(n *note) string { return n.Color },
		func(n *note, v string) { n.Color = v }).Cosmetic()
)

func newNote(t *testing.T) (*note, *engine.Engine) {
	t.Helper()
	n := &note{Title: "draft"}
	n.Tags = model.NewList[string](n, "a", "b", "c")
	n.Attrs = model.NewDict(n, map[string]int{"x": 1, "y": 2})

	ed := engine.New(engine.WithName("notes"))
	ed.Start()
	n.Bind(ed)
	return n, ed
}

func sortedKeys(d *model.Dict[string, int]) []string {
	keys := d.Keys()
	sort.Strings(keys)
	return keys
}

func TestField_UnboundWritesAreNotRecorded(t *testing.T) {
	n := &note{}
	require.NoError(t, titleField.Set(n, "plain"))
	assert.Equal(t, "plain", n.Title)
	assert.Nil(t, n.Editor())
}

func TestField_SetOutsideCommandIsNotRecorded(t *testing.T) {
	n, ed := newNote(t)

	require.NoError(t, titleField.Set(n, "loose"))

	assert.Equal(t, "loose", n.Title)
	assert.False(t, ed.HasUndoableVariations())
	assert.Equal(t, engine.ExistenceNew, ed.Existence())
}

func TestField_RoundTrip(t *testing.T) {
	n, ed := newNote(t)

	_, err := ed.Do("retitle", func() error {
		return titleField.Set(n, "final")
	})
	require.NoError(t, err)
	assert.Equal(t, engine.ExistenceModified, ed.Existence())

	ok, err := ed.UndoLast()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "draft", n.Title)

	ok, err = ed.RedoLast()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "final", n.Title)
}

func TestField_CosmeticDoesNotChangeExistence(t *testing.T) {
	n, ed := newNote(t)

	_, err := ed.Do("recolor", func() error {
		return colorField.Set(n, "blue")
	})
	require.NoError(t, err)

	assert.True(t, ed.HasUndoableVariations())
	assert.Equal(t, engine.ExistenceNew, ed.Existence())
	assert.False(t, colorField.ChangesExistenceStatus())
	assert.True(t, titleField.ChangesExistenceStatus())
}

func TestField_WriteRejectsWrongTypes(t *testing.T) {
	n := &note{}

	err := titleField.Write(n, 42)
	assert.True(t, errors.Is(err, model.ErrTypeMismatch))

	err = titleField.Write("not a note", "x")
	assert.True(t, errors.Is(err, model.ErrTypeMismatch))

	require.NoError(t, titleField.Write(n, nil))
	assert.Equal(t, "", n.Title)
	assert.Nil(t, titleField.Read("not a note"))
}

func TestList_RoundTripOfEveryOperation(t *testing.T) {
	tests := []struct {
		name string
		edit func(l *model.List[string]) error
		want []string
	}{
		{"add", func(l *model.List[string]) error { return l.Add("d") }, []string{"a", "b", "c", "d"}},
		{"remove", func(l *model.List[string]) error { _, err := l.Remove("b"); return err }, []string{"a", "c"}},
		{"insert", func(l *model.List[string]) error { return l.Insert(1, "z") }, []string{"a", "z", "b", "c"}},
		{"remove at", func(l *model.List[string]) error { return l.RemoveAt(0) }, []string{"b", "c"}},
		{"set", func(l *model.List[string]) error { return l.Set(2, "q") }, []string{"a", "b", "q"}},
		{"clear", func(l *model.List[string]) error { return l.Clear() }, []string{}},
		{"populate", func(l *model.List[string]) error { return l.Populate("d", "e") }, []string{"a", "b", "c", "d", "e"}},
		{"shrink", func(l *model.List[string]) error { return l.Resize(1) }, []string{"a"}},
		{"grow", func(l *model.List[string]) error { return l.Resize(5) }, []string{"a", "b", "c", "", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ed := newNote(t)
			before := n.Tags.Items()

			_, err := ed.Do(tt.name, func() error { return tt.edit(n.Tags) })
			require.NoError(t, err)
			after := n.Tags.Items()
			assert.ElementsMatch(t, tt.want, after)
			assert.Equal(t, len(tt.want), n.Tags.Len())

			ok, err := ed.UndoLast()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, before, n.Tags.Items())

			ok, err = ed.RedoLast()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, after, n.Tags.Items())
		})
	}
}

func TestList_AddThenRemoveInOneCommand(t *testing.T) {
	n, ed := newNote(t)
	before := n.Tags.Items()

	cmd, err := ed.Do("add and remove", func() error {
		if err := n.Tags.Add("d"); err != nil {
			return err
		}
		_, err := n.Tags.Remove("d")
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, cmd)
	require.Len(t, cmd.Children, 2)

	first, ok := cmd.Children[0].(*engine.Mutation)
	require.True(t, ok)
	second, ok := cmd.Children[1].(*engine.Mutation)
	require.True(t, ok)
	assert.Equal(t, opcode.SeqAdd, first.Op, "inverse of the remove replays first")
	assert.Equal(t, opcode.SeqRemove, second.Op, "inverse of the add replays last")

	ok, err = ed.UndoLast()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before, n.Tags.Items())
}

func TestList_RemoveDuplicateRestoresPosition(t *testing.T) {
	n, ed := newNote(t)
	require.NoError(t, n.Tags.Apply(opcode.SeqPopulate, []any{"a"}))
	before := n.Tags.Items()

	_, err := ed.Do("remove first a", func() error {
		found, err := n.Tags.Remove("a")
		assert.True(t, found)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, n.Tags.Items())

	_, err = ed.UndoLast()
	require.NoError(t, err)
	assert.Equal(t, before, n.Tags.Items())
}

func TestList_RemoveMissingItem(t *testing.T) {
	n, ed := newNote(t)

	cmd, err := ed.Do("remove missing", func() error {
		found, err := n.Tags.Remove("nope")
		assert.False(t, found)
		return err
	})
	require.NoError(t, err)
	assert.Nil(t, cmd)
	assert.False(t, ed.HasUndoableVariations())
}

func TestList_OutOfRangeIsRejectedBeforeRecording(t *testing.T) {
	n, ed := newNote(t)

	ed.StartCommand("bad insert")
	err := n.Tags.Insert(9, "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrIndexOutOfRange))
	assert.Empty(t, ed.Declaring().Children)
	require.NoError(t, ed.DiscardCommand())
	assert.Equal(t, []string{"a", "b", "c"}, n.Tags.Items())
}

func TestList_UnknownCode(t *testing.T) {
	l := model.NewList[int](nil, 1)

	err := l.Apply('K', nil)
	assert.True(t, errors.Is(err, opcode.ErrUnknownCode))

	_, err = l.InverseParameters('K', nil)
	assert.True(t, errors.Is(err, opcode.ErrUnknownCode))
}

func TestList_ClearKeepInverse(t *testing.T) {
	l := model.NewList[int](nil, 1, 2, 3, 4)

	inv, err := l.InverseParameters(opcode.SeqClear, []any{1})
	require.NoError(t, err)
	assert.Equal(t, []any{2, 3, 4}, inv)

	require.NoError(t, l.Apply(opcode.SeqClear, []any{1}))
	assert.Equal(t, []int{1}, l.Items())

	require.NoError(t, l.Apply(opcode.SeqPopulate, inv))
	assert.Equal(t, []int{1, 2, 3, 4}, l.Items())
}

func TestDict_RoundTripOfEveryOperation(t *testing.T) {
	tests := []struct {
		name string
		edit func(d *model.Dict[string, int]) error
		want map[string]int
	}{
		{"add pair", func(d *model.Dict[string, int]) error {
			return d.AddPair(model.Pair[string, int]{Key: "z", Value: 26})
		}, map[string]int{"x": 1, "y": 2, "z": 26}},
		{"remove pair", func(d *model.Dict[string, int]) error {
			return d.RemovePair(model.Pair[string, int]{Key: "x"})
		}, map[string]int{"y": 2}},
		{"key add", func(d *model.Dict[string, int]) error { return d.Add("w", 0) },
			map[string]int{"x": 1, "y": 2, "w": 0}},
		{"key delete", func(d *model.Dict[string, int]) error { _, err := d.Delete("y"); return err },
			map[string]int{"x": 1}},
		{"set existing", func(d *model.Dict[string, int]) error { return d.Set("x", 10) },
			map[string]int{"x": 10, "y": 2}},
		{"set new", func(d *model.Dict[string, int]) error { return d.Set("n", 5) },
			map[string]int{"x": 1, "y": 2, "n": 5}},
		{"clear", func(d *model.Dict[string, int]) error { return d.Clear() }, map[string]int{}},
		{"populate", func(d *model.Dict[string, int]) error {
			return d.Populate(model.Pair[string, int]{Key: "p", Value: 1}, model.Pair[string, int]{Key: "q", Value: 2})
		}, map[string]int{"x": 1, "y": 2, "p": 1, "q": 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ed := newNote(t)
			before := n.Attrs.Map()

			_, err := ed.Do(tt.name, func() error { return tt.edit(n.Attrs) })
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Attrs.Map())

			ok, err := ed.UndoLast()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, before, n.Attrs.Map())

			ok, err = ed.RedoLast()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, n.Attrs.Map())
		})
	}
}

func TestDict_DuplicateKeys(t *testing.T) {
	n, ed := newNote(t)

	ed.StartCommand("dup")
	err := n.Attrs.Add("x", 9)
	assert.True(t, errors.Is(err, model.ErrDuplicateKey))

	err = n.Attrs.Populate(model.Pair[string, int]{Key: "k", Value: 1}, model.Pair[string, int]{Key: "k", Value: 2})
	assert.True(t, errors.Is(err, model.ErrDuplicateKey))
	require.NoError(t, ed.DiscardCommand())

	assert.Equal(t, []string{"x", "y"}, sortedKeys(n.Attrs))
}

func TestDict_DeleteMissingKey(t *testing.T) {
	n, ed := newNote(t)

	cmd, err := ed.Do("delete missing", func() error {
		found, err := n.Attrs.Delete("nope")
		assert.False(t, found)
		return err
	})
	require.NoError(t, err)
	assert.Nil(t, cmd)
}

func TestDict_ClearSelectedKeys(t *testing.T) {
	d := model.NewDict(nil, map[string]int{"a": 1, "b": 2, "c": 3})

	inv, err := d.InverseParameters(opcode.MapClear, []any{"a", "c"})
	require.NoError(t, err)
	require.NoError(t, d.Apply(opcode.MapClear, []any{"a", "c"}))
	assert.Equal(t, map[string]int{"b": 2}, d.Map())

	require.NoError(t, d.Apply(opcode.MapPopulate, inv))
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3}, d.Map())
}

func TestDict_ClearAbsentKeysRoundTrip(t *testing.T) {
	n, ed := newNote(t)

	cmd, err := ed.Do("clear missing", func() error {
		params := []any{"missing"}
		if err := ed.RecordMutation(n.Attrs, opcode.MapClear, params); err != nil {
			return err
		}
		return n.Attrs.Apply(opcode.MapClear, params)
	})
	require.NoError(t, err)
	require.NotNil(t, cmd)
	want := map[string]int{"x": 1, "y": 2}
	assert.Equal(t, want, n.Attrs.Map())

	ok, err := ed.UndoLast()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, n.Attrs.Map())

	ok, err = ed.RedoLast()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, n.Attrs.Map(), "an empty clear removes nothing")

	require.NoError(t, n.Attrs.Apply(opcode.MapClear, nil))
	assert.Equal(t, want, n.Attrs.Map())
}

func TestDict_BadParameters(t *testing.T) {
	d := model.NewDict[string, int](nil, nil)

	err := d.Apply(opcode.MapKeyAdd, []any{1, 2})
	assert.True(t, errors.Is(err, model.ErrBadParameters))

	err = d.Apply(opcode.MapAdd, nil)
	assert.True(t, errors.Is(err, model.ErrBadParameters))

	err = d.Apply(opcode.SeqInsert, nil)
	assert.True(t, errors.Is(err, opcode.ErrUnknownCode))
}
