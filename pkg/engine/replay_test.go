package engine_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/goundo/internal/logging"
	"github.com/dshills/goundo/pkg/engine"
	"github.com/dshills/goundo/pkg/opcode"
)

// reentrant is a property whose writes try to re-enter the engine.
type reentrant struct {
	ed      *engine.Engine
	results []bool
	modes   []engine.Mode
}

func (p *reentrant) Name() string                 { return "probe" }
func (p *reentrant) Read(any) any                 { return nil }
func (p *reentrant) ChangesExistenceStatus() bool { return false }

func (p *reentrant) Write(any, any) error {
	p.modes = append(p.modes, p.ed.Mode())
	undone, err := p.ed.UndoLast()
	if err != nil {
		return err
	}
	redone, err := p.ed.RedoLast()
	if err != nil {
		return err
	}
	p.results = append(p.results, undone, redone)
	return nil
}

func TestUndo_SoftNoOps(t *testing.T) {
	t.Run("engine not started", func(t *testing.T) {
		ed := engine.New()
		ok, err := ed.UndoLast()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("empty history", func(t *testing.T) {
		ed, _ := newRunning(t)
		ok, err := ed.UndoLast()
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = ed.RedoLast()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("redo while declaring", func(t *testing.T) {
		ed, s := newRunning(t)
		rename(t, ed, s, "x")
		_, err := ed.UndoLast()
		require.NoError(t, err)

		ed.StartCommand("open")
		ok, err := ed.RedoLast()
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 1, ed.RedoDepth())
	})

	t.Run("declaring without nested command and no history", func(t *testing.T) {
		ed, s := newRunning(t)
		ed.StartCommand("open")
		require.NoError(t, nameField.Set(s, "x"))

		ok, err := ed.UndoLast()
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, "x", s.Name)
	})
}

func TestUndo_Reentrancy(t *testing.T) {
	ed, _ := newRunning(t)
	p := &reentrant{ed: ed}

	ed.StartCommand("reenter")
	require.NoError(t, ed.RecordAssignment(p, nil, nil))
	_, err := ed.CompleteCommand(false)
	require.NoError(t, err)

	ok, err := ed.UndoLast()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []engine.Mode{engine.ModeUndoing}, p.modes)
	assert.Equal(t, []bool{false, false}, p.results)
	assert.Equal(t, engine.ModeIdle, ed.Mode())

	ok, err = ed.RedoLast()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []engine.Mode{engine.ModeUndoing, engine.ModeRedoing}, p.modes)
	assert.Equal(t, []bool{false, false, false, false}, p.results)
}

func TestUndo_WithoutRedoCapture(t *testing.T) {
	ed, s := newRunning(t)
	rename(t, ed, s, "x")

	ok, err := ed.Undo(false, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "orig", s.Name)
	assert.False(t, ed.HasRedoableVariations())
	assert.Equal(t, engine.StatusRunning, ed.Status())
}

func TestRedo_WithoutUndoCapture(t *testing.T) {
	ed, s := newRunning(t)
	rename(t, ed, s, "x")
	_, err := ed.UndoLast()
	require.NoError(t, err)

	ok, err := ed.Redo(false, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "x", s.Name)
	assert.False(t, ed.HasUndoableVariations())
}

func TestUndo_RepeatedRoundTrips(t *testing.T) {
	ed, s := newRunning(t)
	_, err := ed.Do("grow", func() error {
		require.NoError(t, s.Points.Populate(4, 5))
		return s.Points.Set(0, 10)
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := ed.UndoLast()
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, s.Points.Items())

		_, err = ed.RedoLast()
		require.NoError(t, err)
		assert.Equal(t, []int{10, 2, 3, 4, 5}, s.Points.Items())
	}

	cmd, ok := ed.NextUndo()
	require.True(t, ok)
	assert.Equal(t, "grow", cmd.Name)
}

func TestUndo_CaptureKeepsCommandIdentity(t *testing.T) {
	ed, s := newRunning(t)
	rename(t, ed, s, "x")
	original, _ := ed.NextUndo()

	_, err := ed.UndoLast()
	require.NoError(t, err)
	captured, ok := ed.NextRedo()
	require.True(t, ok)

	assert.Equal(t, original.ID, captured.ID)
	assert.Equal(t, original.Name, captured.Name)
	assert.NotSame(t, original, captured)
}

func TestUndo_StepsIntoNestedCommand(t *testing.T) {
	ed, s := newRunning(t)
	rename(t, ed, s, "before")
	require.Equal(t, 1, ed.UndoDepth())

	ed.StartCommand("outer")
	_, err := ed.Do("inner", func() error { return widthField.Set(s, 42) })
	require.NoError(t, err)
	require.Len(t, ed.Declaring().Children, 1)

	ok, err := ed.UndoLast()
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 1, s.Width)
	assert.Empty(t, ed.Declaring().Children)
	assert.Equal(t, 1, ed.UndoDepth(), "history is not touched")
	assert.False(t, ed.HasRedoableVariations(), "a step-into undo cannot be redone")
	assert.Equal(t, engine.StatusRunning, ed.Status())

	cmd, err := ed.CompleteCommand(false)
	require.NoError(t, err)
	assert.Nil(t, cmd)
}

func TestUndo_StepIntoRequiresNestedCommand(t *testing.T) {
	ed, s := newRunning(t)
	rename(t, ed, s, "before")

	ed.StartCommand("outer")
	require.NoError(t, widthField.Set(s, 3))

	ok, err := ed.UndoLast()
	assert.False(t, ok)
	assert.ErrorIs(t, err, engine.ErrNoNestedCommand)
	assert.Equal(t, 3, s.Width)
	assert.Equal(t, 1, ed.UndoDepth())
}

func TestUndo_FailedReplayRestoresIdle(t *testing.T) {
	ed, s := newRunning(t)
	_, err := ed.Do("append", func() error { return s.Points.Add(4) })
	require.NoError(t, err)

	// Edit behind the engine's back so the recorded inverse no longer fits.
	require.NoError(t, s.Points.Apply(opcode.SeqClear, nil))

	ok, err := ed.UndoLast()
	assert.False(t, ok)
	require.Error(t, err)
	assert.Equal(t, engine.ModeIdle, ed.Mode())
	assert.Equal(t, 0, ed.NestingDepth())
	assert.False(t, ed.HasRedoableVariations())
	assert.Equal(t, 1, ed.UndoDepth(), "the command is put back")
}

func TestUndo_FailedReplayRollsBack(t *testing.T) {
	ed, s := newRunning(t)
	_, err := ed.Do("edit", func() error {
		require.NoError(t, s.Points.Add(4))
		return nameField.Set(s, "x")
	})
	require.NoError(t, err)

	// The name is restored first, then the list inverse fails.
	require.NoError(t, s.Points.Apply(opcode.SeqClear, nil))

	ok, err := ed.UndoLast()
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, "x", s.Name, "partial undo is rolled back")
	assert.Empty(t, s.Points.Items())
	assert.Equal(t, 1, ed.UndoDepth())
	assert.Equal(t, 0, ed.RedoDepth())
	assert.Equal(t, engine.StatusRunning, ed.Status())

	require.NoError(t, s.Points.Apply(opcode.SeqPopulate, []any{1, 2, 3, 4}))
	ok, err = ed.UndoLast()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "orig", s.Name)
	assert.Equal(t, []int{1, 2, 3}, s.Points.Items())

	ok, err = ed.RedoLast()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "x", s.Name)
	assert.Equal(t, []int{1, 2, 3, 4}, s.Points.Items())
}

func TestRedo_FailedReplayKeepsCommand(t *testing.T) {
	ed, s := newRunning(t)
	_, err := ed.Do("edit", func() error {
		require.NoError(t, nameField.Set(s, "x"))
		return s.Points.RemoveAt(0)
	})
	require.NoError(t, err)
	_, err = ed.UndoLast()
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, s.Points.Items())

	require.NoError(t, s.Points.Apply(opcode.SeqClear, nil))

	ok, err := ed.RedoLast()
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, "orig", s.Name)
	assert.Equal(t, 1, ed.RedoDepth())
	assert.Equal(t, 0, ed.UndoDepth())
}

func TestUndo_StepIntoEmitsNestedAction(t *testing.T) {
	var events []engine.Event
	ed, s := newRunning(t, engine.WithListener(engine.ListenerFunc(func(ev engine.Event) {
		events = append(events, ev)
	})))

	ed.StartCommand("outer")
	_, err := ed.Do("inner", func() error { return widthField.Set(s, 42) })
	require.NoError(t, err)
	events = nil

	ok, err := ed.UndoLast()
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, events, 1)
	assert.Equal(t, engine.ActionNestedUndone, events[0].Action)
	assert.Empty(t, events[0].Stack)
	assert.Equal(t, "inner", events[0].Command.Name)
	assert.Equal(t, 0, events[0].UndoDepth)
}

func TestUndo_EchoLogging(t *testing.T) {
	var buf bytes.Buffer
	ed, s := newRunning(t, engine.WithLogger(logging.New(slog.LevelInfo, &buf)))

	rename(t, ed, s, "x")
	_, err := ed.UndoLast()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "undoing")
	assert.Contains(t, buf.String(), "command=rename")

	buf.Reset()
	_, err = ed.Redo(true, false)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "redoing")
}
