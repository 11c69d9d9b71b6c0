package engine

import (
	"errors"
	"fmt"
	"slices"
)

// Undo reverts the most recent command.
//
// It returns false without error when there is nothing to undo, when the
// engine is not running, or when another undo or redo is in flight.
//
// While a command is being declared, Undo steps into it instead: its last
// child must be a completed nested command, which is reverted and dropped.
// Such a step cannot be redone, so canRedo is forced to false, and it is
// reported as ActionNestedUndone since neither stack changes.
//
// If a variation fails, the changes already replayed are rolled back and
// the command is put back where it was taken from before the error is
// returned.
func (e *Engine) Undo(canRedo, echo bool) (bool, error) {
	if ok, err := e.acceptReplay("undo"); !ok {
		return false, err
	}

	top := e.Declaring()
	if top == nil {
		cmd, ok := e.undos.Pop()
		if !ok {
			e.logger.Debug("undo rejected: nothing to undo", "engine", e.name)
			return false, nil
		}
		if err := e.replay(cmd, ModeUndoing, canRedo, echo); err != nil {
			e.undos.Push(cmd)
			return false, err
		}
		e.emit(ActionUndone, cmd, StackUndo)
		return true, nil
	}

	nested, ok := top.lastCommand()
	if !ok {
		if e.undos.Empty() {
			e.logger.Debug("undo rejected: nothing to undo", "engine", e.name)
			return false, nil
		}
		return false, e.usageError("undo", ErrNoNestedCommand)
	}
	top.Children = top.Children[:len(top.Children)-1]
	if err := e.replay(nested, ModeUndoing, false, echo); err != nil {
		top.Children = append(top.Children, nested)
		return false, err
	}
	e.emit(ActionNestedUndone, nested, "")
	return true, nil
}

// Redo replays the most recently undone command.
//
// It returns false without error when the redo stack is empty, when the
// engine is not running, when another undo or redo is in flight, or when a
// command is being declared. A failed redo is rolled back like Undo.
func (e *Engine) Redo(canUndo, echo bool) (bool, error) {
	if ok, err := e.acceptReplay("redo"); !ok {
		return false, err
	}
	if e.Declaring() != nil {
		e.logger.Debug("redo rejected: command being declared", "engine", e.name, "command", e.Declaring().Name)
		return false, nil
	}

	cmd, ok := e.redos.Pop()
	if !ok {
		e.logger.Debug("redo rejected: nothing to redo", "engine", e.name)
		return false, nil
	}

	if err := e.replay(cmd, ModeRedoing, canUndo, echo); err != nil {
		e.redos.Push(cmd)
		return false, err
	}
	e.emit(ActionRedone, cmd, StackRedo)
	return true, nil
}

// UndoLast is Undo(true, true).
func (e *Engine) UndoLast() (bool, error) {
	return e.Undo(true, true)
}

// RedoLast is Redo(true, true).
func (e *Engine) RedoLast() (bool, error) {
	return e.Redo(true, true)
}

func (e *Engine) acceptReplay(operation string) (bool, error) {
	if e.mode != ModeIdle {
		e.logger.Debug(operation+" rejected: replay in progress", "engine", e.name, "mode", e.mode.String())
		return false, nil
	}
	if e.status != StatusRunning {
		e.logger.Debug(operation+" rejected: engine not running", "engine", e.name, "status", e.status.String())
		return false, nil
	}
	if !e.registry.IsActive(e) {
		return false, e.usageError(operation, ErrEngineMismatch)
	}
	return true, nil
}

// replay executes cmd in the given mode, collecting the inverse variations
// it records into a capture command. When keep is set the capture is filed
// on the opposite stack; otherwise it is dropped and the replay leaves the
// existence status alone.
func (e *Engine) replay(cmd *Command, mode Mode, keep, echo bool) error {
	e.mode = mode
	defer func() { e.mode = ModeIdle }()

	if echo {
		e.logger.Info(mode.String(), "engine", e.name, "command", cmd.Name, "variations", cmd.Size())
	} else {
		e.logger.Debug(mode.String(), "engine", e.name, "command", cmd.Name, "variations", cmd.Size())
	}

	depth := len(e.nesting)
	captured := e.StartCommandWith(cmd.Name, keep && cmd.AlterExistenceStatus)
	captured.ID = cmd.ID

	if err := cmd.Execute(e); err != nil {
		e.logger.Error(mode.String()+" failed", "engine", e.name, "command", cmd.Name, "error", err)
		if rerr := e.rollback(depth); rerr != nil {
			e.logger.Error("rollback failed", "engine", e.name, "command", cmd.Name, "error", rerr)
			return errors.Join(err, fmt.Errorf("rollback: %w", rerr))
		}
		return err
	}

	done, err := e.popDeclaring("complete capture")
	if err != nil {
		return err
	}
	if !keep || done.IsEmpty() {
		return nil
	}
	slices.Reverse(done.Children)

	if mode == ModeUndoing {
		e.pushRedo(done)
	} else {
		e.pushUndo(done)
	}
	return nil
}

// rollback reverts the variations captured above depth, innermost command
// first, without recording anything.
func (e *Engine) rollback(depth int) error {
	prev := e.status
	e.status = StatusPaused
	defer func() { e.status = prev }()

	for len(e.nesting) > depth {
		partial, err := e.popDeclaring("roll back capture")
		if err != nil {
			return err
		}
		if partial.IsEmpty() {
			continue
		}
		slices.Reverse(partial.Children)
		if err := partial.Execute(e); err != nil {
			return err
		}
	}
	return nil
}
