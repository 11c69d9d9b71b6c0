package engine

import "time"

// Action categorizes engine events.
type Action string

const (
	// ActionFiled is emitted when a completed command is pushed onto the undo stack.
	ActionFiled Action = "filed"
	// ActionMerged is emitted when a completed command extends the last undo entry.
	ActionMerged Action = "merged"
	// ActionDiscarded is emitted when a declaring command is dropped.
	ActionDiscarded Action = "discarded"
	// ActionUndone is emitted after a command has been undone.
	ActionUndone Action = "undone"
	// ActionNestedUndone is emitted when Undo steps into a declaring command.
	ActionNestedUndone Action = "nested_undone"
	// ActionRedone is emitted after a command has been redone.
	ActionRedone Action = "redone"
	// ActionEvicted is emitted when a full stack drops its oldest command.
	ActionEvicted Action = "evicted"
	// ActionRedoCleared is emitted when a new edit invalidates the redo stack.
	ActionRedoCleared Action = "redo_cleared"
	// ActionHistoryCleared is emitted by ClearHistory.
	ActionHistoryCleared Action = "history_cleared"
	// ActionExistenceChanged is emitted when the existence status changes.
	ActionExistenceChanged Action = "existence_changed"
)

// Stack names used in events.
const (
	StackUndo = "undo"
	StackRedo = "redo"
)

// Event describes one change to an engine's history.
type Event struct {
	Action    Action
	EngineID  string
	Command   *Command // nil for history/existence events
	Stack     string   // empty for events that touch neither stack
	UndoDepth int
	RedoDepth int
	Existence Existence
	Time      time.Time
}

// Listener receives engine events synchronously, on the editing goroutine.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

// OnEvent calls f(ev).
func (f ListenerFunc) OnEvent(ev Event) {
	f(ev)
}

func (e *Engine) emit(action Action, cmd *Command, stack string) {
	if len(e.listeners) == 0 {
		return
	}

	ev := Event{
		Action:    action,
		EngineID:  e.id,
		Command:   cmd,
		Stack:     stack,
		UndoDepth: e.undos.Len(),
		RedoDepth: e.redos.Len(),
		Existence: e.existence,
		Time:      time.Now(),
	}
	for _, l := range e.listeners {
		l.OnEvent(ev)
	}
}
