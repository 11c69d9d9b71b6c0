package engine

import (
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/dshills/goundo/internal/logging"
	"github.com/dshills/goundo/pkg/history"
	"github.com/dshills/goundo/pkg/opcode"
)

// Engine records variations for one document and replays them.
//
// INVARIANTS:
//   - commands on the undo and redo stacks are never empty
//   - only the top of the nesting stack receives new variations
//   - mode is Idle outside Undo and Redo
type Engine struct {
	id       string
	name     string
	registry *Registry
	config   Config

	undos   *history.Stack[*Command]
	redos   *history.Stack[*Command]
	nesting []*Command

	status    Status
	mode      Mode
	existence Existence

	logger    *slog.Logger
	listeners []Listener
}

// Option configures an Engine.
type Option func(*Engine)

// WithName sets a display name used in logs.
func WithName(name string) Option {
	return func(e *Engine) {
		e.name = name
	}
}

// WithRegistry shares reg with other engines. The engine is not activated.
func WithRegistry(reg *Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithConfig sets both history depths.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.config = cfg
	}
}

// WithMaxUndos sets the undo depth.
func WithMaxUndos(n int) Option {
	return func(e *Engine) {
		e.config.MaxUndos = n
	}
}

// WithMaxRedos sets the redo depth.
func WithMaxRedos(n int) Option {
	return func(e *Engine) {
		e.config.MaxRedos = n
	}
}

// WithLogger configures the logger receiving replay echoes and rejected requests.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithListener registers a history listener.
func WithListener(l Listener) Option {
	return func(e *Engine) {
		e.listeners = append(e.listeners, l)
	}
}

// New creates an engine in the Created status.
//
// Without WithRegistry the engine joins DefaultRegistry and becomes its
// active engine. Non-positive history depths fall back to the defaults.
func New(opts ...Option) *Engine {
	e := &Engine{
		id:        uuid.New().String(),
		config:    DefaultConfig(),
		status:    StatusCreated,
		mode:      ModeIdle,
		existence: ExistenceNew,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.config = e.config.withDefaults()
	e.undos = history.NewStack[*Command](e.config.MaxUndos)
	e.redos = history.NewStack[*Command](e.config.MaxRedos)

	if e.registry == nil {
		e.registry = DefaultRegistry
		e.registry.Activate(e)
	}
	if e.name == "" {
		e.name = e.id
	}
	return e
}

// ID returns the engine's unique identifier.
func (e *Engine) ID() string { return e.id }

// Name returns the engine's display name.
func (e *Engine) Name() string { return e.name }

// Registry returns the registry the engine belongs to.
func (e *Engine) Registry() *Registry { return e.registry }

// Config returns the current history bounds.
func (e *Engine) Config() Config { return e.config }

// Status returns the execution status.
func (e *Engine) Status() Status { return e.status }

// Mode returns the replay mode.
func (e *Engine) Mode() Mode { return e.mode }

// Existence returns the document lifecycle marker.
func (e *Engine) Existence() Existence { return e.existence }

// AddListener registers a history listener.
func (e *Engine) AddListener(l Listener) {
	e.listeners = append(e.listeners, l)
}

// Activate makes the engine the active one in its registry.
func (e *Engine) Activate() {
	e.registry.Activate(e)
}

// IsActive reports whether the engine is the active one in its registry.
func (e *Engine) IsActive() bool {
	return e.registry.IsActive(e)
}

// Start begins recording. Starting a stopped engine has no effect.
func (e *Engine) Start() {
	if e.status == StatusStopped {
		return
	}
	e.status = StatusRunning
}

// Pause suspends recording and existence tracking.
func (e *Engine) Pause() {
	if e.status == StatusRunning {
		e.status = StatusPaused
	}
}

// Resume restarts recording after Pause.
func (e *Engine) Resume() {
	if e.status == StatusPaused {
		e.status = StatusRunning
	}
}

// Stop ends the session. Open commands are dropped and nothing is recorded afterwards.
func (e *Engine) Stop() {
	e.status = StatusStopped
	e.nesting = nil
	e.registry.Deactivate(e)
}

// IsVariating reports whether intercepted edits are currently recorded.
func (e *Engine) IsVariating() bool {
	return e.status == StatusRunning
}

// MarkSaved records that the document has been persisted.
func (e *Engine) MarkSaved() {
	e.setExistence(ExistenceSaved)
}

func (e *Engine) setExistence(x Existence) {
	if e.existence == x {
		return
	}
	e.existence = x
	e.emit(ActionExistenceChanged, nil, "")
}

// SetMaxUndos changes the undo depth, evicting the oldest entries if needed.
func (e *Engine) SetMaxUndos(n int) {
	if n <= 0 {
		return
	}
	e.config.MaxUndos = n
	if evicted := e.undos.Resize(n); evicted > 0 {
		e.logger.Debug("undo history truncated", "engine", e.name, "evicted", evicted)
	}
}

// SetMaxRedos changes the redo depth, evicting the oldest entries if needed.
func (e *Engine) SetMaxRedos(n int) {
	if n <= 0 {
		return
	}
	e.config.MaxRedos = n
	if evicted := e.redos.Resize(n); evicted > 0 {
		e.logger.Debug("redo history truncated", "engine", e.name, "evicted", evicted)
	}
}

// RecordAssignment files an Assignment that restores previous on instance.
//
// Callers invoke it before writing the new value. Nothing is recorded when
// the engine is not variating or no command is being declared.
func (e *Engine) RecordAssignment(p Property, instance any, previous any) error {
	if p == nil {
		return e.usageError("record assignment", ErrNilTarget)
	}

	top, err := e.recordTarget("record assignment " + p.Name())
	if err != nil || top == nil {
		return err
	}

	top.Children = append(top.Children, &Assignment{
		Property: p,
		Instance: instance,
		Value:    previous,
	})
	e.touchExistence(p.ChangesExistenceStatus(), top)
	return nil
}

// RecordMutation files a Mutation that undoes applying op with params to c.
//
// Callers invoke it before applying the mutation, so the collection can
// compute the inverse parameters from its current state.
func (e *Engine) RecordMutation(c Collection, op opcode.Code, params []any) error {
	if c == nil {
		return e.usageError("record mutation", ErrNilTarget)
	}

	top, err := e.recordTarget("record mutation")
	if err != nil || top == nil {
		return err
	}

	inverse, err := opcode.Inverse(op, c.Vocabulary())
	if err != nil {
		return e.usageErrorWithAttrs("record mutation", err, map[string]interface{}{
			"op":         op.String(),
			"vocabulary": c.Vocabulary().String(),
		})
	}
	inverseParams, err := c.InverseParameters(op, params)
	if err != nil {
		return e.usageError("record mutation "+opcode.Name(op, c.Vocabulary()), err)
	}

	top.Children = append(top.Children, &Mutation{
		Collection: c,
		Op:         inverse,
		Params:     inverseParams,
	})
	e.touchExistence(c.ChangesExistenceStatus(), top)
	return nil
}

// recordTarget returns the command receiving new variations, or nil when
// nothing should be recorded.
func (e *Engine) recordTarget(operation string) (*Command, error) {
	if e.status != StatusRunning {
		return nil, nil
	}
	if !e.registry.IsActive(e) {
		return nil, e.usageError(operation, ErrEngineMismatch)
	}
	return e.Declaring(), nil
}

func (e *Engine) touchExistence(changes bool, top *Command) {
	if changes && top.AlterExistenceStatus {
		e.setExistence(ExistenceModified)
	}
}

// StartCommand begins declaring a command that may alter the existence status.
func (e *Engine) StartCommand(name string) *Command {
	return e.StartCommandWith(name, true)
}

// StartCommandWith begins declaring a command.
// A nested command never alters the existence status if its parent does not.
func (e *Engine) StartCommandWith(name string, alterExistenceStatus bool) *Command {
	if parent := e.Declaring(); parent != nil && !parent.AlterExistenceStatus {
		alterExistenceStatus = false
	}

	cmd := newCommand(name, alterExistenceStatus)
	e.nesting = append(e.nesting, cmd)
	return cmd
}

// CompleteCommand ends the innermost declaring command.
//
// An empty command is dropped and (nil, nil) is returned. Otherwise its
// children are put in replay order and the command folds into its parent,
// or, at top level and outside a replay, is filed on the undo stack (or
// merged into its top entry when extendsLastVariation is set). Filing at
// top level clears the redo stack.
func (e *Engine) CompleteCommand(extendsLastVariation bool) (*Command, error) {
	cmd, err := e.popDeclaring("complete command")
	if err != nil {
		return nil, err
	}

	if cmd.IsEmpty() {
		e.logger.Debug("empty command dropped", "engine", e.name, "command", cmd.Name)
		return nil, nil
	}

	slices.Reverse(cmd.Children)

	if parent := e.Declaring(); parent != nil {
		parent.Children = append(parent.Children, cmd)
		return cmd, nil
	}

	if e.mode != ModeIdle {
		return cmd, nil
	}

	if last, ok := e.undos.Peek(); ok && extendsLastVariation {
		last.Children = append([]Variation{cmd}, last.Children...)
		e.emit(ActionMerged, last, StackUndo)
	} else {
		e.pushUndo(cmd)
		e.emit(ActionFiled, cmd, StackUndo)
	}
	e.clearRedo()
	return cmd, nil
}

// DiscardCommand drops the innermost declaring command without filing it.
// Edits it already performed stay applied.
func (e *Engine) DiscardCommand() error {
	cmd, err := e.popDeclaring("discard command")
	if err != nil {
		return err
	}
	e.logger.Debug("command discarded", "engine", e.name, "command", cmd.Name, "variations", len(cmd.Children))
	e.emit(ActionDiscarded, cmd, "")
	return nil
}

// Do declares a command around fn, completing it when fn succeeds and
// discarding it when fn fails.
func (e *Engine) Do(name string, fn func() error) (*Command, error) {
	e.StartCommand(name)
	if err := fn(); err != nil {
		if derr := e.DiscardCommand(); derr != nil {
			return nil, derr
		}
		return nil, err
	}
	return e.CompleteCommand(false)
}

func (e *Engine) popDeclaring(operation string) (*Command, error) {
	n := len(e.nesting)
	if n == 0 {
		return nil, e.usageError(operation, ErrNoOpenCommand)
	}

	cmd := e.nesting[n-1]
	e.nesting[n-1] = nil
	e.nesting = e.nesting[:n-1]
	return cmd, nil
}

// Declaring returns the innermost command being declared, or nil.
func (e *Engine) Declaring() *Command {
	if len(e.nesting) == 0 {
		return nil
	}
	return e.nesting[len(e.nesting)-1]
}

// NestingDepth returns the number of commands being declared.
func (e *Engine) NestingDepth() int {
	return len(e.nesting)
}

func (e *Engine) pushUndo(cmd *Command) {
	if dropped, evicted := e.undos.Push(cmd); evicted {
		e.emit(ActionEvicted, dropped, StackUndo)
	}
}

func (e *Engine) pushRedo(cmd *Command) {
	if dropped, evicted := e.redos.Push(cmd); evicted {
		e.emit(ActionEvicted, dropped, StackRedo)
	}
}

func (e *Engine) clearRedo() {
	if e.redos.Empty() {
		return
	}
	e.redos.Clear()
	e.emit(ActionRedoCleared, nil, StackRedo)
}

// ClearHistory drops both stacks. Commands being declared are kept.
func (e *Engine) ClearHistory() {
	e.undos.Clear()
	e.redos.Clear()
	e.emit(ActionHistoryCleared, nil, "")
}

// HasUndoableVariations reports whether the undo stack holds a command.
func (e *Engine) HasUndoableVariations() bool {
	return !e.undos.Empty()
}

// HasRedoableVariations reports whether the redo stack holds a command.
func (e *Engine) HasRedoableVariations() bool {
	return !e.redos.Empty()
}

// UndoDepth returns the number of retained undo entries.
func (e *Engine) UndoDepth() int { return e.undos.Len() }

// RedoDepth returns the number of retained redo entries.
func (e *Engine) RedoDepth() int { return e.redos.Len() }

// NextUndo returns the command Undo would replay.
func (e *Engine) NextUndo() (*Command, bool) { return e.undos.Peek() }

// NextRedo returns the command Redo would replay.
func (e *Engine) NextRedo() (*Command, bool) { return e.redos.Peek() }

// UndoHistory returns the undo entries, most recent first.
func (e *Engine) UndoHistory() []*Command { return e.undos.Items() }

// RedoHistory returns the redo entries, most recent first.
func (e *Engine) RedoHistory() []*Command { return e.redos.Items() }
