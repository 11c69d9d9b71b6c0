package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/goundo/pkg/opcode"
)

// Variation is one reversible recorded change.
//
// The set of variations is closed: *Assignment, *Mutation and *Command.
// Execute registers the inverse of the change in the command being declared
// on e, then performs the change.
type Variation interface {
	Execute(e *Engine) error
	variation()
}

// Assignment replays setting one property of one entity.
// Value is the value the property is set to when the assignment executes.
type Assignment struct {
	Property Property
	Instance any
	Value    any
}

func (*Assignment) variation() {}

// Execute records the current value as the inverse and writes Value.
func (a *Assignment) Execute(e *Engine) error {
	if a.Property == nil {
		return e.usageError("execute assignment", ErrNilTarget)
	}
	unrecord := e.recordMark()
	if err := e.RecordAssignment(a.Property, a.Instance, a.Property.Read(a.Instance)); err != nil {
		return err
	}
	if err := a.Property.Write(a.Instance, a.Value); err != nil {
		unrecord()
		return fmt.Errorf("write %s: %w", a.Property.Name(), err)
	}
	return nil
}

// String describes the assignment.
func (a *Assignment) String() string {
	name := "<nil>"
	if a.Property != nil {
		name = a.Property.Name()
	}
	return fmt.Sprintf("set %s = %v", name, a.Value)
}

// Mutation replays one operation against an editable collection.
type Mutation struct {
	Collection Collection
	Op         opcode.Code
	Params     []any
}

func (*Mutation) variation() {}

// Execute records the inverse operation and applies Op with Params.
func (m *Mutation) Execute(e *Engine) error {
	if m.Collection == nil {
		return e.usageError("execute mutation", ErrNilTarget)
	}
	unrecord := e.recordMark()
	if err := e.RecordMutation(m.Collection, m.Op, m.Params); err != nil {
		return err
	}
	if err := m.Collection.Apply(m.Op, m.Params); err != nil {
		unrecord()
		return fmt.Errorf("apply %s: %w", opcode.Name(m.Op, m.Collection.Vocabulary()), err)
	}
	return nil
}

// recordMark returns a func that drops whatever was recorded into the
// declaring command after the mark, so a change that failed to apply leaves
// no inverse behind.
func (e *Engine) recordMark() func() {
	top := e.Declaring()
	if top == nil {
		return func() {}
	}
	n := len(top.Children)
	return func() {
		if len(top.Children) > n {
			top.Children = top.Children[:n]
		}
	}
}

// String describes the mutation.
func (m *Mutation) String() string {
	if m.Collection == nil {
		return fmt.Sprintf("%s%v", m.Op, m.Params)
	}
	return fmt.Sprintf("%s%v", opcode.Name(m.Op, m.Collection.Vocabulary()), m.Params)
}

// Command is a named, ordered group of variations representing one user action.
//
// While declared, Children are in chronological order. Completion reverses
// them so that the first physical edit is replayed last.
type Command struct {
	ID                   string
	Name                 string
	AlterExistenceStatus bool
	Children             []Variation
	CreatedAt            time.Time
}

func newCommand(name string, alterExistenceStatus bool) *Command {
	return &Command{
		ID:                   uuid.New().String(),
		Name:                 name,
		AlterExistenceStatus: alterExistenceStatus,
		CreatedAt:            time.Now(),
	}
}

func (*Command) variation() {}

// Execute runs every child in stored order.
// It is only valid while the engine is undoing or redoing.
func (c *Command) Execute(e *Engine) error {
	if e.mode == ModeIdle {
		return e.usageError("execute command "+c.Name, ErrNotReplaying)
	}
	if len(c.Children) == 0 {
		return e.usageError("execute command "+c.Name, ErrEmptyCommand)
	}

	for _, child := range c.Children {
		if err := child.Execute(e); err != nil {
			return fmt.Errorf("command %q: %w", c.Name, err)
		}
	}
	return nil
}

// IsEmpty reports whether the command has no children.
func (c *Command) IsEmpty() bool {
	return len(c.Children) == 0
}

// Size returns the number of leaf variations, counting nested commands recursively.
func (c *Command) Size() int {
	n := 0
	for _, child := range c.Children {
		if nested, ok := child.(*Command); ok {
			n += nested.Size()
			continue
		}
		n++
	}
	return n
}

// lastCommand returns the last child if it is a command.
func (c *Command) lastCommand() (*Command, bool) {
	if len(c.Children) == 0 {
		return nil, false
	}
	nested, ok := c.Children[len(c.Children)-1].(*Command)
	return nested, ok
}
