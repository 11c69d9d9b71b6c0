// Package workflow is an editable workflow document whose every edit is
// declared as an undoable command on the bound engine.
//
// A workflow loaded with Parse is unbound: edits apply directly and record
// nothing. After Bind, each editing method declares one command named after
// the operation, so a single Undo reverts it as a whole.
package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/goundo/pkg/engine"
	"github.com/dshills/goundo/pkg/model"
)

// Workflow represents a directed acyclic graph (DAG) of nodes and edges
type Workflow struct {
	model.Entity
	ID          string
	Name        string
	Version     string
	Description string
	Nodes       *model.List[*Node]
	Edges       *model.List[*Edge]
	Variables   *model.Dict[string, string]
}

// NewWorkflow creates a new, unbound workflow with the given name and description
func NewWorkflow(name, description string) (*Workflow, error) {
	if name == "" {
		return nil, fmt.Errorf("workflow: %w", ErrEmptyName)
	}

	w := &Workflow{
		ID:          NewWorkflowID().String(),
		Name:        name,
		Version:     "1.0.0",
		Description: description,
	}
	w.Nodes = model.NewList[*Node](w)
	w.Edges = model.NewList[*Edge](w)
	w.Variables = model.NewDict[string, string](w, nil)
	return w, nil
}

// Bind attaches the workflow and all of its nodes and edges to e.
func (w *Workflow) Bind(e *engine.Engine) {
	w.Entity.Bind(e)
	for _, n := range w.Nodes.Items() {
		n.Bind(e)
	}
	for _, edge := range w.Edges.Items() {
		edge.Bind(e)
	}
}

// edit runs fn inside a command named name when the workflow is bound.
func (w *Workflow) edit(name string, fn func() error) error {
	ed := w.Editor()
	if ed == nil {
		return fn()
	}
	_, err := ed.Do(name, fn)
	return err
}

// Rename changes the workflow name
func (w *Workflow) Rename(name string) error {
	if name == "" {
		return fmt.Errorf("rename workflow: %w", ErrEmptyName)
	}
	return w.edit("rename workflow", func() error {
		return workflowName.Set(w, name)
	})
}

// SetDescription changes the workflow description
func (w *Workflow) SetDescription(description string) error {
	return w.edit("set description", func() error {
		return workflowDescription.Set(w, description)
	})
}

// Node returns the node with the given ID
func (w *Workflow) Node(id string) (*Node, bool) {
	for _, n := range w.Nodes.Items() {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// Edge returns the edge with the given ID
func (w *Workflow) Edge(id string) (*Edge, bool) {
	for _, e := range w.Edges.Items() {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// AddNode appends a node. An empty id is replaced by a generated one.
func (w *Workflow) AddNode(id, nodeType, name string) (*Node, error) {
	if id == "" {
		id = NewNodeID().String()
	}
	if _, exists := w.Node(id); exists {
		return nil, fmt.Errorf("add node: %w: %s", ErrDuplicateNode, id)
	}

	n := &Node{ID: id, Type: nodeType, Name: name}
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("add node: %w", err)
	}
	n.Bind(w.Editor())

	if err := w.edit("add node "+id, func() error {
		return w.Nodes.Add(n)
	}); err != nil {
		return nil, err
	}
	return n, nil
}

// RenameNode changes a node's display name
func (w *Workflow) RenameNode(id, name string) error {
	n, ok := w.Node(id)
	if !ok {
		return fmt.Errorf("rename node: %w: %s", ErrNodeNotFound, id)
	}
	return w.edit("rename node "+id, func() error {
		return nodeName.Set(n, name)
	})
}

// RemoveNode removes a node and every edge connected to it. Each edge
// removal is a nested command of the node removal.
func (w *Workflow) RemoveNode(id string) error {
	n, ok := w.Node(id)
	if !ok {
		return fmt.Errorf("remove node: %w: %s", ErrNodeNotFound, id)
	}

	return w.edit("remove node "+id, func() error {
		for _, e := range w.Edges.Items() {
			if !e.Touches(id) {
				continue
			}
			if err := w.RemoveEdge(e.ID); err != nil {
				return err
			}
		}
		_, err := w.Nodes.Remove(n)
		return err
	})
}

// AddEdge connects two existing nodes. Duplicate from/to pairs are rejected.
func (w *Workflow) AddEdge(from, to, condition string) (*Edge, error) {
	if _, ok := w.Node(from); !ok {
		return nil, fmt.Errorf("add edge: %w: %s", ErrNodeNotFound, from)
	}
	if _, ok := w.Node(to); !ok {
		return nil, fmt.Errorf("add edge: %w: %s", ErrNodeNotFound, to)
	}
	for _, existing := range w.Edges.Items() {
		if existing.From == from && existing.To == to {
			return nil, fmt.Errorf("add edge: %w from %s to %s", ErrDuplicateEdge, from, to)
		}
	}

	e := &Edge{ID: NewEdgeID().String(), From: from, To: to, Condition: condition}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("add edge: %w", err)
	}
	e.Bind(w.Editor())

	if err := w.edit(fmt.Sprintf("add edge %s->%s", from, to), func() error {
		return w.Edges.Add(e)
	}); err != nil {
		return nil, err
	}
	return e, nil
}

// RemoveEdge removes an edge from the workflow
func (w *Workflow) RemoveEdge(id string) error {
	e, ok := w.Edge(id)
	if !ok {
		return fmt.Errorf("remove edge: %w: %s", ErrEdgeNotFound, id)
	}
	return w.edit("remove edge "+id, func() error {
		_, err := w.Edges.Remove(e)
		return err
	})
}

// SetEdgeCondition changes the condition guarding an edge
func (w *Workflow) SetEdgeCondition(id, condition string) error {
	e, ok := w.Edge(id)
	if !ok {
		return fmt.Errorf("set condition: %w: %s", ErrEdgeNotFound, id)
	}
	return w.edit("set condition "+id, func() error {
		return edgeCondition.Set(e, condition)
	})
}

// SetVariable adds or updates a variable
func (w *Workflow) SetVariable(name, value string) error {
	if name == "" {
		return fmt.Errorf("set variable: %w", ErrEmptyName)
	}
	if !validIdentifier(name) {
		return fmt.Errorf("set variable %q: %w", name, ErrInvalidIdentifier)
	}
	return w.edit("set variable "+name, func() error {
		return w.Variables.Set(name, value)
	})
}

// DeleteVariable removes a variable
func (w *Workflow) DeleteVariable(name string) error {
	if !w.Variables.Has(name) {
		return fmt.Errorf("delete variable: %w: %s", ErrVariableNotFound, name)
	}
	return w.edit("delete variable "+name, func() error {
		_, err := w.Variables.Delete(name)
		return err
	})
}

// Validate checks the graph invariants: unique node IDs, valid node types,
// edges referencing existing nodes and no cycles.
func (w *Workflow) Validate() error {
	var validationErrors []string

	if w.Name == "" {
		validationErrors = append(validationErrors, "workflow name cannot be empty")
	}

	nodeIDs := make(map[string]bool)
	for _, n := range w.Nodes.Items() {
		if err := n.Validate(); err != nil {
			validationErrors = append(validationErrors, err.Error())
			continue
		}
		if nodeIDs[n.ID] {
			validationErrors = append(validationErrors, fmt.Sprintf("duplicate node ID found: %s", n.ID))
		}
		nodeIDs[n.ID] = true
	}

	for _, e := range w.Edges.Items() {
		if err := e.Validate(); err != nil {
			validationErrors = append(validationErrors, err.Error())
			continue
		}
		if !nodeIDs[e.From] {
			validationErrors = append(validationErrors, fmt.Sprintf("edge references invalid node reference (from): %s", e.From))
		}
		if !nodeIDs[e.To] {
			validationErrors = append(validationErrors, fmt.Sprintf("edge references invalid node reference (to): %s", e.To))
		}
	}

	if err := w.checkForCycles(); err != nil {
		validationErrors = append(validationErrors, err.Error())
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, "; "))
	}
	return nil
}

// checkForCycles performs depth-first search to detect cycles
func (w *Workflow) checkForCycles() error {
	edges := w.Edges.Items()
	if len(edges) == 0 {
		return nil
	}

	adjacency := make(map[string][]string)
	for _, e := range edges {
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}

	// 0=unvisited, 1=visiting, 2=visited
	state := make(map[string]int)

	var dfs func(string) bool
	dfs = func(nodeID string) bool {
		switch state[nodeID] {
		case 1:
			return true
		case 2:
			return false
		}
		state[nodeID] = 1
		for _, neighbor := range adjacency[nodeID] {
			if dfs(neighbor) {
				return true
			}
		}
		state[nodeID] = 2
		return false
	}

	for _, n := range w.Nodes.Items() {
		if state[n.ID] == 0 && dfs(n.ID) {
			return errors.New("workflow contains circular dependency")
		}
	}
	return nil
}
