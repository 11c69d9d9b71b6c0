package workflow

import (
	"fmt"

	"github.com/dshills/goundo/pkg/model"
)

// Node is a step of a workflow.
type Node struct {
	model.Entity
	ID   string
	Type string
	Name string
}

// Validate checks if the node is valid
func (n *Node) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("node: %w", ErrEmptyName)
	}
	if !validIdentifier(n.ID) {
		return fmt.Errorf("node %q: %w", n.ID, ErrInvalidIdentifier)
	}
	if !validNodeType(n.Type) {
		return fmt.Errorf("node %s: %w: %q", n.ID, ErrUnknownNodeType, n.Type)
	}
	return nil
}

// Edge represents a connection between two nodes in a workflow
type Edge struct {
	model.Entity
	ID        string
	From      string
	To        string
	Condition string
}

// Validate checks if the edge is valid
func (e *Edge) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("edge: %w", ErrEmptyName)
	}
	if e.From == "" || e.To == "" {
		return fmt.Errorf("edge %s: missing endpoint", e.ID)
	}
	if e.From == e.To {
		return fmt.Errorf("edge %s: %w (node %s to itself)", e.ID, ErrSelfLoop, e.From)
	}
	return nil
}

// Touches reports whether the edge starts or ends at nodeID.
func (e *Edge) Touches(nodeID string) bool {
	return e.From == nodeID || e.To == nodeID
}

// Field accessors used for recorded edits.
var (
	workflowName = model.NewField("Workflow.Name",
		func(w *Workflow) string { return w.Name },
		func(w *Workflow, v string) { w.Name = v })
	workflowDescription = model.NewField("Workflow.Description",
		func(w *Workflow) string { return w.Description },
		func(w *Workflow, v string) { w.Description = v })
	nodeName = model.NewField("Node.Name",
		func(n *Node) string { return n.Name },
		func(n *Node, v string) { n.Name = v })
	edgeCondition = model.NewField("Edge.Condition",
		func(e *Edge) string { return e.Condition },
		func(e *Edge, v string) { e.Condition = v })
)
