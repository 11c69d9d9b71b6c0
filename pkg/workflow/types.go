package workflow

import (
	"errors"

	"github.com/google/uuid"
)

// Common workflow errors
var (
	// ErrEmptyName is returned when a workflow or required name is empty
	ErrEmptyName = errors.New("name cannot be empty")
	// ErrNodeNotFound is returned when a node ID is unknown
	ErrNodeNotFound = errors.New("node not found")
	// ErrEdgeNotFound is returned when an edge ID is unknown
	ErrEdgeNotFound = errors.New("edge not found")
	// ErrVariableNotFound is returned when a variable name is unknown
	ErrVariableNotFound = errors.New("variable not found")
	// ErrDuplicateNode is returned when a node ID is already used
	ErrDuplicateNode = errors.New("duplicate node ID")
	// ErrDuplicateEdge is returned when an edge with the same endpoints exists
	ErrDuplicateEdge = errors.New("duplicate edge")
	// ErrUnknownNodeType is returned for node types outside NodeTypes
	ErrUnknownNodeType = errors.New("unknown node type")
	// ErrSelfLoop is returned for an edge from a node to itself
	ErrSelfLoop = errors.New("self-loop")
	// ErrInvalidIdentifier is returned for node IDs and variable names
	// outside [A-Za-z0-9_-]
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

// NodeTypes lists the accepted node types.
var NodeTypes = []string{"start", "end", "mcp_tool", "transform", "condition", "passthrough", "parallel", "loop"}

// WorkflowID is a unique identifier for a workflow
type WorkflowID string

// String returns the string representation of the WorkflowID
func (w WorkflowID) String() string {
	return string(w)
}

// NewWorkflowID generates a new unique WorkflowID
func NewWorkflowID() WorkflowID {
	return WorkflowID(uuid.New().String())
}

// NodeID is a unique identifier for a node within a workflow
type NodeID string

// String returns the string representation of the NodeID
func (n NodeID) String() string {
	return string(n)
}

// NewNodeID generates a new unique NodeID
func NewNodeID() NodeID {
	return NodeID(uuid.New().String())
}

// EdgeID is a unique identifier for an edge within a workflow
type EdgeID string

// String returns the string representation of the EdgeID
func (e EdgeID) String() string {
	return string(e)
}

// NewEdgeID generates a new unique EdgeID
func NewEdgeID() EdgeID {
	return EdgeID(uuid.New().String())
}

func validNodeType(t string) bool {
	for _, nt := range NodeTypes {
		if nt == t {
			return true
		}
	}
	return false
}

// validIdentifier reports whether s is a non-empty run of letters, digits,
// hyphens and underscores.
func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if !isIdentifierChar(ch) {
			return false
		}
	}
	return true
}

func isIdentifierChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '_'
}
