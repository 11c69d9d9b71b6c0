package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/goundo/pkg/model"
)

// Document is the plain, serializable form of a workflow. It is also the
// snapshot used for comparisons and as the expression environment.
type Document struct {
	ID          string            `json:"id,omitempty" yaml:"id,omitempty"`
	Version     string            `json:"version" yaml:"version"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Variables   map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Nodes       []NodeDocument    `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Edges       []EdgeDocument    `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// NodeDocument is the serializable form of a node.
type NodeDocument struct {
	ID   string `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// EdgeDocument is the serializable form of an edge.
type EdgeDocument struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	From      string `json:"from" yaml:"from"`
	To        string `json:"to" yaml:"to"`
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// Parse parses a workflow from YAML bytes. The result is unbound.
func Parse(yamlBytes []byte) (*Workflow, error) {
	if len(yamlBytes) == 0 {
		return nil, errors.New("empty YAML input")
	}

	var doc Document
	if err := yaml.Unmarshal(yamlBytes, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if doc.Version == "" {
		return nil, errors.New("missing required field: version")
	}
	if doc.Name == "" {
		return nil, errors.New("missing required field: name")
	}

	wf := FromDocument(doc)
	if err := wf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workflow: %w", err)
	}
	return wf, nil
}

// ParseFile parses a workflow from a YAML file
func ParseFile(filePath string) (*Workflow, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// FromDocument builds an unbound workflow from its plain form without validating it.
func FromDocument(doc Document) *Workflow {
	wf := &Workflow{
		ID:          doc.ID,
		Name:        doc.Name,
		Version:     doc.Version,
		Description: doc.Description,
	}
	if wf.ID == "" {
		wf.ID = NewWorkflowID().String()
	}

	nodes := make([]*Node, 0, len(doc.Nodes))
	for _, yn := range doc.Nodes {
		nodes = append(nodes, &Node{ID: yn.ID, Type: yn.Type, Name: yn.Name})
	}
	edges := make([]*Edge, 0, len(doc.Edges))
	for _, ye := range doc.Edges {
		id := ye.ID
		if id == "" {
			id = NewEdgeID().String()
		}
		edges = append(edges, &Edge{ID: id, From: ye.From, To: ye.To, Condition: ye.Condition})
	}

	wf.Nodes = model.NewList(wf, nodes...)
	wf.Edges = model.NewList(wf, edges...)
	wf.Variables = model.NewDict(wf, doc.Variables)
	return wf
}

// Snapshot returns the plain form of the workflow's current state.
func (w *Workflow) Snapshot() Document {
	doc := Document{
		ID:          w.ID,
		Version:     w.Version,
		Name:        w.Name,
		Description: w.Description,
		Variables:   w.Variables.Map(),
		Nodes:       make([]NodeDocument, 0, w.Nodes.Len()),
		Edges:       make([]EdgeDocument, 0, w.Edges.Len()),
	}
	for _, n := range w.Nodes.Items() {
		doc.Nodes = append(doc.Nodes, NodeDocument{ID: n.ID, Type: n.Type, Name: n.Name})
	}
	for _, e := range w.Edges.Items() {
		doc.Edges = append(doc.Edges, EdgeDocument{ID: e.ID, From: e.From, To: e.To, Condition: e.Condition})
	}
	return doc
}

// ToYAML serializes a workflow to YAML bytes
func ToYAML(workflow *Workflow) ([]byte, error) {
	if workflow == nil {
		return nil, errors.New("workflow cannot be nil")
	}

	doc := workflow.Snapshot()
	yamlBytes, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal to YAML: %w", err)
	}
	return yamlBytes, nil
}

// ToJSON serializes a workflow to indented JSON bytes
func ToJSON(workflow *Workflow) ([]byte, error) {
	if workflow == nil {
		return nil, errors.New("workflow cannot be nil")
	}

	data, err := json.MarshalIndent(workflow.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	return data, nil
}
