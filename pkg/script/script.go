// Package script runs YAML edit scripts against a bound workflow.
//
// A script is a list of steps. Editing steps call the workflow's editing
// operations, begin/commit/discard declare enclosing commands and undo/redo
// replay the engine's history. Values are literals or expressions evaluated
// against the current document.
package script

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Step operations
const (
	OpBegin        = "begin"
	OpCommit       = "commit"
	OpDiscard      = "discard"
	OpUndo         = "undo"
	OpRedo         = "redo"
	OpRename       = "rename"
	OpDescribe     = "describe"
	OpAddNode      = "add_node"
	OpRenameNode   = "rename_node"
	OpRemoveNode   = "remove_node"
	OpAddEdge      = "add_edge"
	OpRemoveEdge   = "remove_edge"
	OpSetCondition = "set_condition"
	OpSetVar       = "set_var"
	OpDeleteVar    = "delete_var"
	OpAssert       = "assert"
)

//go:embed schema.json
var schemaBytes []byte

// Script is a named list of steps.
type Script struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps"`
}

// Step is one script instruction. Which fields apply depends on Op.
type Step struct {
	Op        string `yaml:"op"`
	Name      string `yaml:"name,omitempty"`
	ID        string `yaml:"id,omitempty"`
	Type      string `yaml:"type,omitempty"`
	From      string `yaml:"from,omitempty"`
	To        string `yaml:"to,omitempty"`
	Key       string `yaml:"key,omitempty"`
	Value     string `yaml:"value,omitempty"`
	Expr      string `yaml:"expr,omitempty"`
	Condition string `yaml:"condition,omitempty"`
	Extends   bool   `yaml:"extends,omitempty"`
	Echo      bool   `yaml:"echo,omitempty"`
	Count     int    `yaml:"count,omitempty"`
}

// times returns how often an undo or redo step replays.
func (s Step) times() int {
	if s.Count < 1 {
		return 1
	}
	return s.Count
}

// Validate checks raw script YAML against the embedded schema.
func Validate(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty script")
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	documentLoader := gojsonschema.NewGoLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errMsg string
		for i, desc := range result.Errors() {
			if i > 0 {
				errMsg += "; "
			}
			errMsg += fmt.Sprintf("%s: %s", desc.Field(), desc.Description())
		}
		return fmt.Errorf("schema validation failed: %s", errMsg)
	}

	return nil
}

// Parse validates and decodes a script.
func Parse(data []byte) (*Script, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}
	return &s, nil
}

// ParseFile reads and parses a script file.
func ParseFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}
