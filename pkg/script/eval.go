package script

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/dshills/goundo/pkg/workflow"
)

var (
	// ErrInvalidExpression is returned when an expression fails to compile or run.
	ErrInvalidExpression = errors.New("invalid expression")
	// ErrAssertionFailed is returned when an assert step evaluates to false.
	ErrAssertionFailed = errors.New("assertion failed")
)

// evaluator compiles expressions once per script run and evaluates them
// against the current document.
type evaluator struct {
	programCache map[string]*vm.Program
}

func newEvaluator() *evaluator {
	return &evaluator{programCache: make(map[string]*vm.Program)}
}

// environment exposes a document under its JSON field names. Every key is
// always present with a fixed type so compiled programs stay valid as the
// document changes.
func environment(doc workflow.Document) map[string]interface{} {
	variables := make(map[string]interface{}, len(doc.Variables))
	for k, v := range doc.Variables {
		variables[k] = v
	}

	nodes := make([]interface{}, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		nodes = append(nodes, map[string]interface{}{"id": n.ID, "type": n.Type, "name": n.Name})
	}

	edges := make([]interface{}, 0, len(doc.Edges))
	for _, e := range doc.Edges {
		edges = append(edges, map[string]interface{}{"id": e.ID, "from": e.From, "to": e.To, "condition": e.Condition})
	}

	return map[string]interface{}{
		"id":          doc.ID,
		"name":        doc.Name,
		"version":     doc.Version,
		"description": doc.Description,
		"variables":   variables,
		"nodes":       nodes,
		"edges":       edges,
	}
}

func (e *evaluator) program(expression string, env map[string]interface{}) (*vm.Program, error) {
	if program, ok := e.programCache[expression]; ok {
		return program, nil
	}

	program, err := expr.Compile(expression, expr.Env(env))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	e.programCache[expression] = program
	return program, nil
}

// Evaluate runs expression against doc.
func (e *evaluator) Evaluate(expression string, doc workflow.Document) (interface{}, error) {
	env := environment(doc)
	program, err := e.program(expression, env)
	if err != nil {
		return nil, err
	}

	result, err := vm.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	return result, nil
}

// String evaluates expression and formats the result.
func (e *evaluator) String(expression string, doc workflow.Document) (string, error) {
	result, err := e.Evaluate(expression, doc)
	if err != nil {
		return "", err
	}
	if s, ok := result.(string); ok {
		return s, nil
	}
	return fmt.Sprint(result), nil
}

// Bool evaluates expression and requires a boolean result.
func (e *evaluator) Bool(expression string, doc workflow.Document) (bool, error) {
	result, err := e.Evaluate(expression, doc)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q yields %T, not bool", ErrInvalidExpression, expression, result)
	}
	return b, nil
}
