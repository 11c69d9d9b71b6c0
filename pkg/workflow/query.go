package workflow

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Sentinel errors for document queries
var (
	ErrInvalidPath  = errors.New("invalid query path")
	ErrPathNotFound = errors.New("query path not found")
)

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

// Query evaluates a gjson path against the JSON form of the workflow.
// A leading "$." and bracketed indices ("nodes[0]") are accepted as well.
func Query(w *Workflow, path string) (gjson.Result, error) {
	if w == nil {
		return gjson.Result{}, errors.New("workflow cannot be nil")
	}

	queryPath, err := toGJSONPath(path)
	if err != nil {
		return gjson.Result{}, err
	}

	data, err := ToJSON(w)
	if err != nil {
		return gjson.Result{}, err
	}

	if queryPath == "" {
		return gjson.ParseBytes(data), nil
	}

	result := gjson.GetBytes(data, queryPath)
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	return result, nil
}

// toGJSONPath converts the accepted path forms to gjson syntax
func toGJSONPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrInvalidPath
	}
	if strings.Count(path, "[") != strings.Count(path, "]") {
		return "", fmt.Errorf("%w: unbalanced brackets in %q", ErrInvalidPath, path)
	}

	if path == "$" || path == "." {
		return "", nil
	}
	path = strings.TrimPrefix(path, "$.")
	path = bracketIndex.ReplaceAllString(path, ".$1")
	return strings.TrimPrefix(path, "."), nil
}
