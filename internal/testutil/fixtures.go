// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/goundo/pkg/engine"
)

// WorkflowYAML is a three-node pipeline start -> fetch -> end with edges
// e1 and e2 and one variable, source.
const WorkflowYAML = `version: "1.0"
name: "ingest"
variables:
  source: "s3://bucket"
nodes:
  - {id: start, type: start}
  - {id: fetch, type: mcp_tool, name: Fetch}
  - {id: end, type: end}
edges:
  - {id: e1, from: start, to: fetch}
  - {id: e2, from: fetch, to: end}
`

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// StartedEngine returns a running engine with a private registry.
func StartedEngine(t testing.TB, opts ...engine.Option) *engine.Engine {
	t.Helper()
	ed := engine.New(opts...)
	ed.Start()
	t.Cleanup(ed.Stop)
	return ed
}
