package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/goundo/pkg/workflow"
)

// NewQueryCommand creates the query command
func NewQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query <workflow.yaml> <path>",
		Short: "Query a workflow document",
		Long: `Query the JSON form of a workflow document with a gjson path.

Examples:
  goundo query pipeline.yaml name
  goundo query pipeline.yaml 'nodes.#.id'
  goundo query pipeline.yaml 'edges.#(from=="fetch").to'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := workflow.ParseFile(args[0])
			if err != nil {
				return err
			}
			return printQuery(cmd, wf, args[1])
		},
	}
}

func printQuery(cmd *cobra.Command, wf *workflow.Workflow, path string) error {
	result, err := workflow.Query(wf, path)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.String())
	return nil
}
