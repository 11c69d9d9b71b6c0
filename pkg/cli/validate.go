package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/goundo/pkg/script"
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate <script.yaml>",
		Short: "Validate an edit script",
		Long: `Validate an edit script against the script schema.

This checks:
- YAML syntax
- Known step operations
- Required fields for each operation

Examples:
  goundo validate tidy.yaml
  goundo validate tidy.yaml --verbose`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read script: %w", err)
			}

			s, err := script.Parse(data)
			if err != nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "✗ Script validation failed")
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Script valid (%d steps)\n", len(s.Steps))
			if verbose {
				for i, step := range s.Steps {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %3d  %s\n", i+1, step.Op)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List the script steps")

	return cmd
}
