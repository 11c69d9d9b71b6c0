package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/dshills/goundo/pkg/engine"
	"github.com/dshills/goundo/pkg/journal"
	"github.com/dshills/goundo/pkg/metrics"
	"github.com/dshills/goundo/pkg/script"
	"github.com/dshills/goundo/pkg/workflow"
)

// ReplayFlags holds the flags for the replay command
type ReplayFlags struct {
	Out     string
	Query   string
	Metrics bool
}

// NewReplayCommand creates the replay command
func NewReplayCommand() *cobra.Command {
	flags := &ReplayFlags{}

	cmd := &cobra.Command{
		Use:   "replay <workflow.yaml> <script.yaml>",
		Short: "Apply an edit script to a workflow",
		Long: `Apply an edit script to a workflow document and print the result.

Each edit is recorded as an undoable command; undo and redo steps replay the
history. When the journal is enabled every history event is stored in it.

Examples:
  goundo replay pipeline.yaml tidy.yaml
  goundo replay pipeline.yaml tidy.yaml --out pipeline.v2.yaml
  goundo replay pipeline.yaml tidy.yaml --query 'nodes.#'
  goundo replay pipeline.yaml tidy.yaml --metrics`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args[0], args[1], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.Out, "out", "o", "", "Write the edited workflow to this file")
	cmd.Flags().StringVarP(&flags.Query, "query", "q", "", "Print a gjson query of the edited workflow instead of the document")
	cmd.Flags().BoolVar(&flags.Metrics, "metrics", false, "Print history metrics after the run")

	return cmd
}

func runReplay(cmd *cobra.Command, workflowPath, scriptPath string, flags *ReplayFlags) error {
	logger := newLogger(cmd)
	settings := GlobalConfig.Settings

	wf, err := workflow.ParseFile(workflowPath)
	if err != nil {
		return err
	}
	s, err := script.ParseFile(scriptPath)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	ed := engine.New(
		engine.WithName(wf.Name),
		engine.WithConfig(settings.History),
		engine.WithLogger(logger),
		engine.WithListener(metrics.New(reg)),
	)

	if settings.Journal.Enabled {
		j, err := journal.Open(GetJournalPath())
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer func() { _ = j.Close() }()
		ed.AddListener(journal.NewListener(cmd.Context(), j, logger))
	}

	ed.Start()
	defer ed.Stop()

	res, err := script.NewRunner(wf, ed, script.WithLogger(logger)).Run(cmd.Context(), s)
	if err != nil {
		return err
	}
	logger.Debug("replay finished", "engine", ed.ID(), "steps", res.Steps)

	out := cmd.OutOrStdout()
	switch {
	case flags.Query != "":
		if err := printQuery(cmd, wf, flags.Query); err != nil {
			return err
		}
	case flags.Out != "":
		data, err := workflow.ToYAML(wf)
		if err != nil {
			return err
		}
		if err := os.WriteFile(flags.Out, data, 0644); err != nil {
			return fmt.Errorf("failed to write workflow: %w", err)
		}
		_, _ = fmt.Fprintf(out, "✓ Applied %d steps to %s (undo %d, redo %d, %s)\n",
			res.Steps, flags.Out, res.UndoDepth, res.RedoDepth, res.Existence)
	default:
		data, err := workflow.ToYAML(wf)
		if err != nil {
			return err
		}
		_, _ = out.Write(data)
	}

	if flags.Metrics {
		return writeMetrics(out, reg)
	}
	return nil
}

// writeMetrics prints the gathered metrics in the Prometheus text format
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
