package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/goundo/pkg/journal"
)

// HistoryFlags holds the flags for the history command
type HistoryFlags struct {
	Engine string
	Limit  int
	JSON   bool
}

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	flags := &HistoryFlags{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled history events",
		Long:  `List the most recent undo/redo history events recorded in the journal.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.Engine, "engine", "", "Only show events of this engine ID")
	cmd.Flags().IntVar(&flags.Limit, "limit", 20, "Maximum number of events to display")
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "Output events as JSON")

	return cmd
}

func runHistory(cmd *cobra.Command, flags *HistoryFlags) error {
	if flags.Limit <= 0 {
		return fmt.Errorf("invalid --limit value: %d", flags.Limit)
	}

	j, err := journal.Open(GetJournalPath())
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer func() { _ = j.Close() }()

	entries, err := j.List(cmd.Context(), flags.Engine, flags.Limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "No history events found.")
		return nil
	}

	_, _ = fmt.Fprintf(out, "%-6s %-10s %-18s %-28s %-11s %s\n",
		"ID", "Engine", "Action", "Command", "Undo/Redo", "Recorded")
	_, _ = fmt.Fprintln(out, strings.Repeat("-", 96))
	for _, e := range entries {
		_, _ = fmt.Fprintf(out, "%-6d %-10s %-18s %-28s %-11s %s\n",
			e.ID,
			truncateString(e.EngineID, 8),
			e.Action,
			truncateString(e.CommandName, 26),
			fmt.Sprintf("%d/%d", e.UndoDepth, e.RedoDepth),
			e.RecordedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
