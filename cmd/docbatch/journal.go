// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/docbatch/internal/journal"
	"github.com/pdiddy/docbatch/pkg/types"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the run journal",
	Long: `Journal reads the SQLite database named by --journal (or journal.path in
the config file). Runs are recorded there only when a journal is configured;
the pipelines never read it back.`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Write a run and its per-file records as YAML or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalExport,
}

func init() {
	journalListCmd.Flags().Int("limit", 20, "maximum runs to list")
	journalExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalExportCmd)
	rootCmd.AddCommand(journalCmd)
}

func openJournal() (*journal.Store, error) {
	if cfg.Journal.Path == "" {
		return nil, fmt.Errorf("no journal configured: pass --journal or set journal.path")
	}
	return journal.NewStore(cfg.Journal.Path)
}

func runJournalList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPIPELINE\tSTARTED\tPROCESSED\tCONVERTED\tSKIPPED\tFAILED\tROOT")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.ID, r.Pipeline, r.Started.Local().Format(time.DateTime),
			r.Processed, r.Converted, r.Skipped, r.Failed, r.Root)
	}
	return w.Flush()
}

func runJournalExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Export(cmd.Context(), args[0], format, os.Stdout)
}

// journalRun records a finished run when a journal is configured. A journal
// that cannot be written is a setup error.
func journalRun(cmd *cobra.Command, pipeline, root string, started time.Time, result types.RunResult) error {
	if cfg.Journal.Path == "" {
		return nil
	}

	store, err := journal.NewStore(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Save(cmd.Context(), pipeline, root, started, time.Now(), result)
	if err != nil {
		return err
	}
	logger.Info("run recorded", zap.String("run_id", id), zap.String("journal", cfg.Journal.Path))
	return nil
}

// rootArg returns the root directory argument, defaulting to the current
// directory.
func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
