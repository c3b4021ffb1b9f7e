// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dng-batch/internal/history"
	"github.com/pdiddy/dng-batch/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded file outcomes from past runs",
	Long: `History lists the outcome of every RAW file processed by earlier convert
runs, newest first. Filter by run, folder, or action to audit which files
were copied instead of converted.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past convert runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryRuns,
}

func init() {
	historyCmd.PersistentFlags().String("history-db", "", "SQLite history file (default: the convert --history-db location)")
	historyCmd.PersistentFlags().Int("limit", 50, "maximum number of rows")
	historyCmd.PersistentFlags().Bool("json", false, "output as JSON")
	historyCmd.Flags().String("run", "", "only outcomes from this run ID")
	historyCmd.Flags().String("folder", "", "only outcomes from this folder")
	historyCmd.Flags().String("action", "", "only this action: converted, copied, failed")

	historyCmd.AddCommand(historyRunsCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistoryStore(cmd *cobra.Command) (*history.Store, error) {
	path, _ := cmd.Flags().GetString("history-db")
	if path == "" {
		path = viper.GetString("history_db")
	}
	if path == "" {
		return nil, fmt.Errorf("no history database configured")
	}
	return history.Open(path)
}

func runHistory(cmd *cobra.Command, args []string) error {
	action, _ := cmd.Flags().GetString("action")
	switch types.Action(action) {
	case "", types.ActionConverted, types.ActionCopied, types.ActionFailed:
	default:
		return fmt.Errorf("unknown action %q: want converted, copied, or failed", action)
	}

	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runID, _ := cmd.Flags().GetString("run")
	folder, _ := cmd.Flags().GetString("folder")
	if folder != "" {
		if abs, err := filepath.Abs(folder); err == nil {
			folder = abs
		}
	}
	limit, _ := cmd.Flags().GetInt("limit")

	records, err := store.Recent(cmd.Context(), history.Filter{
		RunID:  runID,
		Folder: folder,
		Action: types.Action(action),
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistory(cmd.OutOrStdout(), records, jsonOutput)
}

func formatHistory(w io.Writer, records []history.Record, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No history found.")
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		output := filepath.Base(r.Output)
		if r.Output == "" {
			output = "-"
		}
		rows = append(rows, []string{
			r.At.Local().Format("2006-01-02 15:04:05"),
			filepath.Base(r.Source),
			string(r.Action),
			output,
			humanize.Bytes(uint64(r.Bytes)),
			r.Duration.Round(time.Millisecond).String(),
			r.Folder,
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"When", "File", "Action", "Output", "Size", "Took", "Folder"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		nil,
		isTerminal(w),
	))
	fmt.Fprintf(w, "%s\n", pluralize(len(records), "record"))
	return nil
}

func runHistoryRuns(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		took := "unfinished"
		if !r.FinishedAt.IsZero() {
			took = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			took,
			r.ListFile,
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Run", "Started", "Took", "List file"},
		rows, nil, nil, isTerminal(w),
	))
	return nil
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
