// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dng-batch/internal/batch"
	"github.com/pdiddy/dng-batch/internal/converter"
	"github.com/pdiddy/dng-batch/internal/history"
	"github.com/pdiddy/dng-batch/internal/report"
	"github.com/pdiddy/dng-batch/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <list-file>",
	Short: "Convert the RAW files of every folder named in a list file",
	Long: `Convert reads a text file with one folder path per line. For each folder
it runs Adobe DNG Converter (lossy compression, fast-load data) on every RAW
file and writes the DNG into the output subdirectory. When the converter
fails the original RAW file is copied there instead. Existing files are never
overwritten: a numeric suffix (_1, _2, ...) is added before the extension.

Each folder's log is appended to conversion_log.txt in its output directory.
The command exits non-zero only when the converter cannot be found or the
list file cannot be read; per-file failures are logged and counted.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.String("converter", "", "path to the Adobe DNG Converter binary (default: $"+converter.EnvPath+" or the standard install location)")
	f.String("output-dir", types.DefaultOutputDir, `output subdirectory created in each folder; "." writes next to the RAW files`)
	f.String("log-file", types.DefaultLogFile, "name of the per-folder log file")
	f.StringSlice("ext", types.DefaultExtensions, "RAW extensions to convert (case-insensitive, repeatable)")
	f.Bool("recursive", false, "also convert RAW files in subdirectories")
	f.Bool("lossy", true, "pass -lossy to the converter")
	f.Bool("fast-load", true, "pass -fl (embed fast load data) to the converter")
	f.String("history-db", defaultHistoryPath(), "SQLite file recording every outcome")
	f.Bool("no-history", false, "do not record outcomes in the history database")
	f.String("report", "", "write a run report to this path (.json for JSON, otherwise YAML)")

	for key, flag := range map[string]string{
		"converter_path": "converter",
		"output_dir":     "output-dir",
		"log_file":       "log-file",
		"extensions":     "ext",
		"recursive":      "recursive",
		"lossy":          "lossy",
		"fast_load":      "fast-load",
		"history_db":     "history-db",
	} {
		if err := viper.BindPFlag(key, f.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(convertCmd)
}

// defaultHistoryPath returns the history database location under the user
// config directory, or "" when there is none.
func defaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "dng-batch", "history.db")
}

// convertConfig assembles the run configuration from flags, environment,
// and config file, in viper's precedence order.
func convertConfig(cmd *cobra.Command) (types.ConvertConfig, error) {
	var cfg types.ConvertConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	if noHistory, _ := cmd.Flags().GetBool("no-history"); noHistory {
		cfg.HistoryDB = ""
	}
	cfg.Normalize()
	return cfg, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	listPath := args[0]
	out := cmd.OutOrStdout()

	cfg, err := convertConfig(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(listPath); err != nil {
		return fmt.Errorf("the provided list file does not exist: %w", err)
	}

	exe, err := converter.Locate(cfg.ConverterPath)
	if err != nil {
		return err
	}
	conv := converter.New(exe, converter.Options{Lossy: cfg.Lossy, FastLoad: cfg.FastLoad})
	fmt.Fprintf(out, "Using converter: %s\n", conv.Path())

	fmt.Fprintf(out, "Reading directory list from: %s...\n\n", filepath.Base(listPath))
	folders, err := batch.ReadFolderList(listPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Total folders to process: %d\n", len(folders))
	fmt.Fprintln(out, "------------------------------")

	runID := uuid.NewString()
	started := time.Now()
	opts := []batch.Option{batch.WithConsole(out), batch.WithRunID(runID)}
	if dir, err := os.UserCacheDir(); err == nil {
		opts = append(opts, batch.WithLockDir(filepath.Join(dir, "dng-batch", "locks")))
	}

	store := openHistory(ctx, cfg.HistoryDB, history.Run{
		ID: runID, ListFile: listPath, Converter: conv.Path(), StartedAt: started,
	}, cmd.ErrOrStderr())
	if store != nil {
		defer store.Close()
		opts = append(opts, batch.WithRecorder(store, runID))
	}

	proc := batch.NewProcessor(cfg, conv, opts...)
	res, runErr := proc.Run(ctx, folders)
	finished := time.Now()

	if store != nil {
		if err := store.FinishRun(context.WithoutCancel(ctx), runID, finished); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
	}

	if path, _ := cmd.Flags().GetString("report"); path != "" {
		r := report.Report{
			RunID:      runID,
			ListFile:   listPath,
			Converter:  conv.Path(),
			StartedAt:  started,
			FinishedAt: finished,
			Totals:     report.Tally(res.Folders),
			Folders:    res.Folders,
		}
		if err := report.Write(path, r); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: report not written: %v\n", err)
		} else {
			fmt.Fprintf(out, "Report written to %s\n", path)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSummary(res.Folders, isTerminal(out)))
	if res.HasFailures() {
		fmt.Fprintf(out, "%s could not be converted or copied; see the folder logs.\n",
			pluralize(res.Failed(), "file"))
	}

	if errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("interrupted after %d of %d folders", len(res.Folders), len(folders))
	}
	if runErr != nil {
		return runErr
	}
	fmt.Fprintln(out, "Batch processing complete.")
	return nil
}

// openHistory opens the ledger and registers the run. History is an aid, not
// a requirement: failures are reported on w and the batch runs without it.
func openHistory(ctx context.Context, path string, run history.Run, w io.Writer) *history.Store {
	if path == "" {
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(w, "warning: history disabled: %v\n", err)
		return nil
	}
	if err := store.BeginRun(ctx, run); err != nil {
		fmt.Fprintf(w, "warning: history disabled: %v\n", err)
		store.Close()
		return nil
	}
	return store
}
