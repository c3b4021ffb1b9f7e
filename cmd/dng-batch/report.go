// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dng-batch/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Print the summary of a run report written by convert --report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	r, err := report.Read(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s from %s\n", r.RunID, r.ListFile)
	fmt.Fprintf(out, "Converter: %s\n", r.Converter)
	fmt.Fprintf(out, "Started %s, took %s\n\n",
		r.StartedAt.Local().Format(time.DateTime), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	fmt.Fprintln(out, renderSummary(r.Folders, isTerminal(out)))
	return nil
}
