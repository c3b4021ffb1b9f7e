// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/pdiddy/dng-batch/internal/report"
	"github.com/pdiddy/dng-batch/pkg/types"
)

// renderSummary builds the end-of-run table: one row per listed folder and a
// totals footer.
func renderSummary(folders []types.FolderSummary, fancy bool) string {
	headers := []string{"Folder", "Status", "Converted", "Copied", "Failed", "Written"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}

	rows := make([][]string, 0, len(folders))
	for _, f := range folders {
		status := string(f.Status)
		if f.Status == types.FolderSkipped && f.Reason != "" {
			status += ": " + f.Reason
		}
		var written int64
		for _, o := range f.Files {
			written += o.Bytes
		}
		rows = append(rows, []string{
			f.Folder,
			status,
			strconv.Itoa(f.Converted),
			strconv.Itoa(f.Copied),
			strconv.Itoa(f.Failed),
			humanize.Bytes(uint64(written)),
		})
	}

	t := report.Tally(folders)
	footer := []string{
		"Total (" + strconv.Itoa(t.Folders) + " folders)",
		"",
		strconv.Itoa(t.Converted),
		strconv.Itoa(t.Copied),
		strconv.Itoa(t.Failed),
		humanize.Bytes(uint64(t.Bytes)),
	}
	return renderTable(headers, rows, aligns, footer, fancy)
}
