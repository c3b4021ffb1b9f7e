// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dng-batch/internal/history"
	"github.com/pdiddy/dng-batch/pkg/types"
)

func TestRenderSummary(t *testing.T) {
	folders := []types.FolderSummary{
		{
			Folder: "/shoot/a", Status: types.FolderProcessed, Converted: 2, Copied: 1,
			Files: []types.FileOutcome{{Bytes: 1500}, {Bytes: 500}, {Bytes: 1000}},
		},
		{Folder: "/shoot/gone", Status: types.FolderSkipped, Reason: "invalid directory path"},
	}

	out := renderSummary(folders, false)
	assert.Contains(t, out, "/shoot/a")
	assert.Contains(t, out, "skipped: invalid directory path")
	assert.Contains(t, out, "3.0 kB")
	assert.Contains(t, strings.ToUpper(out), "TOTAL (2 FOLDERS)")
}

func TestFormatHistory(t *testing.T) {
	records := []history.Record{
		{
			FileOutcome: types.FileOutcome{
				Source: "/shoot/a/IMG_1.CR2", Output: "/shoot/a/DNG/IMG_1.dng",
				Action: types.ActionConverted, Bytes: 2048, Duration: 1200 * time.Millisecond,
				At: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
			},
			RunID: "r1", Folder: "/shoot/a",
		},
		{
			FileOutcome: types.FileOutcome{Source: "/shoot/a/IMG_2.CR2", Action: types.ActionFailed},
			RunID:       "r1", Folder: "/shoot/a",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, formatHistory(&buf, records, false))
	out := buf.String()
	assert.Contains(t, out, "IMG_1.dng")
	assert.Contains(t, out, "1.2s")
	assert.Contains(t, out, "2 records")

	buf.Reset()
	require.NoError(t, formatHistory(&buf, records, true))
	var decoded []history.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, types.ActionFailed, decoded[1].Action)

	buf.Reset()
	require.NoError(t, formatHistory(&buf, nil, false))
	assert.Equal(t, "No history found.\n", buf.String())
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "1 record", pluralize(1, "record"))
	assert.Equal(t, "0 records", pluralize(0, "record"))
	assert.Equal(t, "3 records", pluralize(3, "record"))
}
