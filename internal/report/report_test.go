// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dng-batch/pkg/types"
)

func sampleFolders() []types.FolderSummary {
	return []types.FolderSummary{
		{
			Folder:    "/shoot/a",
			Status:    types.FolderProcessed,
			Converted: 1,
			Copied:    1,
			Files: []types.FileOutcome{
				{Source: "/shoot/a/1.CR2", Action: types.ActionConverted, Bytes: 100},
				{Source: "/shoot/a/2.CR3", Action: types.ActionCopied, Bytes: 250},
			},
		},
		{Folder: "/shoot/missing", Status: types.FolderSkipped, Reason: "not a directory"},
		{Folder: "/shoot/b", Status: types.FolderProcessed, Failed: 1,
			Files: []types.FileOutcome{{Source: "/shoot/b/3.CR2", Action: types.ActionFailed}}},
	}
}

func TestTally(t *testing.T) {
	got := Tally(sampleFolders())
	assert.Equal(t, Totals{Folders: 3, Skipped: 1, Converted: 1, Copied: 1, Failed: 1, Bytes: 350}, got)
}

func TestWrite_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.yaml")
	folders := sampleFolders()
	r := Report{
		RunID:     "abc",
		ListFile:  "folders.txt",
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Totals:    Tally(folders),
		Folders:   folders,
	}
	require.NoError(t, Write(path, r))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "run_id: abc\n"))
	assert.Contains(t, string(data), "skipped_folders: 1")

	back, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", back.RunID)
	require.Len(t, back.Folders, 3)
	assert.Equal(t, types.FolderSkipped, back.Folders[1].Status)
	assert.Equal(t, types.ActionCopied, back.Folders[0].Files[1].Action)
}

func TestWrite_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.JSON")
	require.NoError(t, Write(path, Report{RunID: "xyz", Folders: sampleFolders()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n"))
	assert.Contains(t, string(data), `"run_id": "xyz"`)

	back, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "xyz", back.RunID)
}
