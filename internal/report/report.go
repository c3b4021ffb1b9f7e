// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes a machine-readable summary of a batch run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/dng-batch/pkg/types"
)

// Report is the on-disk summary of one batch run.
type Report struct {
	RunID      string                `json:"run_id" yaml:"run_id"`
	ListFile   string                `json:"list_file" yaml:"list_file"`
	Converter  string                `json:"converter" yaml:"converter"`
	StartedAt  time.Time             `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time             `json:"finished_at" yaml:"finished_at"`
	Totals     Totals                `json:"totals" yaml:"totals"`
	Folders    []types.FolderSummary `json:"folders" yaml:"folders"`
}

// Totals sums the per-folder counts.
type Totals struct {
	Folders   int   `json:"folders" yaml:"folders"`
	Skipped   int   `json:"skipped_folders" yaml:"skipped_folders"`
	Converted int   `json:"converted" yaml:"converted"`
	Copied    int   `json:"copied" yaml:"copied"`
	Failed    int   `json:"failed" yaml:"failed"`
	Bytes     int64 `json:"bytes" yaml:"bytes"`
}

// Tally computes Totals from folder summaries.
func Tally(folders []types.FolderSummary) Totals {
	t := Totals{Folders: len(folders)}
	for _, f := range folders {
		if f.Status == types.FolderSkipped {
			t.Skipped++
		}
		t.Converted += f.Converted
		t.Copied += f.Copied
		t.Failed += f.Failed
		for _, o := range f.Files {
			t.Bytes += o.Bytes
		}
	}
	return t
}

// Write saves r to path. A .json extension selects JSON; anything else is
// written as YAML.
func Write(path string, r Report) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
	default:
		data, err = yaml.Marshal(&r)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Read loads a report written by Write.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var r Report
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &r)
	} else {
		err = yaml.Unmarshal(data, &r)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return &r, nil
}
