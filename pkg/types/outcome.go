// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data shared between the batch, history, and
// report packages.
package types

import "time"

// Action records what happened to a single RAW file.
type Action string

const (
	ActionConverted Action = "converted"
	ActionCopied    Action = "copied"
	ActionFailed    Action = "failed"
)

// FileOutcome is the result of processing one RAW file.
type FileOutcome struct {
	// Source is the absolute path of the RAW input.
	Source string `json:"source" yaml:"source"`

	// Output is the path written to the destination directory. Empty when
	// both conversion and the fallback copy failed.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	Action Action `json:"action" yaml:"action"`

	// Renamed is true when a collision forced a numeric suffix.
	Renamed bool `json:"renamed" yaml:"renamed"`

	// Detail carries the converter's cleaned stderr or the copy error.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`

	Bytes    int64         `json:"bytes" yaml:"bytes"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	At       time.Time     `json:"at" yaml:"at"`
}

// FolderStatus describes how a listed folder was handled as a whole.
type FolderStatus string

const (
	FolderProcessed FolderStatus = "processed"
	FolderEmpty     FolderStatus = "empty"
	FolderSkipped   FolderStatus = "skipped"
)

// FolderSummary aggregates the outcomes for one listed folder.
type FolderSummary struct {
	Folder      string        `json:"folder" yaml:"folder"`
	Destination string        `json:"destination,omitempty" yaml:"destination,omitempty"`
	Status      FolderStatus  `json:"status" yaml:"status"`
	Reason      string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	Converted   int           `json:"converted" yaml:"converted"`
	Copied      int           `json:"copied" yaml:"copied"`
	Failed      int           `json:"failed" yaml:"failed"`
	Files       []FileOutcome `json:"files,omitempty" yaml:"files,omitempty"`
}

// Total returns the number of RAW files seen in the folder.
func (s FolderSummary) Total() int {
	return s.Converted + s.Copied + s.Failed
}

// Add tallies an outcome into the summary.
func (s *FolderSummary) Add(o FileOutcome) {
	switch o.Action {
	case ActionConverted:
		s.Converted++
	case ActionCopied:
		s.Copied++
	case ActionFailed:
		s.Failed++
	}
	s.Files = append(s.Files, o)
}
