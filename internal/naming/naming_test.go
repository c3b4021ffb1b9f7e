// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package naming

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestUniquePath(t *testing.T) {
	tests := []struct {
		name        string
		existing    []string
		base        string
		ext         string
		wantName    string
		wantCounter int
	}{
		{
			name:     "free name is used as is",
			base:     "IMG_0001",
			ext:      ".dng",
			wantName: "IMG_0001.dng",
		},
		{
			name:     "extension without dot is normalized",
			base:     "IMG_0001",
			ext:      "dng",
			wantName: "IMG_0001.dng",
		},
		{
			name:        "single collision gets _1",
			existing:    []string{"IMG_0001.dng"},
			base:        "IMG_0001",
			ext:         ".dng",
			wantName:    "IMG_0001_1.dng",
			wantCounter: 1,
		},
		{
			name:        "counter keeps incrementing",
			existing:    []string{"IMG_0001.dng", "IMG_0001_1.dng", "IMG_0001_2.dng"},
			base:        "IMG_0001",
			ext:         ".dng",
			wantName:    "IMG_0001_3.dng",
			wantCounter: 3,
		},
		{
			name:     "gap in suffixes is not reused before base",
			existing: []string{"IMG_0001_1.dng"},
			base:     "IMG_0001",
			ext:      ".dng",
			wantName: "IMG_0001.dng",
		},
		{
			name:        "original extension preserved for copies",
			existing:    []string{"IMG_0002.CR3"},
			base:        "IMG_0002",
			ext:         ".CR3",
			wantName:    "IMG_0002_1.CR3",
			wantCounter: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, name := range tt.existing {
				touch(t, dir, name)
			}

			name, path, counter, err := UniquePath(dir, tt.base, tt.ext)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, filepath.Join(dir, tt.wantName), path)
			assert.Equal(t, tt.wantCounter, counter)
		})
	}
}

func TestUniquePath_DirectoryCountsAsCollision(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "shot.dng"), 0o755))

	name, _, counter, err := UniquePath(dir, "shot", ".dng")
	require.NoError(t, err)
	assert.Equal(t, "shot_1.dng", name)
	assert.Equal(t, 1, counter)
}

func TestIsRaw(t *testing.T) {
	exts := []string{".cr2", "cr3"}
	tests := []struct {
		name string
		want bool
	}{
		{"IMG_0001.CR2", true},
		{"IMG_0001.cr3", true},
		{"IMG_0001.Cr3", true},
		{"IMG_0001.jpg", false},
		{"IMG_0001", false},
		{"cr2", false},
		{"notes.cr2.txt", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRaw(tt.name, exts))
		})
	}
}

func TestStem(t *testing.T) {
	assert.Equal(t, "IMG_0001", Stem("/photos/IMG_0001.CR2"))
	assert.Equal(t, "archive.tar", Stem("archive.tar.gz"))
	assert.Equal(t, "noext", Stem("noext"))
}
