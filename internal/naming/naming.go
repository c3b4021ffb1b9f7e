// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package naming picks collision-free output names and classifies RAW files
// by extension.
package naming

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxSuffix bounds the collision search so a pathological directory cannot
// spin forever.
const maxSuffix = 100000

// UniquePath returns a file name inside dir that does not exist yet. The
// first candidate is base+ext; after that base_1+ext, base_2+ext and so on.
// ext may be given with or without the leading dot. counter is the suffix
// that was used, 0 when base+ext was free.
func UniquePath(dir, base, ext string) (name, path string, counter int, err error) {
	ext = NormalizeExt(ext)

	for counter = 0; counter <= maxSuffix; counter++ {
		if counter == 0 {
			name = base + ext
		} else {
			name = fmt.Sprintf("%s_%d%s", base, counter, ext)
		}
		path = filepath.Join(dir, name)

		_, statErr := os.Lstat(path)
		if errors.Is(statErr, fs.ErrNotExist) {
			return name, path, counter, nil
		}
		if statErr != nil {
			return "", "", 0, fmt.Errorf("checking %s: %w", path, statErr)
		}
	}
	return "", "", 0, fmt.Errorf("no free name for %s%s in %s after %d attempts", base, ext, dir, maxSuffix)
}

// NormalizeExt guarantees a leading dot on a non-empty extension.
func NormalizeExt(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// Stem returns the file name without directory and final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsRaw reports whether name carries one of exts, compared case-insensitively.
func IsRaw(name string, exts []string) bool {
	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.EqualFold(ext, NormalizeExt(e)) {
			return true
		}
	}
	return false
}
