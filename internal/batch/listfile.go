// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadFolderList reads a folder list: one path per line. Surrounding
// whitespace is trimmed, blank lines are dropped, and a leading UTF-8 byte
// order mark (common in lists saved by Windows editors) is ignored.
func ReadFolderList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening folder list: %w", err)
	}
	defer f.Close()

	var folders []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for first := true; sc.Scan(); first = false {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		folders = append(folders, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading folder list %s: %w", path, err)
	}
	return folders, nil
}
