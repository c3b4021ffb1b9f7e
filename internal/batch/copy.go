// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"io"
	"os"
)

// copyFile copies src to dst byte for byte, keeping the permission bits and
// modification time. dst must not exist; a partial dst is removed on error.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("creating destination: %w", err)
	}

	n, err := io.Copy(out, in)
	if err == nil {
		err = out.Sync()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dst)
		return 0, fmt.Errorf("copying %s: %w", src, err)
	}
	if n != info.Size() {
		os.Remove(dst)
		return 0, fmt.Errorf("short copy of %s: wrote %d of %d bytes", src, n, info.Size())
	}

	// Some filesystems reject timestamp changes; the bytes are what matter.
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return n, nil
}
