// Package xfs holds the file-system helpers that sit next to xdb: a walker
// that survives unreadable directories, directory sizes, path arithmetic,
// and atomic file replacement.
//
// The walker and DirSize work on any fs.FS, so os.DirFS, embed.FS and
// testing/fstest.MapFS all behave the same. Path helpers work on OS paths.
package xfs

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/natefinch/atomic"
)

// ErrDifferentRoots is returned by RelativePath when no relative path
// exists, e.g. between two Windows volumes or an absolute and a relative path.
var ErrDifferentRoots = errors.New("xfs: paths have different roots")

// WriteFileAtomic replaces the file at path with data. Readers see either
// the old content or the new one, never a partial write.
func WriteFileAtomic(path string, data []byte) error {
	return WriteAtomic(path, bytes.NewReader(data))
}

// WriteAtomic is WriteFileAtomic for streamed content.
func WriteAtomic(path string, r io.Reader) error {
	if err := atomic.WriteFile(path, r); err != nil {
		return fmt.Errorf("xfs: write %s: %w", path, err)
	}
	return nil
}
