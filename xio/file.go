package xio

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-mizu/xdb/xfs"
)

// WriteFile encodes a file with fn and publishes it atomically: either the
// whole record set replaces the old file or, when fn fails, nothing changes.
//
// Example:
//
//	err := xio.WriteFile("index.bin", func(w *xio.Writer) error {
//	    if err := w.WriteUint16(version); err != nil {
//	        return err
//	    }
//	    return w.WriteString(name)
//	})
func WriteFile(path string, fn func(*Writer) error, opts ...Option) error {
	var buf bytes.Buffer
	w := NewWriter(&buf, opts...)
	if err := fn(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return xfs.WriteFileAtomic(path, buf.Bytes())
}

// ReadFile opens path and decodes it with fn.
func ReadFile(path string, fn func(*Reader) error, opts ...Option) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("xio: close %s: %w", path, cerr)
		}
	}()
	return fn(NewReader(f, opts...))
}
