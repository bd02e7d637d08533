// Package atomicfile writes files through a temporary sibling that is renamed
// into place only after every byte has been written and flushed, so readers
// never observe a half-written output.
package atomicfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Write creates path with the given permissions by streaming fn's output into
// a temporary file in the same directory and renaming it over path. On any
// error the temporary file is removed and path is left untouched.
func Write(path string, perm os.FileMode, fn func(w io.Writer) error) error {
	fh, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmp := fh.Name()

	bw := bufio.NewWriter(fh)
	if err := fn(bw); err != nil {
		_ = fh.Close()
		_ = os.Remove(tmp)

		return err
	}

	if err := bw.Flush(); err != nil {
		_ = fh.Close()
		_ = os.Remove(tmp)

		return fmt.Errorf("write temp file: %w", err)
	}

	if err := fh.Chmod(perm); err != nil {
		_ = fh.Close()
		_ = os.Remove(tmp)

		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := fh.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("move temp file into place: %w", err)
	}

	return nil
}

// WriteBytes is Write for a payload that is already in memory.
func WriteBytes(path string, perm os.FileMode, data []byte) error {
	return Write(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
