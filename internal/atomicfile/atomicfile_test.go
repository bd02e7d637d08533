package atomicfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteBytes_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")

	if err := WriteBytes(path, 0o644, []byte("payload")); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if string(got) != "payload" {
		t.Errorf("content = %q; want %q", got, "payload")
	}
}

func TestWrite_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := WriteBytes(path, 0o644, []byte("new")); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "new" {
		t.Errorf("content = %q; want %q", got, "new")
	}
}

func TestWrite_CallbackErrorLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	boom := errors.New("boom")

	err := Write(path, 0o644, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Write error = %v; want %v", err, boom)
	}

	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("output exists after failed write (stat err = %v)", statErr)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	if len(entries) != 0 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestWrite_CallbackErrorKeepsPreviousContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_ = Write(path, 0o644, func(io.Writer) error { return errors.New("fail") })

	got, _ := os.ReadFile(path)
	if string(got) != "old" {
		t.Errorf("content = %q; want previous content preserved", got)
	}
}

func TestWrite_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.txt")

	if err := WriteBytes(path, 0o644, []byte("x")); err == nil {
		t.Fatal("expected error when parent directory does not exist")
	}
}
