package testutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/seqprep/internal/testutil"
)

func TestWriteCorpus(t *testing.T) {
	dir := t.TempDir()

	path := testutil.WriteCorpus(t, dir, "train.en", "the cat", "a dog")
	if path != filepath.Join(dir, "train.en") {
		t.Fatalf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if string(data) != "the cat\na dog\n" {
		t.Errorf("content = %q", data)
	}
}

func TestWriteCorpus_Empty(t *testing.T) {
	path := testutil.WriteCorpus(t, t.TempDir(), "empty.en")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if len(data) != 0 {
		t.Errorf("content = %q; want empty", data)
	}
}

func TestWriteParallel(t *testing.T) {
	dir := t.TempDir()

	prefix := testutil.WriteParallel(t, dir, "valid", map[string][]string{
		"en": {"hello"},
		"fr": {"bonjour"},
	})
	if prefix != filepath.Join(dir, "valid") {
		t.Fatalf("prefix = %q", prefix)
	}

	for lang, want := range map[string]string{"en": "hello\n", "fr": "bonjour\n"} {
		data, err := os.ReadFile(prefix + "." + lang)
		if err != nil {
			t.Fatalf("read %s: %v", lang, err)
		}

		if string(data) != want {
			t.Errorf("%s content = %q; want %q", lang, data, want)
		}
	}
}

func TestRequireSentencePieceModel_SkipsWhenEnvPathMissing(t *testing.T) {
	t.Setenv("SEQPREP_TOKENIZER_MODEL_PATH", filepath.Join(t.TempDir(), "absent.model"))

	skipped := false
	fakeT := &skipTracker{TB: t, onSkip: func() { skipped = true }}
	testutil.RequireSentencePieceModel(fakeT)

	if !skipped {
		t.Error("expected RequireSentencePieceModel to skip for a missing env path")
	}
}

func TestRequireSentencePieceModel_UsesEnvPath(t *testing.T) {
	path := testutil.WriteCorpus(t, t.TempDir(), "sp.model", "x")
	t.Setenv("SEQPREP_TOKENIZER_MODEL_PATH", path)

	if got := testutil.RequireSentencePieceModel(t); got != path {
		t.Errorf("RequireSentencePieceModel = %q; want %q", got, path)
	}
}

// skipTracker is a minimal testing.TB implementation that intercepts Skip calls.
type skipTracker struct {
	testing.TB
	onSkip func()
}

func (s *skipTracker) Helper() {}

func (s *skipTracker) Skipf(_ string, _ ...any) {
	s.onSkip()
	// Do NOT call s.TB.Skip; that would skip the outer test.
}

func (s *skipTracker) Skip(_ ...any) {
	s.onSkip()
}
