// Package testutil provides shared fixtures and skip helpers for tests.
//
// Corpus helpers write small UTF-8 files into a test's temp directory so that
// dictionary and dataset code can be exercised against real files:
//
//	func TestBuild(t *testing.T) {
//	    dir := t.TempDir()
//	    prefix := testutil.WriteParallel(t, dir, "train", map[string][]string{
//	        "en": {"the cat", "a dog"},
//	        "fr": {"le chat", "un chien"},
//	    })
//	    ...
//	}
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteCorpus writes lines, one per line with a trailing newline, to
// dir/name and returns the path.
func WriteCorpus(tb testing.TB, dir, name string, lines ...string) string {
	tb.Helper()

	path := filepath.Join(dir, name)

	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("write corpus %s: %v", path, err)
	}

	return path
}

// WriteParallel writes dir/<split>.<lang> for every language in corpora and
// returns the prefix dir/<split>.
func WriteParallel(tb testing.TB, dir, split string, corpora map[string][]string) string {
	tb.Helper()

	for lang, lines := range corpora {
		WriteCorpus(tb, dir, split+"."+lang, lines...)
	}

	return filepath.Join(dir, split)
}

// RequireSentencePieceModel returns the path of a SentencePiece model for
// integration tests, or skips the test. It checks SEQPREP_TOKENIZER_MODEL_PATH
// first, then models/sentencepiece.model in the working directory and its
// parents.
func RequireSentencePieceModel(tb testing.TB) string {
	tb.Helper()

	if p := os.Getenv("SEQPREP_TOKENIZER_MODEL_PATH"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}

		tb.Skipf("SentencePiece model not found at SEQPREP_TOKENIZER_MODEL_PATH=%q", p)
	}

	dir, err := filepath.Abs(".")
	if err != nil {
		tb.Skipf("abs path: %v", err)
	}

	for {
		candidate := filepath.Join(dir, "models", "sentencepiece.model")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	tb.Skip("models/sentencepiece.model not found; set SEQPREP_TOKENIZER_MODEL_PATH to run")

	return ""
}
