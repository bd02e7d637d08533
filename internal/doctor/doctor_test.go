package doctor_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/seqprep/internal/dataset"
	"github.com/example/seqprep/internal/dictionary"
	"github.com/example/seqprep/internal/doctor"
	"github.com/example/seqprep/internal/testutil"
)

// writeDest creates dict.en (6 symbols) and train.en in a fresh directory.
func writeDest(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	d := dictionary.New()
	for _, w := range []string{"hello", "world", "hello"} {
		if _, err := d.AddWord(w); err != nil {
			t.Fatal(err)
		}
	}

	if err := d.Finalize(0, 0); err != nil {
		t.Fatal(err)
	}

	if err := d.Save(filepath.Join(dir, "dict.en")); err != nil {
		t.Fatal(err)
	}

	if err := dataset.Write(filepath.Join(dir, "train.en"), [][]int32{{4, 5, 2}, {4, 0, 2}}); err != nil {
		t.Fatal(err)
	}

	return dir
}

// ---------------------------------------------------------------------------
// all-pass scenario
// ---------------------------------------------------------------------------

func TestRun_AllChecksPass(t *testing.T) {
	dest := writeDest(t)
	input := testutil.WriteCorpus(t, t.TempDir(), "train.en", "hello world")

	cfg := doctor.Config{
		Inputs:        []string{input},
		Tokenizer:     "whitespace",
		LoadTokenizer: func() error { return nil },
		DestDir:       dest,
		Langs:         []string{"en"},
	}

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if result.Failed() {
		t.Errorf("expected all checks to pass; failures: %v\n%s", result.Failures(), out.String())
	}

	for _, want := range []string{"tokenizer: whitespace", "input corpus", "6 symbols", "2 sentences", "valid.en: absent, skipped"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	if strings.Contains(out.String(), doctor.FailMark) {
		t.Errorf("output should not contain FailMark:\n%s", out.String())
	}
}

// ---------------------------------------------------------------------------
// tokenizer
// ---------------------------------------------------------------------------

func TestRun_TokenizerFailure(t *testing.T) {
	cfg := doctor.Config{
		Tokenizer:     "sentencepiece",
		LoadTokenizer: func() error { return errModelNotFound },
	}

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if !result.Failed() || !hasFailureContaining(result.Failures(), "tokenizer sentencepiece") {
		t.Fatalf("expected tokenizer failure, got: %v", result.Failures())
	}
}

func TestRun_TokenizerSkipped(t *testing.T) {
	var out strings.Builder
	result := doctor.Run(doctor.Config{}, &out)

	if result.Failed() {
		t.Fatalf("empty config should pass, got: %v", result.Failures())
	}

	if !strings.Contains(out.String(), "tokenizer: skipped") {
		t.Errorf("output = %q", out.String())
	}
}

// ---------------------------------------------------------------------------
// inputs
// ---------------------------------------------------------------------------

func TestRun_MissingInputFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "train.fr")

	var out strings.Builder
	result := doctor.Run(doctor.Config{Inputs: []string{missing}}, &out)

	if !hasFailureContaining(result.Failures(), "train.fr") {
		t.Errorf("expected failure naming the missing corpus, got: %v", result.Failures())
	}

	if !strings.Contains(out.String(), doctor.FailMark) {
		t.Errorf("output should contain FailMark:\n%s", out.String())
	}
}

// ---------------------------------------------------------------------------
// destination directory
// ---------------------------------------------------------------------------

func TestRun_DestNotCreatedYet(t *testing.T) {
	cfg := doctor.Config{DestDir: filepath.Join(t.TempDir(), "bin"), Langs: []string{"en"}}

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if result.Failed() {
		t.Fatalf("missing destination should be skipped, got: %v", result.Failures())
	}

	if !strings.Contains(out.String(), "not created yet") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_DestIsAFile(t *testing.T) {
	path := testutil.WriteCorpus(t, t.TempDir(), "bin", "x")

	var out strings.Builder
	result := doctor.Run(doctor.Config{DestDir: path}, &out)

	if !hasFailureContaining(result.Failures(), "not a directory") {
		t.Errorf("failures = %v", result.Failures())
	}
}

func TestRun_MissingDictionaryFails(t *testing.T) {
	dest := writeDest(t)

	var out strings.Builder
	result := doctor.Run(doctor.Config{DestDir: dest, Langs: []string{"en", "fr"}}, &out)

	failures := result.Failures()
	if len(failures) != 1 || !strings.Contains(failures[0], "dictionary fr") {
		t.Errorf("failures = %v; want only dictionary fr", failures)
	}
}

func TestRun_CorruptDatasetFails(t *testing.T) {
	dest := writeDest(t)
	path := filepath.Join(dest, "train.en")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	data[len(data)-1] ^= 0x01
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	result := doctor.Run(doctor.Config{DestDir: dest, Langs: []string{"en"}}, &out)

	if !hasFailureContaining(result.Failures(), "dataset train.en") {
		t.Errorf("failures = %v", result.Failures())
	}
}

func TestRun_OutOfRangeIDFails(t *testing.T) {
	dest := writeDest(t)

	if err := dataset.Write(filepath.Join(dest, "test.en"), [][]int32{{4, 42, 2}}); err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	result := doctor.Run(doctor.Config{DestDir: dest, Langs: []string{"en"}, Splits: []string{"test"}}, &out)

	if !hasFailureContaining(result.Failures(), "id 42") {
		t.Errorf("failures = %v", result.Failures())
	}
}

func TestResult_AddFailure(t *testing.T) {
	var r doctor.Result
	if r.Failed() {
		t.Fatal("zero Result should not be failed")
	}

	r.AddFailure("external")

	if !r.Failed() || r.Failures()[0] != "external" {
		t.Errorf("Failures = %v", r.Failures())
	}
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

type sentinelError string

func (e sentinelError) Error() string { return string(e) }

var errModelNotFound = sentinelError("model not found")

func hasFailureContaining(failures []string, substr string) bool {
	for _, f := range failures {
		if strings.Contains(f, substr) {
			return true
		}
	}

	return false
}
