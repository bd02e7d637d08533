// Package doctor provides preflight and verification checks for a
// preprocessing run: input corpora, the tokenizer, and the dictionaries and
// binarized datasets in a destination directory.
package doctor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/example/seqprep/internal/dataset"
	"github.com/example/seqprep/internal/dictionary"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// DefaultSplits are the dataset stems checked when Config.Splits is empty.
var DefaultSplits = []string{"train", "tiny_train", "valid", "test"}

// Config holds the inputs and injectable dependencies for each doctor check.
type Config struct {
	// Inputs are corpus files that must exist and be readable.
	Inputs []string
	// Tokenizer describes the configured tokenizer, for example "whitespace".
	Tokenizer string
	// LoadTokenizer builds the configured tokenizer. Nil skips the check.
	LoadTokenizer func() error
	// DestDir is the preprocessing output directory. Empty skips artifact checks.
	DestDir string
	// Langs are the languages whose dict.<lang> and <split>.<lang> files are verified.
	Langs []string
	// Splits overrides DefaultSplits.
	Splits []string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- tokenizer --------------------------------------------------------
	if cfg.LoadTokenizer == nil {
		fmt.Fprintf(w, "%s tokenizer: skipped\n", PassMark)
	} else if err := cfg.LoadTokenizer(); err != nil {
		res.fail(fmt.Sprintf("tokenizer %s: %v", cfg.Tokenizer, err))
		fmt.Fprintf(w, "%s tokenizer %s: %v\n", FailMark, cfg.Tokenizer, err)
	} else {
		fmt.Fprintf(w, "%s tokenizer: %s\n", PassMark, cfg.Tokenizer)
	}

	// ---- input corpora ----------------------------------------------------
	for _, path := range cfg.Inputs {
		if err := checkReadable(path); err != nil {
			res.fail(fmt.Sprintf("input corpus %q: %v", path, err))
			fmt.Fprintf(w, "%s input corpus %s: %v\n", FailMark, path, err)
		} else {
			fmt.Fprintf(w, "%s input corpus: %s\n", PassMark, path)
		}
	}

	// ---- destination directory --------------------------------------------
	if cfg.DestDir == "" {
		return res
	}

	info, err := os.Stat(cfg.DestDir)

	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintf(w, "%s destination %s: not created yet, skipped\n", PassMark, cfg.DestDir)
		return res
	case err != nil:
		res.fail(fmt.Sprintf("destination %q: %v", cfg.DestDir, err))
		fmt.Fprintf(w, "%s destination %s: %v\n", FailMark, cfg.DestDir, err)

		return res
	case !info.IsDir():
		res.fail(fmt.Sprintf("destination %q: not a directory", cfg.DestDir))
		fmt.Fprintf(w, "%s destination %s: not a directory\n", FailMark, cfg.DestDir)

		return res
	}

	fmt.Fprintf(w, "%s destination: %s\n", PassMark, cfg.DestDir)

	splits := cfg.Splits
	if len(splits) == 0 {
		splits = DefaultSplits
	}

	for _, lang := range cfg.Langs {
		checkLanguage(&res, w, cfg.DestDir, lang, splits)
	}

	return res
}

func checkLanguage(res *Result, w io.Writer, dir, lang string, splits []string) {
	dictPath := filepath.Join(dir, "dict."+lang)

	dict, err := dictionary.Load(dictPath)
	if err != nil {
		res.fail(fmt.Sprintf("dictionary %s: %v", lang, err))
		fmt.Fprintf(w, "%s dictionary %s: %v\n", FailMark, dictPath, err)

		return
	}

	fmt.Fprintf(w, "%s dictionary %s: %d symbols\n", PassMark, dictPath, dict.Len())

	for _, split := range splits {
		path := filepath.Join(dir, split+"."+lang)

		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(w, "%s dataset %s: absent, skipped\n", PassMark, path)
			continue
		}

		sentences, err := dataset.Read(path)
		if err == nil {
			err = CheckIDs(sentences, dict.Len())
		}

		if err != nil {
			res.fail(fmt.Sprintf("dataset %s.%s: %v", split, lang, err))
			fmt.Fprintf(w, "%s dataset %s: %v\n", FailMark, path, err)

			continue
		}

		fmt.Fprintf(w, "%s dataset %s: %d sentences\n", PassMark, path, len(sentences))
	}
}

// CheckIDs returns an error naming the first id outside [0, size).
func CheckIDs(sentences [][]int32, size int) error {
	for i, s := range sentences {
		for j, id := range s {
			if id < 0 || int(id) >= size {
				return fmt.Errorf("sentence %d position %d: id %d outside dictionary of %d symbols", i, j, id, size)
			}
		}
	}

	return nil
}

func checkReadable(path string) error {
	fh, err := os.Open(path)
	if err != nil {
		return err
	}

	return fh.Close()
}
