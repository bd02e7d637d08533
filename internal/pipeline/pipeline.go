// Package pipeline drives a full preprocessing run: one dictionary per
// language, then one binarized dataset per language and split.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/example/seqprep/internal/dataset"
	"github.com/example/seqprep/internal/dictionary"
	"github.com/example/seqprep/internal/tokenizer"
)

// Split names, in processing order. They double as output file stems.
const (
	SplitTrain     = "train"
	SplitTinyTrain = "tiny_train"
	SplitValid     = "valid"
	SplitTest      = "test"
)

// ErrConfig reports options that cannot describe a run.
var ErrConfig = errors.New("invalid pipeline options")

// Vocab controls how the dictionary for one language is obtained.
type Vocab struct {
	Threshold int    // words seen fewer times map to <unk>; <= 0 keeps all
	NumWords  int    // dictionary size cap including specials; <= 0 means no cap
	Path      string // pre-built dictionary; skips building from the train split
}

type Options struct {
	SourceLang string
	TargetLang string

	TrainPrefix     string
	TinyTrainPrefix string
	ValidPrefix     string
	TestPrefix      string

	DestDir string

	Source Vocab
	Target Vocab

	Tokenizer tokenizer.Tokenizer
	NoEOS     bool
	Quiet     bool
	Logger    *slog.Logger
}

// SplitResult holds the outcome of binarizing one split of one language.
type SplitResult struct {
	Split string
	Lang  string
	Stats dataset.Stats
}

// LangResult describes the dictionary used for one language.
type LangResult struct {
	Lang   string
	Path   string // dict.<lang> in the destination directory
	Size   int
	Loaded bool // read from Vocab.Path instead of built
}

type Result struct {
	DestDir string
	Langs   []LangResult
	Splits  []SplitResult
}

// Prefixes returns the split prefixes that are set, in processing order.
func (o Options) Prefixes() []SplitPrefix {
	all := []SplitPrefix{
		{SplitTrain, o.TrainPrefix},
		{SplitTinyTrain, o.TinyTrainPrefix},
		{SplitValid, o.ValidPrefix},
		{SplitTest, o.TestPrefix},
	}

	out := all[:0]
	for _, sp := range all {
		if sp.Prefix != "" {
			out = append(out, sp)
		}
	}

	return out
}

// SplitPrefix pairs a split name with its corpus prefix.
type SplitPrefix struct {
	Split  string
	Prefix string
}

// Langs returns the source language followed by the target language, if set.
func (o Options) Langs() []string {
	if o.TargetLang == "" {
		return []string{o.SourceLang}
	}

	return []string{o.SourceLang, o.TargetLang}
}

func (o Options) vocab(lang string) Vocab {
	if lang == o.SourceLang {
		return o.Source
	}

	return o.Target
}

// Validate checks that the options describe a runnable job.
func (o Options) Validate() error {
	if o.SourceLang == "" {
		return fmt.Errorf("%w: source language is required", ErrConfig)
	}

	if o.TargetLang == o.SourceLang {
		return fmt.Errorf("%w: source and target language are both %q", ErrConfig, o.SourceLang)
	}

	if o.DestDir == "" {
		return fmt.Errorf("%w: destination directory is required", ErrConfig)
	}

	for _, lang := range o.Langs() {
		if o.TrainPrefix == "" && o.vocab(lang).Path == "" {
			return fmt.Errorf("%w: %s: no train prefix and no vocabulary path", ErrConfig, lang)
		}
	}

	return nil
}

// Run executes the pipeline. It stops at the first failure; outputs already
// written stay in place.
func Run(opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	if opts.Quiet {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := os.MkdirAll(opts.DestDir, 0o755); err != nil {
		return nil, &dictionary.IOError{Op: "create", Path: opts.DestDir, Err: err}
	}

	dsOpts := dataset.Options{Tokenizer: opts.Tokenizer, NoEOS: opts.NoEOS, Logger: log}
	res := &Result{DestDir: opts.DestDir}
	dicts := make(map[string]*dictionary.Dictionary, 2)

	for _, lang := range opts.Langs() {
		dict, lr, err := prepareDictionary(opts, lang, dsOpts)
		if err != nil {
			return nil, fmt.Errorf("dictionary %s: %w", lang, err)
		}

		verb := "built"
		if lr.Loaded {
			verb = "loaded"
		}

		log.Info(verb+" dictionary", "lang", lang, "words", lr.Size, "path", lr.Path)

		dicts[lang] = dict
		res.Langs = append(res.Langs, lr)
	}

	for _, lang := range opts.Langs() {
		for _, sp := range opts.Prefixes() {
			input := sp.Prefix + "." + lang
			output := filepath.Join(opts.DestDir, sp.Split+"."+lang)

			stats, err := dataset.MakeBinaryDataset(input, output, dicts[lang], dsOpts)
			if err != nil {
				return nil, fmt.Errorf("split %s (%s): %w", sp.Split, lang, err)
			}

			res.Splits = append(res.Splits, SplitResult{Split: sp.Split, Lang: lang, Stats: stats})
		}
	}

	return res, nil
}

func prepareDictionary(opts Options, lang string, dsOpts dataset.Options) (*dictionary.Dictionary, LangResult, error) {
	v := opts.vocab(lang)
	lr := LangResult{Lang: lang, Path: filepath.Join(opts.DestDir, "dict."+lang)}

	var (
		dict *dictionary.Dictionary
		err  error
	)

	if v.Path != "" {
		dict, err = dictionary.Load(v.Path)
		if err != nil {
			return nil, lr, err
		}

		lr.Loaded = true
	} else {
		dict, err = dataset.BuildDictionary([]string{opts.TrainPrefix + "." + lang}, dsOpts)
		if err != nil {
			return nil, lr, err
		}

		if err := dict.Finalize(v.Threshold, v.NumWords); err != nil {
			return nil, lr, err
		}
	}

	if err := dict.Save(lr.Path); err != nil {
		return nil, lr, err
	}

	lr.Size = dict.Len()

	return dict, lr, nil
}
