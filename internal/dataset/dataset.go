// Package dataset drives the tokenizer and dictionary over corpus files: it
// builds vocabularies from training text and converts corpora into binarized
// integer-sequence artifacts.
package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/example/seqprep/internal/dictionary"
	"github.com/example/seqprep/internal/tokenizer"
)

// defaultProgressEvery is how many sentences pass between debug progress logs.
const defaultProgressEvery = 100000

// Options configures BuildDictionary and MakeBinaryDataset.
type Options struct {
	Tokenizer     tokenizer.Tokenizer // nil means whitespace
	NoEOS         bool                // do not append </s> to binarized sentences
	Logger        *slog.Logger        // nil means slog.Default()
	ProgressEvery int                 // 0 means defaultProgressEvery
}

func (o Options) tokenizer() tokenizer.Tokenizer {
	if o.Tokenizer == nil {
		return tokenizer.Func(tokenizer.Whitespace)
	}

	return o.Tokenizer
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}

	return o.Logger
}

func (o Options) progressEvery() int {
	if o.ProgressEvery <= 0 {
		return defaultProgressEvery
	}

	return o.ProgressEvery
}

// WordCount pairs a word with its frequency.
type WordCount struct {
	Word  string
	Count int
}

// Stats summarizes one MakeBinaryDataset run.
type Stats struct {
	Input        string
	Output       string
	Sentences    int
	Tokens       int            // ids written, </s> included
	Unknown      int            // occurrences replaced by <unk>
	UnknownWords map[string]int // replaced word -> occurrences
}

// ReplacedPercent is the share of tokens replaced by <unk>, in percent.
func (s Stats) ReplacedPercent() float64 {
	if s.Tokens == 0 {
		return 0
	}

	return 100 * float64(s.Unknown) / float64(s.Tokens)
}

// TopUnknown returns up to n replaced words, most frequent first, ties broken
// alphabetically. n <= 0 returns all of them.
func (s Stats) TopUnknown(n int) []WordCount {
	out := make([]WordCount, 0, len(s.UnknownWords))
	for w, c := range s.UnknownWords {
		out = append(out, WordCount{Word: w, Count: c})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}

		return out[i].Word < out[j].Word
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}

	return out
}

// BuildDictionary scans paths in order and feeds every token, plus one </s>
// per line, into a new dictionary. The result is not finalized.
func BuildDictionary(paths []string, opts Options) (*dictionary.Dictionary, error) {
	dict := dictionary.New()
	tok := opts.tokenizer()
	log := opts.logger()

	for _, path := range paths {
		lines := 0

		err := forEachLine(path, func(_ int, line string) error {
			for _, w := range tok.Tokenize(line) {
				if _, err := dict.AddWord(w); err != nil {
					return err
				}
			}

			if _, err := dict.AddWord(dictionary.EOSWord); err != nil {
				return err
			}

			lines++
			if lines%opts.progressEvery() == 0 {
				log.Debug("scanning corpus", "path", path, "lines", lines, "symbols", dict.Len())
			}

			return nil
		})
		if err != nil {
			return nil, err
		}

		log.Debug("scanned corpus", "path", path, "lines", lines, "symbols", dict.Len())
	}

	return dict, nil
}

// MakeBinaryDataset binarizes every line of input with dict and writes the
// ordered sentences to output as one artifact. dict must be finalized. Nothing
// is written when input cannot be read, and output is never left half-written.
func MakeBinaryDataset(input, output string, dict *dictionary.Dictionary, opts Options) (Stats, error) {
	if !dict.Finalized() {
		return Stats{}, fmt.Errorf("binarize %s: %w: dictionary is %s", input, dictionary.ErrState, dict.State())
	}

	tok := opts.tokenizer()
	log := opts.logger()
	stats := Stats{Input: input, Output: output, UnknownWords: make(map[string]int)}

	consumer := func(word string, _ int32) {
		stats.Unknown++
		stats.UnknownWords[word]++
	}

	var sentences [][]int32

	err := forEachLine(input, func(_ int, line string) error {
		ids := dict.Binarize(line, tok, !opts.NoEOS, consumer)
		sentences = append(sentences, ids)
		stats.Sentences++
		stats.Tokens += len(ids)

		if stats.Sentences%opts.progressEvery() == 0 {
			log.Debug("binarizing", "input", input, "sentences", stats.Sentences)
		}

		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	if err := Write(output, sentences); err != nil {
		return Stats{}, err
	}

	log.Info("built binary dataset",
		"input", input,
		"output", output,
		"sentences", stats.Sentences,
		"tokens", stats.Tokens,
		"replaced_pct", fmt.Sprintf("%.3f", stats.ReplacedPercent()),
		"unk", dictionary.UnkWord,
	)

	return stats, nil
}

// maxLineBytes bounds a single corpus line.
const maxLineBytes = 64 << 20

// forEachLine calls fn for every line of path with surrounding whitespace
// removed. Lines end at "\n", "\r\n" or a lone "\r". A final line without a
// terminator is still delivered.
func forEachLine(path string, fn func(lineNo int, line string) error) error {
	fh, err := os.Open(path)
	if err != nil {
		return &dictionary.IOError{Op: "open", Path: path, Err: err}
	}
	defer fh.Close()

	sc := bufio.NewScanner(fh)
	sc.Buffer(make([]byte, 0, 1<<20), maxLineBytes)
	sc.Split(scanLines)

	lineNo := 0
	for sc.Scan() {
		lineNo++

		line := sc.Bytes()
		if !utf8.Valid(line) {
			return &dictionary.FormatError{Path: path, Line: lineNo, Msg: "invalid UTF-8"}
		}

		if err := fn(lineNo, strings.TrimSpace(string(line))); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}

	if err := sc.Err(); err != nil {
		return &dictionary.IOError{Op: fmt.Sprintf("read line %d of", lineNo+1), Path: path, Err: err}
	}

	return nil
}

// scanLines is a bufio.SplitFunc for universal newlines.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	i := bytes.IndexAny(data, "\r\n")
	switch {
	case i < 0:
		if atEOF {
			return len(data), data, nil
		}

		return 0, nil, nil
	case data[i] == '\n':
		return i + 1, data[:i], nil
	case i+1 < len(data):
		if data[i+1] == '\n' {
			return i + 2, data[:i], nil
		}

		return i + 1, data[:i], nil
	case atEOF:
		return i + 1, data[:i], nil
	default:
		// A trailing '\r' may be the first half of "\r\n".
		return 0, nil, nil
	}
}
