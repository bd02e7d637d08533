// Package tokenizer splits corpus lines into the token strings that feed the
// vocabulary. The default implementation is plain whitespace splitting, which
// is all that pre-segmented corpora need; a SentencePiece model can be applied
// instead when the corpus has not been segmented upstream.
package tokenizer

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kinds accepted by New.
const (
	KindWhitespace    = "whitespace"
	KindSentencePiece = "sentencepiece"
)

// Normalization modes accepted by New.
const (
	NormalizeNone = "none"
	NormalizeNFKC = "nfkc"
)

// Tokenizer turns one line of text into an ordered sequence of tokens.
// Implementations must be pure: the same line always yields the same tokens.
type Tokenizer interface {
	Tokenize(line string) []string
}

// Func adapts a plain function to the Tokenizer interface.
type Func func(line string) []string

// Tokenize implements Tokenizer.
func (f Func) Tokenize(line string) []string { return f(line) }

// Whitespace collapses runs of Unicode whitespace, strips both ends and splits
// on what remains. Empty or all-whitespace input yields an empty slice.
func Whitespace(line string) []string {
	return strings.Fields(line)
}

// NFKC wraps t so that every line is NFKC-normalized before tokenization.
func NFKC(t Tokenizer) Tokenizer {
	return Func(func(line string) []string {
		return t.Tokenize(norm.NFKC.String(line))
	})
}

// Options selects and configures a tokenizer.
type Options struct {
	Kind      string // KindWhitespace or KindSentencePiece
	ModelPath string // SentencePiece model, required for KindSentencePiece
	Normalize string // NormalizeNone or NormalizeNFKC
}

// New builds the tokenizer described by opts. Kind and Normalize are expected
// to be already normalized; empty values mean whitespace and none.
func New(opts Options) (Tokenizer, error) {
	var tok Tokenizer

	switch opts.Kind {
	case "", KindWhitespace:
		tok = Func(Whitespace)
	case KindSentencePiece:
		sp, err := NewSentencePieceTokenizer(opts.ModelPath)
		if err != nil {
			return nil, err
		}

		tok = sp
	default:
		return nil, fmt.Errorf("unknown tokenizer kind %q", opts.Kind)
	}

	switch opts.Normalize {
	case "", NormalizeNone:
		return tok, nil
	case NormalizeNFKC:
		return NFKC(tok), nil
	default:
		return nil, fmt.Errorf("unknown normalization %q", opts.Normalize)
	}
}
