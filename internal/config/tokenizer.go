package config

import (
	"fmt"
	"strings"

	"github.com/example/seqprep/internal/tokenizer"
)

const (
	TokenizerWhitespace    = tokenizer.KindWhitespace
	TokenizerSentencePiece = tokenizer.KindSentencePiece

	NormalizeNone = tokenizer.NormalizeNone
	NormalizeNFKC = tokenizer.NormalizeNFKC
)

func NormalizeTokenizerKind(raw string) (string, error) {
	kind := strings.ToLower(strings.TrimSpace(raw))
	if kind == "" {
		kind = TokenizerWhitespace
	}

	switch kind {
	case TokenizerWhitespace, TokenizerSentencePiece:
		return kind, nil
	case "ws", "space":
		return TokenizerWhitespace, nil
	case "spm", "sp":
		return TokenizerSentencePiece, nil
	default:
		return "", fmt.Errorf(
			"invalid tokenizer %q (expected %s|%s|spm)",
			raw,
			TokenizerWhitespace,
			TokenizerSentencePiece,
		)
	}
}

func NormalizeNormalization(raw string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	if mode == "" {
		mode = NormalizeNone
	}

	switch mode {
	case NormalizeNone, NormalizeNFKC:
		return mode, nil
	case "off", "false":
		return NormalizeNone, nil
	default:
		return "", fmt.Errorf("invalid normalization %q (expected %s|%s)", raw, NormalizeNone, NormalizeNFKC)
	}
}

// TokenizerOptions validates the tokenizer section and converts it for
// tokenizer.New.
func (c TokenizerConfig) TokenizerOptions() (tokenizer.Options, error) {
	kind, err := NormalizeTokenizerKind(c.Kind)
	if err != nil {
		return tokenizer.Options{}, err
	}

	mode, err := NormalizeNormalization(c.Normalize)
	if err != nil {
		return tokenizer.Options{}, err
	}

	if kind == TokenizerSentencePiece && strings.TrimSpace(c.ModelPath) == "" {
		return tokenizer.Options{}, fmt.Errorf("tokenizer %s requires --sentencepiece-model", kind)
	}

	return tokenizer.Options{Kind: kind, ModelPath: c.ModelPath, Normalize: mode}, nil
}
