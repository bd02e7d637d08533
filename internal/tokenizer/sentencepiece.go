package tokenizer

import (
	"errors"
	"fmt"
	"os"
	"strings"

	gosp "github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"
	"google.golang.org/protobuf/proto"
)

// ErrEmptyPath is returned when NewSentencePieceTokenizer is called with an empty path.
var ErrEmptyPath = errors.New("sentencepiece model path must not be empty")

// SentencePieceTokenizer applies a pre-trained UNIGRAM SentencePiece model and
// returns piece strings, so the resulting vocabulary is built over pieces
// rather than whole words.
type SentencePieceTokenizer struct {
	proc   gosp.Sentencepiece
	pieces []string
}

// NewSentencePieceTokenizer loads a SentencePiece model from the given path.
func NewSentencePieceTokenizer(modelPath string) (*SentencePieceTokenizer, error) {
	if modelPath == "" {
		return nil, ErrEmptyPath
	}

	data, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("read sentencepiece model %q: %w", modelPath, err)
	}

	pieces, err := pieceTable(data)
	if err != nil {
		return nil, fmt.Errorf("sentencepiece model %q: %w", modelPath, err)
	}

	proc, err := gosp.NewSentencepieceFromFile(modelPath, false)
	if err != nil {
		return nil, fmt.Errorf("load sentencepiece model %q: %w", modelPath, err)
	}

	return &SentencePieceTokenizer{proc: proc, pieces: pieces}, nil
}

// Tokenize implements Tokenizer. Ids outside the piece table are dropped.
func (t *SentencePieceTokenizer) Tokenize(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return []string{}
	}

	ids := t.proc.TokenizeToIDs(line)

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		i := int(id)
		if i < 0 || i >= len(t.pieces) {
			continue
		}

		out = append(out, t.pieces[i])
	}

	return out
}

// pieceTable decodes the model protobuf and returns piece strings indexed by id.
func pieceTable(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, errors.New("model data must not be empty")
	}

	var model gosp.ModelProto
	if err := proto.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("unmarshal model: %w", err)
	}

	pieces := model.GetPieces()
	if len(pieces) == 0 {
		return nil, errors.New("model has no pieces")
	}

	out := make([]string, len(pieces))
	for i, p := range pieces {
		out[i] = p.GetPiece()
	}

	return out, nil
}
