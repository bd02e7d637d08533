package dataset

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/example/seqprep/internal/dictionary"
	"github.com/example/seqprep/internal/safetensors"
)

// Format identifies binarized dataset files in the safetensors metadata.
const Format = "seqprep.binarized.v1"

const (
	lengthsTensor = "lengths"
	tokensTensor  = "tokens"
)

// Write persists sentences to path as a single safetensors artifact holding
// per-sentence lengths and the concatenated ids. The file only appears once it
// is complete.
func Write(path string, sentences [][]int32) error {
	lengths := make([]int64, len(sentences))
	total := 0

	for i, s := range sentences {
		lengths[i] = int64(len(s))
		total += len(s)
	}

	tokens := make([]int64, 0, total)
	for _, s := range sentences {
		for _, id := range s {
			tokens = append(tokens, int64(id))
		}
	}

	tensors := []safetensors.Tensor{
		{Name: lengthsTensor, DType: safetensors.DTypeI32, Shape: []int64{int64(len(lengths))}, Data: lengths},
		{Name: tokensTensor, DType: safetensors.DTypeI32, Shape: []int64{int64(len(tokens))}, Data: tokens},
	}
	meta := map[string]string{
		"format":    Format,
		"sentences": strconv.Itoa(len(sentences)),
		"tokens":    strconv.Itoa(total),
	}

	if err := safetensors.WriteFile(path, tensors, meta); err != nil {
		return &dictionary.IOError{Op: "write", Path: path, Err: err}
	}

	return nil
}

// Read loads a dataset written by Write. Any inconsistency in the artifact is
// reported as a *dictionary.FormatError.
func Read(path string) ([][]int32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &dictionary.IOError{Op: "read", Path: path, Err: err}
	}

	store, err := safetensors.OpenStoreFromBytes(data)
	if err != nil {
		return nil, formatErr(path, err.Error())
	}
	defer store.Close()

	meta := store.Metadata()
	if meta["format"] != Format {
		return nil, formatErr(path, fmt.Sprintf("unexpected format %q (want %q)", meta["format"], Format))
	}

	if meta[safetensors.ChecksumKey] == "" {
		return nil, formatErr(path, "missing payload checksum")
	}

	lengths, err := store.TensorWithRank(lengthsTensor, 1)
	if err != nil {
		return nil, formatErr(path, err.Error())
	}

	tokens, err := store.TensorWithRank(tokensTensor, 1)
	if err != nil {
		return nil, formatErr(path, err.Error())
	}

	if n, err := strconv.Atoi(meta["sentences"]); err != nil || n != len(lengths.Data) {
		return nil, formatErr(path, fmt.Sprintf("metadata sentences=%q, artifact holds %d", meta["sentences"], len(lengths.Data)))
	}

	if n, err := strconv.Atoi(meta["tokens"]); err != nil || n != len(tokens.Data) {
		return nil, formatErr(path, fmt.Sprintf("metadata tokens=%q, artifact holds %d", meta["tokens"], len(tokens.Data)))
	}

	sentences := make([][]int32, len(lengths.Data))
	offset := 0

	for i, l := range lengths.Data {
		if l < 0 || int64(offset)+l > int64(len(tokens.Data)) {
			return nil, formatErr(path, fmt.Sprintf("sentence %d length %d overruns %d tokens", i, l, len(tokens.Data)))
		}

		s := make([]int32, l)
		for j := range s {
			s[j] = int32(tokens.Data[offset+j])
		}

		sentences[i] = s
		offset += int(l)
	}

	if offset != len(tokens.Data) {
		return nil, formatErr(path, fmt.Sprintf("lengths cover %d of %d tokens", offset, len(tokens.Data)))
	}

	return sentences, nil
}

func formatErr(path, msg string) error {
	return &dictionary.FormatError{Path: path, Msg: msg}
}

// IsFormatError reports whether err stems from a malformed artifact.
func IsFormatError(err error) bool {
	return errors.Is(err, dictionary.ErrFormat)
}
