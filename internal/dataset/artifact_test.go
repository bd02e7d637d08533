package dataset

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"github.com/cespare/xxhash/v2"

	"github.com/example/seqprep/internal/dictionary"
	"github.com/example/seqprep/internal/safetensors"
)

func writeSample(t *testing.T) (string, [][]int32) {
	t.Helper()

	sentences := [][]int32{{4, 5, 2}, {2}, {6, 0, 7, 2}}
	path := filepath.Join(t.TempDir(), "sample.bin")

	if err := Write(path, sentences); err != nil {
		t.Fatalf("Write: %v", err)
	}

	return path, sentences
}

func TestArtifact_RoundTrip(t *testing.T) {
	path, want := writeSample(t)

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read = %v; want %v", got, want)
	}
}

func TestArtifact_Metadata(t *testing.T) {
	path, _ := writeSample(t)

	store, err := safetensors.OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	meta := store.Metadata()
	if meta["format"] != Format || meta["sentences"] != "3" || meta["tokens"] != "8" {
		t.Errorf("metadata = %v", meta)
	}

	if meta[safetensors.ChecksumKey] == "" {
		t.Error("metadata is missing the payload checksum")
	}

	if names := store.Names(); !reflect.DeepEqual(names, []string{lengthsTensor, tokensTensor}) {
		t.Errorf("Names = %v", names)
	}
}

func TestRead_Corruption(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"flipped payload byte", func(b []byte) []byte {
			b[len(b)-1] ^= 0xff
			return b
		}},
		{"truncated payload", func(b []byte) []byte { return b[:len(b)-3] }},
		{"truncated header", func(b []byte) []byte { return b[:12] }},
		{"too short", func(b []byte) []byte { return b[:4] }},
		{"trailing garbage", func(b []byte) []byte { return append(b, 0, 0, 0, 0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, _ := writeSample(t)

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}

			if err := os.WriteFile(path, tt.mutate(data), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err = Read(path)
			if !IsFormatError(err) {
				t.Fatalf("Read error = %v; want a format error", err)
			}

			var fe *dictionary.FormatError
			if !errors.As(err, &fe) || fe.Path != path {
				t.Errorf("error %v should be a *FormatError naming %s", err, path)
			}
		})
	}
}

func TestRead_ForeignArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.safetensors")
	tensors := []safetensors.Tensor{{Name: "weights", Shape: []int64{2}, Data: []int64{1, 2}}}

	if err := safetensors.WriteFile(path, tensors, map[string]string{"format": "pt"}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Read(path); !IsFormatError(err) {
		t.Fatalf("Read error = %v; want a format error", err)
	}
}

func TestRead_InconsistentLengths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	tensors := []safetensors.Tensor{
		{Name: lengthsTensor, Shape: []int64{2}, Data: []int64{2, 5}},
		{Name: tokensTensor, Shape: []int64{3}, Data: []int64{4, 5, 2}},
	}
	meta := map[string]string{"format": Format, "sentences": "2", "tokens": "3"}

	if err := safetensors.WriteFile(path, tensors, meta); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Read(path); !IsFormatError(err) {
		t.Fatalf("Read error = %v; want a format error", err)
	}
}

func TestRead_MetadataMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	tensors := []safetensors.Tensor{
		{Name: lengthsTensor, Shape: []int64{1}, Data: []int64{1}},
		{Name: tokensTensor, Shape: []int64{1}, Data: []int64{2}},
	}
	meta := map[string]string{"format": Format, "sentences": "4", "tokens": "1"}

	if err := safetensors.WriteFile(path, tensors, meta); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Read(path); !IsFormatError(err) {
		t.Fatalf("Read error = %v; want a format error", err)
	}
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.bin"))

	var ioErr *dictionary.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Read error = %v; want *dictionary.IOError", err)
	}
}

// writeRawArtifact stores a hand-assembled safetensors file. When withChecksum
// is set the metadata carries a valid xxh64 of body.
func writeRawArtifact(t *testing.T, tensors map[string]any, meta map[string]string, body []byte, withChecksum bool) string {
	t.Helper()

	header := map[string]any{}
	for k, v := range tensors {
		header[k] = v
	}

	m := map[string]string{}
	for k, v := range meta {
		m[k] = v
	}

	if withChecksum {
		m[safetensors.ChecksumKey] = strconv.FormatUint(xxhash.Sum64(body), 16)
	}

	header["__metadata__"] = m

	headerJSON, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	data := binary.LittleEndian.AppendUint64(nil, uint64(len(headerJSON)))
	data = append(data, headerJSON...)
	data = append(data, body...)

	path := filepath.Join(t.TempDir(), "raw.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

type rawEntry struct {
	DType   string  `json:"dtype"`
	Shape   []int64 `json:"shape"`
	Offsets [2]int  `json:"data_offsets"`
}

func TestRead_ShapeLargerThanPayload(t *testing.T) {
	tensors := map[string]any{
		lengthsTensor: rawEntry{DType: "I32", Shape: []int64{0}, Offsets: [2]int{0, 0}},
		tokensTensor:  rawEntry{DType: "I32", Shape: []int64{1 << 62}, Offsets: [2]int{0, 0}},
	}
	meta := map[string]string{"format": Format, "sentences": "0", "tokens": "0"}
	path := writeRawArtifact(t, tensors, meta, nil, true)

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Read panicked: %v", r)
		}
	}()

	if _, err := Read(path); !IsFormatError(err) {
		t.Fatalf("Read error = %v; want a format error", err)
	}
}

func TestRead_RequiresChecksum(t *testing.T) {
	body := binary.LittleEndian.AppendUint32(nil, 1)
	body = binary.LittleEndian.AppendUint32(body, 2)

	tensors := map[string]any{
		lengthsTensor: rawEntry{DType: "I32", Shape: []int64{1}, Offsets: [2]int{0, 4}},
		tokensTensor:  rawEntry{DType: "I32", Shape: []int64{1}, Offsets: [2]int{4, 8}},
	}
	meta := map[string]string{"format": Format, "sentences": "1", "tokens": "1"}

	got, err := Read(writeRawArtifact(t, tensors, meta, body, true))
	if err != nil {
		t.Fatalf("Read with checksum: %v", err)
	}

	if !reflect.DeepEqual(got, [][]int32{{2}}) {
		t.Errorf("Read = %v; want [[2]]", got)
	}

	if _, err := Read(writeRawArtifact(t, tensors, meta, body, false)); !IsFormatError(err) {
		t.Fatalf("Read without checksum error = %v; want a format error", err)
	}
}
