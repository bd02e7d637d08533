// Package safetensors reads and writes integer tensors in the safetensors
// container: an 8-byte little-endian header length, a JSON header mapping
// tensor names to dtype, shape and payload offsets, then the little-endian
// payload. Files written here carry an xxhash64 of the payload in the
// header metadata, which OpenStore verifies.
package safetensors

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	DTypeI32 = "I32"
	DTypeI64 = "I64"

	metadataKey = "__metadata__"
	// ChecksumKey holds the hex xxhash64 of the payload in the metadata.
	ChecksumKey = "xxh64"
)

// ErrChecksum is returned when the payload does not match the stored checksum.
var ErrChecksum = errors.New("safetensors: payload checksum mismatch")

// Tensor is a named integer tensor. Data is widened to int64 regardless of the
// on-disk dtype.
type Tensor struct {
	Name  string
	DType string
	Shape []int64
	Data  []int64
}

type Store struct {
	raw      []byte
	entries  map[string]storeEntry
	names    []string
	metadata map[string]string
}

type storeEntry struct {
	DType string
	Shape []int64
	Start int
	End   int
}

type storeHeaderEntry struct {
	DType   string  `json:"dtype"`
	Shape   []int64 `json:"shape"`
	Offsets [2]int  `json:"data_offsets"`
}

func OpenStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("safetensors: read %s: %w", path, err)
	}

	return OpenStoreFromBytes(data)
}

func OpenStoreFromBytes(data []byte) (*Store, error) {
	headerEnd, header, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}

	metadata, err := decodeMetadata(header[metadataKey])
	if err != nil {
		return nil, err
	}

	if want, ok := metadata[ChecksumKey]; ok {
		if got := checksum(data[headerEnd:]); got != want {
			return nil, fmt.Errorf("%w: header says %s, payload hashes to %s", ErrChecksum, want, got)
		}
	}

	entries := make(map[string]storeEntry, len(header))
	names := make([]string, 0, len(header))

	for name, raw := range header {
		if name == metadataKey {
			continue
		}

		entry, err := parseHeaderEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("safetensors: decode header entry %q: %w", name, err)
		}

		if err := validateHeaderEntry(name, entry); err != nil {
			return nil, err
		}

		start := headerEnd + entry.Offsets[0]

		end := headerEnd + entry.Offsets[1]
		if start < headerEnd || end < start || end > len(data) {
			return nil, fmt.Errorf(
				"safetensors: tensor %q data [%d:%d] exceeds file size %d",
				name,
				start,
				end,
				len(data),
			)
		}

		elemCount, err := shapeElementCount(entry.Shape)
		if err != nil {
			return nil, fmt.Errorf("safetensors: tensor %q: %w", name, err)
		}

		elemBytes, err := dtypeBytes(entry.DType)
		if err != nil {
			return nil, fmt.Errorf("safetensors: tensor %q: %w", name, err)
		}

		if size := int64(end - start); size%int64(elemBytes) != 0 || elemCount != size/int64(elemBytes) {
			return nil, fmt.Errorf(
				"safetensors: tensor %q shape %v does not match %d data bytes of %s",
				name,
				entry.Shape,
				end-start,
				strings.ToUpper(entry.DType),
			)
		}

		entries[name] = storeEntry{
			DType: strings.ToUpper(entry.DType),
			Shape: append([]int64(nil), entry.Shape...),
			Start: start,
			End:   end,
		}
		names = append(names, name)
	}

	if len(entries) == 0 {
		return nil, errors.New("safetensors: no tensors found")
	}

	sort.Strings(names)

	return &Store{
		raw:      data,
		entries:  entries,
		names:    names,
		metadata: metadata,
	}, nil
}

func (s *Store) Names() []string {
	return append([]string(nil), s.names...)
}

func (s *Store) Has(name string) bool {
	_, ok := s.entries[name]
	return ok
}

// Metadata returns a copy of the header's string metadata.
func (s *Store) Metadata() map[string]string {
	out := make(map[string]string, len(s.metadata))
	for k, v := range s.metadata {
		out[k] = v
	}

	return out
}

func (s *Store) Tensor(name string) (*Tensor, error) {
	entry, ok := s.entries[name]
	if !ok {
		return nil, fmt.Errorf("safetensors: tensor %q not found (available: %s)", name, summarizeNames(s.names))
	}

	data, err := decodeTensorData(s.raw[entry.Start:entry.End], entry.DType, entry.Shape)
	if err != nil {
		return nil, fmt.Errorf("safetensors: tensor %q decode: %w", name, err)
	}

	return &Tensor{
		Name:  name,
		DType: entry.DType,
		Shape: append([]int64(nil), entry.Shape...),
		Data:  data,
	}, nil
}

// TensorWithRank returns the named tensor after checking its number of dimensions.
func (s *Store) TensorWithRank(name string, rank int) (*Tensor, error) {
	t, err := s.Tensor(name)
	if err != nil {
		return nil, err
	}

	if len(t.Shape) != rank {
		return nil, fmt.Errorf("safetensors: tensor %q has shape %v, want rank %d", name, t.Shape, rank)
	}

	return t, nil
}

func (s *Store) Close() {
	s.raw = nil
	s.entries = nil
	s.names = nil
	s.metadata = nil
}

func decodeHeader(data []byte) (int, map[string]json.RawMessage, error) {
	if len(data) < 8 {
		return 0, nil, fmt.Errorf("safetensors: file too short (%d bytes)", len(data))
	}

	headerLen := binary.LittleEndian.Uint64(data[:8])
	if headerLen > uint64(len(data)-8) {
		return 0, nil, fmt.Errorf("safetensors: header length %d exceeds file size %d", headerLen, len(data))
	}

	headerEnd := 8 + int(headerLen)

	var header map[string]json.RawMessage

	err := json.Unmarshal(data[8:headerEnd], &header)
	if err != nil {
		return 0, nil, fmt.Errorf("safetensors: parse header: %w", err)
	}

	return headerEnd, header, nil
}

func decodeMetadata(raw json.RawMessage) (map[string]string, error) {
	out := map[string]string{}
	if len(raw) == 0 {
		return out, nil
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("safetensors: parse metadata: %w", err)
	}

	return out, nil
}

func parseHeaderEntry(raw json.RawMessage) (storeHeaderEntry, error) {
	var e storeHeaderEntry

	err := json.Unmarshal(raw, &e)
	if err != nil {
		return storeHeaderEntry{}, err
	}

	return e, nil
}

func validateHeaderEntry(name string, entry storeHeaderEntry) error {
	switch strings.ToUpper(entry.DType) {
	case DTypeI32, DTypeI64:
	default:
		return fmt.Errorf("safetensors: tensor %q has unsupported dtype %q", name, entry.DType)
	}

	if entry.Offsets[0] < 0 || entry.Offsets[1] < entry.Offsets[0] {
		return fmt.Errorf("safetensors: tensor %q has invalid data offsets %v", name, entry.Offsets)
	}

	for _, d := range entry.Shape {
		if d < 0 {
			return fmt.Errorf("safetensors: tensor %q has negative shape dimension in %v", name, entry.Shape)
		}
	}

	return nil
}

func shapeElementCount(shape []int64) (int64, error) {
	total := int64(1)

	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("negative dimension %d", d)
		}

		if d == 0 {
			return 0, nil
		}

		if total > math.MaxInt64/d {
			return 0, fmt.Errorf("shape %v overflows element count", shape)
		}

		total *= d
	}

	return total, nil
}

func dtypeBytes(dtype string) (int, error) {
	switch strings.ToUpper(dtype) {
	case DTypeI32:
		return 4, nil
	case DTypeI64:
		return 8, nil
	default:
		return 0, fmt.Errorf("unsupported dtype %q", dtype)
	}
}

func decodeTensorData(raw []byte, dtype string, shape []int64) ([]int64, error) {
	elemCount, err := shapeElementCount(shape)
	if err != nil {
		return nil, err
	}

	width, err := dtypeBytes(dtype)
	if err != nil {
		return nil, err
	}

	if elemCount > int64(len(raw)/width) {
		return nil, fmt.Errorf("shape %v needs %d %s elements, data holds %d", shape, elemCount, strings.ToUpper(dtype), len(raw)/width)
	}

	out := make([]int64, elemCount)

	for i := range out {
		if width == 4 {
			out[i] = int64(int32(binary.LittleEndian.Uint32(raw[i*4:])))
		} else {
			out[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
		}
	}

	return out, nil
}

func checksum(payload []byte) string {
	return strconv.FormatUint(xxhash.Sum64(payload), 16)
}

func summarizeNames(names []string) string {
	if len(names) == 0 {
		return "none"
	}

	const maxNames = 8
	if len(names) <= maxNames {
		return strings.Join(names, ", ")
	}

	return strings.Join(names[:maxNames], ", ") + ", ..."
}
