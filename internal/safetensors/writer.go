package safetensors

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/example/seqprep/internal/atomicfile"
)

// EncodeTensors serializes integer tensors into safetensors format. Tensors
// are laid out in name order; metadata is stored under __metadata__ together
// with the payload checksum.
func EncodeTensors(tensors []Tensor, metadata map[string]string) ([]byte, error) {
	if len(tensors) == 0 {
		return nil, errors.New("safetensors: no tensors to encode")
	}

	if _, reserved := metadata[ChecksumKey]; reserved {
		return nil, fmt.Errorf("safetensors: metadata key %q is reserved", ChecksumKey)
	}

	sorted := make([]Tensor, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	header := make(map[string]any, len(sorted)+1)
	raw := make([]byte, 0, estimateTensorBytes(sorted))

	for _, tensor := range sorted {
		name := strings.TrimSpace(tensor.Name)
		if name == "" {
			return nil, errors.New("safetensors: tensor name must not be empty")
		}

		if name == metadataKey {
			return nil, fmt.Errorf("safetensors: tensor name %q is reserved", name)
		}

		if _, exists := header[name]; exists {
			return nil, fmt.Errorf("safetensors: duplicate tensor name %q", name)
		}

		elemCount, err := shapeElementCount(tensor.Shape)
		if err != nil {
			return nil, fmt.Errorf("safetensors: tensor %q: %w", name, err)
		}

		if int64(len(tensor.Data)) != elemCount {
			return nil, fmt.Errorf(
				"safetensors: tensor %q shape %v expects %d elements, got %d",
				name,
				tensor.Shape,
				elemCount,
				len(tensor.Data),
			)
		}

		dtype := strings.ToUpper(tensor.DType)
		if dtype == "" {
			dtype = DTypeI32
		}

		start := len(raw)

		raw, err = appendTensorData(raw, dtype, tensor.Data)
		if err != nil {
			return nil, fmt.Errorf("safetensors: tensor %q: %w", name, err)
		}

		header[name] = storeHeaderEntry{
			DType:   dtype,
			Shape:   append([]int64{}, tensor.Shape...),
			Offsets: [2]int{start, len(raw)},
		}
	}

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}

	meta[ChecksumKey] = checksum(raw)
	header[metadataKey] = meta

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("safetensors: encode header: %w", err)
	}

	out := make([]byte, 0, 8+len(headerJSON)+len(raw))
	lenPrefix := make([]byte, 8)
	binary.LittleEndian.PutUint64(lenPrefix, uint64(len(headerJSON)))
	out = append(out, lenPrefix...)
	out = append(out, headerJSON...)
	out = append(out, raw...)

	return out, nil
}

// WriteFile writes integer tensors into a .safetensors file. The file is
// written to a temporary sibling first, so a failure never leaves a partial
// file at path.
func WriteFile(path string, tensors []Tensor, metadata map[string]string) error {
	data, err := EncodeTensors(tensors, metadata)
	if err != nil {
		return err
	}

	if err := atomicfile.WriteBytes(path, 0o644, data); err != nil {
		return fmt.Errorf("safetensors: write %s: %w", path, err)
	}

	return nil
}

func appendTensorData(raw []byte, dtype string, data []int64) ([]byte, error) {
	switch dtype {
	case DTypeI32:
		for _, v := range data {
			if v < math.MinInt32 || v > math.MaxInt32 {
				return nil, fmt.Errorf("value %d does not fit in %s", v, DTypeI32)
			}

			raw = binary.LittleEndian.AppendUint32(raw, uint32(int32(v)))
		}
	case DTypeI64:
		for _, v := range data {
			raw = binary.LittleEndian.AppendUint64(raw, uint64(v))
		}
	default:
		return nil, fmt.Errorf("unsupported dtype %q", dtype)
	}

	return raw, nil
}

func estimateTensorBytes(tensors []Tensor) int {
	total := 0
	for _, tensor := range tensors {
		total += len(tensor.Data) * 8
	}

	return total
}
