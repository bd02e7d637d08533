package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/example/seqprep/internal/atomicfile"
)

// Write serializes a finalized dictionary as one "symbol count" line per
// symbol in id order, reserved symbols first.
func (d *Dictionary) Write(w io.Writer) error {
	if d.state != Finalized {
		return fmt.Errorf("write dictionary: %w: dictionary is %s", ErrState, d.state)
	}

	for i, s := range d.symbols {
		if _, err := fmt.Fprintf(w, "%s %d\n", s, d.counts[i]); err != nil {
			return err
		}
	}

	return nil
}

// Save writes the dictionary to path. The file appears only once complete.
func (d *Dictionary) Save(path string) error {
	if d.state != Finalized {
		return fmt.Errorf("save %s: %w: dictionary is %s", path, ErrState, d.state)
	}

	if err := atomicfile.Write(path, 0o644, d.Write); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}

	return nil
}

// Load reads a dictionary written by Save. The result is Finalized.
func Load(path string) (*Dictionary, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer fh.Close()

	return Read(fh, path)
}

// Read parses the Save format from r. name is used in error messages only.
func Read(r io.Reader, name string) (*Dictionary, error) {
	d := &Dictionary{index: make(map[string]int32), state: Finalized}
	br := bufio.NewReader(r)

	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, &IOError{Op: "read", Path: name, Err: err}
		}

		if line == "" && errors.Is(err, io.EOF) {
			break
		}

		if !strings.HasSuffix(line, "\n") {
			return nil, &FormatError{Path: name, Line: lineNo, Msg: "truncated line (missing newline)"}
		}

		symbol, count, perr := parseLine(strings.TrimSuffix(line, "\n"))
		if perr != nil {
			return nil, &FormatError{Path: name, Line: lineNo, Msg: perr.Error()}
		}

		if id := len(d.symbols); id < NumSpecial && symbol != specials[id] {
			return nil, &FormatError{
				Path: name,
				Line: lineNo,
				Msg:  fmt.Sprintf("reserved symbol %d must be %q, got %q", id, specials[id], symbol),
			}
		}

		if _, dup := d.index[symbol]; dup {
			return nil, &FormatError{Path: name, Line: lineNo, Msg: fmt.Sprintf("duplicate symbol %q", symbol)}
		}

		d.index[symbol] = int32(len(d.symbols))
		d.symbols = append(d.symbols, symbol)
		d.counts = append(d.counts, count)
	}

	if len(d.symbols) < NumSpecial {
		return nil, &FormatError{
			Path: name,
			Msg:  fmt.Sprintf("expected at least %d reserved symbols, found %d lines", NumSpecial, len(d.symbols)),
		}
	}

	return d, nil
}

func parseLine(line string) (string, int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return "", 0, fmt.Errorf("expected \"symbol count\", got %q", line)
	}

	count, err := strconv.Atoi(fields[1])
	if err != nil {
		return "", 0, fmt.Errorf("bad count %q", fields[1])
	}

	if count < 0 {
		return "", 0, fmt.Errorf("negative count %d", count)
	}

	return fields[0], count, nil
}
