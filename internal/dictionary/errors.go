package dictionary

import (
	"errors"
	"fmt"
)

// ErrState is returned for operations that are illegal in the dictionary's
// current lifecycle phase, such as AddWord after Finalize.
var ErrState = errors.New("illegal dictionary state")

// ErrSymbol is returned by AddWord for words the "symbol count" file format
// cannot hold: the empty string and anything containing whitespace.
var ErrSymbol = errors.New("invalid dictionary symbol")

// ErrFormat matches every *FormatError via errors.Is.
var ErrFormat = errors.New("malformed artifact")

// FormatError reports a corrupt or truncated persisted artifact.
type FormatError struct {
	Path string
	Line int // 1-based; 0 when not line-oriented
	Msg  string
}

func (e *FormatError) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Path, e.Msg)
	default:
		return e.Msg
	}
}

// Is makes errors.Is(err, ErrFormat) true for any FormatError.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// IOError wraps a failure to read an input or write an output.
type IOError struct {
	Op   string // "read", "write", "open", ...
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
