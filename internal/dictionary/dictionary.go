// Package dictionary maps tokens to stable integer ids.
//
// A Dictionary starts in the Building state with the reserved symbols at ids
// 0..3, grows through AddWord while corpora are scanned, and is pruned and
// reordered exactly once by Finalize. A finalized dictionary is read-only and
// can be persisted with Save and restored with Load.
package dictionary

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/example/seqprep/internal/tokenizer"
)

// Reserved symbols, always present at fixed leading ids.
const (
	UnkWord = "<unk>"
	BOSWord = "<s>"
	EOSWord = "</s>"
	PadWord = "<pad>"
)

// Ids of the reserved symbols.
const (
	UnkID int32 = iota
	BOSID
	EOSID
	PadID
)

// specials lists the reserved symbols in id order.
var specials = [...]string{UnkWord, BOSWord, EOSWord, PadWord}

// NumSpecial is the number of reserved symbols.
const NumSpecial = len(specials)

// State is the lifecycle phase of a Dictionary.
type State int

const (
	Building State = iota
	Finalized
)

func (s State) String() string {
	switch s {
	case Building:
		return "building"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// UnkConsumer observes every token replaced by the unknown id during Binarize.
type UnkConsumer func(word string, id int32)

// Dictionary holds the vocabulary. It is not safe for concurrent mutation.
type Dictionary struct {
	symbols []string
	counts  []int
	index   map[string]int32
	state   State
}

// New returns an empty Building dictionary holding only the reserved symbols.
func New() *Dictionary {
	d := &Dictionary{
		symbols: make([]string, 0, NumSpecial),
		counts:  make([]int, 0, NumSpecial),
		index:   make(map[string]int32, NumSpecial),
	}
	for _, s := range specials {
		d.index[s] = int32(len(d.symbols))
		d.symbols = append(d.symbols, s)
		d.counts = append(d.counts, 0)
	}

	return d
}

// AddWord records one occurrence of word and returns its id. New words are
// appended at the next free id. Words that are empty or contain whitespace
// cannot be persisted and fail with ErrSymbol.
func (d *Dictionary) AddWord(word string) (int32, error) {
	if d.state != Building {
		return 0, fmt.Errorf("add word %q: %w: dictionary is %s", word, ErrState, d.state)
	}

	if word == "" || strings.ContainsFunc(word, unicode.IsSpace) {
		return 0, fmt.Errorf("add word %q: %w", word, ErrSymbol)
	}

	if id, ok := d.index[word]; ok {
		d.counts[id]++
		return id, nil
	}

	id := int32(len(d.symbols))
	d.index[word] = id
	d.symbols = append(d.symbols, word)
	d.counts = append(d.counts, 1)

	return id, nil
}

// Finalize prunes and reorders the vocabulary, then freezes the dictionary.
//
// Non-reserved symbols with a count below threshold are dropped, survivors are
// ordered by descending count with ties kept in insertion order, and the result
// is truncated so that the whole dictionary, reserved symbols included, holds
// at most maxSize symbols. threshold <= 0 keeps every symbol; maxSize <= 0
// disables the cap. Calling Finalize twice fails with ErrState.
func (d *Dictionary) Finalize(threshold, maxSize int) error {
	if d.state != Building {
		return fmt.Errorf("finalize: %w: dictionary is already %s", ErrState, d.state)
	}

	survivors := make([]int, 0, len(d.symbols)-NumSpecial)
	for id := NumSpecial; id < len(d.symbols); id++ {
		if d.counts[id] >= threshold {
			survivors = append(survivors, id)
		}
	}

	// Insertion order equals the current id order, so a stable sort on count
	// alone breaks ties by insertion.
	sort.SliceStable(survivors, func(i, j int) bool {
		return d.counts[survivors[i]] > d.counts[survivors[j]]
	})

	if maxSize > 0 {
		limit := max(maxSize-NumSpecial, 0)
		if len(survivors) > limit {
			survivors = survivors[:limit]
		}
	}

	symbols := make([]string, 0, NumSpecial+len(survivors))
	counts := make([]int, 0, NumSpecial+len(survivors))
	index := make(map[string]int32, NumSpecial+len(survivors))

	keep := func(old int) {
		index[d.symbols[old]] = int32(len(symbols))
		symbols = append(symbols, d.symbols[old])
		counts = append(counts, d.counts[old])
	}
	for id := 0; id < NumSpecial; id++ {
		keep(id)
	}
	for _, id := range survivors {
		keep(id)
	}

	d.symbols = symbols
	d.counts = counts
	d.index = index
	d.state = Finalized

	return nil
}

// Binarize tokenizes line and maps every token to its id, substituting UnkID
// for tokens absent from the vocabulary. consumer, when non-nil, is called once
// for each substituted occurrence; a token spelled exactly like UnkWord is in
// the vocabulary and therefore never reported. When appendEOS is true the
// result ends with EOSID.
func (d *Dictionary) Binarize(line string, tok tokenizer.Tokenizer, appendEOS bool, consumer UnkConsumer) []int32 {
	words := tok.Tokenize(line)

	n := len(words)
	if appendEOS {
		n++
	}

	ids := make([]int32, 0, n)
	for _, w := range words {
		id, ok := d.index[w]
		if !ok {
			id = UnkID
			if consumer != nil {
				consumer(w, id)
			}
		}

		ids = append(ids, id)
	}

	if appendEOS {
		ids = append(ids, EOSID)
	}

	return ids
}

// Decode maps ids back to symbols joined by single spaces. Decoding stops at
// the first EOSID; out-of-range ids decode as UnkWord.
func (d *Dictionary) Decode(ids []int32) string {
	words := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == EOSID {
			break
		}

		words = append(words, d.Symbol(id))
	}

	return strings.Join(words, " ")
}

// Index returns the id of word, or UnkID when word is not in the vocabulary.
func (d *Dictionary) Index(word string) int32 {
	if id, ok := d.index[word]; ok {
		return id
	}

	return UnkID
}

// Contains reports whether word is in the vocabulary.
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.index[word]
	return ok
}

// Symbol returns the symbol for id, or UnkWord when id is out of range.
func (d *Dictionary) Symbol(id int32) string {
	if id < 0 || int(id) >= len(d.symbols) {
		return UnkWord
	}

	return d.symbols[id]
}

// Count returns the recorded occurrence count of word (0 when absent).
func (d *Dictionary) Count(word string) int {
	if id, ok := d.index[word]; ok {
		return d.counts[id]
	}

	return 0
}

// Len returns the number of distinct symbols, reserved ones included.
func (d *Dictionary) Len() int { return len(d.symbols) }

// Symbols returns a copy of the symbols in id order.
func (d *Dictionary) Symbols() []string { return append([]string(nil), d.symbols...) }

// Counts returns a copy of the counts in id order.
func (d *Dictionary) Counts() []int { return append([]int(nil), d.counts...) }

// State returns the lifecycle phase.
func (d *Dictionary) State() State { return d.state }

// Finalized reports whether Finalize has run (or the dictionary was loaded).
func (d *Dictionary) Finalized() bool { return d.state == Finalized }

// Equal reports whether d and other hold the same symbols with the same ids
// and counts.
func (d *Dictionary) Equal(other *Dictionary) bool {
	if other == nil || len(d.symbols) != len(other.symbols) {
		return false
	}

	for i := range d.symbols {
		if d.symbols[i] != other.symbols[i] || d.counts[i] != other.counts[i] {
			return false
		}
	}

	return true
}
