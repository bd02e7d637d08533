// Package report renders preprocessing results, dictionaries and binarized
// datasets as text tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/seqprep/internal/dataset"
	"github.com/example/seqprep/internal/dictionary"
	"github.com/example/seqprep/internal/pipeline"
)

// maxPreviewIDs bounds the id column of a sentence preview.
const maxPreviewIDs = 24

// Dictionaries lists the dictionary built or loaded for each language.
func Dictionaries(out io.Writer, wantColor string, langs []pipeline.LangResult) {
	g := newGrid(out, wantColor, left("Lang"), right("Words"), left("Source"), left("Path"))

	for _, l := range langs {
		source := "built"
		if l.Loaded {
			source = "loaded"
		}

		g.add(l.Lang, l.Size, source, l.Path)
	}

	g.render("Dictionaries")
}

// Splits lists per-split binarization statistics.
func Splits(out io.Writer, wantColor string, splits []pipeline.SplitResult) {
	g := newGrid(out, wantColor,
		left("Split"), left("Lang"), right("Sentences"), right("Tokens"),
		right("Unknown"), right("Replaced"), left("Output"))

	for _, s := range splits {
		g.add(s.Split, s.Lang, s.Stats.Sentences, s.Stats.Tokens, s.Stats.Unknown,
			Percent(s.Stats.ReplacedPercent()), s.Stats.Output)
	}

	g.render("Binarized datasets")
}

// UnknownWords lists the most frequent words replaced by <unk> in one split.
// Nothing is written when words is empty.
func UnknownWords(out io.Writer, wantColor, title string, words []dataset.WordCount) {
	if len(words) == 0 {
		return
	}

	g := newGrid(out, wantColor, left("Word"), right("Occurrences"))
	for _, w := range words {
		g.add(w.Word, w.Count)
	}

	g.render(title)
}

// Symbols lists the first limit entries of dict in id order; limit <= 0
// lists all of them.
func Symbols(out io.Writer, wantColor string, dict *dictionary.Dictionary, limit int) {
	n := dict.Len()
	if limit > 0 && limit < n {
		n = limit
	}

	g := newGrid(out, wantColor, right("ID"), left("Symbol"), right("Count"))

	counts := dict.Counts()
	for id := 0; id < n; id++ {
		g.add(id, dict.Symbol(int32(id)), counts[id])
	}

	g.render(fmt.Sprintf("%d symbols (%s)", dict.Len(), dict.State()))
}

// Sentences previews the first limit sentences of a dataset. When dict is
// non-nil each row is also decoded back to text.
func Sentences(out io.Writer, wantColor string, sentences [][]int32, dict *dictionary.Dictionary, limit int) {
	n := len(sentences)
	if limit > 0 && limit < n {
		n = limit
	}

	tokens := 0
	for _, s := range sentences {
		tokens += len(s)
	}

	cols := []column{right("#"), right("Len"), left("IDs")}
	if dict != nil {
		cols = append(cols, left("Text"))
	}

	g := newGrid(out, wantColor, cols...)

	for i := 0; i < n; i++ {
		row := []any{i, len(sentences[i]), formatIDs(sentences[i])}
		if dict != nil {
			row = append(row, dict.Decode(sentences[i]))
		}

		g.add(row...)
	}

	g.render(fmt.Sprintf("%d sentences, %d tokens", len(sentences), tokens))
}

// Percent formats a percentage with three decimals.
func Percent(p float64) string {
	return strconv.FormatFloat(p, 'f', 3, 64) + "%"
}

func formatIDs(ids []int32) string {
	var b strings.Builder

	for i, id := range ids {
		if i == maxPreviewIDs {
			fmt.Fprintf(&b, " ... (+%d)", len(ids)-maxPreviewIDs)
			break
		}

		if i > 0 {
			b.WriteByte(' ')
		}

		b.WriteString(strconv.Itoa(int(id)))
	}

	return b.String()
}
