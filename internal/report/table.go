package report

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	isatty "github.com/mattn/go-isatty"
)

// Color modes accepted by every renderer.
const (
	ColorAuto = "auto"
	ColorYes  = "yes"
	ColorNo   = "no"
)

// maxCellWidth wraps long paths and decoded sentences.
const maxCellWidth = 60

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func shouldColorize(out io.Writer, wantColor string) bool {
	switch wantColor {
	case ColorYes:
		return true
	case ColorNo:
		return false
	default:
		return IsTerminal(out)
	}
}

type column struct {
	title string
	align text.Align
}

func left(title string) column  { return column{title: title, align: text.AlignLeft} }
func right(title string) column { return column{title: title, align: text.AlignRight} }

// grid is a titled go-pretty table whose columns are fixed at construction.
type grid struct {
	out io.Writer
	w   table.Writer
}

func newGrid(out io.Writer, wantColor string, cols ...column) *grid {
	w := table.NewWriter()
	w.SetStyle(gridStyle(shouldColorize(out, wantColor)))

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))

	for i, c := range cols {
		header[i] = c.title
		configs[i] = table.ColumnConfig{
			Number:           i + 1,
			Align:            c.align,
			AlignHeader:      text.AlignCenter,
			WidthMax:         maxCellWidth,
			WidthMaxEnforcer: text.WrapSoft,
		}
	}

	w.AppendHeader(header)
	w.SetColumnConfigs(configs)

	return &grid{out: out, w: w}
}

func (g *grid) add(cells ...any) {
	g.w.AppendRow(table.Row(cells))
}

// render writes "title:" on its own line followed by the table.
func (g *grid) render(title string) {
	fmt.Fprintf(g.out, "%s:\n%s\n", title, g.w.Render())
}

func gridStyle(fancy bool) table.Style {
	style := table.StyleDefault
	if fancy {
		style = table.StyleRounded
		style.Color.Header = text.Colors{text.Bold}
		style.Color.Border = text.Colors{text.FgHiBlack}
		style.Color.Separator = text.Colors{text.FgHiBlack}
	}

	style.Format.Header = text.FormatDefault

	return style
}
