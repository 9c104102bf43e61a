// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/term"

	"github.com/tfctl/tracediff/internal/config"
	"github.com/tfctl/tracediff/internal/linediff"
)

// Unified line prefixes.
const (
	PrefixContext = "  "
	PrefixDelete  = "- "
	PrefixInsert  = "+ "
)

const (
	defaultWidth = 120
	minColumn    = 12
	separator    = " │ "
	ellipsis     = "…"
)

// Styles holds the colors used by the renderers. With Color false every
// renderer emits plain text.
type Styles struct {
	Color   bool
	Header  lipgloss.Style
	Add     lipgloss.Style
	Del     lipgloss.Style
	Change  lipgloss.Style
	Context lipgloss.Style
	AddSpan lipgloss.Style
	DelSpan lipgloss.Style
	Gutter  lipgloss.Style
}

// NewStyles builds the renderer styles. Colors come from the colors.* config
// keys, falling back to defaults picked for the terminal background.
func NewStyles(colored bool) Styles {
	st := Styles{Color: colored}
	if !colored {
		return st
	}

	add, del, change := getColors("colors")
	st.Header = lipgloss.NewStyle().Bold(true)
	st.Add = lipgloss.NewStyle().Foreground(add)
	st.Del = lipgloss.NewStyle().Foreground(del)
	st.Change = lipgloss.NewStyle().Foreground(change)
	st.Context = lipgloss.NewStyle().Faint(true)
	st.AddSpan = st.Add.Bold(true).Underline(true)
	st.DelSpan = st.Del.Bold(true).Strikethrough(true)
	st.Gutter = lipgloss.NewStyle().Faint(true)
	return st
}

func (st Styles) paint(style lipgloss.Style, s string) string {
	if !st.Color || s == "" {
		return s
	}
	return style.Render(s)
}

// TerminalWidth returns the width of stdout, or a default when stdout is not
// a terminal.
func TerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// RenderUnified writes the unified view, one prefixed line per op.
func RenderUnified(w io.Writer, ops []linediff.Op, st Styles) {
	for _, op := range ops {
		switch op.Kind {
		case linediff.Context:
			fmt.Fprintln(w, st.paint(st.Context, PrefixContext+op.Left))
		case linediff.Delete:
			fmt.Fprintln(w, st.paint(st.Del, PrefixDelete+op.Left))
		case linediff.Insert:
			fmt.Fprintln(w, st.paint(st.Add, PrefixInsert+op.Right))
		}
	}
}

// RenderSplit writes the split view in two columns fitting width. Cells are
// truncated and padded by display width.
func RenderSplit(w io.Writer, rows []Row, width int, st Styles) {
	if width <= 0 {
		width = defaultWidth
	}
	col := (width - runewidth.StringWidth(separator)) / 2
	if col < minColumn {
		col = minColumn
	}
	text := col - 2

	for _, r := range rows {
		left := runewidth.Truncate(r.LeftText(), text, ellipsis)
		right := runewidth.Truncate(r.RightText(), text, ellipsis)

		var lcell, rcell string
		switch r.Kind {
		case RowContext:
			lcell = st.paint(st.Context, PrefixContext+left)
			rcell = st.paint(st.Context, PrefixContext+right)
		case RowDel:
			lcell = st.paint(st.Del, PrefixDelete+left)
		case RowAdd:
			rcell = st.paint(st.Add, PrefixInsert+right)
		case RowChange:
			hl, hr := st.highlight(left, right)
			lcell = st.paint(st.Del, PrefixDelete) + hl
			rcell = st.paint(st.Add, PrefixInsert) + hr
		}

		pad := col - runewidth.StringWidth(plainCell(r.Kind, left, true))
		line := lcell + strings.Repeat(" ", max(pad, 0)) + st.paint(st.Gutter, separator) + rcell
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// plainCell is the uncolored content of a cell, used for padding math.
func plainCell(kind RowKind, text string, leftSide bool) string {
	switch {
	case kind == RowContext:
		return PrefixContext + text
	case leftSide && (kind == RowDel || kind == RowChange):
		return PrefixDelete + text
	case !leftSide && (kind == RowAdd || kind == RowChange):
		return PrefixInsert + text
	default:
		return ""
	}
}

// highlight marks the characters that differ between the two sides of a
// change row. Without color the texts pass through.
func (st Styles) highlight(left, right string) (string, string) {
	if !st.Color {
		return left, right
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(left, right, false))

	var l, r strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			l.WriteString(st.paint(st.Del, d.Text))
			r.WriteString(st.paint(st.Add, d.Text))
		case diffmatchpatch.DiffDelete:
			l.WriteString(st.paint(st.DelSpan, d.Text))
		case diffmatchpatch.DiffInsert:
			r.WriteString(st.paint(st.AddSpan, d.Text))
		}
	}
	return l.String(), r.String()
}

// getColors resolves the add, delete and change colors. Explicit config
// values win; otherwise a default suited to the terminal background is used.
func getColors(key string) (add, del, change color.Color) {
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

	resolveColor := func(key string, light string, dark string) color.Color {
		colorCfg, err := config.GetString(key)
		if err == nil {
			return lipgloss.Color(colorCfg)
		}

		if isDark {
			return lipgloss.Color(dark)
		}
		return lipgloss.Color(light)
	}

	add = resolveColor(key+".add", "#1a7f37", "#3fb950")
	del = resolveColor(key+".del", "#cf222e", "#f85149")
	change = resolveColor(key+".change", "#9a6700", "#d29922")

	return
}
