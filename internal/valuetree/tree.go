// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package valuetree

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/gjson"
)

// RootPath is the path of the value passed to Build.
const RootPath = "$"

// Kind classifies a Line.
type Kind int

const (
	Leaf Kind = iota
	Object
	Array
)

// Line is one visible row of a tree.
type Line struct {
	Path  string
	Depth int
	// Key is the label: an object key, an array index, or "" for the root.
	Key string
	// Index marks Key as a position within an array.
	Index bool
	Kind  Kind
	// Value is the leaf literal, or Object(n) / Array(n) for containers.
	Value string
	Count int
	// Expanded is meaningful only for Expandable lines.
	Expanded bool
	// Type is the JSON type of a leaf.
	Type gjson.Type
}

// Expandable reports whether the line has children to disclose.
func (l Line) Expandable() bool {
	return l.Kind != Leaf && l.Count > 0
}

// Unwrap parses a string holding valid JSON into that JSON. Anything else is
// returned unchanged.
func Unwrap(v gjson.Result) gjson.Result {
	if v.Type == gjson.String && gjson.Valid(v.Str) {
		return gjson.Parse(v.Str)
	}
	return v
}

// Build flattens v into its visible lines. A root string holding JSON is
// rendered as the parsed value. A value that does not exist yields no lines.
func Build(v gjson.Result, st *State) []Line {
	return BuildAt(v, RootPath, st)
}

// BuildAt is Build with the root placed at path, so that subtrees share
// flags with the full tree. Line depths start at 0 for display, but the
// expansion policy sees each node's depth in the full tree.
func BuildAt(v gjson.Result, path string, st *State) []Line {
	if !v.Exists() {
		return nil
	}
	var lines []Line
	build(Unwrap(v), path, "", false, 0, PathDepth(path), st, &lines)
	return lines
}

// PathDepth is the number of segments after the root in a tree path, so
// "$" is 0 and `$.a["b c"][2]` is 3.
func PathDepth(path string) int {
	n := 0
	inQuote, escaped := false, false
	for _, r := range strings.TrimPrefix(path, RootPath) {
		switch {
		case escaped:
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case !inQuote && (r == '.' || r == '['):
			n++
		}
	}
	return n
}

func build(v gjson.Result, path, key string, index bool, depth, base int, st *State, lines *[]Line) {
	l := Line{Path: path, Depth: depth, Key: key, Index: index}

	switch {
	case v.IsObject():
		l.Kind = Object
	case v.IsArray():
		l.Kind = Array
	default:
		l.Type = v.Type
		l.Value = v.Raw
		*lines = append(*lines, l)
		return
	}

	var children []child
	eachChild(v, path, func(c child) { children = append(children, c) })
	l.Count = len(children)
	if l.Kind == Object {
		l.Value = fmt.Sprintf("Object(%d)", l.Count)
	} else {
		l.Value = fmt.Sprintf("Array(%d)", l.Count)
	}
	if l.Count > 0 {
		l.Expanded = st.Expanded(path, base+depth)
	}
	*lines = append(*lines, l)

	if !l.Expanded {
		return
	}
	for _, c := range children {
		build(c.value, c.path, c.key, c.index, depth+1, base, st, lines)
	}
}

type child struct {
	key   string
	index bool
	path  string
	value gjson.Result
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// eachChild visits the children of a container in document order.
func eachChild(v gjson.Result, path string, fn func(child)) {
	if v.IsArray() {
		i := 0
		v.ForEach(func(_, val gjson.Result) bool {
			fn(child{key: strconv.Itoa(i), index: true, path: fmt.Sprintf("%s[%d]", path, i), value: val})
			i++
			return true
		})
		return
	}
	v.ForEach(func(k, val gjson.Result) bool {
		fn(child{key: k.Str, path: childPath(path, k.Str), value: val})
		return true
	})
}

func childPath(parent, key string) string {
	if identRe.MatchString(key) {
		return parent + "." + key
	}
	return parent + "[" + strconv.Quote(key) + "]"
}

// Styles colors tree lines. With Color false lines are plain text.
type Styles struct {
	Color   bool
	Key     lipgloss.Style
	Index   lipgloss.Style
	String  lipgloss.Style
	Number  lipgloss.Style
	Literal lipgloss.Style
	Summary lipgloss.Style
	Marker  lipgloss.Style
	Cursor  lipgloss.Style
}

// PlainStyles returns styles that emit no escape sequences.
func PlainStyles() Styles {
	return Styles{}
}

// DefaultStyles returns the colored styles used on terminals. key and index
// override the label colors when not empty.
func DefaultStyles(key, index string) Styles {
	if key == "" {
		key = "#5f87d7"
	}
	if index == "" {
		index = "#808080"
	}
	return Styles{
		Color:   true,
		Key:     lipgloss.NewStyle().Foreground(lipgloss.Color(key)),
		Index:   lipgloss.NewStyle().Foreground(lipgloss.Color(index)).Faint(true),
		String:  lipgloss.NewStyle().Foreground(lipgloss.Color("#5faf5f")),
		Number:  lipgloss.NewStyle().Foreground(lipgloss.Color("#d7af5f")),
		Literal: lipgloss.NewStyle().Foreground(lipgloss.Color("#af87d7")),
		Summary: lipgloss.NewStyle().Faint(true),
		Marker:  lipgloss.NewStyle().Bold(true),
		Cursor:  lipgloss.NewStyle().Reverse(true),
	}
}

func (st Styles) paint(style lipgloss.Style, s string) string {
	if !st.Color || s == "" {
		return s
	}
	return style.Render(s)
}

// Disclosure markers.
const (
	MarkerExpanded  = "▾ "
	MarkerCollapsed = "▸ "
	MarkerNone      = "  "
)

// Format renders one line without a trailing newline.
func Format(l Line, st Styles) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", l.Depth))

	switch {
	case !l.Expandable():
		b.WriteString(MarkerNone)
	case l.Expanded:
		b.WriteString(st.paint(st.Marker, MarkerExpanded))
	default:
		b.WriteString(st.paint(st.Marker, MarkerCollapsed))
	}

	if l.Key != "" || l.Depth > 0 {
		if l.Index {
			b.WriteString(st.paint(st.Index, l.Key))
		} else {
			b.WriteString(st.paint(st.Key, l.Key))
		}
		b.WriteString(": ")
	}

	style := st.Summary
	if l.Kind == Leaf {
		switch l.Type {
		case gjson.String:
			style = st.String
		case gjson.Number:
			style = st.Number
		default:
			style = st.Literal
		}
	}
	b.WriteString(st.paint(style, l.Value))
	return b.String()
}

// Render writes lines, one per row.
func Render(w io.Writer, lines []Line, st Styles) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, Format(l, st)); err != nil {
			return err
		}
	}
	return nil
}
