// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package valuetree

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func render(t *testing.T, lines []Line) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, lines, PlainStyles()))
	return buf.String()
}

func TestBuildDefaultDepth(t *testing.T) {
	v := gjson.Parse(`{"a":{"b":1}}`)

	tests := []struct {
		name  string
		depth int
		want  string
	}{
		{"everything collapsed", 0, "▸ Object(1)\n"},
		{"root open", 1, "▾ Object(1)\n  ▸ a: Object(1)\n"},
		{"two levels open", 2, "▾ Object(1)\n  ▾ a: Object(1)\n      b: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, Build(v, NewState(tt.depth))))
		})
	}
}

func TestBuildRootExpandedChildCollapsed(t *testing.T) {
	lines := Build(gjson.Parse(`{"a":{"b":1}}`), NewState(1))
	require.Len(t, lines, 2)

	assert.Equal(t, RootPath, lines[0].Path)
	assert.Equal(t, Object, lines[0].Kind)
	assert.True(t, lines[0].Expanded)

	assert.Equal(t, "$.a", lines[1].Path)
	assert.Equal(t, 1, lines[1].Depth)
	assert.Equal(t, "a", lines[1].Key)
	assert.False(t, lines[1].Expanded)
	assert.True(t, lines[1].Expandable())
}

func TestLeafLiterals(t *testing.T) {
	v := gjson.Parse(`{"s":"hi \"there\"","n":1.50,"t":true,"f":false,"z":null,"e":{},"a":[]}`)
	got := render(t, Build(v, NewState(1)))

	want := "▾ Object(7)\n" +
		"    s: \"hi \\\"there\\\"\"\n" +
		"    n: 1.50\n" +
		"    t: true\n" +
		"    f: false\n" +
		"    z: null\n" +
		"    e: Object(0)\n" +
		"    a: Array(0)\n"
	assert.Equal(t, want, got)
}

func TestArrayChildrenUseIndexLabels(t *testing.T) {
	lines := Build(gjson.Parse(`[10,{"k":"v"}]`), NewState(5))
	require.Len(t, lines, 4)

	assert.Equal(t, Array, lines[0].Kind)
	assert.Equal(t, "Array(2)", lines[0].Value)

	assert.Equal(t, "0", lines[1].Key)
	assert.True(t, lines[1].Index)
	assert.Equal(t, "$[0]", lines[1].Path)

	assert.Equal(t, "$[1]", lines[2].Path)
	assert.Equal(t, "$[1].k", lines[3].Path)
	assert.False(t, lines[3].Index)
}

func TestObjectKeepsDocumentOrder(t *testing.T) {
	lines := Build(gjson.Parse(`{"zeta":1,"alpha":2,"mid":3}`), NewState(1))
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, []string{lines[1].Key, lines[2].Key, lines[3].Key})
}

func TestOddKeysAreQuotedInPaths(t *testing.T) {
	lines := Build(gjson.Parse(`{"a.b":1,"":2,"ok_1":3}`), NewState(1))
	require.Len(t, lines, 4)
	assert.Equal(t, `$["a.b"]`, lines[1].Path)
	assert.Equal(t, `$[""]`, lines[2].Path)
	assert.Equal(t, `$.ok_1`, lines[3].Path)
	assert.Contains(t, render(t, lines), "    : 2\n")
}

func TestDoublyEncodedRoot(t *testing.T) {
	t.Run("json string parsed", func(t *testing.T) {
		lines := Build(gjson.Parse(`"{\"a\":[1,2]}"`), NewState(5))
		require.Len(t, lines, 4)
		assert.Equal(t, Object, lines[0].Kind)
		assert.Equal(t, "Array(2)", lines[1].Value)
	})

	t.Run("plain string leaf", func(t *testing.T) {
		lines := Build(gjson.Parse(`"hello {"`), NewState(5))
		require.Len(t, lines, 1)
		assert.Equal(t, Leaf, lines[0].Kind)
		assert.Equal(t, `"hello {"`, lines[0].Value)
	})

	t.Run("nested strings untouched", func(t *testing.T) {
		lines := Build(gjson.Parse(`{"s":"{\"x\":1}"}`), NewState(5))
		require.Len(t, lines, 2)
		assert.Equal(t, Leaf, lines[1].Kind)
		assert.Equal(t, gjson.String, lines[1].Type)
	})
}

func TestAbsentValue(t *testing.T) {
	assert.Nil(t, Build(gjson.Result{}, NewState(0)))
	assert.Nil(t, Build(gjson.Parse(`{}`).Get("missing"), NewState(0)))
}

func TestRoundTrip(t *testing.T) {
	docs := []string{
		`{"a":{"b":[1,2.5,-3e2]},"s":"café \"q\"","t":true,"n":null,"e":{},"l":[]}`,
		`[[],[[]],{"k":[{"x":false}]}]`,
		`"plain"`,
		`42`,
		`null`,
	}

	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			v := gjson.Parse(doc)
			st := NewState(0)
			st.ExpandAll(v)

			lines := Build(v, st)
			got, next := rebuild(t, lines, 0)
			assert.Equal(t, len(lines), next)

			var want any
			require.NoError(t, json.Unmarshal([]byte(doc), &want))
			assert.Equal(t, want, got)
		})
	}
}

// rebuild reconstructs a value from fully expanded lines by re-parsing leaf
// literals.
func rebuild(t *testing.T, lines []Line, i int) (any, int) {
	t.Helper()
	l := lines[i]
	i++

	switch l.Kind {
	case Object:
		m := map[string]any{}
		for i < len(lines) && lines[i].Depth > l.Depth {
			k := lines[i].Key
			var v any
			v, i = rebuild(t, lines, i)
			m[k] = v
		}
		return m, i
	case Array:
		a := []any{}
		for i < len(lines) && lines[i].Depth > l.Depth {
			var v any
			v, i = rebuild(t, lines, i)
			a = append(a, v)
		}
		return a, i
	default:
		var v any
		require.NoError(t, json.Unmarshal([]byte(l.Value), &v), "leaf %s", l.Value)
		return v, i
	}
}

func TestFormatStylesIndexDifferently(t *testing.T) {
	st := DefaultStyles("", "")
	st.Key = st.Key.SetString("K:")
	st.Index = st.Index.SetString("I:")

	obj := Line{Key: "a", Depth: 1, Kind: Leaf, Value: "1", Type: gjson.Number}
	idx := Line{Key: "0", Index: true, Depth: 1, Kind: Leaf, Value: "1", Type: gjson.Number}
	assert.Contains(t, Format(obj, st), "K:")
	assert.Contains(t, Format(idx, st), "I:")
}

func TestPathDepth(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"$", 0},
		{"$.a", 1},
		{"$[0]", 1},
		{"$.a.b[2]", 3},
		{`$.a["b c"][2]`, 3},
		{`$["x.y[z]"]`, 1},
		{`$["q\"."].k`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, PathDepth(tt.path))
		})
	}
}

func TestBuildAtUsesTreeDepth(t *testing.T) {
	sub := gjson.Parse(`{"c":{"d":1}}`)

	st := NewState(2)
	lines := BuildAt(sub, "$.a.b", st)
	require.Len(t, lines, 1)
	assert.Equal(t, 0, lines[0].Depth)
	assert.False(t, lines[0].Expanded)

	st = NewState(3)
	lines = BuildAt(sub, "$.a.b", st)
	require.Len(t, lines, 2)
	assert.True(t, lines[0].Expanded)
	assert.Equal(t, "$.a.b.c", lines[1].Path)
	assert.Equal(t, 1, lines[1].Depth)
	assert.False(t, lines[1].Expanded)

	// The flags match what the full tree records for the same paths.
	full := NewState(3)
	Build(gjson.Parse(`{"a":{"b":{"c":{"d":1}}}}`), full)
	assert.Equal(t, full.Expanded("$.a.b", 2), st.Expanded("$.a.b", 0))
	assert.Equal(t, full.Expanded("$.a.b.c", 3), st.Expanded("$.a.b.c", 0))
}
