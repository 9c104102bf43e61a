// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package valuetree

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	down  = tea.KeyMsg{Type: tea.KeyDown}
	up    = tea.KeyMsg{Type: tea.KeyUp}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	left  = tea.KeyMsg{Type: tea.KeyLeft}
	right = tea.KeyMsg{Type: tea.KeyRight}
)

func TestModelToggle(t *testing.T) {
	m := NewModel(gjson.Parse(`{"a":{"b":1},"c":2}`), NewState(1), PlainStyles())
	require.Len(t, m.lines, 3)

	m = press(t, m, down, enter)
	assert.Len(t, m.lines, 4)
	assert.Equal(t, 1, m.cursor)

	m = press(t, m, enter)
	assert.Len(t, m.lines, 3)
}

func TestModelExpandCollapseKeys(t *testing.T) {
	m := NewModel(gjson.Parse(`{"a":{"b":{"c":1}}}`), NewState(1), PlainStyles())
	require.Len(t, m.lines, 2)

	m = press(t, m, down, right)
	assert.Len(t, m.lines, 3)

	m = press(t, m, down, right)
	assert.Len(t, m.lines, 4)

	m = press(t, m, down, left)
	assert.Equal(t, 2, m.cursor, "left on a leaf moves to its parent")

	m = press(t, m, left)
	assert.Len(t, m.lines, 3)

	m = press(t, m, runes("e"))
	assert.Len(t, m.lines, 4)

	m = press(t, m, runes("c"))
	assert.Len(t, m.lines, 1)
	assert.Equal(t, 0, m.cursor)

	m = press(t, m, up, up)
	assert.Equal(t, 0, m.cursor)
}

func TestModelFocusPath(t *testing.T) {
	v := gjson.Parse(`{"attrs":{"request":{"messages":[{"role":"user"},{"role":"tool"}]}}}`)
	m := NewModel(v, NewState(1), PlainStyles())

	m = press(t, m, runes("/"))
	require.True(t, m.prompting)
	m = press(t, m, runes("attrs.request.messages[1]"), enter)

	assert.False(t, m.prompting)
	assert.Equal(t, "attrs.request.messages[1]", m.focus)
	require.NotEmpty(t, m.lines)
	assert.Equal(t, "$.attrs.request.messages[1]", m.lines[0].Path)
	assert.Contains(t, m.View(), `role: "tool"`)

	m = press(t, m, runes("/"), runes("nope"))
	m.input.SetValue("nope")
	m = press(t, m, enter)
	assert.Equal(t, "attrs.request.messages[1]", m.focus)
	assert.Contains(t, m.View(), "no value at nope")

	m = press(t, m, runes("/"))
	m.input.SetValue("")
	m = press(t, m, enter)
	assert.Empty(t, m.focus)
	assert.Equal(t, RootPath, m.lines[0].Path)
}

func TestModelFocusKeepsTreeDepth(t *testing.T) {
	v := gjson.Parse(`{"attrs":{"request":{"messages":[{"role":"user"}]}}}`)
	st := NewState(3)
	m := NewModel(v, st, PlainStyles())

	m = press(t, m, runes("/"))
	m.input.SetValue("attrs.request")
	m = press(t, m, enter)

	require.Len(t, m.lines, 2)
	assert.Equal(t, "$.attrs.request", m.lines[0].Path)
	assert.True(t, m.lines[0].Expanded)
	assert.Equal(t, "$.attrs.request.messages", m.lines[1].Path)
	assert.False(t, m.lines[1].Expanded, "messages sits at depth 3 of the full tree")

	m = press(t, m, runes("/"))
	m.input.SetValue("")
	m = press(t, m, enter)
	assert.False(t, st.Expanded("$.attrs.request.messages", 3))
	assert.Len(t, m.lines, 4)
}

func TestModelPromptHistory(t *testing.T) {
	m := NewModel(gjson.Parse(`{"a":1,"b":2}`), NewState(1), PlainStyles())

	m = press(t, m, runes("/"))
	m.input.SetValue("a")
	m = press(t, m, enter, runes("/"))
	m.input.SetValue("")
	m = press(t, m, up)
	assert.Equal(t, "a", m.input.Value())

	m = press(t, m, down)
	assert.Equal(t, "", m.input.Value())
}

func TestModelViewMarksCursor(t *testing.T) {
	m := NewModel(gjson.Parse(`{"a":1}`), NewState(1), PlainStyles())
	m = press(t, m, down)

	view := m.View()
	assert.Contains(t, view, "  ▾ Object(1)\n")
	assert.Contains(t, view, ">     a: 1\n")
}

func TestModelQuit(t *testing.T) {
	m := NewModel(gjson.Parse(`{}`), NewState(0), PlainStyles())
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
