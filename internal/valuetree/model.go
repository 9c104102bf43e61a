// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package valuetree

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/gjson"

	"github.com/tfctl/tracediff/internal/driller"
)

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	Expand      key.Binding
	Collapse    key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Focus       key.Binding
	Quit        key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.ExpandAll, k.CollapseAll, k.Focus, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Expand, k.Collapse},
		{k.ExpandAll, k.CollapseAll, k.Focus, k.Quit},
	}
}

var keys = keyMap{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "toggle")),
	Expand:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "expand")),
	Collapse:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
	ExpandAll:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand all")),
	CollapseAll: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse all")),
	Focus:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "focus path")),
	Quit:        key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model browses a value tree interactively. "/" opens a path prompt; the
// entered path (driller syntax, e.g. attrs.request.messages[0]) becomes the
// displayed root and an empty path restores the whole value.
type Model struct {
	value  gjson.Result
	state  *State
	styles Styles

	focus  string
	lines  []Line
	cursor int
	offset int
	height int

	keys      keyMap
	help      help.Model
	input     textinput.Model
	prompting bool
	history   []string
	histIndex int
	status    string
}

// NewModel returns a model over v. st may be shared with a static render.
func NewModel(v gjson.Result, st *State, styles Styles) Model {
	ti := textinput.New()
	ti.Prompt = "path> "
	ti.CharLimit = 512

	m := Model{
		value:     v,
		state:     st,
		styles:    styles,
		keys:      keys,
		help:      help.New(),
		input:     ti,
		histIndex: -1,
		height:    20,
	}
	m.rebuild()
	return m
}

// Run starts the full-screen browser.
func Run(v gjson.Result, st *State, styles Styles) error {
	_, err := tea.NewProgram(NewModel(v, st, styles), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m *Model) root() (gjson.Result, string) {
	if m.focus == "" {
		return m.value, RootPath
	}
	return driller.Drill(Unwrap(m.value), m.focus), RootPath + "." + m.focus
}

func (m *Model) rebuild() {
	v, path := m.root()
	m.lines = BuildAt(v, path, m.state)
	if m.cursor >= len(m.lines) {
		m.cursor = max(len(m.lines)-1, 0)
	}
	m.scroll()
}

func (m *Model) scroll() {
	switch {
	case m.cursor < m.offset:
		m.offset = m.cursor
	case m.cursor >= m.offset+m.height:
		m.offset = m.cursor - m.height + 1
	}
}

func (m Model) current() (Line, bool) {
	if m.cursor < 0 || m.cursor >= len(m.lines) {
		return Line{}, false
	}
	return m.lines[m.cursor], true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-3, 1)
		m.help.Width = msg.Width
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			m.scroll()
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.lines)-1 {
				m.cursor++
			}
			m.scroll()
		case key.Matches(msg, m.keys.Toggle):
			if l, ok := m.current(); ok && l.Expandable() {
				m.state.Toggle(l.Path, l.Depth)
				m.rebuild()
			}
		case key.Matches(msg, m.keys.Expand):
			if l, ok := m.current(); ok && l.Expandable() && !l.Expanded {
				m.state.Set(l.Path, true)
				m.rebuild()
			}
		case key.Matches(msg, m.keys.Collapse):
			m.collapseOrParent()
		case key.Matches(msg, m.keys.ExpandAll):
			v, path := m.root()
			m.state.setAll(v, path, true)
			m.rebuild()
		case key.Matches(msg, m.keys.CollapseAll):
			v, path := m.root()
			m.state.setAll(v, path, false)
			m.cursor = 0
			m.rebuild()
		case key.Matches(msg, m.keys.Focus):
			m.prompting = true
			m.input.SetValue(m.focus)
			m.input.CursorEnd()
			return m, m.input.Focus()
		}
		return m, nil
	}
	return m, nil
}

// collapseOrParent collapses the current container, or moves to the parent
// when the cursor is on a leaf or a collapsed container.
func (m *Model) collapseOrParent() {
	l, ok := m.current()
	if !ok {
		return
	}
	if l.Expandable() && l.Expanded {
		m.state.Set(l.Path, false)
		m.rebuild()
		return
	}
	for i := m.cursor - 1; i >= 0; i-- {
		if m.lines[i].Depth < l.Depth {
			m.cursor = i
			m.scroll()
			return
		}
	}
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		entry := strings.TrimSpace(m.input.Value())
		m.prompting = false
		m.input.Blur()
		if entry != "" {
			m.history = append(m.history, entry)
		}
		m.histIndex = -1

		if entry != "" && !driller.Drill(Unwrap(m.value), entry).Exists() {
			m.status = "no value at " + entry
			return m, nil
		}
		m.status = ""
		m.focus = entry
		m.cursor, m.offset = 0, 0
		if entry != "" {
			// The focused node opens; its descendants follow the policy.
			_, path := m.root()
			m.state.Set(path, true)
		}
		m.rebuild()
		return m, nil

	case "esc", "ctrl+c":
		m.prompting = false
		m.input.Blur()
		return m, nil

	case "up":
		if len(m.history) == 0 {
			return m, nil
		}
		if m.histIndex == -1 {
			m.histIndex = len(m.history) - 1
		} else if m.histIndex > 0 {
			m.histIndex--
		}
		m.input.SetValue(m.history[m.histIndex])
		m.input.CursorEnd()
		return m, nil

	case "down":
		if m.histIndex >= 0 && m.histIndex < len(m.history)-1 {
			m.histIndex++
			m.input.SetValue(m.history[m.histIndex])
		} else {
			m.histIndex = -1
			m.input.SetValue("")
		}
		m.input.CursorEnd()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)

	title := "$"
	if m.focus != "" {
		title += "." + m.focus
	}

	var b strings.Builder
	b.WriteString(m.styles.paint(titleStyle, title))
	b.WriteString("\n")

	end := min(m.offset+m.height, len(m.lines))
	for i := m.offset; i < end; i++ {
		line := Format(m.lines[i], m.styles)
		gutter := "  "
		if i == m.cursor {
			gutter = "> "
			if m.styles.Color {
				line = m.styles.Cursor.Render(line)
			}
		}
		b.WriteString(gutter + line)
		b.WriteString("\n")
	}

	switch {
	case m.prompting:
		b.WriteString(m.input.View())
	case m.status != "":
		b.WriteString(m.status)
	default:
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}
