// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/v2"
)

// Loader produces the rendered comparison. It runs on a bubbletea command
// goroutine, so it may block on the network.
type Loader func(ctx context.Context) (string, error)

// Sequencer tags requests so that only the newest response is shown.
type Sequencer interface {
	Next() uint64
	IsLatest(seq uint64) bool
}

// RunPager shows the output of load in a scrollable full-screen view. "r"
// reloads; a response that arrives after a newer reload was issued is
// dropped.
func RunPager(ctx context.Context, title string, load Loader, seq Sequencer) error {
	p := tea.NewProgram(newPagerModel(ctx, title, load, seq), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type loadedMsg struct {
	seq     uint64
	content string
	err     error
}

type pagerKeys struct {
	Up     key.Binding
	Down   key.Binding
	Reload key.Binding
	Quit   key.Binding
}

func (k pagerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Reload, k.Quit}
}

func (k pagerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultPagerKeys = pagerKeys{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

type pagerModel struct {
	ctx      context.Context
	title    string
	load     Loader
	seq      Sequencer
	keys     pagerKeys
	help     help.Model
	viewport viewport.Model
	ready    bool
	loading  bool
	content  string
	err      error
	dropped  int
}

func newPagerModel(ctx context.Context, title string, load Loader, seq Sequencer) pagerModel {
	return pagerModel{
		ctx:     ctx,
		title:   title,
		load:    load,
		seq:     seq,
		keys:    defaultPagerKeys,
		help:    help.New(),
		loading: true,
	}
}

// Init issues the first fetch. The model starts out loading.
func (m pagerModel) Init() tea.Cmd { return m.fetch() }

// fetch must be called from Init or Update so sequence numbers are issued in
// order.
func (m *pagerModel) fetch() tea.Cmd {
	m.loading = true
	seq := m.seq.Next()
	load, ctx := m.load, m.ctx
	return func() tea.Msg {
		content, err := load(ctx)
		return loadedMsg{seq: seq, content: content, err: err}
	}
}

func (m pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-2, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.viewport.SetContent(m.body())
		return m, nil

	case loadedMsg:
		if !m.seq.IsLatest(msg.seq) {
			m.dropped++
			return m, nil
		}
		m.loading = false
		m.content, m.err = msg.content, msg.err
		if m.ready {
			m.viewport.SetContent(m.body())
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reload):
			cmd := m.fetch()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m pagerModel) body() string {
	if m.err != nil {
		return fmt.Sprintf("error: %v", m.err)
	}
	return m.content
}

func (m pagerModel) View() string {
	status := ""
	if m.loading {
		status = " (loading…)"
	}
	header := lipgloss.NewStyle().Bold(true).Render(m.title + status)
	if !m.ready {
		return header + "\n"
	}
	return header + "\n" + m.viewport.View() + "\n" + m.help.View(m.keys)
}
