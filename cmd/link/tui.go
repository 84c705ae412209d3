package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-linker/linker"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	moduleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type tuiState int

const (
	stateReady tuiState = iota
	stateLinking
	stateDone
)

type model struct {
	l       *linker.Linker
	loaded  []*loadedModule
	spinner spinner.Model
	state   tuiState
	linkErr error
}

func newModel(l *linker.Linker, loaded []*loadedModule) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &model{l: l, loaded: loaded, spinner: s, state: stateReady}
}

type linkDoneMsg struct{ err error }

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != stateLinking {
				return m, tea.Quit
			}
		case "enter":
			if m.state == stateReady {
				m.state = stateLinking
				return m, tea.Batch(m.spinner.Tick, m.runLink)
			}
		}

	case linkDoneMsg:
		m.state = stateDone
		m.linkErr = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.state == stateLinking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *model) runLink() tea.Msg {
	return linkDoneMsg{err: m.l.TryLink()}
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("wasm-linker"))
	b.WriteString("\n\n")

	for _, lm := range m.loaded {
		b.WriteString(moduleStyle.Render(describeModule(lm)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.state {
	case stateReady:
		b.WriteString(helpStyle.Render("enter link • q quit"))
	case stateLinking:
		fmt.Fprintf(&b, "%s linking...\n", m.spinner.View())
	case stateDone:
		if m.linkErr != nil {
			b.WriteString(errorStyle.Render("Link failed: " + m.linkErr.Error()))
		} else {
			b.WriteString(okStyle.Render(fmt.Sprintf("Link succeeded (state=%s)", m.l.State())))
			b.WriteString("\n\n")
			b.WriteString(moduleStyle.Render("Resolution order:"))
			for i, rt := range m.l.Trace() {
				fmt.Fprintf(&b, "\n  %2d. %-60s %s", i+1, rt.Sym, rt.Duration)
			}
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q quit"))
	}

	return b.String()
}
