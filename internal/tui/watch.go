// Package tui is a live terminal view of a multi-agent rollout: per-agent
// reward traces, the current joint state, and episode bookkeeping.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/splitsim/internal/env"
	"github.com/san-kum/splitsim/internal/policy"
)

const historyCapacity = 300

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	agentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(0, 1)
	phaseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps the env on a timer and renders the unfolding rollout.
type Model struct {
	env     *env.Env
	pol     policy.Policy
	obs     map[string][]float64
	rewards map[string][]float64
	global  []float64
	running bool
	steps   int
	episode int
	err     error
}

func NewModel(e *env.Env, pol policy.Policy) (Model, error) {
	observations, _, err := e.Reset()
	if err != nil {
		return Model{}, err
	}
	return Model{
		env:     e,
		pol:     pol,
		obs:     observations,
		rewards: make(map[string][]float64),
		running: true,
		episode: 1,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			observations, _, err := m.env.Reset()
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.obs = observations
			m.episode++
		}
		return m, nil

	case TickMsg:
		if m.running {
			m.advance()
			if m.err != nil {
				return m, tea.Quit
			}
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) advance() {
	if m.env.Phase() != env.Running {
		observations, _, err := m.env.Reset()
		if err != nil {
			m.err = err
			return
		}
		m.obs = observations
		m.episode++
		return
	}

	actions := make(map[string][]float64, len(m.obs))
	t := m.env.State().Time
	for _, id := range m.env.AgentIDs() {
		actions[id] = m.pol.Act(id, m.obs[id], t)
	}

	observations, rewards, _, _, info, err := m.env.Step(actions)
	if err != nil {
		m.err = err
		return
	}
	m.obs = observations
	m.steps++

	for id, r := range rewards {
		m.rewards[id] = appendCapped(m.rewards[id], r)
	}
	m.global = appendCapped(m.global, info.GlobalReward)
}

func appendCapped(series []float64, v float64) []float64 {
	series = append(series, v)
	if len(series) > historyCapacity {
		series = series[1:]
	}
	return series
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("splitsim watch — %s", m.env.Model().Name)))
	b.WriteString("\n")

	state := m.env.State()
	b.WriteString(labelStyle.Render("phase "))
	b.WriteString(phaseStyle.Render(string(m.env.Phase())))
	b.WriteString(labelStyle.Render("  episode "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.episode)))
	b.WriteString(labelStyle.Render("  step "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.steps)))
	b.WriteString(labelStyle.Render("  t "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2fs", state.Time)))
	b.WriteString("\n\n")

	if len(m.global) > 1 {
		b.WriteString(labelStyle.Render("global reward"))
		b.WriteString("\n")
		b.WriteString(graphStyle.Render(asciigraph.Plot(m.global,
			asciigraph.Height(6),
			asciigraph.Width(64),
		)))
		b.WriteString("\n")
	}

	for _, id := range m.env.AgentIDs() {
		series := m.rewards[id]
		if len(series) < 2 {
			continue
		}
		b.WriteString(agentStyle.Render(id))
		b.WriteString(labelStyle.Render(fmt.Sprintf("  reward %.4f", series[len(series)-1])))
		b.WriteString("\n")
		b.WriteString(graphStyle.Render(asciigraph.Plot(series,
			asciigraph.Height(4),
			asciigraph.Width(64),
		)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("qpos "))
	for i, q := range state.Qpos {
		if i >= 8 {
			b.WriteString(valueStyle.Render("…"))
			break
		}
		b.WriteString(valueStyle.Render(fmt.Sprintf("%+.2f ", q)))
	}
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("space pause · r reset · q quit"))
	b.WriteString("\n")
	return b.String()
}

// Err returns the error that ended the session, if any.
func (m Model) Err() error { return m.err }

// Run drives the watch view until the user quits.
func Run(e *env.Env, pol policy.Policy) error {
	m, err := NewModel(e, pol)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}
