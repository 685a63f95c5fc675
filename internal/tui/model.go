// Package tui is the interactive planner: a profile form followed by a
// scrollable plan dashboard.
package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/planner"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/render"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/tui/themes"
)

// State represents the current screen.
type State int

// Screens.
const (
	StateForm State = iota
	StateDashboard
)

// headerHeight is the dashboard chrome above and below the report.
const headerHeight = 5

// Model holds the main TUI state.
type Model struct {
	theme    themes.Theme
	err      error
	plan     *planner.Plan
	config   Config
	keymap   KeyMap
	form     formModel
	report   viewport.Model
	score    progress.Model
	width    int
	height   int
	state    State
	quitting bool
}

func newModel(cfg Config) Model {
	km := DefaultKeyMap()
	return Model{
		state:  StateForm,
		config: cfg,
		keymap: km,
		theme:  cfg.Theme,
		form:   newForm(cfg.Profile, km),
		report: viewport.New(cfg.Width, max(cfg.Height-headerHeight, 1)),
		score:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		width:  cfg.Width,
		height: cfg.Height,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Plan returns the last plan built, or nil.
func (m Model) Plan() *planner.Plan {
	return m.plan
}

// State returns the current screen.
func (m Model) State() State {
	return m.state
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.report.Width = msg.Width
		m.report.Height = max(msg.Height-headerHeight, 1)
		if m.plan != nil {
			m.renderReport()
		}
		return m, nil

	case planBuiltMsg:
		return m.handlePlanBuilt(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.state == StateForm {
			return m.updateForm(msg)
		}
		return m.updateDashboard(msg)
	}

	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.Cancel) {
		m.quitting = true
		return m, tea.Quit
	}

	form, cmd, submit := m.form.update(msg)
	m.form = form
	if submit {
		return m, buildPlan(m.form.raw(), m.config.Accounts, m.config)
	}
	return m, cmd
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Edit):
		m.state = StateForm
		return m, m.form.setFocus(m.form.focus)
	}

	var cmd tea.Cmd
	m.report, cmd = m.report.Update(msg)
	return m, cmd
}

func (m Model) handlePlanBuilt(msg planBuiltMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		var verr *planner.ValidationError
		if errors.As(msg.err, &verr) {
			m.form.errText = fmt.Sprintf("%s %s", verr.Field, verr.Constraint)
			return m, m.form.focusField(verr.Field)
		}
		m.form.errText = msg.err.Error()
		return m, nil
	}

	m.plan = msg.plan
	m.form.errText = ""
	m.state = StateDashboard
	m.renderReport()
	return m, nil
}

func (m *Model) renderReport() {
	out, err := render.Terminal(m.plan, m.width, m.config.GlamourStyle)
	if err != nil {
		m.err = err
		out, _ = render.Markdown(m.plan)
	}
	m.report.SetContent(out)
	m.report.GotoTop()
}
