package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/cli"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/planner"
)

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.state == StateDashboard && m.plan != nil {
		return m.dashboardView()
	}
	return m.formView()
}

func (m Model) formView() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("FinAI planner") + "\n")

	if snap := m.config.Accounts; snap != nil {
		b.WriteString(m.theme.Subtitle.Render(fmt.Sprintf("Using %d accounts from %s, liquid savings %s",
			len(snap.Accounts), snap.Source, planner.FormatMoney(snap.LiquidSavings()))) + "\n\n")
	}

	for i, f := range m.form.fields {
		label := m.theme.Label
		if i == m.form.focus {
			label = m.theme.FocusedLabel
		}
		b.WriteString(label.Render(f.label))
		if len(f.choices) > 0 {
			choice := f.choices[f.choice]
			if i == m.form.focus {
				choice = "‹ " + choice + " ›"
			}
			b.WriteString(m.theme.Choice.Render(choice))
		} else {
			b.WriteString(f.input.View())
		}
		b.WriteString("\n")
	}

	if m.form.errText != "" {
		b.WriteString("\n" + m.theme.StatusError.Render(m.form.errText) + "\n")
	}

	b.WriteString("\n" + m.helpView(m.keymap.Next, m.keymap.Prev, m.keymap.Right, m.keymap.Submit, m.keymap.Cancel))
	return b.String()
}

func (m Model) dashboardView() string {
	score := m.plan.HealthScore
	grade := cli.GradeStyle(score.Grade).Render(fmt.Sprintf("%d/100 %s", score.TotalScore, score.Grade))
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		m.theme.Title.UnsetMargins().Render("Financial health "),
		grade,
		"  ",
		m.score.ViewAs(float64(score.TotalScore)/100),
	)

	footer := m.helpView(m.keymap.Up, m.keymap.Down, m.keymap.Edit, m.keymap.Quit)
	if m.err != nil {
		footer = m.theme.StatusError.Render(m.err.Error()) + "\n" + footer
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.report.View(),
		"",
		footer,
	)
}

func (m Model) helpView(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.theme.Help.Render(strings.Join(parts, " • "))
}
