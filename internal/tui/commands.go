package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/planner"
)

func buildPlan(raw planner.RawProfile, accounts *model.AccountsSnapshot, cfg Config) tea.Cmd {
	now := cfg.Now()
	return func() tea.Msg {
		plan, err := planner.Generate(raw, accounts, planner.WithNow(now))
		return planBuiltMsg{plan: plan, err: err}
	}
}
