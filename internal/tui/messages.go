package tui

import "github.com/Pranay-Dommati/FInAi-sub001/internal/planner"

type planBuiltMsg struct {
	plan *planner.Plan
	err  error
}
