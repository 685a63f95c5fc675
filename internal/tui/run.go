package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Run shows the form, then the dashboard, and returns the final model.
// Its Plan is nil when the user quits before building one.
func Run(ctx context.Context, opts ...Option) (*Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	// Resolve the report style before the program owns the terminal.
	if cfg.GlamourStyle == "" {
		cfg.GlamourStyle = "light"
		if lipgloss.HasDarkBackground() {
			cfg.GlamourStyle = "dark"
		}
	}

	p := tea.NewProgram(newModel(cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return nil, fmt.Errorf("run planner UI: %w", err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	m, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	return &m, nil
}
