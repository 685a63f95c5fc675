package tui

import (
	"time"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/planner"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Accounts *model.AccountsSnapshot
	Profile  planner.RawProfile
	Now      func() time.Time
	// GlamourStyle names the report style; empty detects it from the terminal.
	GlamourStyle string
	Width        int
	Height       int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Now:    time.Now,
		Width:  80,
		Height: 24,
	}
}

// WithAccounts plans against linked or imported balances.
func WithAccounts(snap *model.AccountsSnapshot) Option {
	return func(c *Config) {
		c.Accounts = snap
	}
}

// WithProfile prefills the form.
func WithProfile(raw planner.RawProfile) Option {
	return func(c *Config) {
		c.Profile = raw
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithNow fixes the plan generation time.
func WithNow(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

// WithGlamourStyle sets the report style, for example "dark" or "notty".
func WithGlamourStyle(style string) Option {
	return func(c *Config) {
		c.GlamourStyle = style
	}
}
