package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/cli"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/config"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/ofx"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/planner"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/render"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/tui"
)

// profileFlags maps plan flags onto profile fields.
var profileFlags = []struct {
	flag, field, usage string
}{
	{"age", "age", "age in years (18-100)"},
	{"income", "income", "gross annual income"},
	{"risk", "riskTolerance", "risk tolerance: Conservative, Moderate or Aggressive"},
	{"goal", "investmentGoal", "goal: Retirement, House, Education, Emergency Fund or Wealth Building"},
	{"horizon", "timeHorizon", "time horizon: 5, 10, 20, 30 or 40 years"},
	{"savings", "currentSavings", "current savings"},
	{"expenses", "monthlyExpenses", "monthly expenses"},
	{"emergency-fund", "hasEmergencyFund", "already has an emergency fund (true/false)"},
	{"401k", "has401k", "has access to a 401(k) (true/false)"},
	{"match", "employerMatch", "employer 401(k) match, for example 0.05 or 5%"},
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a financial plan",
		Long: `Build a financial plan from a profile file, flags, or an interactive form.

Flags override values from --profile. Balances from --ofx and --connection
replace the current-savings estimate with real account totals.

Examples:
  finai plan --age 32 --income 85000 --risk Moderate --goal Retirement \
    --horizon "30 years" --savings 45000 --expenses 4200
  finai plan --profile profile.yaml --ofx checking.qfx --format markdown
  finai plan --connection all --interactive`,
		RunE: runPlan,
	}

	for _, f := range profileFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}
	cmd.Flags().String("profile", "", "profile file (.json or .yaml)")
	cmd.Flags().StringSlice("ofx", nil, "OFX/QFX statement(s) to take balances from")
	cmd.Flags().String("connection", "", `linked connection ID, or "all"`)
	cmd.Flags().String("format", "text", "output format: text, json or markdown")
	cmd.Flags().BoolP("interactive", "i", false, "fill in the profile with an interactive form")

	return cmd
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "json", "markdown":
	default:
		return fmt.Errorf("unknown format %q: use text, json or markdown", format)
	}

	raw, err := profileFromFlags(cmd)
	if err != nil {
		return err
	}

	accounts, err := planAccounts(ctx, cmd)
	if err != nil {
		return err
	}

	var plan *planner.Plan
	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		opts := []tui.Option{tui.WithProfile(raw)}
		if accounts != nil {
			opts = append(opts, tui.WithAccounts(accounts))
		}
		final, err := tui.Run(ctx, opts...)
		if err != nil {
			return err
		}
		if plan = final.Plan(); plan == nil {
			return nil
		}
	} else {
		plan, err = planner.Generate(raw, accounts)
		if err != nil {
			return err
		}
	}

	return writePlan(out, plan, format)
}

// profileFromFlags merges --profile with any explicitly set profile flags.
func profileFromFlags(cmd *cobra.Command) (planner.RawProfile, error) {
	raw := planner.RawProfile{}
	if path, _ := cmd.Flags().GetString("profile"); path != "" {
		loaded, err := loadProfileFile(path)
		if err != nil {
			return nil, err
		}
		raw = loaded
	}

	for _, f := range profileFlags {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		v, _ := cmd.Flags().GetString(f.flag)
		raw[f.field] = v
	}
	return raw, nil
}

// planAccounts merges balances from OFX files and linked connections. It
// returns nil when neither was requested.
func planAccounts(ctx context.Context, cmd *cobra.Command) (*model.AccountsSnapshot, error) {
	var snaps []model.AccountsSnapshot

	files, _ := cmd.Flags().GetStringSlice("ofx")
	parser := ofx.NewParser()
	for _, path := range files {
		snap, err := parseOFXFile(ctx, parser, path)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}

	if id, _ := cmd.Flags().GetString("connection"); id != "" {
		stack, err := newAccountStack(ctx)
		if err != nil {
			return nil, err
		}
		defer stack.Close()

		var snap model.AccountsSnapshot
		if id == "all" {
			snap, err = stack.service.SnapshotAll(ctx)
		} else {
			snap, err = stack.service.Snapshot(ctx, id)
		}
		if err != nil {
			return nil, fmt.Errorf("load balances: %w", err)
		}
		snaps = append(snaps, snap)
	}

	if len(snaps) == 0 {
		return nil, nil
	}
	merged := snaps[0]
	for _, s := range snaps[1:] {
		merged = merged.Merge(s)
	}
	return &merged, nil
}

func parseOFXFile(ctx context.Context, parser *ofx.Parser, path string) (model.AccountsSnapshot, error) {
	f, err := os.Open(config.ExpandPath(path))
	if err != nil {
		return model.AccountsSnapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	snap, err := parser.ParseSnapshot(ctx, f)
	if err != nil {
		return model.AccountsSnapshot{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return snap, nil
}

func writePlan(w io.Writer, plan *planner.Plan, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	case "markdown":
		// Raw Markdown when piped; styled when a person is reading it.
		if width, ok := terminalWidth(w); ok {
			out, err := render.Terminal(plan, width, "")
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, out)
			return err
		}
		md, err := render.Markdown(plan)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, md)
		return err
	default:
		if width, ok := terminalWidth(w); ok {
			out, err := render.Terminal(plan, width, "")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, cli.PlanSummary(plan)+"\n"+out)
			return err
		}
		_, err := fmt.Fprintln(w, cli.PlanSummary(plan))
		return err
	}
}

// terminalWidth reports the column count of w when it is an interactive terminal.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(f.Fd()) {
		return 0, false
	}
	width, _, err := term.GetSize(f.Fd())
	if err != nil || width <= 0 {
		width = 80
	}
	return width, true
}
