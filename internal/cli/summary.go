package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/planner"
)

// PlanSummary is the compact text rendition of a plan used by `finai plan --format text`.
func PlanSummary(plan *planner.Plan) string {
	score := plan.HealthScore
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		BoldStyle.Render("Financial health "),
		GradeStyle(score.Grade).Render(fmt.Sprintf("%d/100 %s", score.TotalScore, score.Grade)),
	)

	alloc := plan.PortfolioAnalysis.Allocation
	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(LabelStyle.Render(label) + value + "\n")
	}

	row("Net worth", planner.FormatMoney(plan.CurrentFinancials.NetWorth))
	row("Liquid savings", planner.FormatMoney(plan.CurrentFinancials.LiquidSavings))
	row("Allocation", fmt.Sprintf("%d%% stocks / %d%% bonds / %d%% real estate / %d%% cash",
		alloc.Stocks, alloc.Bonds, alloc.RealEstate, alloc.Cash))
	row("Expected return", fmt.Sprintf("%.1f%% (%s risk)", plan.PortfolioAnalysis.ExpectedReturn, plan.PortfolioAnalysis.RiskLevel))
	row("Retirement target", planner.FormatMoney(plan.RetirementPlan.TargetNestEgg))
	row("Save monthly", planner.FormatMoney(plan.RetirementPlan.MonthlySavingsNeeded))
	row("Emergency fund", fmt.Sprintf("%s of %s (%s)",
		planner.FormatMoney(plan.EmergencyFund.CurrentAmount),
		planner.FormatMoney(plan.EmergencyFund.RecommendedAmount),
		plan.EmergencyFund.Status))
	if g := plan.GoalPlan(); g != nil {
		row(g.Goal.String()+" goal", fmt.Sprintf("%s, %s/month",
			planner.FormatMoney(g.TotalNeeded), planner.FormatMoney(g.MonthlyContribution)))
	}

	if len(plan.Recommendations) > 0 {
		b.WriteString("\n" + BoldStyle.Render("Recommendations") + "\n")
		for _, r := range plan.Recommendations {
			fmt.Fprintf(&b, "  %s %s\n", PriorityStyle(r.Priority).Render("["+string(r.Priority)+"]"), r.Title)
		}
	}
	for _, w := range plan.Warnings {
		b.WriteString("\n" + FormatWarning(w.Message))
	}

	return RenderBox(header, strings.TrimRight(b.String(), "\n"))
}

// AccountsTable lists snapshot accounts with their balances and totals.
func AccountsTable(snap model.AccountsSnapshot) string {
	if len(snap.Accounts) == 0 {
		return SubtleStyle.Render("No accounts.")
	}

	nameWidth := 0
	for _, a := range snap.Accounts {
		nameWidth = max(nameWidth, lipgloss.Width(a.Name))
	}
	nameStyle := lipgloss.NewStyle().Width(nameWidth + 2)
	typeStyle := SubtleStyle.Width(12)

	var b strings.Builder
	for _, a := range snap.Accounts {
		balance := planner.FormatMoney(a.Balance)
		if a.Type.IsLiability() {
			balance = ErrorStyle.Render("-" + balance)
		}
		b.WriteString(nameStyle.Render(a.Name) + typeStyle.Render(string(a.Type)) + balance + "\n")
	}
	fmt.Fprintf(&b, "\n%s%s\n", LabelStyle.Render("Liquid savings"), planner.FormatMoney(snap.LiquidSavings()))
	fmt.Fprintf(&b, "%s%s\n", LabelStyle.Render("Liabilities"), planner.FormatMoney(snap.TotalLiabilities()))
	fmt.Fprintf(&b, "%s%s", LabelStyle.Render("Net worth"), planner.FormatMoney(snap.NetWorth()))
	return b.String()
}
