// Package render formats plans for people: a Markdown report and a styled
// terminal rendition of the same report.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/planner"
)

const reportTemplate = `# Financial Plan

Generated {{ .GeneratedAt.Format "January 2, 2006" }} for a {{ .Profile.Age }}-year-old {{ .Profile.RiskTolerance }} investor saving for {{ .Profile.InvestmentGoal }} over {{ .Profile.TimeHorizon }}.

## Health Score: {{ .HealthScore.TotalScore }}/100 ({{ .HealthScore.Grade }})

| Component | Points |
|---|---|
| Emergency fund | {{ .HealthScore.EmergencyFund }} |
| Retirement | {{ .HealthScore.Retirement }} |
| Debt | {{ .HealthScore.Debt }} |
| Savings rate | {{ .HealthScore.SavingsRate }} |
| Diversification | {{ .HealthScore.Diversification }} |

## Current Financials

- Total assets: {{ money .CurrentFinancials.TotalAssets }}
- Liquid savings: {{ money .CurrentFinancials.LiquidSavings }}
- Total liabilities: {{ money .CurrentFinancials.TotalLiabilities }}
- Net worth: {{ money .CurrentFinancials.NetWorth }}
{{- if .CurrentFinancials.FromAccounts }}
- Based on {{ .CurrentFinancials.AccountCount }} linked account{{ if ne .CurrentFinancials.AccountCount 1 }}s{{ end }}
{{- end }}

## Portfolio

| Asset class | Target |
|---|---|
| Stocks | {{ .PortfolioAnalysis.Allocation.Stocks }}% |
| Bonds | {{ .PortfolioAnalysis.Allocation.Bonds }}% |
| Real estate | {{ .PortfolioAnalysis.Allocation.RealEstate }}% |
| Cash | {{ .PortfolioAnalysis.Allocation.Cash }}% |

Expected return {{ printf "%.1f" .PortfolioAnalysis.ExpectedReturn }}% per year, {{ .PortfolioAnalysis.RiskLevel }} risk.

## Retirement

{{- with .RetirementPlan }}

- Retire at {{ .RetirementAge }} ({{ .YearsToRetirement }} years away)
- Target nest egg: {{ money .TargetNestEgg }}
- Current progress: {{ money .CurrentProgress }}
- Shortfall: {{ money .Shortfall }}
- Monthly savings needed: {{ money .MonthlySavingsNeeded }}
{{- if gt .EmployerMatchContribution 0.0 }}
- Employer match: {{ money .EmployerMatchContribution }} per month
{{- end }}
{{- end }}

## Emergency Fund

{{- with .EmergencyFund }}

{{ .RecommendedMonths }} months of expenses: {{ money .RecommendedAmount }}. You have {{ money .CurrentAmount }} ({{ .Status }}).
{{- if gt .Shortfall 0.0 }} Shortfall: {{ money .Shortfall }}.{{ end }}
{{- end }}
{{- with .GoalPlan }}

## {{ .Goal }} Goal

- Total needed: {{ money .TotalNeeded }} by {{ .TargetDate.Format "January 2006" }}
- Monthly contribution: {{ money .MonthlyContribution }}
{{- if gt .DownPayment 0.0 }}
- Home price {{ money .TargetPrice }}: down payment {{ money .DownPayment }}, closing costs {{ money .ClosingCosts }}
{{- end }}
{{- if gt .BaseCost 0.0 }}
- Today's cost {{ money .BaseCost }} grown at {{ percent .InflationRate }} inflation, invested at {{ percent .GrowthRate }}
{{- end }}
{{- end }}

## Recommendations
{{ range $i, $r := .Recommendations }}
{{ inc $i }}. **{{ $r.Title }}** ({{ $r.Priority }}): {{ $r.Description }}
{{- range $r.ActionItems }}
   - {{ . }}
{{- end }}
{{- else }}
No changes recommended.
{{- end }}
{{- if .Warnings }}

## Notes
{{ range .Warnings }}
- {{ .Field }}: {{ .Message }}
{{- end }}
{{- end }}
`

var report = template.Must(template.New("plan").Funcs(template.FuncMap{
	"money":   planner.FormatMoney,
	"percent": planner.FormatPercent,
	"inc":     func(i int) int { return i + 1 },
}).Parse(reportTemplate))

// Markdown renders the plan as a Markdown report.
func Markdown(plan *planner.Plan) (string, error) {
	if plan == nil {
		return "", fmt.Errorf("render: nil plan")
	}
	var buf bytes.Buffer
	if err := report.Execute(&buf, plan); err != nil {
		return "", fmt.Errorf("render plan: %w", err)
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

// Terminal renders the Markdown report for a terminal of the given width.
// Style is a glamour standard style name; empty picks one from the terminal.
func Terminal(plan *planner.Plan, width int, style string) (string, error) {
	md, err := Markdown(plan)
	if err != nil {
		return "", err
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(max(width, 40))}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("terminal renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
