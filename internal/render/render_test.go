package render

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/planner"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testPlan(t *testing.T, goal string, accounts *model.AccountsSnapshot) *planner.Plan {
	t.Helper()
	plan, err := planner.Generate(planner.RawProfile{
		"age":             32,
		"income":          85000,
		"riskTolerance":   "Moderate",
		"investmentGoal":  goal,
		"timeHorizon":     "10 years",
		"currentSavings":  45000,
		"monthlyExpenses": 4200,
		"has401k":         true,
		"employerMatch":   0.05,
	}, accounts, planner.WithNow(fixedNow))
	require.NoError(t, err)
	return plan
}

func TestMarkdown(t *testing.T) {
	plan := testPlan(t, "Retirement", nil)

	md, err := Markdown(plan)
	require.NoError(t, err)

	assert.Contains(t, md, "# Financial Plan")
	assert.Contains(t, md, "Generated March 1, 2025 for a 32-year-old Moderate investor saving for Retirement over 10 years.")
	assert.Contains(t, md, fmt.Sprintf("## Health Score: %d/100 (%s)", plan.HealthScore.TotalScore, plan.HealthScore.Grade))
	assert.Contains(t, md, fmt.Sprintf("| Stocks | %d%% |", plan.PortfolioAnalysis.Allocation.Stocks))
	assert.Contains(t, md, "Target nest egg: "+planner.FormatMoney(plan.RetirementPlan.TargetNestEgg))
	assert.Contains(t, md, "Employer match: ")
	assert.Nil(t, plan.GoalPlan())
	assert.NotContains(t, md, "## Retirement Goal")

	for _, rec := range plan.Recommendations {
		assert.Contains(t, md, "**"+rec.Title+"**")
	}

	require.NotEmpty(t, plan.Warnings)
	assert.Contains(t, md, "## Notes")
}

func TestMarkdown_HouseGoal(t *testing.T) {
	plan := testPlan(t, "House", nil)
	require.NotNil(t, plan.HousePlan)

	md, err := Markdown(plan)
	require.NoError(t, err)
	assert.Contains(t, md, "## House Goal")
	assert.Contains(t, md, "down payment "+planner.FormatMoney(plan.HousePlan.DownPayment))
	assert.Contains(t, md, plan.HousePlan.TargetDate.Format("January 2006"))
}

func TestMarkdown_FromAccounts(t *testing.T) {
	accounts := &model.AccountsSnapshot{Accounts: []model.Account{
		{ID: "chk", Type: model.AccountChecking, Balance: 5000},
		{ID: "cc", Type: model.AccountCredit, Balance: 1200},
	}}
	plan := testPlan(t, "Retirement", accounts)

	md, err := Markdown(plan)
	require.NoError(t, err)
	assert.Contains(t, md, "- Liquid savings: $5,000.00")
	assert.Contains(t, md, "- Total liabilities: $1,200.00")
	assert.Contains(t, md, "Based on 2 linked accounts")
	assert.NotContains(t, md, "## Notes")
}

func TestMarkdown_NilPlan(t *testing.T) {
	_, err := Markdown(nil)
	assert.Error(t, err)
}

func TestTerminal(t *testing.T) {
	plan := testPlan(t, "Retirement", nil)

	out, err := Terminal(plan, 100, "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Financial Plan")
	assert.Contains(t, out, "Recommendations")
}
