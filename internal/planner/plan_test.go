package planner

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
)

func moderateSaverRaw() RawProfile {
	return RawProfile{
		"age":              32,
		"income":           85000,
		"riskTolerance":    "Moderate",
		"investmentGoal":   "Retirement",
		"timeHorizon":      "30 years",
		"currentSavings":   45000,
		"monthlyExpenses":  4200,
		"hasEmergencyFund": false,
		"has401k":          true,
		"employerMatch":    0.05,
	}
}

func TestGenerate_ModerateRetirementSaver(t *testing.T) {
	plan, err := Generate(moderateSaverRaw(), nil, WithNow(fixedNow))
	require.NoError(t, err)

	assert.Equal(t, 88, plan.PortfolioAnalysis.Allocation.Stocks)
	assert.InDelta(t, 9.4, plan.PortfolioAnalysis.ExpectedReturn, 1e-9)
	assert.InDelta(t, 25200, plan.EmergencyFund.RecommendedAmount, 0.001)
	assert.Equal(t, fixedNow, plan.GeneratedAt)
	assert.Nil(t, plan.GoalPlan())

	cats := categories(plan.Recommendations)
	assert.Contains(t, cats, CategoryEmergencyFund)
	assert.Contains(t, cats, CategoryEmployerMatch)
	assert.Equal(t, PriorityHigh, plan.Recommendations[0].Priority)

	require.Len(t, plan.Warnings, 3)
	for _, w := range plan.Warnings {
		assert.Equal(t, InsufficientData, w.Kind)
	}
}

func TestGenerate_YoungAggressive(t *testing.T) {
	raw := moderateSaverRaw()
	raw["age"] = 22
	raw["riskTolerance"] = "Aggressive"

	plan, err := Generate(raw, nil, WithNow(fixedNow))
	require.NoError(t, err)
	assert.Equal(t, 90, plan.PortfolioAnalysis.Allocation.Stocks)
	assert.Equal(t, RiskHigh, plan.PortfolioAnalysis.RiskLevel)
}

func TestGenerate_NearRetirementConservative(t *testing.T) {
	raw := moderateSaverRaw()
	raw["age"] = 55
	raw["riskTolerance"] = "Conservative"
	raw["timeHorizon"] = "10 years"

	plan, err := Generate(raw, nil, WithNow(fixedNow))
	require.NoError(t, err)
	assert.Equal(t, 46, plan.PortfolioAnalysis.Allocation.Stocks)
	assert.Equal(t, RiskMedium, plan.PortfolioAnalysis.RiskLevel)
}

func TestGenerate_ShortHorizonHouse(t *testing.T) {
	raw := moderateSaverRaw()
	raw["investmentGoal"] = "House"
	raw["timeHorizon"] = "5 years"

	plan, err := Generate(raw, nil, WithNow(fixedNow))
	require.NoError(t, err)

	assert.LessOrEqual(t, plan.PortfolioAnalysis.Allocation.Stocks, 50)
	require.NotNil(t, plan.HousePlan)
	assert.Nil(t, plan.EducationPlan)
	assert.InDelta(t, 78200, plan.HousePlan.TotalNeeded, 0.001)
	assert.InDelta(t, 1303.33, plan.HousePlan.MonthlyContribution, 0.01)
	assert.Same(t, plan.HousePlan, plan.GoalPlan())
	assert.Contains(t, categories(plan.Recommendations), CategoryGoal)
}

func TestGenerate_EmptyInput(t *testing.T) {
	plan, err := Generate(RawProfile{}, nil)
	assert.Nil(t, plan)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "age", verr.Field)
}

func TestGenerate_HighIncomeHealth(t *testing.T) {
	raw := moderateSaverRaw()
	raw["income"] = 250000
	raw["currentSavings"] = 150000

	plan, err := Generate(raw, nil, WithNow(fixedNow))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, plan.HealthScore.TotalScore, 70)
	assert.Equal(t, GradeB, plan.HealthScore.Grade)
}

func TestGenerate_WithAccounts(t *testing.T) {
	accounts := &model.AccountsSnapshot{
		CapturedAt: fixedNow,
		Source:     "plaid",
		Accounts: []model.Account{
			{ID: "chk", Type: model.AccountChecking, Balance: 5000},
			{ID: "sav", Type: model.AccountSavings, Balance: 25000},
			{ID: "brk", Type: model.AccountInvestment, Balance: 60000},
			{ID: "cc", Type: model.AccountCredit, Balance: 2500},
		},
	}

	plan, err := Generate(moderateSaverRaw(), accounts, WithNow(fixedNow))
	require.NoError(t, err)

	assert.Empty(t, plan.Warnings)
	assert.True(t, plan.CurrentFinancials.FromAccounts)
	assert.Equal(t, 4, plan.CurrentFinancials.AccountCount)
	assert.InDelta(t, 90000, plan.CurrentFinancials.TotalAssets, 0.001)
	assert.InDelta(t, 30000, plan.CurrentFinancials.LiquidSavings, 0.001)
	assert.InDelta(t, 2500, plan.CurrentFinancials.TotalLiabilities, 0.001)
	assert.InDelta(t, 87500, plan.CurrentFinancials.NetWorth, 0.001)
	assert.Equal(t, FundAdequate, plan.EmergencyFund.Status)
	assert.Contains(t, categories(plan.Recommendations), CategoryDebt)
	assert.NotContains(t, categories(plan.Recommendations), CategoryEmergencyFund)
}

func TestGenerate_Deterministic(t *testing.T) {
	first, err := Generate(moderateSaverRaw(), nil, WithNow(fixedNow))
	require.NoError(t, err)
	second, err := Generate(moderateSaverRaw(), nil, WithNow(fixedNow))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuild_RejectsInvalidProfile(t *testing.T) {
	p := moderateSaver()
	p.EmployerMatch = 2

	_, err := Build(p, nil)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestBuild_NonFiniteResultIsComputationError(t *testing.T) {
	pol := DefaultPolicy()
	pol.Inflation = math.Inf(1)

	_, err := Build(moderateSaver(), nil, WithNow(fixedNow), WithPolicy(pol))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrComputation))

	var cerr *ComputationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "retirementPlan", cerr.Stage)
	assert.Equal(t, "targetNestEgg", cerr.Field)
}

func TestPlan_JSONShape(t *testing.T) {
	raw := moderateSaverRaw()
	raw["investmentGoal"] = "Education"
	raw["timeHorizon"] = "10 years"

	plan, err := Generate(raw, nil, WithNow(fixedNow))
	require.NoError(t, err)

	data, err := json.Marshal(plan)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	for _, key := range []string{
		"portfolioAnalysis", "retirementPlan", "emergencyFund", "educationPlan",
		"healthScore", "currentFinancials", "recommendations", "generatedAt",
	} {
		assert.Contains(t, doc, key)
	}
	assert.NotContains(t, doc, "housePlan")

	health := doc["healthScore"].(map[string]any)
	assert.IsType(t, "", health["grade"])

	alloc := doc["portfolioAnalysis"].(map[string]any)["allocation"].(map[string]any)
	assert.Contains(t, alloc, "realEstate")
}
