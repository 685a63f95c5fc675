package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
)

func assess(p Profile, accounts *model.AccountsSnapshot) Assessment {
	pol := DefaultPolicy()
	fund := PlanEmergencyFund(p, accounts, pol)
	return Assessment{
		Profile:    p,
		Portfolio:  Allocate(p, pol),
		Retirement: PlanRetirement(p, pol),
		Emergency:  fund,
		Goal:       PlanGoal(p, fund, fixedNow, pol),
		Financials: SummarizeFinancials(p, accounts, pol),
	}
}

func TestScoreHealth_ModerateSaver(t *testing.T) {
	s := ScoreHealth(assess(moderateSaver(), nil), DefaultPolicy())

	assert.Equal(t, 7, s.EmergencyFund)
	assert.Equal(t, 2, s.Retirement)
	assert.Equal(t, 20, s.Debt)
	assert.Equal(t, 16, s.SavingsRate)
	assert.Equal(t, 12, s.Diversification)
	assert.Equal(t, 57, s.TotalScore)
	assert.Equal(t, GradeD, s.Grade)
}

func TestScoreHealth_HighIncome(t *testing.T) {
	p := moderateSaver()
	p.Income = 250000
	p.CurrentSavings = 150000

	s := ScoreHealth(assess(p, nil), DefaultPolicy())
	assert.Equal(t, 20, s.EmergencyFund)
	assert.Equal(t, 20, s.SavingsRate)
	assert.GreaterOrEqual(t, s.TotalScore, 70)
	assert.Contains(t, []Grade{GradeAPlus, GradeA, GradeB}, s.Grade)
}

func TestScoreHealth_DebtFromAccounts(t *testing.T) {
	accounts := &model.AccountsSnapshot{Accounts: []model.Account{
		{Type: model.AccountChecking, Balance: 30000},
		{Type: model.AccountLoan, Balance: 15000},
		{Type: model.AccountCredit, Balance: -2000},
	}}

	s := ScoreHealth(assess(moderateSaver(), accounts), DefaultPolicy())
	assert.Equal(t, 16, s.Debt, "17000 of 85000 income owed")
	assert.Equal(t, 20, s.EmergencyFund)
}

func TestScoreHealth_DebtWithoutIncome(t *testing.T) {
	p := moderateSaver()
	p.Income = 0

	withDebt := &model.AccountsSnapshot{Accounts: []model.Account{{Type: model.AccountLoan, Balance: 100}}}
	assert.Equal(t, 0, ScoreHealth(assess(p, withDebt), DefaultPolicy()).Debt)

	noDebt := &model.AccountsSnapshot{Accounts: []model.Account{{Type: model.AccountSavings, Balance: 100}}}
	s := ScoreHealth(assess(p, noDebt), DefaultPolicy())
	assert.Equal(t, 20, s.Debt)
	assert.Equal(t, 0, s.SavingsRate)
}

func TestScoreHealth_ComponentsWithinMax(t *testing.T) {
	pol := DefaultPolicy()
	for _, income := range []float64{0, 20000, 85000, 400000} {
		for _, savings := range []float64{0, 45000, 2_000_000} {
			for _, risk := range allRisks {
				for _, goal := range allGoals {
					p := moderateSaver()
					p.Income = income
					p.CurrentSavings = savings
					p.RiskTolerance = risk
					p.InvestmentGoal = goal

					s := ScoreHealth(assess(p, nil), pol)
					assert.LessOrEqual(t, s.EmergencyFund, 20)
					assert.LessOrEqual(t, s.Retirement, 25)
					assert.LessOrEqual(t, s.Debt, 20)
					assert.LessOrEqual(t, s.SavingsRate, 20)
					assert.LessOrEqual(t, s.Diversification, 15)
					assert.GreaterOrEqual(t, s.Diversification, 0)
					assert.Equal(t, s.EmergencyFund+s.Retirement+s.Debt+s.SavingsRate+s.Diversification, s.TotalScore)
					assert.LessOrEqual(t, s.TotalScore, 100)
				}
			}
		}
	}
}

func TestDiversification(t *testing.T) {
	pol := DefaultPolicy()
	tests := []struct {
		name  string
		alloc Allocation
		want  int
	}{
		{"balanced", Allocation{Stocks: 60, Bonds: 30, RealEstate: 6, Cash: 4}, 15},
		{"thin bonds", Allocation{Stocks: 88, Bonds: 4, RealEstate: 5, Cash: 3}, 12},
		{"stocks below floor", Allocation{Stocks: 20, Bonds: 50, RealEstate: 15, Cash: 15}, 12},
		{"everything off", Allocation{Stocks: 95, Bonds: 4, RealEstate: 0, Cash: 1}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, diversification(tt.alloc, pol))
		})
	}
}

func TestGradeFor(t *testing.T) {
	pol := DefaultPolicy()
	tests := []struct {
		score int
		want  Grade
	}{
		{100, GradeAPlus},
		{90, GradeAPlus},
		{89, GradeA},
		{80, GradeA},
		{79, GradeB},
		{70, GradeB},
		{60, GradeC},
		{50, GradeD},
		{49, GradeF},
		{0, GradeF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gradeFor(tt.score, pol), "score %d", tt.score)
	}
}

func TestSavingsRate(t *testing.T) {
	p := moderateSaver()
	assert.InDelta(t, (85000.0/12-4200)/(85000.0/12), SavingsRate(p), 1e-9)

	p.MonthlyExpenses = 10000
	assert.Zero(t, SavingsRate(p), "overspending floors at zero")

	p.Income = 0
	assert.Zero(t, SavingsRate(p))
}
