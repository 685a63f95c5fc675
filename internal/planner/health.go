package planner

import "math"

// Grade is a letter summary of the total health score.
type Grade string

// Grades from best to worst.
const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// HealthScore is a 100-point composite. Each component is a whole number of
// points and TotalScore is their sum.
type HealthScore struct {
	EmergencyFund   int   `json:"emergencyFund"`
	Retirement      int   `json:"retirement"`
	Debt            int   `json:"debt"`
	SavingsRate     int   `json:"savingsRate"`
	Diversification int   `json:"diversification"`
	TotalScore      int   `json:"totalScore"`
	Grade           Grade `json:"grade"`
}

// Assessment carries the independent component outputs that the health scorer
// and recommendation builder consume.
type Assessment struct {
	Profile    Profile
	Portfolio  PortfolioAnalysis
	Retirement RetirementPlan
	Emergency  EmergencyFund
	Goal       *GoalPlan
	Financials CurrentFinancials
}

// ScoreHealth computes the composite score from the component outputs.
func ScoreHealth(a Assessment, pol Policy) HealthScore {
	s := HealthScore{
		EmergencyFund:   points(pol.EmergencyFundWeight, ratio(a.Emergency.CurrentAmount, a.Emergency.RecommendedAmount)),
		Retirement:      points(pol.RetirementWeight, ratio(a.Retirement.CurrentProgress, a.Retirement.TargetNestEgg)),
		Debt:            points(pol.DebtWeight, debtFactor(a.Profile, a.Financials)),
		SavingsRate:     points(pol.SavingsRateWeight, SavingsRate(a.Profile)/pol.TargetSavingsRate),
		Diversification: diversification(a.Portfolio.Allocation, pol),
	}
	s.TotalScore = s.EmergencyFund + s.Retirement + s.Debt + s.SavingsRate + s.Diversification
	s.Grade = gradeFor(s.TotalScore, pol)
	return s
}

// SavingsRate is the share of monthly gross income left after expenses, floored at zero.
func SavingsRate(p Profile) float64 {
	monthly := p.MonthlyIncome()
	if monthly <= 0 {
		return 0
	}
	return math.Max(0, (monthly-p.MonthlyExpenses)/monthly)
}

// points scales factor (clamped to [0,1]) by weight and rounds to a whole point.
func points(weight, factor float64) int {
	factor = math.Max(0, math.Min(1, factor))
	return int(math.Round(weight * factor))
}

// ratio is have/want, treating a zero target as fully met.
func ratio(have, want float64) float64 {
	if want <= 0 {
		return 1
	}
	return have / want
}

func debtFactor(p Profile, f CurrentFinancials) float64 {
	if f.TotalLiabilities <= 0 {
		return 1
	}
	if p.Income <= 0 {
		return 0
	}
	return 1 - f.TotalLiabilities/p.Income
}

func diversification(a Allocation, pol Policy) int {
	score := pol.DiversificationWeight
	violations := []bool{
		!pol.StockBounds.Contains(a.Stocks),
		!pol.BondBounds.Contains(a.Bonds),
		a.RealEstate < pol.RealEstateBounds.Min,
		a.Cash < pol.CashBounds.Min,
	}
	for _, violated := range violations {
		if violated {
			score -= pol.DiversificationPenalty
		}
	}
	return points(pol.DiversificationWeight, score/pol.DiversificationWeight)
}

func gradeFor(total int, pol Policy) Grade {
	for _, g := range pol.Grades {
		if total >= g.MinScore {
			return g.Grade
		}
	}
	return GradeF
}
