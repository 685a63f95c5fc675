package planner

import (
	"math"
	"time"
)

// GoalPlan is the savings plan for a non-retirement goal. The shared fields are
// always set; the rest depend on the goal.
type GoalPlan struct {
	Goal                InvestmentGoal `json:"goal"`
	HorizonYears        int            `json:"horizonYears"`
	TotalNeeded         float64        `json:"totalNeeded"`
	MonthlyContribution float64        `json:"monthlyContribution"`
	TargetDate          time.Time      `json:"targetDate"`

	// House.
	TargetPrice  float64 `json:"targetPrice,omitempty"`
	DownPayment  float64 `json:"downPayment,omitempty"`
	ClosingCosts float64 `json:"closingCosts,omitempty"`

	// Education.
	BaseCost      float64 `json:"baseCost,omitempty"`
	InflationRate float64 `json:"inflationRate,omitempty"`
	GrowthRate    float64 `json:"growthRate,omitempty"`

	// Emergency fund.
	CurrentAmount float64 `json:"currentAmount,omitempty"`
	Shortfall     float64 `json:"shortfall,omitempty"`
}

// PlanGoal builds the goal-specific plan. It returns nil for goals the
// retirement plan already covers.
func PlanGoal(p Profile, fund EmergencyFund, now time.Time, pol Policy) *GoalPlan {
	years := p.TimeHorizon.Years()
	base := GoalPlan{
		Goal:         p.InvestmentGoal,
		HorizonYears: years,
		TargetDate:   now.AddDate(years, 0, 0),
	}

	switch p.InvestmentGoal {
	case GoalHouse:
		price := p.Income * pol.HousePriceToIncome
		base.TargetPrice = price
		base.DownPayment = price * pol.HouseDownPayment
		base.ClosingCosts = price * pol.HouseClosingCosts
		base.TotalNeeded = price * (pol.HouseDownPayment + pol.HouseClosingCosts)
		base.MonthlyContribution = base.TotalNeeded / float64(p.TimeHorizon.Months())
		return &base

	case GoalEducation:
		base.BaseCost = pol.EducationBaseCost
		base.InflationRate = pol.EducationInflation
		base.GrowthRate = pol.EducationGrowth
		base.TotalNeeded = pol.EducationBaseCost * math.Pow(1+pol.EducationInflation, float64(years))
		base.MonthlyContribution = monthlyPayment(base.TotalNeeded, pol.EducationGrowth, years)
		return &base

	case GoalEmergencyFund:
		base.TotalNeeded = fund.RecommendedAmount
		base.CurrentAmount = fund.CurrentAmount
		base.Shortfall = fund.Shortfall
		months := min(pol.EmergencyGoalMaxMonths, p.TimeHorizon.Months())
		base.MonthlyContribution = fund.Shortfall / float64(months)
		base.TargetDate = now.AddDate(0, months, 0)
		return &base

	case GoalRetirement, GoalWealthBuilding:
		return nil
	}
	return nil
}
