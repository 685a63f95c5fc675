package planner

import "math"

// RetirementPlan sizes the nest egg and the monthly savings needed to reach it.
type RetirementPlan struct {
	RetirementAge             int     `json:"retirementAge"`
	YearsToRetirement         int     `json:"yearsToRetirement"`
	TargetNestEgg             float64 `json:"targetNestEgg"`
	CurrentProgress           float64 `json:"currentProgress"`
	Shortfall                 float64 `json:"shortfall"`
	MonthlySavingsNeeded      float64 `json:"monthlySavingsNeeded"`
	EmployerMatchContribution float64 `json:"employerMatchContribution"`
}

// PlanRetirement applies the 25x rule with inflation and retirement-tax adjustments.
func PlanRetirement(p Profile, pol Policy) RetirementPlan {
	years := max(0, pol.RetirementAge-p.Age)

	needToday := p.Income * pol.IncomeReplacement
	futureNeed := needToday * math.Pow(1+pol.Inflation, float64(years))
	target := futureNeed * pol.WithdrawalMultiple / (1 - pol.RetirementTaxRate)
	progress := p.CurrentSavings * math.Pow(1+pol.AssumedGrowth, float64(years))
	shortfall := math.Max(0, target-progress)

	plan := RetirementPlan{
		RetirementAge:        pol.RetirementAge,
		YearsToRetirement:    years,
		TargetNestEgg:        target,
		CurrentProgress:      progress,
		Shortfall:            shortfall,
		MonthlySavingsNeeded: monthlyPayment(shortfall, pol.AssumedGrowth, years),
	}
	if p.Has401k {
		plan.EmployerMatchContribution = p.Income * p.EmployerMatch / 12
	}
	return plan
}

// monthlyPayment solves FV = PMT * ((1+r/12)^(12n) - 1) / (r/12) for PMT.
func monthlyPayment(futureValue, annualRate float64, years int) float64 {
	if years <= 0 || futureValue <= 0 {
		return 0
	}
	months := float64(years * 12)
	if annualRate == 0 {
		return futureValue / months
	}
	r := annualRate / 12
	return futureValue * r / (math.Pow(1+r, months) - 1)
}
