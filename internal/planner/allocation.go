package planner

import "math"

// Allocation is an integer percentage split across asset classes. Shares sum to 100.
type Allocation struct {
	Stocks     int `json:"stocks"`
	Bonds      int `json:"bonds"`
	RealEstate int `json:"realEstate"`
	Cash       int `json:"cash"`
}

// Sum returns the total of all shares.
func (a Allocation) Sum() int {
	return a.Stocks + a.Bonds + a.RealEstate + a.Cash
}

// RiskLevel buckets an allocation by its stock share.
type RiskLevel string

// Risk levels.
const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// PortfolioAnalysis is the target allocation with its derived metrics.
type PortfolioAnalysis struct {
	Allocation Allocation `json:"allocation"`
	// ExpectedReturn is an annual percentage rounded to one decimal.
	ExpectedReturn float64   `json:"expectedReturn"`
	RiskLevel      RiskLevel `json:"riskLevel"`
}

// Allocate computes the target allocation in four stages: age rule, risk
// adjustment, goal override and complement fill.
func Allocate(p Profile, pol Policy) PortfolioAnalysis {
	stocks := targetStocks(p, pol)
	alloc := fillComplement(stocks, pol)
	return PortfolioAnalysis{
		Allocation:     alloc,
		ExpectedReturn: expectedReturn(alloc, pol),
		RiskLevel:      riskLevel(alloc.Stocks, pol),
	}
}

func targetStocks(p Profile, pol Policy) int {
	base := pol.AgeRuleOffset - p.Age
	base = min(pol.StockBaseCap, max(pol.StockBaseFloor, base))

	stocks := int(math.Round(float64(base) * pol.RiskMultipliers[p.RiskTolerance]))
	stocks = pol.StockBounds.Clamp(stocks)

	if limit, ok := goalStockCap(p, pol); ok {
		stocks = min(stocks, limit)
	}
	return stocks
}

// goalStockCap returns the stock ceiling a goal imposes, if any.
func goalStockCap(p Profile, pol Policy) (int, bool) {
	short := p.TimeHorizon.Years() <= pol.ShortHorizonYears
	switch p.InvestmentGoal {
	case GoalHouse:
		return pol.HouseStockCap, short
	case GoalEducation:
		return pol.EducationStockCap, short
	case GoalEmergencyFund:
		return pol.EmergencyStockCap, true
	case GoalRetirement, GoalWealthBuilding:
		return 0, false
	}
	return 0, false
}

func fillComplement(stocks int, pol Policy) Allocation {
	remaining := 100 - stocks
	alloc := Allocation{
		Stocks:     stocks,
		Cash:       pol.CashBounds.Clamp(int(math.Round(float64(remaining) * pol.CashShare))),
		RealEstate: pol.RealEstateBounds.Clamp(int(math.Round(float64(remaining) * pol.RealEstateShare))),
	}
	alloc.Bonds = remaining - alloc.Cash - alloc.RealEstate
	return redistribute(alloc, pol)
}

// redistribute brings the bond share back within its bounds by moving the
// residual through cash and then real estate, never pushing either past its
// own bounds. The sum stays exactly 100; stocks are never touched. When no
// class has room left, bonds keep the residual.
func redistribute(a Allocation, pol Policy) Allocation {
	a.Bonds += 100 - a.Sum()

	if over := a.Bonds - pol.BondBounds.Max; over > 0 {
		a.Bonds -= over
		over = shift(&a.Cash, over, pol.CashBounds.Max-a.Cash)
		over = shift(&a.RealEstate, over, pol.RealEstateBounds.Max-a.RealEstate)
		a.Bonds += over
	}

	if under := pol.BondBounds.Min - a.Bonds; under > 0 {
		a.Bonds += under
		under = shift(&a.Cash, -under, pol.CashBounds.Min-a.Cash)
		under = shift(&a.RealEstate, under, pol.RealEstateBounds.Min-a.RealEstate)
		a.Bonds += under
	}
	return a
}

// shift moves up to delta points into share, limited by room (positive room
// adds, negative room removes). It returns the part of delta that did not fit.
func shift(share *int, delta, room int) int {
	var moved int
	switch {
	case delta > 0 && room > 0:
		moved = min(delta, room)
	case delta < 0 && room < 0:
		moved = max(delta, room)
	}
	*share += moved
	return delta - moved
}

func expectedReturn(a Allocation, pol Policy) float64 {
	r := pol.ExpectedReturns
	weighted := r.Stocks*float64(a.Stocks) +
		r.Bonds*float64(a.Bonds) +
		r.RealEstate*float64(a.RealEstate) +
		r.Cash*float64(a.Cash)
	return math.Round(weighted/100*10) / 10
}

func riskLevel(stocks int, pol Policy) RiskLevel {
	switch {
	case stocks < pol.MediumRiskFrom:
		return RiskLow
	case stocks < pol.HighRiskFrom:
		return RiskMedium
	default:
		return RiskHigh
	}
}
