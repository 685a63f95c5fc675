package planner

// Bounds is an inclusive integer range for an asset-class share, in percent.
type Bounds struct {
	Min int
	Max int
}

// Contains reports whether v lies within the bounds.
func (b Bounds) Contains(v int) bool {
	return v >= b.Min && v <= b.Max
}

// Clamp limits v to the bounds.
func (b Bounds) Clamp(v int) int {
	return max(b.Min, min(b.Max, v))
}

// ClassRates holds one annual rate per asset class, in percent.
type ClassRates struct {
	Stocks     float64
	Bonds      float64
	RealEstate float64
	Cash       float64
}

// GradeThreshold maps a minimum total score to a letter grade.
type GradeThreshold struct {
	Grade    Grade
	MinScore int
}

// Policy is the single table of numeric assumptions used by the engine.
// Recommendation prose lives in recommendations.go and never reads raw numbers
// from anywhere but here.
type Policy struct {
	// Allocation.
	AgeRuleOffset     int
	StockBaseFloor    int
	StockBaseCap      int
	RiskMultipliers   map[RiskTolerance]float64
	StockBounds       Bounds
	BondBounds        Bounds
	RealEstateBounds  Bounds
	CashBounds        Bounds
	CashShare         float64
	RealEstateShare   float64
	ShortHorizonYears int
	HouseStockCap     int
	EducationStockCap int
	EmergencyStockCap int
	ExpectedReturns   ClassRates
	MediumRiskFrom    int
	HighRiskFrom      int

	// Retirement.
	RetirementAge      int
	Inflation          float64
	RetirementTaxRate  float64
	IncomeReplacement  float64
	WithdrawalMultiple float64
	AssumedGrowth      float64

	// Emergency fund.
	EmergencyMonths     map[RiskTolerance]int
	LiquidFallbackShare float64
	PartialFundRatio    float64

	// Goals.
	HousePriceToIncome     float64
	HouseDownPayment       float64
	HouseClosingCosts      float64
	EducationBaseCost      float64
	EducationInflation     float64
	EducationGrowth        float64
	EmergencyGoalMaxMonths int

	// Health score.
	EmergencyFundWeight    float64
	RetirementWeight       float64
	DebtWeight             float64
	SavingsRateWeight      float64
	DiversificationWeight  float64
	DiversificationPenalty float64
	TargetSavingsRate      float64
	Grades                 []GradeThreshold

	// Recommendations.
	TaxAdvantagedIncomeFloor float64
}

// DefaultPolicy returns the assumptions the planner ships with.
func DefaultPolicy() Policy {
	return Policy{
		AgeRuleOffset:  120,
		StockBaseFloor: 60,
		StockBaseCap:   90,
		RiskMultipliers: map[RiskTolerance]float64{
			Conservative: 0.7,
			Moderate:     1.0,
			Aggressive:   1.3,
		},
		StockBounds:       Bounds{Min: 30, Max: 90},
		BondBounds:        Bounds{Min: 5, Max: 50},
		RealEstateBounds:  Bounds{Min: 5, Max: 20},
		CashBounds:        Bounds{Min: 3, Max: 15},
		CashShare:         0.10,
		RealEstateShare:   0.15,
		ShortHorizonYears: 10,
		HouseStockCap:     50,
		EducationStockCap: 60,
		EmergencyStockCap: 20,
		ExpectedReturns: ClassRates{
			Stocks:     10.0,
			Bonds:      4.0,
			RealEstate: 8.0,
			Cash:       2.0,
		},
		MediumRiskFrom: 40,
		HighRiskFrom:   70,

		RetirementAge:      65,
		Inflation:          0.03,
		RetirementTaxRate:  0.12,
		IncomeReplacement:  0.80,
		WithdrawalMultiple: 25,
		AssumedGrowth:      0.07,

		EmergencyMonths: map[RiskTolerance]int{
			Conservative: 8,
			Moderate:     6,
			Aggressive:   3,
		},
		LiquidFallbackShare: 0.2,
		PartialFundRatio:    0.5,

		HousePriceToIncome:     4,
		HouseDownPayment:       0.20,
		HouseClosingCosts:      0.03,
		EducationBaseCost:      100_000,
		EducationInflation:     0.05,
		EducationGrowth:        0.06,
		EmergencyGoalMaxMonths: 12,

		EmergencyFundWeight:    20,
		RetirementWeight:       25,
		DebtWeight:             20,
		SavingsRateWeight:      20,
		DiversificationWeight:  15,
		DiversificationPenalty: 3,
		TargetSavingsRate:      0.50,
		Grades: []GradeThreshold{
			{Grade: GradeAPlus, MinScore: 90},
			{Grade: GradeA, MinScore: 80},
			{Grade: GradeB, MinScore: 70},
			{Grade: GradeC, MinScore: 60},
			{Grade: GradeD, MinScore: 50},
		},

		TaxAdvantagedIncomeFloor: 50_000,
	}
}
