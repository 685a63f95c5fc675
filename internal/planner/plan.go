// Package planner turns a user profile and optional account balances into a
// financial plan. It performs no I/O and holds no state; identical inputs
// produce identical plans.
package planner

import (
	"time"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
)

// Plan is the complete, derived output of the engine.
type Plan struct {
	Profile           Profile           `json:"profile"`
	PortfolioAnalysis PortfolioAnalysis `json:"portfolioAnalysis"`
	RetirementPlan    RetirementPlan    `json:"retirementPlan"`
	EmergencyFund     EmergencyFund     `json:"emergencyFund"`
	HousePlan         *GoalPlan         `json:"housePlan,omitempty"`
	EducationPlan     *GoalPlan         `json:"educationPlan,omitempty"`
	EmergencyFundPlan *GoalPlan         `json:"emergencyFundPlan,omitempty"`
	HealthScore       HealthScore       `json:"healthScore"`
	CurrentFinancials CurrentFinancials `json:"currentFinancials"`
	Recommendations   []Recommendation  `json:"recommendations"`
	Warnings          []Warning         `json:"warnings,omitempty"`
	GeneratedAt       time.Time         `json:"generatedAt"`
}

// GoalPlan returns whichever goal-specific plan is set, or nil.
func (p *Plan) GoalPlan() *GoalPlan {
	switch {
	case p.HousePlan != nil:
		return p.HousePlan
	case p.EducationPlan != nil:
		return p.EducationPlan
	default:
		return p.EmergencyFundPlan
	}
}

type options struct {
	now    time.Time
	policy Policy
}

// Option customizes a Generate or Build call.
type Option func(*options)

// WithNow fixes the generation timestamp, which also anchors goal target dates.
func WithNow(t time.Time) Option {
	return func(o *options) { o.now = t }
}

// WithPolicy replaces the default numeric assumptions.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// Generate normalizes raw input and builds the plan.
func Generate(raw RawProfile, accounts *model.AccountsSnapshot, opts ...Option) (*Plan, error) {
	profile, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	return Build(profile, accounts, opts...)
}

// Build computes the plan for an already constructed profile. The profile is
// validated again so callers that skip Normalize get the same guarantees.
func Build(profile Profile, accounts *model.AccountsSnapshot, opts ...Option) (*Plan, error) {
	o := options{policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now.IsZero() {
		o.now = time.Now().UTC()
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	pol := o.policy

	fund := PlanEmergencyFund(profile, accounts, pol)
	a := Assessment{
		Profile:    profile,
		Portfolio:  Allocate(profile, pol),
		Retirement: PlanRetirement(profile, pol),
		Emergency:  fund,
		Goal:       PlanGoal(profile, fund, o.now, pol),
		Financials: SummarizeFinancials(profile, accounts, pol),
	}
	health := ScoreHealth(a, pol)

	if err := verify(a); err != nil {
		return nil, err
	}

	plan := &Plan{
		Profile:           profile,
		PortfolioAnalysis: a.Portfolio,
		RetirementPlan:    a.Retirement,
		EmergencyFund:     a.Emergency,
		HealthScore:       health,
		CurrentFinancials: a.Financials,
		Recommendations:   BuildRecommendations(a, pol),
		GeneratedAt:       o.now,
	}
	if a.Goal != nil {
		switch a.Goal.Goal {
		case GoalHouse:
			plan.HousePlan = a.Goal
		case GoalEducation:
			plan.EducationPlan = a.Goal
		case GoalEmergencyFund:
			plan.EmergencyFundPlan = a.Goal
		}
	}
	if accounts == nil {
		plan.Warnings = fallbackWarnings()
	}
	return plan, nil
}

func fallbackWarnings() []Warning {
	return []Warning{
		{
			Kind:    InsufficientData,
			Field:   "emergencyFund.currentAmount",
			Message: "no account data; estimated as 20% of current savings",
		},
		{
			Kind:    InsufficientData,
			Field:   "healthScore.debt",
			Message: "no account data; liabilities assumed to be zero",
		},
		{
			Kind:    InsufficientData,
			Field:   "currentFinancials.liquidSavings",
			Message: "no account data; estimated as 20% of current savings",
		},
	}
}

func verify(a Assessment) error {
	checks := []finiteCheck{
		{"portfolioAnalysis", "expectedReturn", a.Portfolio.ExpectedReturn},
		{"retirementPlan", "targetNestEgg", a.Retirement.TargetNestEgg},
		{"retirementPlan", "currentProgress", a.Retirement.CurrentProgress},
		{"retirementPlan", "shortfall", a.Retirement.Shortfall},
		{"retirementPlan", "monthlySavingsNeeded", a.Retirement.MonthlySavingsNeeded},
		{"retirementPlan", "employerMatchContribution", a.Retirement.EmployerMatchContribution},
		{"emergencyFund", "recommendedAmount", a.Emergency.RecommendedAmount},
		{"emergencyFund", "currentAmount", a.Emergency.CurrentAmount},
		{"emergencyFund", "shortfall", a.Emergency.Shortfall},
		{"currentFinancials", "totalAssets", a.Financials.TotalAssets},
		{"currentFinancials", "totalLiabilities", a.Financials.TotalLiabilities},
		{"currentFinancials", "netWorth", a.Financials.NetWorth},
	}
	if a.Goal != nil {
		checks = append(checks,
			finiteCheck{"goalPlan", "totalNeeded", a.Goal.TotalNeeded},
			finiteCheck{"goalPlan", "monthlyContribution", a.Goal.MonthlyContribution},
		)
	}
	if err := checkFinite(checks...); err != nil {
		return err
	}
	if sum := a.Portfolio.Allocation.Sum(); sum != 100 {
		return &ComputationError{Stage: "portfolioAnalysis", Field: "allocation", Value: float64(sum)}
	}
	return nil
}
