package planner

import (
	"fmt"
	"strconv"
)

// Priority orders recommendations by urgency.
type Priority string

// Priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Category identifies a recommendation. At most one recommendation per category is emitted.
type Category string

// Recommendation categories, in emission order.
const (
	CategoryEmergencyFund Category = "emergency_fund"
	CategoryEmployerMatch Category = "employer_match"
	CategoryDebt          Category = "debt"
	CategoryRetirement    Category = "retirement"
	CategoryRebalancing   Category = "rebalancing"
	CategoryTaxAdvantaged Category = "tax_advantaged"
	CategoryGoal          Category = "goal"
)

// Recommendation is one prioritized action.
type Recommendation struct {
	Priority    Priority `json:"priority"`
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ActionItems []string `json:"actionItems"`
}

type rule struct {
	category Category
	priority Priority
	applies  func(Assessment, Policy) bool
	text     func(Assessment, Policy) (title, description string, actions []string)
}

// rules is evaluated top to bottom; the order is the output order.
var rules = []rule{
	{
		category: CategoryEmergencyFund,
		priority: PriorityHigh,
		applies:  func(a Assessment, _ Policy) bool { return a.Emergency.Status != FundAdequate },
		text:     emergencyFundText,
	},
	{
		category: CategoryEmployerMatch,
		priority: PriorityHigh,
		applies:  missingEmployerMatch,
		text:     employerMatchText,
	},
	{
		category: CategoryDebt,
		priority: PriorityHigh,
		applies: func(a Assessment, _ Policy) bool {
			return a.Financials.FromAccounts && a.Financials.TotalLiabilities > 0
		},
		text: debtText,
	},
	{
		category: CategoryRetirement,
		priority: PriorityMedium,
		applies:  func(a Assessment, _ Policy) bool { return a.Retirement.Shortfall > 0 },
		text:     retirementText,
	},
	{
		category: CategoryRebalancing,
		priority: PriorityMedium,
		applies:  func(Assessment, Policy) bool { return true },
		text:     rebalancingText,
	},
	{
		category: CategoryTaxAdvantaged,
		priority: PriorityMedium,
		applies: func(a Assessment, pol Policy) bool {
			return a.Profile.Income > pol.TaxAdvantagedIncomeFloor
		},
		text: taxAdvantagedText,
	},
	{
		category: CategoryGoal,
		priority: PriorityMedium,
		applies:  func(a Assessment, _ Policy) bool { return a.Goal != nil },
		text:     goalText,
	},
}

// BuildRecommendations returns the applicable recommendations in fixed priority
// order, with duplicate categories suppressed.
func BuildRecommendations(a Assessment, pol Policy) []Recommendation {
	seen := make(map[Category]bool, len(rules))
	recs := make([]Recommendation, 0, len(rules))
	for _, r := range rules {
		if seen[r.category] || !r.applies(a, pol) {
			continue
		}
		seen[r.category] = true
		title, desc, actions := r.text(a, pol)
		recs = append(recs, Recommendation{
			Priority:    r.priority,
			Category:    r.category,
			Title:       title,
			Description: desc,
			ActionItems: actions,
		})
	}
	return recs
}

// missingEmployerMatch reports whether unclaimed match is money the saver
// needs: the retirement plan still has a shortfall, or the contribution rate
// it calls for is at least the employer match.
func missingEmployerMatch(a Assessment, _ Policy) bool {
	p := a.Profile
	if !p.Has401k || p.EmployerMatch <= 0 || p.Income <= 0 {
		return false
	}
	if a.Retirement.Shortfall > 0 {
		return true
	}
	return a.Retirement.MonthlySavingsNeeded/p.MonthlyIncome() >= p.EmployerMatch
}

func emergencyFundText(a Assessment, _ Policy) (string, string, []string) {
	ef := a.Emergency
	desc := fmt.Sprintf("Your emergency fund covers %s of a recommended %s (%d months of expenses).",
		FormatMoney(ef.CurrentAmount), FormatMoney(ef.RecommendedAmount), ef.RecommendedMonths)
	actions := []string{
		fmt.Sprintf("Set aside %s to close the emergency fund gap", FormatMoney(ef.Shortfall)),
		"Keep emergency savings in a high-yield savings account",
	}
	if ef.Status == FundInadequate {
		actions = append(actions, "Pause extra investing until you reach at least half of the target")
	}
	return "Build Emergency Fund", desc, actions
}

func employerMatchText(a Assessment, _ Policy) (string, string, []string) {
	match := a.Retirement.EmployerMatchContribution
	desc := fmt.Sprintf("Your employer matches %s of salary. Unclaimed match is an immediate 100%% return.",
		FormatPercent(a.Profile.EmployerMatch))
	return "Capture Employer Match", desc, []string{
		fmt.Sprintf("Contribute at least %s monthly to your 401(k)", FormatMoney(match)),
		"Confirm your contribution rate with your HR or plan administrator",
	}
}

func debtText(a Assessment, _ Policy) (string, string, []string) {
	f := a.Financials
	desc := fmt.Sprintf("Your linked accounts show %s in loan and credit balances.", FormatMoney(f.TotalLiabilities))
	return "Pay Down High-Interest Debt", desc, []string{
		"List debts by interest rate and pay the highest rate first",
		"Pay more than the minimum on credit card balances every month",
		"Avoid adding new balances while paying down existing debt",
	}
}

func retirementText(a Assessment, _ Policy) (string, string, []string) {
	r := a.Retirement
	desc := fmt.Sprintf("You are projected to reach %s of a %s retirement target in %d years.",
		FormatMoney(r.CurrentProgress), FormatMoney(r.TargetNestEgg), r.YearsToRetirement)
	actions := []string{
		fmt.Sprintf("Save %s per month toward retirement", FormatMoney(r.MonthlySavingsNeeded)),
		"Increase your contribution rate by 1% each year",
	}
	if !a.Profile.Has401k {
		actions = append(actions, "Open an IRA if your employer does not offer a retirement plan")
	}
	return "Increase Retirement Contributions", desc, actions
}

func rebalancingText(a Assessment, _ Policy) (string, string, []string) {
	al := a.Portfolio.Allocation
	desc := fmt.Sprintf("Target mix: %d%% stocks, %d%% bonds, %d%% real estate, %d%% cash (expected return %s%%).",
		al.Stocks, al.Bonds, al.RealEstate, al.Cash, strconv.FormatFloat(a.Portfolio.ExpectedReturn, 'f', 1, 64))
	return "Rebalance Your Portfolio", desc, []string{
		"Review your allocation every quarter",
		"Rebalance when any asset class drifts more than 5 points from target",
		"Use new contributions to buy underweight asset classes first",
	}
}

func taxAdvantagedText(a Assessment, _ Policy) (string, string, []string) {
	actions := []string{
		"Max out contributions to your 401(k) or 403(b)",
		"Consider a Roth or traditional IRA",
	}
	if a.Profile.InvestmentGoal == GoalEducation {
		actions = append(actions, "Open a 529 plan for education savings")
	}
	actions = append(actions, "Use an HSA if you have a high-deductible health plan")
	return "Use Tax-Advantaged Accounts",
		"At your income level, sheltering savings from tax compounds significantly over time.",
		actions
}

func goalText(a Assessment, _ Policy) (string, string, []string) {
	g := a.Goal
	desc := fmt.Sprintf("Your %s goal needs %s by %s.",
		g.Goal, FormatMoney(g.TotalNeeded), g.TargetDate.Format("January 2006"))
	actions := []string{
		fmt.Sprintf("Save %s per month toward your %s goal", FormatMoney(g.MonthlyContribution), g.Goal),
		"Automate a transfer to a dedicated savings account",
	}
	if g.Goal == GoalHouse {
		actions = append(actions, "Check your credit score before applying for a mortgage")
	}
	return "Fund Your " + g.Goal.String() + " Goal", desc, actions
}
