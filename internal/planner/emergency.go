package planner

import "github.com/Pranay-Dommati/FInAi-sub001/internal/model"

// FundStatus describes how well the emergency fund covers its target.
type FundStatus string

// Emergency fund statuses.
const (
	FundAdequate   FundStatus = "adequate"
	FundPartial    FundStatus = "partial"
	FundInadequate FundStatus = "inadequate"
)

// EmergencyFund is the months-of-expenses cash target sized by risk tolerance.
type EmergencyFund struct {
	RecommendedMonths int        `json:"recommendedMonths"`
	RecommendedAmount float64    `json:"recommendedAmount"`
	CurrentAmount     float64    `json:"currentAmount"`
	Shortfall         float64    `json:"shortfall"`
	Status            FundStatus `json:"status"`
}

// PlanEmergencyFund sizes the emergency fund. Without an accounts snapshot the
// current amount falls back to a share of current savings.
func PlanEmergencyFund(p Profile, accounts *model.AccountsSnapshot, pol Policy) EmergencyFund {
	months := pol.EmergencyMonths[p.RiskTolerance]
	fund := EmergencyFund{
		RecommendedMonths: months,
		RecommendedAmount: p.MonthlyExpenses * float64(months),
	}

	if accounts != nil {
		fund.CurrentAmount = accounts.LiquidSavings()
	} else {
		fund.CurrentAmount = p.CurrentSavings * pol.LiquidFallbackShare
	}
	fund.Shortfall = max(0, fund.RecommendedAmount-fund.CurrentAmount)

	switch {
	case fund.CurrentAmount >= fund.RecommendedAmount:
		fund.Status = FundAdequate
	case fund.CurrentAmount >= fund.RecommendedAmount*pol.PartialFundRatio:
		fund.Status = FundPartial
	default:
		fund.Status = FundInadequate
	}
	return fund
}
