package planner

import "github.com/Pranay-Dommati/FInAi-sub001/internal/model"

// CurrentFinancials is the present-day balance sheet the plan starts from.
type CurrentFinancials struct {
	TotalAssets      float64 `json:"totalAssets"`
	LiquidSavings    float64 `json:"liquidSavings"`
	TotalLiabilities float64 `json:"totalLiabilities"`
	NetWorth         float64 `json:"netWorth"`
	FromAccounts     bool    `json:"fromAccounts"`
	AccountCount     int     `json:"accountCount"`
}

// SummarizeFinancials derives the balance sheet from the snapshot when present,
// otherwise from the profile's current savings.
func SummarizeFinancials(p Profile, accounts *model.AccountsSnapshot, pol Policy) CurrentFinancials {
	if accounts == nil {
		return CurrentFinancials{
			TotalAssets:   p.CurrentSavings,
			LiquidSavings: p.CurrentSavings * pol.LiquidFallbackShare,
			NetWorth:      p.CurrentSavings,
		}
	}
	return CurrentFinancials{
		TotalAssets:      accounts.TotalAssets(),
		LiquidSavings:    accounts.LiquidSavings(),
		TotalLiabilities: accounts.TotalLiabilities(),
		NetWorth:         accounts.NetWorth(),
		FromAccounts:     true,
		AccountCount:     len(accounts.Accounts),
	}
}
