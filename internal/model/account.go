// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// AccountType is the normalized kind of a financial account.
type AccountType string

// Account type constants.
const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountInvestment AccountType = "investment"
	AccountLoan       AccountType = "loan"
	AccountCredit     AccountType = "credit"
)

// ParseAccountType converts a provider or user supplied string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(strings.ToLower(strings.TrimSpace(s))); t {
	case AccountChecking, AccountSavings, AccountInvestment, AccountLoan, AccountCredit:
		return t, nil
	default:
		return "", fmt.Errorf("unknown account type %q", s)
	}
}

// IsLiability reports whether balances of this type are owed rather than owned.
func (t AccountType) IsLiability() bool {
	return t == AccountLoan || t == AccountCredit
}

// IsLiquid reports whether the account counts toward liquid savings.
func (t AccountType) IsLiquid() bool {
	return t == AccountChecking || t == AccountSavings
}

// Account is a single balance reported by an account-data provider.
type Account struct {
	ID      string      `json:"id,omitempty"`
	Name    string      `json:"name,omitempty"`
	Type    AccountType `json:"type"`
	Balance float64     `json:"balance"`
}

// AccountsSnapshot is a point-in-time, value-typed view of a user's balances.
// Balances are in the same currency as the profile income.
type AccountsSnapshot struct {
	CapturedAt time.Time `json:"capturedAt"`
	Source     string    `json:"source,omitempty"`
	Accounts   []Account `json:"accounts"`
}

// LiquidSavings is the sum of checking and savings balances.
func (s AccountsSnapshot) LiquidSavings() float64 {
	var total float64
	for _, a := range s.Accounts {
		if a.Type.IsLiquid() {
			total += a.Balance
		}
	}
	return total
}

// TotalAssets is the sum of all non-liability balances.
func (s AccountsSnapshot) TotalAssets() float64 {
	var total float64
	for _, a := range s.Accounts {
		if !a.Type.IsLiability() {
			total += a.Balance
		}
	}
	return total
}

// TotalLiabilities is the sum of loan and credit balances. Providers disagree on
// the sign of amounts owed, so the magnitude is used.
func (s AccountsSnapshot) TotalLiabilities() float64 {
	var total float64
	for _, a := range s.Accounts {
		if a.Type.IsLiability() {
			total += math.Abs(a.Balance)
		}
	}
	return total
}

// NetWorth is total assets minus total liabilities.
func (s AccountsSnapshot) NetWorth() float64 {
	return s.TotalAssets() - s.TotalLiabilities()
}

// Merge returns a snapshot holding the accounts of both snapshots. The capture
// time is the older of the two so staleness is never understated.
func (s AccountsSnapshot) Merge(other AccountsSnapshot) AccountsSnapshot {
	merged := AccountsSnapshot{
		CapturedAt: s.CapturedAt,
		Source:     s.Source,
		Accounts:   make([]Account, 0, len(s.Accounts)+len(other.Accounts)),
	}
	merged.Accounts = append(merged.Accounts, s.Accounts...)
	merged.Accounts = append(merged.Accounts, other.Accounts...)

	if merged.CapturedAt.IsZero() || (!other.CapturedAt.IsZero() && other.CapturedAt.Before(merged.CapturedAt)) {
		merged.CapturedAt = other.CapturedAt
	}
	if merged.Source == "" {
		merged.Source = other.Source
	} else if other.Source != "" && other.Source != merged.Source {
		merged.Source = "mixed"
	}
	return merged
}
