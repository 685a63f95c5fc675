package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TransactionDirection indicates whether money moved in or out of an account.
type TransactionDirection string

// Direction constants.
const (
	DirectionIncome  TransactionDirection = "income"
	DirectionExpense TransactionDirection = "expense"
)

// Transaction represents a single financial transaction from an aggregator.
type Transaction struct {
	Date         time.Time            `json:"date"`
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	MerchantName string               `json:"merchantName,omitempty"`
	AccountID    string               `json:"accountId"`
	Hash         string               `json:"-"`
	Direction    TransactionDirection `json:"direction,omitempty"`
	Category     []string             `json:"category,omitempty"`
	Amount       float64              `json:"amount"`
	Pending      bool                 `json:"pending,omitempty"`
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.MerchantName,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Holding is an investment position reported by the aggregator.
type Holding struct {
	AccountID  string  `json:"accountId"`
	SecurityID string  `json:"securityId"`
	Ticker     string  `json:"ticker,omitempty"`
	Name       string  `json:"name,omitempty"`
	Quantity   float64 `json:"quantity"`
	Value      float64 `json:"value"`
	CostBasis  float64 `json:"costBasis,omitempty"`
}
