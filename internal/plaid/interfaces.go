package plaid

import (
	"context"
	"time"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
)

// Aggregator is the subset of Plaid the application depends on. Every data call
// takes the access token of the linked item it reads from.
type Aggregator interface {
	CreateLinkToken(ctx context.Context, userID string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (accessToken, itemID string, err error)
	Snapshot(ctx context.Context, accessToken string) (model.AccountsSnapshot, error)
	GetTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]model.Transaction, error)
	GetHoldings(ctx context.Context, accessToken string) ([]model.Holding, error)
	SearchInstitutions(ctx context.Context, query string, limit int) ([]Institution, error)
}
