package plaid

import (
	"context"
	"sync"
	"time"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
)

// MockClient is a mock Aggregator for testing.
type MockClient struct {
	// Functions that can be set by tests to control behavior
	CreateLinkTokenFn     func(ctx context.Context, userID string) (string, error)
	ExchangePublicTokenFn func(ctx context.Context, publicToken string) (string, string, error)
	SnapshotFn            func(ctx context.Context, accessToken string) (model.AccountsSnapshot, error)
	GetTransactionsFn     func(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]model.Transaction, error)
	GetHoldingsFn         func(ctx context.Context, accessToken string) ([]model.Holding, error)
	SearchInstitutionsFn  func(ctx context.Context, query string, limit int) ([]Institution, error)

	// Call tracking
	SnapshotCalls        []string
	GetTransactionsCalls []GetTransactionsCall
	ExchangeCalls        []string

	mu sync.Mutex
}

// GetTransactionsCall records the parameters of a GetTransactions call.
type GetTransactionsCall struct {
	StartDate   time.Time
	EndDate     time.Time
	AccessToken string
}

// NewMockClient creates a new mock Plaid client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// CreateLinkToken implements Aggregator.
func (m *MockClient) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	if m.CreateLinkTokenFn != nil {
		return m.CreateLinkTokenFn(ctx, userID)
	}
	return "link-sandbox-token", nil
}

// ExchangePublicToken implements Aggregator.
func (m *MockClient) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	m.mu.Lock()
	m.ExchangeCalls = append(m.ExchangeCalls, publicToken)
	m.mu.Unlock()

	if m.ExchangePublicTokenFn != nil {
		return m.ExchangePublicTokenFn(ctx, publicToken)
	}
	return "access-sandbox-" + publicToken, "item-" + publicToken, nil
}

// Snapshot implements Aggregator.
func (m *MockClient) Snapshot(ctx context.Context, accessToken string) (model.AccountsSnapshot, error) {
	m.mu.Lock()
	m.SnapshotCalls = append(m.SnapshotCalls, accessToken)
	m.mu.Unlock()

	if m.SnapshotFn != nil {
		return m.SnapshotFn(ctx, accessToken)
	}
	return model.AccountsSnapshot{Source: string(model.ProviderPlaid), Accounts: []model.Account{}}, nil
}

// GetTransactions implements Aggregator.
func (m *MockClient) GetTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]model.Transaction, error) {
	m.mu.Lock()
	m.GetTransactionsCalls = append(m.GetTransactionsCalls, GetTransactionsCall{
		AccessToken: accessToken,
		StartDate:   startDate,
		EndDate:     endDate,
	})
	m.mu.Unlock()

	if m.GetTransactionsFn != nil {
		return m.GetTransactionsFn(ctx, accessToken, startDate, endDate)
	}
	return []model.Transaction{}, nil
}

// GetHoldings implements Aggregator.
func (m *MockClient) GetHoldings(ctx context.Context, accessToken string) ([]model.Holding, error) {
	if m.GetHoldingsFn != nil {
		return m.GetHoldingsFn(ctx, accessToken)
	}
	return []model.Holding{}, nil
}

// SearchInstitutions implements Aggregator.
func (m *MockClient) SearchInstitutions(ctx context.Context, query string, limit int) ([]Institution, error) {
	if m.SearchInstitutionsFn != nil {
		return m.SearchInstitutionsFn(ctx, query, limit)
	}
	return []Institution{}, nil
}

// SnapshotCallCount returns how many snapshots were requested.
func (m *MockClient) SnapshotCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SnapshotCalls)
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SnapshotCalls = nil
	m.GetTransactionsCalls = nil
	m.ExchangeCalls = nil
}

var _ Aggregator = (*MockClient)(nil)
