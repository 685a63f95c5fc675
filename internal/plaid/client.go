// Package plaid provides a client for interacting with the Plaid API.
package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/common"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/service"
)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	// RedirectURI is sent with link tokens in production, where OAuth banks require it.
	RedirectURI string
	ClientName  string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: plaid client ID is required", common.ErrMissingConfig)
	}
	if c.Secret == "" {
		return fmt.Errorf("%w: plaid secret is required", common.ErrMissingConfig)
	}
	switch c.Environment {
	case "sandbox", "production":
		return nil
	case "":
		return fmt.Errorf("%w: plaid environment is required", common.ErrMissingConfig)
	default:
		return fmt.Errorf("%w: plaid environment must be sandbox or production", common.ErrInvalidConfig)
	}
}

// Client talks to Plaid on behalf of every linked item.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	retryOpts   service.RetryOptions
	environment string
	redirectURI string
	clientName  string
	now         func() time.Time
}

// NewClient creates a new Plaid client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	name := cfg.ClientName
	if name == "" {
		name = "FinAI"
	}

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		environment: cfg.Environment,
		redirectURI: cfg.RedirectURI,
		clientName:  name,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
		now: time.Now,
	}, nil
}

// CreateLinkToken creates a Link token for Plaid Link initialization.
func (c *Client) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		userID = "finai-user-" + c.now().Format("20060102150405")
	}

	request := plaid.NewLinkTokenCreateRequest(
		c.clientName,
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
		plaid.LinkTokenCreateRequestUser{ClientUserId: userID},
	)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})
	if c.environment == "production" && c.redirectURI != "" {
		request.SetRedirectUri(c.redirectURI)
	}

	var token string
	err := c.call(ctx, "create link token", func() error {
		resp, _, err := c.client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
		if err != nil {
			return err
		}
		token = resp.GetLinkToken()
		return nil
	})
	return token, err
}

// ExchangePublicToken exchanges a public token from Link for an access token.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	if publicToken == "" {
		return "", "", fmt.Errorf("public token is required")
	}

	request := plaid.NewItemPublicTokenExchangeRequest(publicToken)

	var accessToken, itemID string
	err := c.call(ctx, "exchange public token", func() error {
		resp, _, err := c.client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*request).Execute()
		if err != nil {
			return err
		}
		accessToken, itemID = resp.GetAccessToken(), resp.GetItemId()
		return nil
	})
	return accessToken, itemID, err
}

// GetAccounts fetches current balances for every account on the item.
// Accounts of types the planner does not model are skipped.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]model.Account, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: access token is required", common.ErrInvalidAccount)
	}

	c.logger.Info("Fetching accounts from Plaid")

	var raw []plaid.AccountBase
	err := c.call(ctx, "get accounts", func() error {
		request := plaid.NewAccountsGetRequest(accessToken)
		resp, _, err := c.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
		if err != nil {
			return err
		}
		raw = resp.GetAccounts()
		return nil
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]model.Account, 0, len(raw))
	for _, a := range raw {
		typ, ok := accountType(string(a.GetType()), string(a.GetSubtype()))
		if !ok {
			c.logger.Debug("Skipping unsupported account", "type", a.GetType(), "subtype", a.GetSubtype())
			continue
		}
		balances := a.GetBalances()
		accounts = append(accounts, model.Account{
			ID:      a.GetAccountId(),
			Name:    a.GetName(),
			Type:    typ,
			Balance: balances.GetCurrent(),
		})
	}

	c.logger.Info("Fetched accounts", "count", len(accounts), "skipped", len(raw)-len(accounts))
	return accounts, nil
}

// Snapshot fetches balances as a point-in-time snapshot.
func (c *Client) Snapshot(ctx context.Context, accessToken string) (model.AccountsSnapshot, error) {
	accounts, err := c.GetAccounts(ctx, accessToken)
	if err != nil {
		return model.AccountsSnapshot{}, err
	}
	return model.AccountsSnapshot{
		CapturedAt: c.now().UTC(),
		Source:     string(model.ProviderPlaid),
		Accounts:   accounts,
	}, nil
}

// GetTransactions fetches transactions within the date range, following Plaid's pagination.
func (c *Client) GetTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]model.Transaction, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if startDate.After(endDate) {
		return nil, fmt.Errorf("start date must be before end date")
	}
	if accessToken == "" {
		return nil, fmt.Errorf("%w: access token is required", common.ErrInvalidAccount)
	}

	c.logger.Info("Fetching transactions from Plaid",
		"start_date", startDate.Format("2006-01-02"),
		"end_date", endDate.Format("2006-01-02"))

	const pageSize = int32(500)
	var all []plaid.Transaction
	for offset := int32(0); ; offset += pageSize {
		var page []plaid.Transaction
		err := c.call(ctx, "get transactions", func() error {
			request := plaid.NewTransactionsGetRequest(
				accessToken,
				startDate.Format("2006-01-02"),
				endDate.Format("2006-01-02"),
			)
			request.SetOptions(plaid.TransactionsGetRequestOptions{
				Count:  plaid.PtrInt32(pageSize),
				Offset: plaid.PtrInt32(offset),
			})

			resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
			if err != nil {
				return err
			}
			page = resp.GetTransactions()
			c.logger.Debug("Fetched transaction batch",
				"count", len(page),
				"offset", offset,
				"total", resp.GetTotalTransactions())
			return nil
		})
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		if len(page) < int(pageSize) {
			break
		}
	}

	transactions := make([]model.Transaction, 0, len(all))
	for _, pt := range all {
		transactions = append(transactions, c.mapTransaction(pt))
	}
	c.logger.Info("Fetched all transactions", "count", len(transactions))
	return transactions, nil
}

// GetHoldings fetches investment positions, resolving tickers from the securities list.
func (c *Client) GetHoldings(ctx context.Context, accessToken string) ([]model.Holding, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: access token is required", common.ErrInvalidAccount)
	}

	var (
		holdings   []plaid.Holding
		securities []plaid.Security
	)
	err := c.call(ctx, "get holdings", func() error {
		request := plaid.NewInvestmentsHoldingsGetRequest(accessToken)
		resp, _, err := c.client.PlaidApi.InvestmentsHoldingsGet(ctx).InvestmentsHoldingsGetRequest(*request).Execute()
		if err != nil {
			return err
		}
		holdings, securities = resp.GetHoldings(), resp.GetSecurities()
		return nil
	})
	if err != nil {
		return nil, err
	}

	bySecurity := make(map[string]plaid.Security, len(securities))
	for _, s := range securities {
		bySecurity[s.GetSecurityId()] = s
	}

	out := make([]model.Holding, 0, len(holdings))
	for _, h := range holdings {
		holding := model.Holding{
			AccountID:  h.GetAccountId(),
			SecurityID: h.GetSecurityId(),
			Quantity:   h.GetQuantity(),
			Value:      h.GetInstitutionValue(),
			CostBasis:  h.GetCostBasis(),
		}
		if sec, ok := bySecurity[h.GetSecurityId()]; ok {
			holding.Ticker = sec.GetTickerSymbol()
			holding.Name = sec.GetName()
		}
		out = append(out, holding)
	}
	return out, nil
}

// Institution represents a bank or financial institution.
type Institution struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	OAuth                bool   `json:"oauth"`
	SupportsTransactions bool   `json:"supportsTransactions"`
}

// SearchInstitutions searches for financial institutions by name.
func (c *Client) SearchInstitutions(ctx context.Context, query string, limit int) ([]Institution, error) {
	if limit <= 0 {
		limit = 10
	}

	request := plaid.NewInstitutionsSearchRequest(query, []plaid.CountryCode{plaid.COUNTRYCODE_US})
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})
	request.SetOptions(plaid.InstitutionsSearchRequestOptions{
		IncludeOptionalMetadata: plaid.PtrBool(true),
	})

	var found []plaid.Institution
	err := c.call(ctx, "search institutions", func() error {
		resp, _, err := c.client.PlaidApi.InstitutionsSearch(ctx).InstitutionsSearchRequest(*request).Execute()
		if err != nil {
			return err
		}
		found = resp.GetInstitutions()
		return nil
	})
	if err != nil {
		return nil, err
	}

	institutions := make([]Institution, 0, min(limit, len(found)))
	for _, inst := range found {
		if len(institutions) == limit {
			break
		}
		supportsTransactions := false
		for _, product := range inst.GetProducts() {
			if product == plaid.PRODUCTS_TRANSACTIONS {
				supportsTransactions = true
				break
			}
		}
		institutions = append(institutions, Institution{
			ID:                   inst.GetInstitutionId(),
			Name:                 inst.GetName(),
			OAuth:                inst.GetOauth(),
			SupportsTransactions: supportsTransactions,
		})
	}
	return institutions, nil
}

// call runs one Plaid request with retries, translating Plaid error codes.
func (c *Client) call(ctx context.Context, op string, fn func() error) error {
	return common.WithRetry(ctx, func() error {
		err := fn()
		if err == nil {
			return nil
		}
		return c.classify(op, err)
	}, c.retryOpts)
}

func (c *Client) classify(op string, err error) error {
	plaidErr := extractPlaidError(err)
	if plaidErr == nil {
		return fmt.Errorf("%w: %s: %w", common.ErrPlaidConnection, op, err)
	}
	switch plaidErr.ErrorCode {
	case "RATE_LIMIT_EXCEEDED":
		c.logger.Warn("Rate limit hit, will retry", "op", op, "error", plaidErr.ErrorMessage)
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: %s", common.ErrPlaidRateLimit, plaidErr.ErrorMessage),
			Retryable: true,
		}
	case "ITEM_LOGIN_REQUIRED", "INVALID_ACCESS_TOKEN", "ITEM_NOT_FOUND":
		return common.Permanent(fmt.Errorf("%w: %s - %s", common.ErrInvalidAccount, plaidErr.ErrorCode, plaidErr.ErrorMessage))
	default:
		return common.Permanent(fmt.Errorf("plaid API error during %s: %s - %s", op, plaidErr.ErrorCode, plaidErr.ErrorMessage))
	}
}

// extractPlaidError attempts to extract a Plaid error from a generic error.
func extractPlaidError(err error) *plaid.PlaidError {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return nil
	}
	return &plaidErr
}

// mapTransaction converts a Plaid transaction to the internal model. Plaid
// reports money out as positive amounts; the model keeps magnitudes and a direction.
func (c *Client) mapTransaction(pt plaid.Transaction) model.Transaction {
	date, err := time.Parse("2006-01-02", pt.GetDate())
	if err != nil {
		c.logger.Error("Failed to parse transaction date", "date", pt.GetDate(), "error", err)
		date = c.now()
	}

	merchant := strings.TrimSpace(pt.GetMerchantName())
	if merchant == "" {
		merchant = strings.TrimSpace(pt.GetName())
	}

	amount, direction := signedAmount(pt.GetAmount())
	tx := model.Transaction{
		Date:         date,
		ID:           pt.GetTransactionId(),
		Name:         pt.GetName(),
		MerchantName: merchant,
		AccountID:    pt.GetAccountId(),
		Amount:       amount,
		Direction:    direction,
		Category:     pt.GetCategory(),
		Pending:      pt.GetPending(),
	}
	tx.Hash = tx.GenerateHash()
	return tx
}

func signedAmount(amount float64) (float64, model.TransactionDirection) {
	switch {
	case amount > 0:
		return amount, model.DirectionExpense
	case amount < 0:
		return -amount, model.DirectionIncome
	default:
		return 0, ""
	}
}

// accountType maps Plaid's type and subtype onto the planner's account types.
func accountType(plaidType, subtype string) (model.AccountType, bool) {
	switch strings.ToLower(plaidType) {
	case "depository":
		switch strings.ToLower(subtype) {
		case "savings", "money market", "cd", "hsa":
			return model.AccountSavings, true
		default:
			return model.AccountChecking, true
		}
	case "credit":
		return model.AccountCredit, true
	case "loan":
		return model.AccountLoan, true
	case "investment", "brokerage":
		return model.AccountInvestment, true
	default:
		return "", false
	}
}

var (
	_ Aggregator            = (*Client)(nil)
	_ service.AccountSource = (*Client)(nil)
)
