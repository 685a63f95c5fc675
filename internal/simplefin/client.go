// Package simplefin reads balances and transactions from a SimpleFIN Bridge.
package simplefin

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/common"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/service"
)

// Client talks to SimpleFIN. The access URL returned by Claim acts as the
// connection's access token; it embeds basic-auth credentials.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	retryOpts  service.RetryOptions
	now        func() time.Time
}

// SimpleFIN API response types
type accountSet struct {
	Errors   []string  `json:"errors"`
	Accounts []account `json:"accounts"`
}

type account struct {
	Org          org           `json:"org"`
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Currency     string        `json:"currency"`
	Balance      string        `json:"balance"`
	Transactions []transaction `json:"transactions"`
}

type org struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

type transaction struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Posted      int64  `json:"posted"`
	Pending     bool   `json:"pending"`
}

// NewClient creates a SimpleFIN client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default().With("component", "simplefin"),
		retryOpts:  service.DefaultRetryOptions(),
		now:        time.Now,
	}
}

// Claim exchanges a setup token (a base64-encoded claim URL) for an access URL.
// A setup token can be claimed only once.
func (c *Client) Claim(ctx context.Context, setupToken string) (string, error) {
	claimURL, err := decodeSetupToken(setupToken)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claimURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create claim request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to claim access URL: %w", common.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("failed to read access URL: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to claim SimpleFIN access: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	accessURL := strings.TrimSpace(string(body))
	if !isHTTPURL(accessURL) {
		return "", fmt.Errorf("invalid access URL received")
	}

	c.logger.Info("Claimed SimpleFIN access URL")
	return accessURL, nil
}

// Snapshot fetches current balances for every account behind the access URL.
func (c *Client) Snapshot(ctx context.Context, accessURL string) (model.AccountsSnapshot, error) {
	set, err := c.fetch(ctx, accessURL, url.Values{"balances-only": {"1"}})
	if err != nil {
		return model.AccountsSnapshot{}, err
	}

	accounts := make([]model.Account, 0, len(set.Accounts))
	for _, a := range set.Accounts {
		balance, err := decimal.NewFromString(strings.TrimSpace(a.Balance))
		if err != nil {
			return model.AccountsSnapshot{}, fmt.Errorf("account %s: invalid balance %q: %w", a.ID, a.Balance, err)
		}
		accounts = append(accounts, model.Account{
			ID:      a.ID,
			Name:    a.Name,
			Type:    classify(a.Name, balance),
			Balance: balance.Abs().InexactFloat64(),
		})
	}

	return model.AccountsSnapshot{
		CapturedAt: c.now().UTC(),
		Source:     string(model.ProviderSimpleFIN),
		Accounts:   accounts,
	}, nil
}

// GetTransactions fetches posted transactions within the date range.
func (c *Client) GetTransactions(ctx context.Context, accessURL string, startDate, endDate time.Time) ([]model.Transaction, error) {
	if startDate.After(endDate) {
		return nil, fmt.Errorf("start date must be before end date")
	}

	// end-date is exclusive in SimpleFIN.
	set, err := c.fetch(ctx, accessURL, url.Values{
		"start-date": {strconv.FormatInt(startDate.Unix(), 10)},
		"end-date":   {strconv.FormatInt(endDate.AddDate(0, 0, 1).Unix(), 10)},
	})
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	for _, a := range set.Accounts {
		for _, tx := range a.Transactions {
			if tx.Pending {
				continue
			}
			date := time.Unix(tx.Posted, 0).UTC()
			if date.Before(startDate) || date.After(endDate) {
				continue
			}

			amount, err := decimal.NewFromString(strings.TrimSpace(tx.Amount))
			if err != nil {
				return nil, fmt.Errorf("failed to parse amount %s: %w", tx.Amount, err)
			}

			mt := model.Transaction{
				ID:           a.ID + "_" + tx.ID,
				Date:         date,
				Name:         tx.Description,
				MerchantName: strings.TrimSpace(tx.Payee),
				AccountID:    a.ID,
				Amount:       amount.Abs().InexactFloat64(),
				Direction:    model.DirectionExpense,
			}
			if amount.IsPositive() {
				mt.Direction = model.DirectionIncome
			}
			mt.Hash = mt.GenerateHash()
			transactions = append(transactions, mt)
		}
	}
	return transactions, nil
}

func (c *Client) fetch(ctx context.Context, accessURL string, query url.Values) (*accountSet, error) {
	if !isHTTPURL(accessURL) {
		return nil, fmt.Errorf("%w: invalid SimpleFIN access URL", common.ErrInvalidAccount)
	}
	u, err := url.Parse(strings.TrimRight(accessURL, "/") + "/accounts")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	u.RawQuery = query.Encode()

	var set accountSet
	err = common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return common.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %w", common.ErrProviderUnavailable, err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusForbidden {
			return common.Permanent(fmt.Errorf("%w: SimpleFIN access revoked", common.ErrInvalidAccount))
		}
		if resp.StatusCode != http.StatusOK {
			return common.HTTPStatusError("SimpleFIN", resp.StatusCode)
		}

		set = accountSet{}
		if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
			return common.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, err
	}

	for _, msg := range set.Errors {
		c.logger.Warn("SimpleFIN reported an error", "message", msg)
	}
	return &set, nil
}

// classify guesses an account type from its name, since SimpleFIN does not
// report one. Negative balances are treated as credit lines.
func classify(name string, balance decimal.Decimal) model.AccountType {
	n := strings.ToLower(name)
	switch {
	case containsAny(n, "mortgage", "loan", "auto", "student"):
		return model.AccountLoan
	case containsAny(n, "credit", "card", "visa", "mastercard", "amex"):
		return model.AccountCredit
	case containsAny(n, "brokerage", "invest", "ira", "401k", "401(k)", "roth"):
		return model.AccountInvestment
	case containsAny(n, "saving", "money market"):
		return model.AccountSavings
	case balance.IsNegative():
		return model.AccountCredit
	default:
		return model.AccountChecking
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func decodeSetupToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(token)
		if err != nil {
			return "", fmt.Errorf("failed to decode SimpleFIN token: %w", err)
		}
	}
	claimURL := string(decoded)
	if !isHTTPURL(claimURL) {
		return "", fmt.Errorf("decoded token is not a valid URL")
	}
	return claimURL, nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

var _ service.AccountSource = (*Client)(nil)
