// Package ofx imports OFX/QFX statement downloads as account snapshots.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
)

var (
	severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)`)
	// Opening tag on its own line missing the closing bracket.
	openTagRe = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])\s*$`)
)

// Statement is everything extracted from one OFX file.
type Statement struct {
	Snapshot     model.AccountsSnapshot `json:"snapshot"`
	Transactions []model.Transaction    `json:"transactions"`
}

// Parser reads OFX/QFX files.
type Parser struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{
		logger: slog.Default().With("component", "ofx"),
		now:    time.Now,
	}
}

// ParseSnapshot reads ledger balances from every bank and credit-card statement in the file.
func (p *Parser) ParseSnapshot(ctx context.Context, reader io.Reader) (model.AccountsSnapshot, error) {
	stmt, err := p.Parse(ctx, reader)
	if err != nil {
		return model.AccountsSnapshot{}, err
	}
	return stmt.Snapshot, nil
}

// Parse reads balances and transactions from the file.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) (*Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	out := &Statement{Snapshot: model.AccountsSnapshot{Source: "ofx"}}
	var asOf []time.Time

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		acctID := string(stmt.BankAcctFrom.AcctID)
		balance, _ := stmt.BalAmt.Float64()
		typ := bankAccountType(stmt.BankAcctFrom.AcctType)
		if typ.IsLiability() && balance < 0 {
			balance = -balance
		}
		out.Snapshot.Accounts = append(out.Snapshot.Accounts, model.Account{
			ID:      acctID,
			Name:    fmt.Sprintf("%s %s", stmt.BankAcctFrom.AcctType, maskAccount(acctID)),
			Type:    typ,
			Balance: balance,
		})
		asOf = append(asOf, stmt.DtAsOf.Time)
		if stmt.BankTranList != nil {
			out.Transactions = append(out.Transactions, convertAll(stmt.BankTranList.Transactions, acctID)...)
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		acctID := string(stmt.CCAcctFrom.AcctID)
		owed, _ := stmt.BalAmt.Float64()
		if owed < 0 {
			owed = -owed
		}
		out.Snapshot.Accounts = append(out.Snapshot.Accounts, model.Account{
			ID:      acctID,
			Name:    "CREDITCARD " + maskAccount(acctID),
			Type:    model.AccountCredit,
			Balance: owed,
		})
		asOf = append(asOf, stmt.DtAsOf.Time)
		if stmt.BankTranList != nil {
			out.Transactions = append(out.Transactions, convertAll(stmt.BankTranList.Transactions, acctID)...)
		}
	}

	if len(out.Snapshot.Accounts) == 0 {
		return nil, fmt.Errorf("OFX file contains no bank or credit card statements")
	}

	out.Snapshot.CapturedAt = oldest(asOf, p.now().UTC())

	p.logger.Info("Parsed OFX file",
		"accounts", len(out.Snapshot.Accounts),
		"transactions", len(out.Transactions))

	return out, nil
}

func bankAccountType(t any) model.AccountType { // ofxgo's acctType is unexported
	switch t {
	case ofxgo.AcctTypeSavings, ofxgo.AcctTypeMoneyMrkt, ofxgo.AcctTypeCD:
		return model.AccountSavings
	case ofxgo.AcctTypeCreditLine:
		return model.AccountCredit
	default:
		return model.AccountChecking
	}
}

func convertAll(txs []ofxgo.Transaction, accountID string) []model.Transaction {
	out := make([]model.Transaction, 0, len(txs))
	for _, t := range txs {
		out = append(out, convertTransaction(t, accountID))
	}
	return out
}

// convertTransaction maps an OFX transaction. OFX signs debits negative; the
// model keeps the magnitude and records the direction.
func convertTransaction(t ofxgo.Transaction, accountID string) model.Transaction {
	amount, _ := t.TrnAmt.Float64()
	direction := model.DirectionIncome
	if amount < 0 {
		amount = -amount
		direction = model.DirectionExpense
	}

	tx := model.Transaction{
		ID:           string(t.FiTID),
		Date:         t.DtPosted.Time,
		Name:         string(t.Name),
		MerchantName: merchantName(t),
		Amount:       amount,
		AccountID:    accountID,
		Direction:    direction,
	}
	tx.Hash = tx.GenerateHash()
	return tx
}

var cardPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
}

func merchantName(t ofxgo.Transaction) string {
	if t.Payee != nil && t.Payee.Name != "" {
		return string(t.Payee.Name)
	}
	name := strings.TrimSpace(string(t.Name))
	upper := strings.ToUpper(name)
	for _, prefix := range cardPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return strings.TrimSpace(name[len(prefix):])
		}
	}
	return name
}

// preprocess fixes formatting quirks that ofxgo rejects.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagRe.ReplaceAllString(content, "$1>")
}

func maskAccount(id string) string {
	if len(id) <= 4 {
		return id
	}
	return "…" + id[len(id)-4:]
}

func oldest(times []time.Time, fallback time.Time) time.Time {
	var out time.Time
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		if out.IsZero() || t.Before(out) {
			out = t
		}
	}
	if out.IsZero() {
		return fallback
	}
	return out.UTC()
}
