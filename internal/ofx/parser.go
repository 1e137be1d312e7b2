// Package ofx turns OFX/QFX bank and credit card statements into transaction drafts.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/transform"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// Category names assigned from the OFX transaction type.
const (
	CategoryInterest = "Interest"
	CategoryBankFees = "Bank Fees"
	CategoryCash     = "Cash & ATM"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRegex  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	datePrefix    = regexp.MustCompile(`^\d{2}/\d{2}\s+`)

	descriptionPrefixes = []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"ACH CREDIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	genericNames = []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}
)

// Statement is one account section of an OFX file.
type Statement struct {
	AccountID     string
	Currency      string
	LedgerBalance decimal.Decimal
	Drafts        []model.TransactionDraft
	CreditCard    bool
}

// Parser reads OFX/QFX files.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// normalize repairs formatting that ofxgo rejects but banks commonly emit.
func normalize(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parseResponse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(normalize(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// Parse reads every bank and credit card statement in the file.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) ([]Statement, error) {
	resp, err := p.parseResponse(reader)
	if err != nil {
		return nil, err
	}

	var statements []Statement
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		statements = append(statements, Statement{
			AccountID:     string(stmt.BankAcctFrom.AcctID),
			Currency:      stmt.CurDef.String(),
			LedgerBalance: amount(stmt.BalAmt),
			Drafts:        drafts(stmt.BankTranList),
		})
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		statements = append(statements, Statement{
			AccountID:     string(stmt.CCAcctFrom.AcctID),
			Currency:      stmt.CurDef.String(),
			LedgerBalance: amount(stmt.BalAmt),
			Drafts:        drafts(stmt.BankTranList),
			CreditCard:    true,
		})
	}

	total := 0
	for _, s := range statements {
		total += len(s.Drafts)
	}
	slog.Info("Parsed OFX file",
		"statements", len(statements),
		"transactions", total)

	return statements, nil
}

// ParseDrafts reads all transactions in the file and assigns them to walletID.
func (p *Parser) ParseDrafts(ctx context.Context, reader io.Reader, walletID model.ID) ([]model.TransactionDraft, error) {
	statements, err := p.Parse(ctx, reader)
	if err != nil {
		return nil, err
	}

	var all []model.TransactionDraft
	for _, stmt := range statements {
		for _, d := range stmt.Drafts {
			d.WalletID = walletID
			all = append(all, d)
		}
	}
	return all, nil
}

// Accounts lists the account ids present in the file, sorted.
func (p *Parser) Accounts(reader io.Reader) ([]string, error) {
	resp, err := p.parseResponse(reader)
	if err != nil {
		return nil, err
	}

	var accounts []string
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			accounts = append(accounts, string(stmt.BankAcctFrom.AcctID))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			accounts = append(accounts, string(stmt.CCAcctFrom.AcctID))
		}
	}

	slices.Sort(accounts)
	return slices.Compact(accounts), nil
}

func drafts(list *ofxgo.TransactionList) []model.TransactionDraft {
	if list == nil {
		return nil
	}

	out := make([]model.TransactionDraft, 0, len(list.Transactions))
	for _, tx := range list.Transactions {
		d := draft(tx)
		if d.Amount.IsZero() {
			slog.Debug("Skipping zero-amount OFX transaction", "fitid", tx.FiTID)
			continue
		}
		out = append(out, d)
	}
	return out
}

// draft converts one OFX transaction. Debits are negative in OFX; the sign
// selects the transaction type and the amount is kept absolute.
func draft(tx ofxgo.Transaction) model.TransactionDraft {
	amt := amount(tx.TrnAmt)
	txnType := model.TransactionIncome
	if amt.IsNegative() {
		txnType = model.TransactionExpense
	}

	return model.TransactionDraft{
		Date:        model.DateOnly(tx.DtPosted.Time),
		Category:    categoryFor(tx.TrnType),
		Description: describe(tx),
		Type:        txnType,
		Amount:      amt.Abs(),
	}
}

func amount(a ofxgo.Amount) decimal.Decimal {
	d, err := decimal.NewFromString(a.Rat.FloatString(2))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// t is declared as any because ofxgo does not export its transaction type.
func categoryFor(t any) string {
	switch t {
	case ofxgo.TrnTypeInt, ofxgo.TrnTypeDiv:
		return CategoryInterest
	case ofxgo.TrnTypeFee, ofxgo.TrnTypeSrvChg:
		return CategoryBankFees
	case ofxgo.TrnTypeATM, ofxgo.TrnTypeCash:
		return CategoryCash
	default:
		return transform.OtherCategory
	}
}

// describe picks the most readable description: payee, then name, then memo
// when the name says nothing.
func describe(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && (name == "" || isGeneric(name)) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range descriptionPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	name = datePrefix.ReplaceAllString(name, "")
	if tx.CheckNum != "" && name == "" {
		name = "Check #" + string(tx.CheckNum)
	}
	return strings.TrimSpace(name)
}

func isGeneric(name string) bool {
	return slices.Contains(genericNames, strings.ToUpper(name))
}
