package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used for transaction and goal dates.
const DateLayout = "2006-01-02"

// TransferCategory is the category given to both halves of a wallet transfer.
const TransferCategory = "Transfer"

// TransactionType is the direction of a transaction relative to its wallet.
type TransactionType string

// Transaction types.
const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// IsValid reports whether t is income or expense.
func (t TransactionType) IsValid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Transaction is a single dated income or expense against exactly one wallet.
// Transactions are immutable once created; they can only be deleted.
type Transaction struct {
	Date        time.Time
	ID          ID
	WalletID    ID
	Category    string
	Description string
	Type        TransactionType
	Amount      decimal.Decimal
}

// TransactionDraft is a transaction that has not been persisted yet.
type TransactionDraft struct {
	Date        time.Time
	WalletID    ID
	Category    string
	Description string
	Type        TransactionType
	Amount      decimal.Decimal
}

// NewTransaction is what the ledger sends to the remote when creating a transaction.
// CategoryID is nil when the free-text category could not be resolved.
type NewTransaction struct {
	CategoryID *ID
	TransactionDraft
}

// TransferRequest moves money between two wallets owned by the same user.
type TransferRequest struct {
	FromWalletID ID
	ToWalletID   ID
	Description  string
	Amount       decimal.Decimal
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate parses a YYYY-MM-DD date in the local time zone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}
