package model

import "github.com/shopspring/decimal"

// WalletType classifies what kind of money container a wallet is.
type WalletType string

// Wallet types known to the ledger.
const (
	WalletTypeCash        WalletType = "cash"
	WalletTypeCreditCard  WalletType = "credit_card"
	WalletTypeDebitCard   WalletType = "debit_card"
	WalletTypeGiftCard    WalletType = "gift_card"
	WalletTypeBankAccount WalletType = "bank_account"
	WalletTypeOther       WalletType = "other"
)

// WalletTypes lists every wallet type in display order.
var WalletTypes = []WalletType{
	WalletTypeCash,
	WalletTypeCreditCard,
	WalletTypeDebitCard,
	WalletTypeGiftCard,
	WalletTypeBankAccount,
	WalletTypeOther,
}

// ParseWalletType maps a type name to a WalletType. Unknown names become WalletTypeOther.
func ParseWalletType(name string) WalletType {
	for _, t := range WalletTypes {
		if string(t) == name {
			return t
		}
	}
	return WalletTypeOther
}

// IsValid reports whether t is one of the known wallet types.
func (t WalletType) IsValid() bool {
	for _, known := range WalletTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Wallet is a named money container. Balance is the sum of every transaction
// recorded against the wallet since creation, plus explicit balance edits.
type Wallet struct {
	ID      ID
	Name    string
	Type    WalletType
	Color   string
	Balance decimal.Decimal
}

// WalletDraft carries the fields needed to create a wallet.
type WalletDraft struct {
	Name    string
	Type    WalletType
	Color   string
	Balance decimal.Decimal
}

// WalletUpdate is a partial wallet update. Nil fields keep their current value.
type WalletUpdate struct {
	Name    *string
	Type    *WalletType
	Color   *string
	Balance *decimal.Decimal
}

// Apply merges the update over w and returns the full resulting wallet.
func (u WalletUpdate) Apply(w Wallet) Wallet {
	if u.Name != nil {
		w.Name = *u.Name
	}
	if u.Type != nil {
		w.Type = *u.Type
	}
	if u.Color != nil {
		w.Color = *u.Color
	}
	if u.Balance != nil {
		w.Balance = *u.Balance
	}
	return w
}
