package transform

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OtherCategory is the fallback category for records that carry none.
const OtherCategory = "Other"

// maxCategoryPrefix bounds how long a "Category: text" prefix may be.
const maxCategoryPrefix = 50

func signed(amount decimal.Decimal, txnType model.TransactionType) decimal.Decimal {
	if txnType == model.TransactionExpense {
		return amount.Neg()
	}
	return amount
}

func adjustBalance(wallets []*model.Wallet, walletID model.ID, delta decimal.Decimal) []*model.Wallet {
	return mapWhere(wallets,
		func(w *model.Wallet) bool { return w.ID == walletID },
		func(w model.Wallet) model.Wallet {
			w.Balance = w.Balance.Add(delta)
			return w
		})
}

// UpdateWalletBalance applies a transaction to its wallet: expenses subtract, income adds.
// Wallets other than walletID are returned untouched.
func UpdateWalletBalance(wallets []*model.Wallet, walletID model.ID, amount decimal.Decimal, txnType model.TransactionType) []*model.Wallet {
	return adjustBalance(wallets, walletID, signed(amount, txnType))
}

// RestoreWalletBalance is the inverse of UpdateWalletBalance for the same arguments.
func RestoreWalletBalance(wallets []*model.Wallet, walletID model.ID, amount decimal.Decimal, originalType model.TransactionType) []*model.Wallet {
	return adjustBalance(wallets, walletID, signed(amount, originalType).Neg())
}

// CreateTransferTransactions builds the expense/income pair that records a transfer.
// Both records share a fresh correlation id, suffixed "-out" and "-in".
func CreateTransferTransactions(from, to model.Wallet, amount decimal.Decimal, description string, date time.Time) [2]*model.Transaction {
	return createTransferTransactions(uuid.NewString(), from, to, amount, description, date)
}

func createTransferTransactions(correlationID string, from, to model.Wallet, amount decimal.Decimal, description string, date time.Time) [2]*model.Transaction {
	suffix := ""
	if description != "" {
		suffix = " - " + description
	}

	out := &model.Transaction{
		ID:          model.ID(correlationID + "-out"),
		WalletID:    from.ID,
		Category:    model.TransferCategory,
		Description: fmt.Sprintf("Transfer to %s%s", to.Name, suffix),
		Type:        model.TransactionExpense,
		Amount:      amount,
		Date:        date,
	}
	in := &model.Transaction{
		ID:          model.ID(correlationID + "-in"),
		WalletID:    to.ID,
		Category:    model.TransferCategory,
		Description: fmt.Sprintf("Transfer from %s%s", from.Name, suffix),
		Type:        model.TransactionIncome,
		Amount:      amount,
		Date:        date,
	}
	return [2]*model.Transaction{out, in}
}

// ExtractCategoryFromDescription splits descriptions of the form "Category: text".
// The prefix must be shorter than 50 characters; otherwise the category is
// OtherCategory and the description is returned unchanged.
func ExtractCategoryFromDescription(description string) (category, clean string) {
	prefix, rest, found := strings.Cut(description, ": ")
	if found && strings.TrimSpace(prefix) != "" && len([]rune(prefix)) < maxCategoryPrefix {
		return prefix, rest
	}
	return OtherCategory, description
}
