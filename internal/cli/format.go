package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount in the given ISO currency, e.g. "$1,234.50"
// or "₹500.00". Unknown currency codes fall back to "1234.50 XYZ".
func FormatMoney(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = model.DefaultCurrency
	}

	currency := money.GetCurrency(code)
	if currency == nil {
		return fmt.Sprintf("%s %s", amount.StringFixed(2), code)
	}

	minor := amount.Shift(int32(currency.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}

// FormatSigned renders a transaction amount with its sign and color.
func FormatSigned(amount decimal.Decimal, txnType model.TransactionType, code string) string {
	if txnType == model.TransactionExpense {
		return ExpenseStyle.Render("-" + FormatMoney(amount, code))
	}
	return IncomeStyle.Render("+" + FormatMoney(amount, code))
}

// FormatDate renders a calendar date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(model.DateLayout)
}

// FormatProgress renders "current / goal (NN%)" for a savings goal.
func FormatProgress(current, goal decimal.Decimal, code string) string {
	pct := decimal.Zero
	if goal.IsPositive() {
		pct = current.Div(goal).Mul(decimal.NewFromInt(100)).Round(0)
	}
	return fmt.Sprintf("%s / %s (%s%%)", FormatMoney(current, code), FormatMoney(goal, code), pct.String())
}
