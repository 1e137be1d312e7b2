package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		code     string
		expected string
	}{
		{name: "dollars", amount: "1234.5", code: "USD", expected: "$1,234.50"},
		{name: "lowercase code", amount: "12", code: "usd", expected: "$12.00"},
		{name: "rupees default", amount: "500", code: "", expected: "₹500.00"},
		{name: "rounds to cents", amount: "0.005", code: "USD", expected: "$0.01"},
		{name: "unknown currency", amount: "7.5", code: "ZZZ", expected: "7.50 ZZZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatMoney(decimal.RequireFromString(tt.amount), tt.code))
		})
	}
}

func TestFormatSigned(t *testing.T) {
	amount := decimal.RequireFromString("20")

	assert.Contains(t, FormatSigned(amount, model.TransactionExpense, "USD"), "-$20.00")
	assert.Contains(t, FormatSigned(amount, model.TransactionIncome, "USD"), "+$20.00")
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2025-06-10", FormatDate(time.Date(2025, 6, 10, 23, 0, 0, 0, time.Local)))
	assert.Equal(t, "-", FormatDate(time.Time{}))
}

func TestFormatProgress(t *testing.T) {
	got := FormatProgress(decimal.RequireFromString("60"), decimal.RequireFromString("200"), "USD")
	assert.Equal(t, "$60.00 / $200.00 (30%)", got)

	got = FormatProgress(decimal.RequireFromString("5"), decimal.Zero, "USD")
	assert.True(t, strings.HasSuffix(got, "(0%)"))
}
