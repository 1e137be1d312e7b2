package transform

import (
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func wallets() []*model.Wallet {
	return []*model.Wallet{
		{ID: "1", Name: "A", Type: model.WalletTypeCash, Balance: dec("200")},
		{ID: "2", Name: "B", Type: model.WalletTypeBankAccount, Balance: dec("0")},
	}
}

func TestUpdateWalletBalance(t *testing.T) {
	before := wallets()

	afterExpense := UpdateWalletBalance(before, "1", dec("50"), model.TransactionExpense)
	assert.True(t, dec("150").Equal(afterExpense[0].Balance))
	assert.True(t, dec("200").Equal(before[0].Balance), "input must not be mutated")
	assert.Same(t, before[1], afterExpense[1], "untouched wallet keeps identity")
	assert.NotSame(t, before[0], afterExpense[0])

	afterIncome := UpdateWalletBalance(before, "2", dec("12.34"), model.TransactionIncome)
	assert.True(t, dec("12.34").Equal(afterIncome[1].Balance))
}

func TestUpdateWalletBalance_UnknownWallet(t *testing.T) {
	before := wallets()
	after := UpdateWalletBalance(before, "99", dec("10"), model.TransactionExpense)

	require.Len(t, after, 2)
	assert.Same(t, before[0], after[0])
	assert.Same(t, before[1], after[1])
}

func TestRestoreWalletBalance_RoundTrip(t *testing.T) {
	for _, typ := range []model.TransactionType{model.TransactionIncome, model.TransactionExpense} {
		t.Run(string(typ), func(t *testing.T) {
			before := wallets()
			applied := UpdateWalletBalance(before, "1", dec("73.21"), typ)
			restored := RestoreWalletBalance(applied, "1", dec("73.21"), typ)
			assert.True(t, before[0].Balance.Equal(restored[0].Balance))
		})
	}
}

func TestCreateTransferTransactions(t *testing.T) {
	ws := wallets()
	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.Local)

	pair := CreateTransferTransactions(*ws[0], *ws[1], dec("40"), "rent", date)
	out, in := pair[0], pair[1]

	assert.Equal(t, "Transfer to B - rent", out.Description)
	assert.Equal(t, "Transfer from A - rent", in.Description)
	assert.Equal(t, model.TransactionExpense, out.Type)
	assert.Equal(t, model.TransactionIncome, in.Type)
	assert.Equal(t, model.TransferCategory, out.Category)
	assert.Equal(t, model.TransferCategory, in.Category)
	assert.Equal(t, model.ID("1"), out.WalletID)
	assert.Equal(t, model.ID("2"), in.WalletID)
	assert.True(t, out.Amount.Equal(in.Amount))
	assert.Equal(t, date, out.Date)
	assert.Equal(t, date, in.Date)

	require.True(t, strings.HasSuffix(out.ID.String(), "-out"))
	require.True(t, strings.HasSuffix(in.ID.String(), "-in"))
	assert.Equal(t, strings.TrimSuffix(out.ID.String(), "-out"), strings.TrimSuffix(in.ID.String(), "-in"))

	next := CreateTransferTransactions(*ws[0], *ws[1], dec("40"), "rent", date)
	assert.NotEqual(t, out.ID, next[0].ID)
}

func TestCreateTransferTransactions_NoDescription(t *testing.T) {
	ws := wallets()
	pair := createTransferTransactions("abc", *ws[0], *ws[1], dec("1"), "", time.Now())

	assert.Equal(t, "Transfer to B", pair[0].Description)
	assert.Equal(t, "Transfer from A", pair[1].Description)
	assert.Equal(t, model.ID("abc-out"), pair[0].ID)
	assert.Equal(t, model.ID("abc-in"), pair[1].ID)
}

func TestTransactionHelpers(t *testing.T) {
	first := &model.Transaction{ID: "1", Amount: dec("1")}
	second := &model.Transaction{ID: "2", Amount: dec("2")}
	txns := []*model.Transaction{first, second}

	prepended := PrependTransaction(txns, model.Transaction{ID: "3"})
	require.Len(t, prepended, 3)
	assert.Equal(t, model.ID("3"), prepended[0].ID)
	assert.Same(t, first, prepended[1])
	assert.Len(t, txns, 2)

	pair := PrependTransactions(txns, model.Transaction{ID: "a-out"}, model.Transaction{ID: "a-in"})
	require.Len(t, pair, 4)
	assert.Equal(t, model.ID("a-out"), pair[0].ID)
	assert.Equal(t, model.ID("a-in"), pair[1].ID)

	removed := RemoveTransactionByID(txns, model.MustParseID(1))
	require.Len(t, removed, 1)
	assert.Same(t, second, removed[0])

	updated := UpdateTransactionByID(txns, "2", model.Transaction{ID: "2", Amount: dec("9")})
	assert.Same(t, first, updated[0])
	assert.True(t, dec("9").Equal(updated[1].Amount))
	assert.True(t, dec("2").Equal(second.Amount))
}

func TestWalletAndGoalHelpers(t *testing.T) {
	ws := wallets()

	appended := AppendWallet(ws, model.Wallet{ID: "3", Name: "C"})
	require.Len(t, appended, 3)
	assert.Equal(t, model.ID("3"), appended[2].ID)

	assert.Len(t, RemoveWalletByID(ws, "2"), 1)

	renamed := UpdateWalletByID(ws, "2", model.Wallet{ID: "2", Name: "Bank"})
	assert.Equal(t, "Bank", renamed[1].Name)
	assert.Equal(t, "B", ws[1].Name)

	goals := AppendSavingsGoal(nil, model.SavingsGoal{ID: "7", Name: "Bike"})
	require.Len(t, goals, 1)
	goals = UpdateSavingsGoalByID(goals, "7", model.SavingsGoal{ID: "7", Name: "Car"})
	assert.Equal(t, "Car", goals[0].Name)
	assert.Empty(t, RemoveSavingsGoalByID(goals, "7"))
}

func TestOrphanTransactionsAndUnlinkGoals(t *testing.T) {
	keep := &model.Transaction{ID: "1", WalletID: "2"}
	txns := []*model.Transaction{{ID: "0", WalletID: "1"}, keep}

	orphaned := OrphanTransactions(txns, "1")
	assert.Equal(t, model.RemovedWalletID, orphaned[0].WalletID)
	assert.Same(t, keep, orphaned[1])
	assert.Equal(t, model.ID("1"), txns[0].WalletID)

	goals := []*model.SavingsGoal{{ID: "g", SavingsType: model.SavingsLinked, LinkedWalletID: "1"}}
	unlinked := UnlinkSavingsGoals(goals, "1")
	assert.True(t, unlinked[0].LinkedWalletID.IsZero())
	assert.False(t, unlinked[0].IsLinked())
	assert.Equal(t, model.SavingsIndividual, unlinked[0].SavingsType)
	assert.True(t, goals[0].IsLinked())
}

func TestExtractCategoryFromDescription(t *testing.T) {
	tests := []struct {
		name         string
		description  string
		wantCategory string
		wantClean    string
	}{
		{name: "prefixed", description: "Food: lunch with team", wantCategory: "Food", wantClean: "lunch with team"},
		{name: "multiple separators", description: "Travel: Paris: day 2", wantCategory: "Travel", wantClean: "Paris: day 2"},
		{name: "no prefix", description: "coffee", wantCategory: OtherCategory, wantClean: "coffee"},
		{name: "colon without space", description: "a:b", wantCategory: OtherCategory, wantClean: "a:b"},
		{name: "prefix too long", description: strings.Repeat("x", 50) + ": y", wantCategory: OtherCategory, wantClean: strings.Repeat("x", 50) + ": y"},
		{name: "empty prefix", description: ": y", wantCategory: OtherCategory, wantClean: ": y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, clean := ExtractCategoryFromDescription(tt.description)
			assert.Equal(t, tt.wantCategory, category)
			assert.Equal(t, tt.wantClean, clean)
		})
	}
}

func TestMonthlyTrends(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.Local)
	txns := []*model.Transaction{
		{Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.Local), Type: model.TransactionIncome, Amount: dec("1000")},
		{Date: time.Date(2025, 3, 5, 0, 0, 0, 0, time.Local), Type: model.TransactionExpense, Amount: dec("250")},
		{Date: time.Date(2025, 1, 20, 0, 0, 0, 0, time.Local), Type: model.TransactionExpense, Amount: dec("40")},
		{Date: time.Date(2024, 12, 31, 0, 0, 0, 0, time.Local), Type: model.TransactionExpense, Amount: dec("999")},
	}

	trends := MonthlyTrends(txns, 3, now)
	require.Len(t, trends, 3)

	assert.Equal(t, time.January, trends[0].Month.Month())
	assert.Equal(t, time.February, trends[1].Month.Month())
	assert.Equal(t, time.March, trends[2].Month.Month())

	assert.True(t, dec("40").Equal(trends[0].Expense))
	assert.True(t, trends[1].Income.IsZero())
	assert.True(t, dec("750").Equal(trends[2].Net()))

	assert.Nil(t, MonthlyTrends(txns, 0, now))
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 3, 31, 0, 0, 0, 0, time.Local)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)
	txns := []*model.Transaction{
		{Date: day, Category: "Food", Type: model.TransactionExpense, Amount: dec("10")},
		{Date: day, Category: "Food", Type: model.TransactionExpense, Amount: dec("15")},
		{Date: day, Category: "Rent", Type: model.TransactionExpense, Amount: dec("500")},
		{Date: day, Category: "Salary", Type: model.TransactionIncome, Amount: dec("1000")},
	}
	goals := []*model.SavingsGoal{{CurrentAmount: dec("30")}, {CurrentAmount: dec("20")}}

	s := Summarize(wallets(), txns, goals, 1, now)

	assert.True(t, dec("200").Equal(s.TotalBalance))
	assert.True(t, dec("1000").Equal(s.TotalIncome))
	assert.True(t, dec("525").Equal(s.TotalExpense))
	assert.True(t, dec("475").Equal(s.Net()))
	assert.True(t, dec("50").Equal(s.TotalSavings))
	assert.Equal(t, 4, s.TransactionCount)
	assert.Equal(t, "Food", s.MostUsedCategory)
	assert.Equal(t, "Rent", s.TopExpenseCategory)
	require.Len(t, s.ExpenseByCategory, 2)
	assert.Equal(t, 2, s.ExpenseByCategory[1].Count)
	assert.True(t, dec("381.25").Equal(s.AverageTransaction()))
	require.Len(t, s.Months, 1)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil, nil, 6, time.Now())

	assert.True(t, s.TotalBalance.IsZero())
	assert.True(t, s.AverageTransaction().IsZero())
	assert.Empty(t, s.MostUsedCategory)
	assert.Len(t, s.Months, 6)
}
