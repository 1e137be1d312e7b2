package transform

import (
	"sort"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
)

// MonthTrend is the income and expense booked in one calendar month.
type MonthTrend struct {
	Month   time.Time
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net returns income minus expense for the month.
func (m MonthTrend) Net() decimal.Decimal {
	return m.Income.Sub(m.Expense)
}

// CategoryTotal is the expense booked under one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
	Count    int
}

// Summary aggregates the ledger for the dashboard and trends views.
type Summary struct {
	TotalBalance       decimal.Decimal
	TotalIncome        decimal.Decimal
	TotalExpense       decimal.Decimal
	TotalSavings       decimal.Decimal
	MostUsedCategory   string
	TopExpenseCategory string
	Months             []MonthTrend
	ExpenseByCategory  []CategoryTotal
	TransactionCount   int
}

// Net returns total income minus total expense.
func (s Summary) Net() decimal.Decimal {
	return s.TotalIncome.Sub(s.TotalExpense)
}

// AverageTransaction returns the mean transaction amount, or zero with no transactions.
func (s Summary) AverageTransaction() decimal.Decimal {
	if s.TransactionCount == 0 {
		return decimal.Zero
	}
	return s.TotalIncome.Add(s.TotalExpense).Div(decimal.NewFromInt(int64(s.TransactionCount)))
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthlyTrends returns one entry per calendar month for the last months months
// ending with the month containing now, oldest first. Transactions outside the
// window are ignored. Transfers are included like any other transaction.
func MonthlyTrends(txns []*model.Transaction, months int, now time.Time) []MonthTrend {
	if months <= 0 {
		return nil
	}

	current := monthStart(now)
	trends := make([]MonthTrend, months)
	index := make(map[time.Time]int, months)
	for i := 0; i < months; i++ {
		m := current.AddDate(0, i-months+1, 0)
		trends[i] = MonthTrend{Month: m, Income: decimal.Zero, Expense: decimal.Zero}
		index[m] = i
	}

	for _, txn := range txns {
		d := txn.Date.In(now.Location())
		i, ok := index[monthStart(d)]
		if !ok {
			continue
		}
		switch txn.Type {
		case model.TransactionIncome:
			trends[i].Income = trends[i].Income.Add(txn.Amount)
		case model.TransactionExpense:
			trends[i].Expense = trends[i].Expense.Add(txn.Amount)
		}
	}
	return trends
}

// Summarize computes totals over the whole ledger plus MonthlyTrends for the window.
func Summarize(wallets []*model.Wallet, txns []*model.Transaction, goals []*model.SavingsGoal, months int, now time.Time) Summary {
	s := Summary{
		TotalBalance:     decimal.Zero,
		TotalIncome:      decimal.Zero,
		TotalExpense:     decimal.Zero,
		TotalSavings:     decimal.Zero,
		TransactionCount: len(txns),
		Months:           MonthlyTrends(txns, months, now),
	}

	for _, w := range wallets {
		s.TotalBalance = s.TotalBalance.Add(w.Balance)
	}
	for _, g := range goals {
		s.TotalSavings = s.TotalSavings.Add(g.CurrentAmount)
	}

	usage := make(map[string]int)
	expenses := make(map[string]*CategoryTotal)
	for _, txn := range txns {
		usage[txn.Category]++
		switch txn.Type {
		case model.TransactionIncome:
			s.TotalIncome = s.TotalIncome.Add(txn.Amount)
		case model.TransactionExpense:
			s.TotalExpense = s.TotalExpense.Add(txn.Amount)
			ct, ok := expenses[txn.Category]
			if !ok {
				ct = &CategoryTotal{Category: txn.Category, Amount: decimal.Zero}
				expenses[txn.Category] = ct
			}
			ct.Amount = ct.Amount.Add(txn.Amount)
			ct.Count++
		}
	}

	for _, ct := range expenses {
		s.ExpenseByCategory = append(s.ExpenseByCategory, *ct)
	}
	sort.Slice(s.ExpenseByCategory, func(i, j int) bool {
		a, b := s.ExpenseByCategory[i], s.ExpenseByCategory[j]
		if cmp := a.Amount.Cmp(b.Amount); cmp != 0 {
			return cmp > 0
		}
		return a.Category < b.Category
	})
	if len(s.ExpenseByCategory) > 0 {
		s.TopExpenseCategory = s.ExpenseByCategory[0].Category
	}

	best := 0
	for category, n := range usage {
		if n > best || (n == best && category < s.MostUsedCategory) {
			best = n
			s.MostUsedCategory = category
		}
	}

	return s
}
