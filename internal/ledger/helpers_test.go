package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/Veraticus/the-books-must-balance/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	wallets      []model.Wallet
	transactions []model.Transaction
	goals        []model.SavingsGoal
	categories   []model.Category
}

func defaultFixture() fixture {
	return fixture{
		wallets: []model.Wallet{
			{ID: "1", Name: "A", Type: model.WalletTypeCash, Balance: dec("200")},
			{ID: "2", Name: "B", Type: model.WalletTypeBankAccount, Balance: dec("0")},
		},
		categories: []model.Category{
			{ID: "10", Name: "Food", Kind: model.CategoryKindExpense},
			{ID: "11", Name: "Salary", Kind: model.CategoryKindIncome},
		},
	}
}

// newTestSession restores a session for user 1 over the fixture and clears the
// recorded calls, so tests only see the calls made by the operation under test.
func newTestSession(t *testing.T, fx fixture, opts ...Option) (*Session, *service.MockRemote, *session.MemoryStore) {
	t.Helper()

	remote := service.NewMockRemote()
	remote.FetchWalletsFn = func(context.Context, model.ID) ([]model.Wallet, error) {
		return fx.wallets, nil
	}
	remote.FetchTransactionsFn = func(context.Context, model.ID) ([]model.Transaction, error) {
		return fx.transactions, nil
	}
	remote.FetchSavingsGoalsFn = func(context.Context, model.ID) ([]model.SavingsGoal, error) {
		return fx.goals, nil
	}
	remote.FetchCategoriesFn = func(context.Context) ([]model.Category, error) {
		return fx.categories, nil
	}

	store := session.NewMemoryStore()
	require.NoError(t, store.SetIdentity(model.Identity{UserID: "1", Email: "ann@example.com"}))

	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	s := New(remote, store, opts...)
	require.NoError(t, s.Restore(context.Background()))
	remote.Reset()

	return s, remote, store
}

func walletBalance(t *testing.T, s *Session, id model.ID) decimal.Decimal {
	t.Helper()
	w, err := s.Wallet(id)
	require.NoError(t, err)
	return w.Balance
}

type phaseRecorder struct {
	phases []Phase
	mu     sync.Mutex
}

func (r *phaseRecorder) OnPhase(_ string, phase Phase, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, phase)
}

func (r *phaseRecorder) get() []Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Phase(nil), r.phases...)
}

func expenseDraft(walletID model.ID, amount string) model.TransactionDraft {
	return model.TransactionDraft{
		Date:        model.DateOnly(testNow),
		WalletID:    walletID,
		Category:    "Food",
		Description: "Groceries",
		Type:        model.TransactionExpense,
		Amount:      dec(amount),
	}
}
