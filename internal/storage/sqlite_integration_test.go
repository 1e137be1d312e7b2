package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/session"
	"github.com/Veraticus/the-books-must-balance/internal/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntegrationSession(t *testing.T, store *SQLiteStorage, sessions *session.MemoryStore) *ledger.Session {
	t.Helper()
	return ledger.New(store, sessions, ledger.WithClock(func() time.Time { return storageNow }))
}

// TestLedgerOverSQLite drives a full session against the local store and checks
// that a fresh session loaded from the database sees the same ledger.
func TestLedgerOverSQLite(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	sessions := session.NewMemoryStore()

	s := newIntegrationSession(t, store, sessions)
	require.NoError(t, s.Register(ctx, model.Registration{
		Name:     "Mira",
		Email:    "mira@example.com",
		Password: "hunter22",
	}))
	require.NoError(t, s.Login(ctx, "mira@example.com", "hunter22"))
	require.True(t, s.IsAuthenticated())
	assert.NotEmpty(t, s.Categories())

	checking, err := s.AddWallet(ctx, model.WalletDraft{Name: "Checking", Type: model.WalletTypeBankAccount, Balance: decimal.NewFromInt(500)})
	require.NoError(t, err)
	pocket, err := s.AddWallet(ctx, model.WalletDraft{Name: "Pocket", Type: model.WalletTypeCash})
	require.NoError(t, err)

	_, err = s.AddTransaction(ctx, model.TransactionDraft{
		Date:        storageNow,
		WalletID:    checking.ID,
		Category:    "food",
		Description: "Groceries",
		Type:        model.TransactionExpense,
		Amount:      decimal.RequireFromString("42.10"),
	})
	require.NoError(t, err)

	_, err = s.TransferBalance(ctx, checking.ID, pocket.ID, decimal.NewFromInt(100), "Cash for the week")
	require.NoError(t, err)

	goal, err := s.AddSavingsGoal(ctx, model.SavingsGoalDraft{
		Name:           "Bike",
		Description:    "Road bike",
		GoalAmount:     decimal.NewFromInt(800),
		TargetDate:     storageNow.AddDate(0, 3, 0),
		SavingsType:    model.SavingsLinked,
		LinkedWalletID: pocket.ID,
	})
	require.NoError(t, err)

	_, err = s.ContributeToSavingsGoal(ctx, goal.ID, decimal.NewFromInt(60))
	require.NoError(t, err)

	t.Run("local validation stops overdrafts before the store", func(t *testing.T) {
		_, err := s.AddTransaction(ctx, model.TransactionDraft{
			Date: storageNow, WalletID: pocket.ID, Category: "Food",
			Description: "Feast", Type: model.TransactionExpense, Amount: decimal.NewFromInt(1000),
		})
		assert.ErrorIs(t, err, validation.ErrInsufficientBalance)
	})

	local := snapshot(s)

	fresh := newIntegrationSession(t, store, sessions)
	require.NoError(t, fresh.Restore(ctx))
	reloaded := snapshot(fresh)

	assert.Equal(t, local.balances, reloaded.balances)
	assert.Equal(t, local.goalAmounts, reloaded.goalAmounts)
	assert.Equal(t, local.descriptions, reloaded.descriptions)

	assert.Equal(t, "357.90", reloaded.balances[checking.ID])
	assert.Equal(t, "40.00", reloaded.balances[pocket.ID])
	assert.Equal(t, "60.00", reloaded.goalAmounts[goal.ID])

	require.NoError(t, fresh.DeleteWallet(ctx, pocket.ID))
	for _, txn := range fresh.Transactions() {
		if txn.Description == "Transfer from Checking - Cash for the week" {
			assert.Equal(t, model.RemovedWalletID, txn.WalletID)
		}
	}

	require.NoError(t, fresh.Logout())
	assert.False(t, fresh.IsAuthenticated())
	_, err = fresh.Summary(1)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)

	identity, err := sessions.CurrentIdentity()
	require.NoError(t, err)
	assert.Nil(t, identity)
}

type ledgerSnapshot struct {
	balances     map[model.ID]string
	goalAmounts  map[model.ID]string
	descriptions map[string]int
}

// snapshot captures the parts of a session that must survive a reload.
// Transaction ids are left out because transfer records are synthesized locally.
func snapshot(s *ledger.Session) ledgerSnapshot {
	snap := ledgerSnapshot{
		balances:     map[model.ID]string{},
		goalAmounts:  map[model.ID]string{},
		descriptions: map[string]int{},
	}
	for _, w := range s.Wallets() {
		snap.balances[w.ID] = w.Balance.StringFixed(2)
	}
	for _, g := range s.SavingsGoals() {
		snap.goalAmounts[g.ID] = g.CurrentAmount.StringFixed(2)
	}
	for _, txn := range s.Transactions() {
		snap.descriptions[txn.Description]++
	}
	return snap
}
