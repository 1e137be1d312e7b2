package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransfer(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	owner := createTestUser(t, store, "move@example.com").UserID
	checking := createTestWallet(t, store, owner, "Checking", "250")
	savings := createTestWallet(t, store, owner, "Savings", "10")

	err := store.Transfer(ctx, owner, model.TransferRequest{
		FromWalletID: checking.ID,
		ToWalletID:   savings.ID,
		Amount:       decimal.RequireFromString("75.25"),
		Description:  "Monthly",
	})
	require.NoError(t, err)

	assert.True(t, walletBalance(t, store, owner, checking.ID).Equal(decimal.RequireFromString("174.75")))
	assert.True(t, walletBalance(t, store, owner, savings.ID).Equal(decimal.RequireFromString("85.25")))

	txns, err := store.FetchTransactions(ctx, owner)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	byType := map[model.TransactionType]model.Transaction{}
	for _, txn := range txns {
		byType[txn.Type] = txn
		assert.Equal(t, model.TransferCategory, txn.Category)
		assert.True(t, txn.Amount.Equal(decimal.RequireFromString("75.25")))
		assert.True(t, txn.Date.Equal(model.DateOnly(storageNow)))
	}
	assert.Equal(t, "Transfer to Savings - Monthly", byType[model.TransactionExpense].Description)
	assert.Equal(t, checking.ID, byType[model.TransactionExpense].WalletID)
	assert.Equal(t, "Transfer from Checking - Monthly", byType[model.TransactionIncome].Description)
	assert.Equal(t, savings.ID, byType[model.TransactionIncome].WalletID)
}

func TestTransfer_Rejections(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	owner := createTestUser(t, store, "owner@example.com").UserID
	stranger := createTestUser(t, store, "stranger@example.com").UserID
	a := createTestWallet(t, store, owner, "A", "50")
	b := createTestWallet(t, store, owner, "B", "0")
	foreign := createTestWallet(t, store, stranger, "Foreign", "1000")

	tests := []struct {
		name     string
		req      model.TransferRequest
		wantText string
		wantNF   bool
	}{
		{
			name:     "insufficient balance",
			req:      model.TransferRequest{FromWalletID: a.ID, ToWalletID: b.ID, Amount: decimal.NewFromInt(51)},
			wantText: "Insufficient balance in source wallet",
		},
		{
			name:     "same wallet",
			req:      model.TransferRequest{FromWalletID: a.ID, ToWalletID: a.ID, Amount: decimal.NewFromInt(1)},
			wantText: "Source and destination wallets cannot be the same",
		},
		{
			name:     "non-positive amount",
			req:      model.TransferRequest{FromWalletID: a.ID, ToWalletID: b.ID, Amount: decimal.Zero},
			wantText: "must be positive",
		},
		{
			name:   "foreign source wallet",
			req:    model.TransferRequest{FromWalletID: foreign.ID, ToWalletID: b.ID, Amount: decimal.NewFromInt(1)},
			wantNF: true,
		},
		{
			name:   "unknown destination",
			req:    model.TransferRequest{FromWalletID: a.ID, ToWalletID: model.MustParseID(777), Amount: decimal.NewFromInt(1)},
			wantNF: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Transfer(ctx, owner, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrRemoteRejected)
			if tt.wantNF {
				assert.ErrorIs(t, err, common.ErrNotFound)
			}
			if tt.wantText != "" {
				assert.Contains(t, err.Error(), tt.wantText)
			}
		})
	}

	// Nothing moved and nothing was recorded.
	assert.True(t, walletBalance(t, store, owner, a.ID).Equal(decimal.NewFromInt(50)))
	assert.True(t, walletBalance(t, store, owner, b.ID).IsZero())
	assert.True(t, walletBalance(t, store, stranger, foreign.ID).Equal(decimal.NewFromInt(1000)))
	txns, err := store.FetchTransactions(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, txns)
}
