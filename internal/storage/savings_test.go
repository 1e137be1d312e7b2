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

func TestSavingsGoals(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	owner := createTestUser(t, store, "saver@example.com").UserID
	wallet := createTestWallet(t, store, owner, "Main", "300")
	target := model.DateOnly(storageNow.AddDate(0, 6, 0))

	goal, err := store.CreateSavingsGoal(ctx, owner, model.SavingsGoalDraft{
		Name:        "Laptop",
		Description: "New laptop",
		GoalAmount:  decimal.RequireFromString("1500"),
		TargetDate:  target,
	})
	require.NoError(t, err)
	assert.Equal(t, model.SavingsIndividual, goal.SavingsType)
	assert.True(t, goal.CurrentAmount.IsZero())
	assert.True(t, goal.TargetDate.Equal(target))
	assert.True(t, goal.LinkedWalletID.IsZero())

	t.Run("update replaces every field", func(t *testing.T) {
		changed := *goal
		changed.CurrentAmount = decimal.RequireFromString("250")
		changed.SavingsType = model.SavingsLinked
		changed.LinkedWalletID = wallet.ID
		changed.Description = "Work laptop"

		updated, err := store.UpdateSavingsGoal(ctx, changed)
		require.NoError(t, err)
		assert.True(t, updated.CurrentAmount.Equal(decimal.RequireFromString("250")))
		assert.Equal(t, model.SavingsLinked, updated.SavingsType)
		assert.Equal(t, wallet.ID, updated.LinkedWalletID)
		assert.Equal(t, "Work laptop", updated.Description)
		assert.True(t, updated.TargetDate.Equal(target))
	})

	t.Run("goal without a target date", func(t *testing.T) {
		open, err := store.CreateSavingsGoal(ctx, owner, model.SavingsGoalDraft{
			Name:        "Rainy day",
			Description: "Emergency fund",
			GoalAmount:  decimal.NewFromInt(100),
		})
		require.NoError(t, err)
		assert.True(t, open.TargetDate.IsZero())
	})

	t.Run("linked to a missing wallet", func(t *testing.T) {
		_, err := store.CreateSavingsGoal(ctx, owner, model.SavingsGoalDraft{
			Name:           "Ghost",
			Description:    "Nope",
			GoalAmount:     decimal.NewFromInt(1),
			SavingsType:    model.SavingsLinked,
			LinkedWalletID: model.MustParseID(9999),
		})
		assert.ErrorIs(t, err, common.ErrRemoteRejected)
	})

	goals, err := store.FetchSavingsGoals(ctx, owner)
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, goal.ID, goals[0].ID)

	require.NoError(t, store.DeleteSavingsGoal(ctx, goal.ID))
	err = store.DeleteSavingsGoal(ctx, goal.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = store.UpdateSavingsGoal(ctx, *goal)
	assert.ErrorIs(t, err, common.ErrNotFound)

	goals, err = store.FetchSavingsGoals(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, goals, 1)
}
