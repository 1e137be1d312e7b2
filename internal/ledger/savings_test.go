package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savingsFixture() fixture {
	fx := defaultFixture()
	fx.wallets[0].Balance = dec("50")
	fx.goals = []model.SavingsGoal{
		{
			ID:             "20",
			Name:           "Laptop",
			Description:    "New laptop",
			SavingsType:    model.SavingsLinked,
			LinkedWalletID: "1",
			GoalAmount:     dec("1000"),
			CurrentAmount:  dec("0"),
			TargetDate:     time.Date(2025, 12, 1, 0, 0, 0, 0, time.Local),
		},
		{
			ID:            "21",
			Name:          "Holiday",
			Description:   "Beach",
			SavingsType:   model.SavingsIndividual,
			GoalAmount:    dec("1000"),
			CurrentAmount: dec("0"),
			TargetDate:    time.Date(2025, 12, 1, 0, 0, 0, 0, time.Local),
		},
	}
	return fx
}

func TestContribute_LinkedInsufficientBalance(t *testing.T) {
	s, remote, _ := newTestSession(t, savingsFixture())
	beforeWallets := s.Wallets()
	beforeGoals := s.SavingsGoals()

	_, err := s.ContributeToSavingsGoal(context.Background(), "20", dec("100"))
	assert.ErrorIs(t, err, validation.ErrInsufficientBalance)
	assert.Empty(t, remote.Calls())
	assert.Equal(t, beforeWallets, s.Wallets())
	assert.Equal(t, beforeGoals, s.SavingsGoals())
}

func TestContribute_LinkedDebitsWalletBeforeCreditingGoal(t *testing.T) {
	s, remote, _ := newTestSession(t, savingsFixture())

	goal, err := s.ContributeToSavingsGoal(context.Background(), "20", dec("30"))
	require.NoError(t, err)
	assert.True(t, dec("30").Equal(goal.CurrentAmount))
	assert.True(t, dec("20").Equal(walletBalance(t, s, "1")))

	calls := remote.MutatingCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "UpdateWallet", calls[0].Method)
	assert.Equal(t, "UpdateSavingsGoal", calls[1].Method)
}

func TestContribute_WalletDebitFailureLeavesGoal(t *testing.T) {
	s, remote, _ := newTestSession(t, savingsFixture())
	remote.UpdateWalletFn = func(context.Context, model.Wallet) (*model.Wallet, error) {
		return nil, &common.RemoteError{Operation: "update wallet", StatusCode: 500}
	}
	beforeGoals := s.SavingsGoals()

	_, err := s.ContributeToSavingsGoal(context.Background(), "20", dec("30"))
	assert.ErrorIs(t, err, common.ErrRemoteRejected)
	assert.Empty(t, remote.CallsTo("UpdateSavingsGoal"))
	assert.Equal(t, beforeGoals, s.SavingsGoals())
	assert.True(t, dec("50").Equal(walletBalance(t, s, "1")))
}

func TestContribute_GoalCreditFailureRestoresWallet(t *testing.T) {
	s, remote, _ := newTestSession(t, savingsFixture())
	remote.UpdateSavingsGoalFn = func(context.Context, model.SavingsGoal) (*model.SavingsGoal, error) {
		return nil, &common.RemoteError{Operation: "update savings goal", StatusCode: 500}
	}

	_, err := s.ContributeToSavingsGoal(context.Background(), "20", dec("30"))
	assert.ErrorIs(t, err, common.ErrRemoteRejected)

	walletCalls := remote.CallsTo("UpdateWallet")
	require.Len(t, walletCalls, 2)
	assert.True(t, dec("20").Equal(walletCalls[0].Args[0].(model.Wallet).Balance))
	assert.True(t, dec("50").Equal(walletCalls[1].Args[0].(model.Wallet).Balance))

	assert.True(t, dec("50").Equal(walletBalance(t, s, "1")))
	goal, err := s.SavingsGoal("20")
	require.NoError(t, err)
	assert.True(t, goal.CurrentAmount.IsZero())
}

func TestContribute_CompensationFailureReportsBoth(t *testing.T) {
	s, remote, _ := newTestSession(t, savingsFixture())
	remote.UpdateSavingsGoalFn = func(context.Context, model.SavingsGoal) (*model.SavingsGoal, error) {
		return nil, errors.New("credit failed")
	}
	calls := 0
	remote.UpdateWalletFn = func(_ context.Context, w model.Wallet) (*model.Wallet, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("restore failed")
		}
		return &w, nil
	}

	_, err := s.ContributeToSavingsGoal(context.Background(), "20", dec("30"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credit failed")
	assert.Contains(t, err.Error(), "restore failed")
	assert.True(t, dec("20").Equal(walletBalance(t, s, "1")))
}

func TestContribute_IndividualGoalHasNoCap(t *testing.T) {
	s, remote, _ := newTestSession(t, savingsFixture())

	goal, err := s.ContributeToSavingsGoal(context.Background(), "21", dec("1500"))
	require.NoError(t, err)
	assert.True(t, dec("1500").Equal(goal.CurrentAmount))
	assert.Empty(t, remote.CallsTo("UpdateWallet"))
	assert.True(t, dec("50").Equal(walletBalance(t, s, "1")))
}

func TestContribute_Rejections(t *testing.T) {
	s, remote, _ := newTestSession(t, savingsFixture())

	_, err := s.ContributeToSavingsGoal(context.Background(), "21", dec("0"))
	assert.ErrorIs(t, err, validation.ErrAmountNotPositive)

	_, err = s.ContributeToSavingsGoal(context.Background(), "99", dec("1"))
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.Empty(t, remote.Calls())
}

func TestContribute_ConcurrentContributionsSerialize(t *testing.T) {
	s, remote, _ := newTestSession(t, savingsFixture())
	remote.UpdateSavingsGoalFn = func(_ context.Context, g model.SavingsGoal) (*model.SavingsGoal, error) {
		time.Sleep(10 * time.Millisecond)
		return &g, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ContributeToSavingsGoal(context.Background(), "21", dec("10"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	goal, err := s.SavingsGoal("21")
	require.NoError(t, err)
	assert.True(t, dec("20").Equal(goal.CurrentAmount))

	calls := remote.CallsTo("UpdateSavingsGoal")
	require.Len(t, calls, 2)
	assert.True(t, dec("10").Equal(calls[0].Args[0].(model.SavingsGoal).CurrentAmount))
	assert.True(t, dec("20").Equal(calls[1].Args[0].(model.SavingsGoal).CurrentAmount))
}

func TestAddSavingsGoal(t *testing.T) {
	s, remote, _ := newTestSession(t, savingsFixture())
	draft := model.SavingsGoalDraft{
		Name:        "Car",
		Description: "Used car",
		GoalAmount:  dec("5000"),
		TargetDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local),
	}

	goal, err := s.AddSavingsGoal(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, model.SavingsIndividual, goal.SavingsType)
	assert.Len(t, s.SavingsGoals(), 3)

	today := draft
	today.TargetDate = model.DateOnly(testNow)
	_, err = s.AddSavingsGoal(context.Background(), today)
	assert.ErrorIs(t, err, validation.ErrTargetDateNotFuture)

	linked := draft
	linked.SavingsType = model.SavingsLinked
	linked.LinkedWalletID = "99"
	_, err = s.AddSavingsGoal(context.Background(), linked)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.Len(t, remote.CallsTo("CreateSavingsGoal"), 1)
}

func TestUpdateSavingsGoal(t *testing.T) {
	fx := savingsFixture()
	fx.goals[1].TargetDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	s, remote, _ := newTestSession(t, fx)

	name := "Beach holiday"
	goal, err := s.UpdateSavingsGoal(context.Background(), "21", model.SavingsGoalUpdate{Name: &name})
	require.NoError(t, err, "past target date is kept when not changed")
	assert.Equal(t, "Beach holiday", goal.Name)

	sent := remote.CallsTo("UpdateSavingsGoal")[0].Args[0].(model.SavingsGoal)
	assert.Equal(t, "Beach", sent.Description)
	assert.True(t, dec("1000").Equal(sent.GoalAmount))

	past := time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local)
	_, err = s.UpdateSavingsGoal(context.Background(), "21", model.SavingsGoalUpdate{TargetDate: &past})
	assert.ErrorIs(t, err, validation.ErrTargetDateNotFuture)

	future := time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local)
	goal, err = s.UpdateSavingsGoal(context.Background(), "21", model.SavingsGoalUpdate{TargetDate: &future})
	require.NoError(t, err)
	assert.Equal(t, future, goal.TargetDate)

	_, err = s.UpdateSavingsGoal(context.Background(), "404", model.SavingsGoalUpdate{Name: &name})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteSavingsGoal(t *testing.T) {
	s, _, _ := newTestSession(t, savingsFixture())

	require.NoError(t, s.DeleteSavingsGoal(context.Background(), "21"))
	assert.Len(t, s.SavingsGoals(), 1)
	assert.ErrorIs(t, s.DeleteSavingsGoal(context.Background(), "21"), common.ErrNotFound)
}
