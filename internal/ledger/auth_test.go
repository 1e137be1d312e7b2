package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/Veraticus/the-books-must-balance/internal/session"
	"github.com/Veraticus/the-books-must-balance/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestore_NoStoredIdentity(t *testing.T) {
	remote := service.NewMockRemote()
	s := New(remote, session.NewMemoryStore())

	require.NoError(t, s.Restore(context.Background()))
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, remote.Calls())
}

func TestRestore_LoadsLedger(t *testing.T) {
	s, _, _ := newTestSession(t, savingsFixture())

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, model.ID("1"), s.UserID())
	assert.Len(t, s.Wallets(), 2)
	assert.Len(t, s.SavingsGoals(), 2)
	assert.Len(t, s.Categories(), 2)
	assert.Equal(t, model.DefaultCurrency, s.Profile().CurrencyCode())
}

func TestRestore_FailureClearsIdentity(t *testing.T) {
	remote := service.NewMockRemote()
	remote.FetchTransactionsFn = func(context.Context, model.ID) ([]model.Transaction, error) {
		return nil, errors.New("timeout")
	}
	store := session.NewMemoryStore()
	require.NoError(t, store.SetIdentity(model.Identity{UserID: "1"}))
	s := New(remote, store)

	err := s.Restore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch transactions")
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Wallets())

	identity, err := store.CurrentIdentity()
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestLogin(t *testing.T) {
	remote := service.NewMockRemote()
	remote.LoginFn = func(_ context.Context, email, password string) (*model.Identity, error) {
		if password != "secret" {
			return nil, &common.RemoteError{Operation: "login", StatusCode: 401, Detail: "Invalid credentials"}
		}
		return &model.Identity{UserID: model.MustParseID(7)}, nil
	}
	store := session.NewMemoryStore()
	s := New(remote, store)

	err := s.Login(context.Background(), "ann@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrRemoteRejected)
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.Login(context.Background(), "ann@example.com", "secret"))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, model.ID("7"), s.UserID())

	identity, err := store.CurrentIdentity()
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "ann@example.com", identity.Email)

	assert.ErrorIs(t, s.Login(context.Background(), "not-an-email", "secret"), validation.ErrInvalidEmail)
}

func TestRegister(t *testing.T) {
	remote := service.NewMockRemote()
	s := New(remote, session.NewMemoryStore())

	err := s.Register(context.Background(), model.Registration{Name: "Ann", Email: "ann@example.com", Password: "123"})
	assert.ErrorIs(t, err, validation.ErrPasswordTooShort)
	assert.Empty(t, remote.Calls())

	require.NoError(t, s.Register(context.Background(), model.Registration{Name: "Ann", Email: "ann@example.com", Password: "123456"}))
	assert.Len(t, remote.CallsTo("Register"), 1)
	assert.False(t, s.IsAuthenticated())
}

func TestLogout(t *testing.T) {
	s, remote, store := newTestSession(t, savingsFixture())

	require.NoError(t, s.Logout())
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Wallets())
	assert.Empty(t, s.SavingsGoals())
	assert.Empty(t, remote.Calls())

	identity, err := store.CurrentIdentity()
	require.NoError(t, err)
	assert.Nil(t, identity)

	_, err = s.Summary(6)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestLogout_DuringRemoteCallDiscardsResult(t *testing.T) {
	s, remote, _ := newTestSession(t, defaultFixture())

	entered := make(chan struct{})
	release := make(chan struct{})
	remote.TransferFn = func(context.Context, model.ID, model.TransferRequest) error {
		close(entered)
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.TransferBalance(context.Background(), "1", "2", dec("10"), "x")
		done <- err
	}()

	<-entered
	require.NoError(t, s.Logout())
	close(release)

	assert.ErrorIs(t, <-done, ErrSessionEnded)
	assert.Empty(t, s.Wallets())
	assert.Empty(t, s.Transactions())
}

func TestLogout_DuringLinkedContributionStillCreditsGoal(t *testing.T) {
	s, remote, _ := newTestSession(t, savingsFixture())

	entered := make(chan struct{})
	release := make(chan struct{})
	remote.UpdateWalletFn = func(_ context.Context, w model.Wallet) (*model.Wallet, error) {
		close(entered)
		<-release
		return &w, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.ContributeToSavingsGoal(context.Background(), "20", dec("30"))
		done <- err
	}()

	<-entered
	require.NoError(t, s.Logout())
	close(release)

	assert.ErrorIs(t, <-done, ErrSessionEnded)

	walletCalls := remote.CallsTo("UpdateWallet")
	require.Len(t, walletCalls, 1)
	assert.True(t, dec("20").Equal(walletCalls[0].Args[0].(model.Wallet).Balance))

	goalCalls := remote.CallsTo("UpdateSavingsGoal")
	require.Len(t, goalCalls, 1, "debited wallet must be matched by a goal credit")
	assert.True(t, dec("30").Equal(goalCalls[0].Args[0].(model.SavingsGoal).CurrentAmount))

	assert.Empty(t, s.Wallets())
	assert.Empty(t, s.SavingsGoals())
}

func TestLogout_DuringLinkedContributionRestoresWalletOnCreditFailure(t *testing.T) {
	s, remote, _ := newTestSession(t, savingsFixture())

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	remote.UpdateWalletFn = func(_ context.Context, w model.Wallet) (*model.Wallet, error) {
		once.Do(func() {
			close(entered)
			<-release
		})
		return &w, nil
	}
	remote.UpdateSavingsGoalFn = func(context.Context, model.SavingsGoal) (*model.SavingsGoal, error) {
		return nil, &common.RemoteError{Operation: "update savings goal", StatusCode: 500}
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.ContributeToSavingsGoal(context.Background(), "20", dec("30"))
		done <- err
	}()

	<-entered
	require.NoError(t, s.Logout())
	close(release)

	assert.ErrorIs(t, <-done, common.ErrRemoteRejected)

	walletCalls := remote.CallsTo("UpdateWallet")
	require.Len(t, walletCalls, 2)
	assert.True(t, dec("20").Equal(walletCalls[0].Args[0].(model.Wallet).Balance))
	assert.True(t, dec("50").Equal(walletCalls[1].Args[0].(model.Wallet).Balance))
}

func TestUpdateUserProfile(t *testing.T) {
	s, remote, _ := newTestSession(t, defaultFixture())
	name := "Ann Smith"

	profile, err := s.UpdateUserProfile(context.Background(), model.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ann Smith", profile.Name)
	assert.Equal(t, "Ann Smith", s.Profile().Name)
	assert.Len(t, remote.CallsTo("UpdateUserProfile"), 1)

	bad := "nope"
	_, err = s.UpdateUserProfile(context.Background(), model.ProfileUpdate{Email: &bad})
	assert.ErrorIs(t, err, validation.ErrInvalidEmail)
}

func TestObserverPhases(t *testing.T) {
	recorder := &phaseRecorder{}
	s, remote, _ := newTestSession(t, defaultFixture(), WithObserver(recorder))
	recorder.phases = nil

	_, err := s.AddTransaction(context.Background(), expenseDraft("1", "10"))
	require.NoError(t, err)
	assert.Equal(t, []Phase{PhaseValidating, PhaseRemote, PhaseApplying, PhaseIdle}, recorder.get())

	recorder.phases = nil
	remote.CreateTransactionFn = func(context.Context, model.ID, model.NewTransaction) (*model.Transaction, error) {
		return nil, errors.New("down")
	}
	_, err = s.AddTransaction(context.Background(), expenseDraft("1", "10"))
	require.Error(t, err)
	assert.Equal(t, []Phase{PhaseValidating, PhaseRemote, PhaseFailed, PhaseIdle}, recorder.get())
}

func TestSummary(t *testing.T) {
	s, _, _ := newTestSession(t, savingsFixture())

	_, err := s.AddTransaction(context.Background(), expenseDraft("1", "20"))
	require.NoError(t, err)

	summary, err := s.Summary(3)
	require.NoError(t, err)
	assert.True(t, dec("30").Equal(summary.TotalBalance))
	assert.True(t, dec("20").Equal(summary.TotalExpense))
	require.Len(t, summary.Months, 3)
	assert.True(t, dec("20").Equal(summary.Months[2].Expense))
}
