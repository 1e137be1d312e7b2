package validation

import (
	"errors"
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

func validDraft() model.TransactionDraft {
	return model.TransactionDraft{
		Date:        time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local),
		WalletID:    "1",
		Category:    "Food",
		Description: "Lunch",
		Type:        model.TransactionExpense,
		Amount:      dec("50"),
	}
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(dec("0.01")))
	assert.ErrorIs(t, ValidateAmount(decimal.Zero), ErrAmountNotPositive)
	assert.ErrorIs(t, ValidateAmount(dec("-5")), ErrAmountNotPositive)
}

func TestValidateTransaction(t *testing.T) {
	wallet := model.Wallet{ID: "1", Name: "Cash", Balance: dec("100")}

	tests := []struct {
		modify  func(*model.TransactionDraft)
		wantErr error
		name    string
	}{
		{
			name:   "valid expense",
			modify: func(*model.TransactionDraft) {},
		},
		{
			name:   "expense equal to balance",
			modify: func(d *model.TransactionDraft) { d.Amount = dec("100") },
		},
		{
			name:    "expense above balance",
			modify:  func(d *model.TransactionDraft) { d.Amount = dec("100.01") },
			wantErr: ErrInsufficientBalance,
		},
		{
			name: "income above balance",
			modify: func(d *model.TransactionDraft) {
				d.Type = model.TransactionIncome
				d.Amount = dec("5000")
			},
		},
		{
			name:    "zero amount",
			modify:  func(d *model.TransactionDraft) { d.Amount = decimal.Zero },
			wantErr: ErrAmountNotPositive,
		},
		{
			name:    "negative income",
			modify:  func(d *model.TransactionDraft) { d.Type = model.TransactionIncome; d.Amount = dec("-1") },
			wantErr: ErrAmountNotPositive,
		},
		{
			name:    "blank category",
			modify:  func(d *model.TransactionDraft) { d.Category = "   " },
			wantErr: ErrCategoryRequired,
		},
		{
			name:    "empty description",
			modify:  func(d *model.TransactionDraft) { d.Description = "" },
			wantErr: ErrDescriptionRequired,
		},
		{
			name:    "missing date",
			modify:  func(d *model.TransactionDraft) { d.Date = time.Time{} },
			wantErr: ErrDateRequired,
		},
		{
			name: "amount checked before category",
			modify: func(d *model.TransactionDraft) {
				d.Amount = decimal.Zero
				d.Category = ""
			},
			wantErr: ErrAmountNotPositive,
		},
		{
			name: "balance checked before description",
			modify: func(d *model.TransactionDraft) {
				d.Amount = dec("500")
				d.Description = ""
			},
			wantErr: ErrInsufficientBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft()
			tt.modify(&draft)

			err := ValidateTransaction(draft, wallet)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestValidateTransaction_InsufficientBalanceReason(t *testing.T) {
	wallet := model.Wallet{ID: "1", Balance: dec("50")}
	draft := validDraft()
	draft.Amount = dec("80")

	err := ValidateTransaction(draft, wallet)
	require.Error(t, err)
	assert.Equal(t, "Insufficient balance. Current balance: 50.00, Required: 80.00", err.Error())
}

func TestValidateWalletTransfer(t *testing.T) {
	a := model.Wallet{ID: "1", Name: "A", Balance: dec("100")}
	b := model.Wallet{ID: "2", Name: "B", Balance: dec("0")}

	tests := []struct {
		wantErr     error
		from        model.Wallet
		to          model.Wallet
		amount      decimal.Decimal
		name        string
		description string
	}{
		{name: "valid", from: a, to: b, amount: dec("40"), description: "rent"},
		{name: "whole balance", from: a, to: b, amount: dec("100"), description: "rent"},
		{name: "self transfer", from: a, to: a, amount: dec("1"), description: "x", wantErr: ErrSelfTransfer},
		{name: "self transfer with bad amount", from: a, to: a, amount: dec("-1"), description: "", wantErr: ErrSelfTransfer},
		{name: "zero amount", from: a, to: b, amount: decimal.Zero, description: "x", wantErr: ErrAmountNotPositive},
		{name: "insufficient", from: b, to: a, amount: dec("1"), description: "x", wantErr: ErrInsufficientBalance},
		{name: "blank description", from: a, to: b, amount: dec("1"), description: " ", wantErr: ErrDescriptionRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWalletTransfer(tt.from, tt.to, tt.amount, tt.description)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateSavingsGoal(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 30, 0, 0, time.Local)
	base := model.SavingsGoalDraft{
		Name:        "Bike",
		Description: "New bike",
		GoalAmount:  dec("1000"),
		TargetDate:  time.Date(2025, 12, 1, 0, 0, 0, 0, time.Local),
		SavingsType: model.SavingsIndividual,
	}

	tests := []struct {
		modify  func(*model.SavingsGoalDraft)
		wantErr error
		name    string
	}{
		{name: "valid", modify: func(*model.SavingsGoalDraft) {}},
		{
			name:   "tomorrow",
			modify: func(g *model.SavingsGoalDraft) { g.TargetDate = time.Date(2025, 6, 11, 0, 0, 0, 0, time.Local) },
		},
		{
			name:    "today is not future",
			modify:  func(g *model.SavingsGoalDraft) { g.TargetDate = time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local) },
			wantErr: ErrTargetDateNotFuture,
		},
		{
			name:    "past",
			modify:  func(g *model.SavingsGoalDraft) { g.TargetDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local) },
			wantErr: ErrTargetDateNotFuture,
		},
		{
			name:    "missing target date",
			modify:  func(g *model.SavingsGoalDraft) { g.TargetDate = time.Time{} },
			wantErr: ErrTargetDateRequired,
		},
		{
			name:    "missing name",
			modify:  func(g *model.SavingsGoalDraft) { g.Name = "" },
			wantErr: ErrNameRequired,
		},
		{
			name:    "missing description",
			modify:  func(g *model.SavingsGoalDraft) { g.Description = "\t" },
			wantErr: ErrDescriptionRequired,
		},
		{
			name:    "zero goal amount",
			modify:  func(g *model.SavingsGoalDraft) { g.GoalAmount = decimal.Zero },
			wantErr: ErrAmountNotPositive,
		},
		{
			name:    "linked without wallet",
			modify:  func(g *model.SavingsGoalDraft) { g.SavingsType = model.SavingsLinked },
			wantErr: ErrLinkedWalletRequired,
		},
		{
			name: "linked with wallet",
			modify: func(g *model.SavingsGoalDraft) {
				g.SavingsType = model.SavingsLinked
				g.LinkedWalletID = "3"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal := base
			tt.modify(&goal)

			err := ValidateSavingsGoal(goal, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateEmailAndPassword(t *testing.T) {
	assert.NoError(t, ValidateEmail("someone@example.com"))
	assert.ErrorIs(t, ValidateEmail("someone"), ErrInvalidEmail)
	assert.ErrorIs(t, ValidateEmail("a@b"), ErrInvalidEmail)

	assert.NoError(t, ValidatePassword("secret"))
	assert.ErrorIs(t, ValidatePassword("short"), ErrPasswordTooShort)
}

func TestIsValidationError(t *testing.T) {
	assert.False(t, IsValidationError(errors.New("boom")))
	assert.False(t, IsValidationError(nil))

	wrapped := errors.Join(errors.New("context"), ValidateAmount(decimal.Zero))
	assert.True(t, IsValidationError(wrapped))
}

func TestValidateSavingsGoalUpdate(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local)
	goal := model.SavingsGoalDraft{
		Name:        "Trip",
		Description: "Summer trip",
		GoalAmount:  dec("500"),
		TargetDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local),
	}

	assert.NoError(t, ValidateSavingsGoalUpdate(goal, now, false))
	assert.ErrorIs(t, ValidateSavingsGoalUpdate(goal, now, true), ErrTargetDateNotFuture)

	goal.GoalAmount = decimal.Zero
	assert.ErrorIs(t, ValidateSavingsGoalUpdate(goal, now, false), ErrAmountNotPositive)
}

func TestValidateContribution(t *testing.T) {
	wallet := &model.Wallet{ID: "1", Balance: dec("50")}

	assert.NoError(t, ValidateContribution(dec("50"), wallet))
	assert.NoError(t, ValidateContribution(dec("1500"), nil))
	assert.ErrorIs(t, ValidateContribution(dec("100"), wallet), ErrInsufficientBalance)
	assert.ErrorIs(t, ValidateContribution(dec("0"), nil), ErrAmountNotPositive)
}

func TestValidateWalletAndAccounts(t *testing.T) {
	assert.NoError(t, ValidateWallet(model.WalletDraft{Name: "Cash"}))
	assert.ErrorIs(t, ValidateWallet(model.WalletDraft{Name: " "}), ErrNameRequired)

	assert.NoError(t, ValidateCredentials("a@b.co", "x"))
	assert.ErrorIs(t, ValidateCredentials("a@b.co", ""), ErrPasswordRequired)
	assert.ErrorIs(t, ValidateCredentials("nope", "secret"), ErrInvalidEmail)

	reg := model.Registration{Name: "Ann", Email: "ann@example.com", Password: "secret1"}
	assert.NoError(t, ValidateRegistration(reg))
	reg.Password = "abc"
	assert.ErrorIs(t, ValidateRegistration(reg), ErrPasswordTooShort)
	reg.Name = ""
	assert.ErrorIs(t, ValidateRegistration(reg), ErrNameRequired)
}
