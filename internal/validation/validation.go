// Package validation holds the pure predicates that guard every ledger mutation.
// A nil error means the input is acceptable; otherwise the returned *Error
// carries the reason to show the user and wraps one of the sentinels below.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
)

// Validation failures.
var (
	ErrAmountNotPositive    = errors.New("amount must be greater than 0")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrCategoryRequired     = errors.New("category is required")
	ErrDescriptionRequired  = errors.New("description is required")
	ErrDateRequired         = errors.New("date is required")
	ErrSelfTransfer         = errors.New("cannot transfer to self")
	ErrNameRequired         = errors.New("name is required")
	ErrTargetDateRequired   = errors.New("target date is required")
	ErrTargetDateNotFuture  = errors.New("target date must be in the future")
	ErrLinkedWalletRequired = errors.New("linked savings require a linked wallet")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrPasswordRequired     = errors.New("password is required")
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Error is a failed validation.
type Error struct {
	Err    error
	Reason string
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err came from this package.
func IsValidationError(err error) bool {
	var vErr *Error
	return errors.As(err, &vErr)
}

func fail(err error, reason string) error {
	return &Error{Err: err, Reason: reason}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateAmount succeeds iff amount > 0.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fail(ErrAmountNotPositive, "Amount must be greater than 0")
	}
	return nil
}

// ValidateTransaction checks a new transaction against the wallet it will be recorded on.
// Checks run in a fixed order so the first failing rule is the one reported:
// amount, balance, category, description, date.
func ValidateTransaction(txn model.TransactionDraft, wallet model.Wallet) error {
	if err := ValidateAmount(txn.Amount); err != nil {
		return err
	}

	if txn.Type == model.TransactionExpense && txn.Amount.GreaterThan(wallet.Balance) {
		return fail(ErrInsufficientBalance, fmt.Sprintf(
			"Insufficient balance. Current balance: %s, Required: %s",
			wallet.Balance.StringFixed(2), txn.Amount.StringFixed(2)))
	}

	if blank(txn.Category) {
		return fail(ErrCategoryRequired, "Category is required")
	}

	if blank(txn.Description) {
		return fail(ErrDescriptionRequired, "Description is required")
	}

	if txn.Date.IsZero() {
		return fail(ErrDateRequired, "Date is required")
	}

	return nil
}

// ValidateWalletTransfer checks a transfer of amount from one wallet to another.
func ValidateWalletTransfer(from, to model.Wallet, amount decimal.Decimal, description string) error {
	if from.ID == to.ID {
		return fail(ErrSelfTransfer, "Source and destination wallets cannot be the same")
	}

	if err := ValidateAmount(amount); err != nil {
		return err
	}

	if from.Balance.LessThan(amount) {
		return fail(ErrInsufficientBalance, "Insufficient balance in source wallet")
	}

	if blank(description) {
		return fail(ErrDescriptionRequired, "Description is required")
	}

	return nil
}

// ValidateSavingsGoal checks a goal definition. The target date must fall strictly
// after the calendar day of now; a goal due today is rejected.
func ValidateSavingsGoal(goal model.SavingsGoalDraft, now time.Time) error {
	return validateSavingsGoal(goal, now, true)
}

// ValidateSavingsGoalUpdate checks a goal after a partial update has been merged.
// The target date is only required to be in the future when the update changed it,
// so goals whose date has passed can still be edited.
func ValidateSavingsGoalUpdate(goal model.SavingsGoalDraft, now time.Time, targetChanged bool) error {
	return validateSavingsGoal(goal, now, targetChanged)
}

func validateSavingsGoal(goal model.SavingsGoalDraft, now time.Time, checkFuture bool) error {
	if blank(goal.Name) {
		return fail(ErrNameRequired, "Goal name is required")
	}

	if blank(goal.Description) {
		return fail(ErrDescriptionRequired, "Description is required")
	}

	if !goal.GoalAmount.IsPositive() {
		return fail(ErrAmountNotPositive, "Goal amount must be greater than 0")
	}

	if goal.TargetDate.IsZero() {
		return fail(ErrTargetDateRequired, "Target date is required")
	}

	if checkFuture {
		if err := ValidateTargetDate(goal.TargetDate, now); err != nil {
			return err
		}
	}

	if goal.SavingsType == model.SavingsLinked && goal.LinkedWalletID.IsZero() {
		return fail(ErrLinkedWalletRequired, "Please select a wallet to link for linked savings")
	}

	return nil
}

// ValidateContribution checks a contribution to a savings goal. wallet is the
// linked wallet that funds the contribution, or nil for individual goals.
func ValidateContribution(amount decimal.Decimal, wallet *model.Wallet) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}

	if wallet != nil && wallet.Balance.LessThan(amount) {
		return fail(ErrInsufficientBalance, fmt.Sprintf(
			"Insufficient balance in linked wallet. Available: %s", wallet.Balance.StringFixed(2)))
	}

	return nil
}

// ValidateWallet checks a wallet definition.
func ValidateWallet(draft model.WalletDraft) error {
	if blank(draft.Name) {
		return fail(ErrNameRequired, "Wallet name is required")
	}
	return nil
}

// ValidateTargetDate succeeds iff target is on a later calendar day than now.
func ValidateTargetDate(target, now time.Time) error {
	today := model.DateOnly(now)
	day := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, today.Location())
	if !day.After(today) {
		return fail(ErrTargetDateNotFuture, "Target date must be in the future")
	}
	return nil
}

// ValidateEmail performs a shape check on an email address.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fail(ErrInvalidEmail, fmt.Sprintf("Invalid email address: %q", email))
	}
	return nil
}

// ValidateCredentials checks a login attempt before it is sent anywhere.
func ValidateCredentials(email, password string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return fail(ErrPasswordRequired, "Password is required")
	}
	return nil
}

// ValidateRegistration checks a new account.
func ValidateRegistration(reg model.Registration) error {
	if blank(reg.Name) {
		return fail(ErrNameRequired, "Name is required")
	}
	if err := ValidateEmail(reg.Email); err != nil {
		return err
	}
	return ValidatePassword(reg.Password)
}

// ValidatePassword enforces MinPasswordLength.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fail(ErrPasswordTooShort,
			fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	return nil
}
