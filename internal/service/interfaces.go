// Package service defines the contracts between the ledger and its collaborators.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// AuthService authenticates and registers users.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.Identity, error)
	Register(ctx context.Context, registration model.Registration) error
}

// ProfileService reads and writes the user profile.
type ProfileService interface {
	FetchUserProfile(ctx context.Context, userID model.ID) (*model.UserProfile, error)
	UpdateUserProfile(ctx context.Context, userID model.ID, update model.ProfileUpdate) error
}

// WalletService persists wallets. UpdateWallet takes the full wallet record.
type WalletService interface {
	FetchWallets(ctx context.Context, ownerID model.ID) ([]model.Wallet, error)
	CreateWallet(ctx context.Context, ownerID model.ID, draft model.WalletDraft) (*model.Wallet, error)
	UpdateWallet(ctx context.Context, wallet model.Wallet) (*model.Wallet, error)
	DeleteWallet(ctx context.Context, id model.ID) error
}

// TransactionService persists transactions.
type TransactionService interface {
	FetchTransactions(ctx context.Context, ownerID model.ID) ([]model.Transaction, error)
	CreateTransaction(ctx context.Context, ownerID model.ID, txn model.NewTransaction) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, id model.ID) error
}

// SavingsService persists savings goals. UpdateSavingsGoal takes the full goal record.
type SavingsService interface {
	FetchSavingsGoals(ctx context.Context, ownerID model.ID) ([]model.SavingsGoal, error)
	CreateSavingsGoal(ctx context.Context, ownerID model.ID, draft model.SavingsGoalDraft) (*model.SavingsGoal, error)
	UpdateSavingsGoal(ctx context.Context, goal model.SavingsGoal) (*model.SavingsGoal, error)
	DeleteSavingsGoal(ctx context.Context, id model.ID) error
}

// TransferService moves balance between two wallets in one combined call.
// It does not return the derived transaction records.
type TransferService interface {
	Transfer(ctx context.Context, ownerID model.ID, req model.TransferRequest) error
}

// CategoryService serves the read-only category reference data.
type CategoryService interface {
	FetchCategories(ctx context.Context) ([]model.Category, error)
}

// Remote is the full remote persistence contract the ledger depends on.
// Every failure is reported as an error; a nil error always comes with a result.
type Remote interface {
	AuthService
	ProfileService
	WalletService
	TransactionService
	SavingsService
	TransferService
	CategoryService
}

// SessionStore durably remembers the authenticated identity between runs.
// CurrentIdentity returns nil, nil when nobody is logged in.
type SessionStore interface {
	CurrentIdentity() (*model.Identity, error)
	SetIdentity(identity model.Identity) error
	ClearIdentity() error
}

// RetryOptions configures retry behavior for idempotent remote reads.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
