package ledger

import (
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/transform"
)

func values[T any](items []*T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = *item
	}
	return out
}

// IsAuthenticated reports whether a user is logged in.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// UserID returns the logged-in user's id, or the zero ID.
func (s *Session) UserID() model.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.UserID
}

// Identity returns the logged-in identity, or nil.
func (s *Session) Identity() *model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	identity := *s.identity
	return &identity
}

// Profile returns the user profile.
func (s *Session) Profile() model.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Wallets returns a copy of the user's wallets.
func (s *Session) Wallets() []model.Wallet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.wallets)
}

// Transactions returns a copy of the transaction history, newest additions first.
func (s *Session) Transactions() []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.transactions)
}

// SavingsGoals returns a copy of the user's savings goals.
func (s *Session) SavingsGoals() []model.SavingsGoal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.goals)
}

// Categories returns the known transaction categories.
func (s *Session) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Wallet returns the wallet with the given id.
func (s *Session) Wallet(id model.ID) (model.Wallet, error) {
	return s.lookupWallet(id)
}

// SavingsGoal returns the savings goal with the given id.
func (s *Session) SavingsGoal(id model.ID) (model.SavingsGoal, error) {
	return s.lookupSavingsGoal(id)
}

// Transaction returns the transaction with the given id.
func (s *Session) Transaction(id model.ID) (model.Transaction, error) {
	return s.lookupTransaction(id)
}

// Summary aggregates the ledger over the last months calendar months.
func (s *Session) Summary(months int) (transform.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return transform.Summary{}, common.ErrNotAuthenticated
	}
	return transform.Summarize(s.wallets, s.transactions, s.goals, months, s.now()), nil
}
