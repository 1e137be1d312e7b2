package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/validation"
	"golang.org/x/sync/errgroup"
)

// Register creates an account. It does not log the new user in.
func (s *Session) Register(ctx context.Context, reg model.Registration) (err error) {
	const op = "register"
	defer s.finish(op, &err)

	s.phase(op, PhaseValidating, nil)
	if err := validation.ValidateRegistration(reg); err != nil {
		return err
	}

	s.phase(op, PhaseRemote, nil)
	if err := s.remote.Register(remoteContext(ctx), reg); err != nil {
		return wrap("register", err)
	}

	s.logger.Info("Registered user", "email", reg.Email)
	return nil
}

// Login authenticates against the remote, remembers the identity in the
// session store and loads the user's ledger.
func (s *Session) Login(ctx context.Context, email, password string) (err error) {
	const op = "login"
	defer s.finish(op, &err)

	s.phase(op, PhaseValidating, nil)
	if err := validation.ValidateCredentials(email, password); err != nil {
		return err
	}

	s.phase(op, PhaseRemote, nil)
	identity, err := s.remote.Login(remoteContext(ctx), email, password)
	if err != nil {
		return wrap("log in", err)
	}
	if identity.Email == "" {
		identity.Email = email
	}

	if err := s.store.SetIdentity(*identity); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	s.phase(op, PhaseApplying, nil)
	return s.load(ctx, *identity)
}

// Restore rehydrates the session from the stored identity. Without a stored
// identity the session stays unauthenticated and Restore returns nil. If any
// part of the ledger cannot be fetched, the stored identity is cleared and the
// error returned.
func (s *Session) Restore(ctx context.Context) (err error) {
	const op = "restore"
	defer s.finish(op, &err)

	identity, err := s.store.CurrentIdentity()
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if identity == nil || identity.UserID.IsZero() {
		s.reset()
		return nil
	}

	s.phase(op, PhaseRemote, nil)
	return s.load(ctx, *identity)
}

// load fetches the complete ledger for identity and installs it as the new session state.
func (s *Session) load(ctx context.Context, identity model.Identity) error {
	epoch := s.reset()

	var (
		profile      *model.UserProfile
		wallets      []model.Wallet
		transactions []model.Transaction
		goals        []model.SavingsGoal
		categories   []model.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.remote.FetchUserProfile(gctx, identity.UserID)
		return wrapFetch("profile", err)
	})
	g.Go(func() error {
		var err error
		wallets, err = s.remote.FetchWallets(gctx, identity.UserID)
		return wrapFetch("wallets", err)
	})
	g.Go(func() error {
		var err error
		transactions, err = s.remote.FetchTransactions(gctx, identity.UserID)
		return wrapFetch("transactions", err)
	})
	g.Go(func() error {
		var err error
		goals, err = s.remote.FetchSavingsGoals(gctx, identity.UserID)
		return wrapFetch("savings goals", err)
	})
	g.Go(func() error {
		var err error
		categories, err = s.remote.FetchCategories(gctx)
		return wrapFetch("categories", err)
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("Session restore failed, clearing stored identity",
			"user_id", identity.UserID,
			"error", err)
		if clearErr := s.store.ClearIdentity(); clearErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to clear session: %w", clearErr))
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		return ErrSessionEnded
	}

	s.identity = &identity
	if profile != nil {
		s.profile = *profile
	}
	s.wallets = pointers(wallets)
	s.transactions = pointers(transactions)
	s.goals = pointers(goals)
	s.categories = categories

	s.logger.Info("Session loaded",
		"user_id", identity.UserID,
		"wallets", len(wallets),
		"transactions", len(transactions),
		"savings_goals", len(goals))
	return nil
}

func wrapFetch(what string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", what, err)
	}
	return nil
}

func pointers[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		item := items[i]
		out[i] = &item
	}
	return out
}

// reset drops the in-memory ledger and starts a new epoch, so that operations
// still waiting on the remote cannot apply their results afterwards.
func (s *Session) reset() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.identity = nil
	s.profile = model.UserProfile{}
	s.wallets = nil
	s.transactions = nil
	s.goals = nil
	s.categories = nil
	return s.epoch
}

// Logout clears the in-memory ledger and the stored identity. No remote call is made.
func (s *Session) Logout() error {
	s.reset()
	if err := s.store.ClearIdentity(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.logger.Info("Logged out")
	return nil
}

// UpdateUserProfile sends a partial profile update and merges it locally.
func (s *Session) UpdateUserProfile(ctx context.Context, update model.ProfileUpdate) (_ *model.UserProfile, err error) {
	const op = "update_user_profile"
	defer s.finish(op, &err)

	identity, epoch, err := s.authenticated()
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(profileKey)
	defer unlock()

	s.phase(op, PhaseValidating, nil)
	if update.Email != nil {
		if err := validation.ValidateEmail(*update.Email); err != nil {
			return nil, err
		}
	}

	s.phase(op, PhaseRemote, nil)
	if err := s.remote.UpdateUserProfile(remoteContext(ctx), identity.UserID, update); err != nil {
		return nil, wrap("update profile", err)
	}

	var profile model.UserProfile
	s.phase(op, PhaseApplying, nil)
	if err := s.commit(epoch, func() {
		s.profile = update.Apply(s.profile)
		profile = s.profile
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Updated profile", "user_id", identity.UserID)
	return &profile, nil
}
