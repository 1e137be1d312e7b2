// Package ledger implements the session that keeps wallets, transactions and
// savings goals consistent with each other and with the remote store.
//
// Every mutating operation follows the same sequence: validate against the
// current in-memory state, issue the remote call, and only after the remote
// accepted the change apply the equivalent transform locally. A failure at any
// step leaves the in-memory state untouched.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
)

// ErrSessionEnded is returned when the session was logged out or replaced while
// an operation was waiting on the remote. Every remote step of the operation has
// still been carried out, but none of it is reflected locally; the next Restore
// picks it up.
var ErrSessionEnded = errors.New("session ended before the operation completed")

// Phase is the stage an operation is in.
type Phase string

// Operation phases.
const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseRemote     Phase = "remote"
	PhaseApplying   Phase = "applying"
	PhaseFailed     Phase = "failed"
)

// Observer is notified as operations move through their phases.
// err is only set for PhaseFailed.
type Observer interface {
	OnPhase(operation string, phase Phase, err error)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(operation string, phase Phase, err error)

// OnPhase calls f.
func (f ObserverFunc) OnPhase(operation string, phase Phase, err error) {
	f(operation, phase, err)
}

// Option configures a Session.
type Option func(*Session)

// WithObserver registers an observer for operation phases.
func WithObserver(observer Observer) Option {
	return func(s *Session) {
		s.observer = observer
	}
}

// WithClock overrides the clock used for transfer dates and goal validation.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithLogger sets the logger used for operation tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session owns the in-memory ledger of one authenticated user.
type Session struct {
	remote   service.Remote
	store    service.SessionStore
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
	locks    *entityLocks

	identity     *model.Identity
	profile      model.UserProfile
	wallets      []*model.Wallet
	transactions []*model.Transaction
	goals        []*model.SavingsGoal
	categories   []model.Category

	mu    sync.RWMutex
	epoch uint64
}

// New creates an unauthenticated session. Call Restore or Login before mutating.
func New(remote service.Remote, store service.SessionStore, opts ...Option) *Session {
	s := &Session{
		remote: remote,
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
		locks:  newEntityLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) phase(operation string, phase Phase, err error) {
	if err != nil {
		s.logger.Debug("Ledger operation failed", "operation", operation, "phase", phase, "error", err)
	} else {
		s.logger.Debug("Ledger operation phase", "operation", operation, "phase", phase)
	}
	if s.observer != nil {
		s.observer.OnPhase(operation, phase, err)
	}
}

// finish reports the terminal phases of an operation. Use with defer and a named error.
func (s *Session) finish(operation string, errp *error) {
	if *errp != nil {
		s.phase(operation, PhaseFailed, *errp)
	}
	s.phase(operation, PhaseIdle, nil)
}

// authenticated returns the current identity and the epoch it belongs to.
func (s *Session) authenticated() (model.Identity, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return model.Identity{}, 0, common.ErrNotAuthenticated
	}
	return *s.identity, s.epoch, nil
}

// commit applies fn to the collections if the session is still the one the
// operation started in.
func (s *Session) commit(epoch uint64, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch || s.identity == nil {
		return ErrSessionEnded
	}
	fn()
	return nil
}

// remoteContext detaches the remote call from caller cancellation so that a
// change the remote accepts is always applied locally.
func remoteContext(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func (s *Session) lookupWallet(id model.ID) (model.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.wallets {
		if w.ID == id {
			return *w, nil
		}
	}
	return model.Wallet{}, common.NotFoundError("wallet", id)
}

func (s *Session) lookupTransaction(id model.ID) (model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.transactions {
		if t.ID == id {
			return *t, nil
		}
	}
	return model.Transaction{}, common.NotFoundError("transaction", id)
}

func (s *Session) lookupSavingsGoal(id model.ID) (model.SavingsGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.goals {
		if g.ID == id {
			return *g, nil
		}
	}
	return model.SavingsGoal{}, common.NotFoundError("savings goal", id)
}

func wrap(action string, err error) error {
	return fmt.Errorf("failed to %s: %w", action, err)
}
