package ledger

import (
	"slices"
	"sync"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// entityLocks serializes operations that read and then write the same entities.
// Keys are always acquired in sorted order so that overlapping operations cannot deadlock.
type entityLocks struct {
	locks map[string]*entityLock
	mu    sync.Mutex
}

type entityLock struct {
	mu   sync.Mutex
	refs int
}

func newEntityLocks() *entityLocks {
	return &entityLocks{locks: make(map[string]*entityLock)}
}

func walletKey(id model.ID) string      { return "wallet/" + id.String() }
func transactionKey(id model.ID) string { return "transaction/" + id.String() }
func goalKey(id model.ID) string        { return "goal/" + id.String() }

const profileKey = "profile"

func normalizeKeys(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)
	return slices.Compact(out)
}

// lock acquires every key and returns the function that releases them.
func (l *entityLocks) lock(keys ...string) func() {
	keys = normalizeKeys(keys)
	held := make([]*entityLock, 0, len(keys))

	for _, key := range keys {
		l.mu.Lock()
		e, ok := l.locks[key]
		if !ok {
			e = &entityLock{}
			l.locks[key] = e
		}
		e.refs++
		l.mu.Unlock()

		e.mu.Lock()
		held = append(held, e)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()

			l.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(l.locks, keys[i])
			}
			l.mu.Unlock()
		}
	}
}

// lockEntities locks the keys computed from the current state. Because the
// keys can depend on state that changes while waiting (a goal's linked wallet,
// a transaction's wallet), they are recomputed once held and the acquisition
// is retried until they are stable.
func (s *Session) lockEntities(keys func() []string) func() {
	for {
		want := normalizeKeys(keys())
		unlock := s.locks.lock(want...)
		if slices.Equal(want, normalizeKeys(keys())) {
			return unlock
		}
		unlock()
	}
}
