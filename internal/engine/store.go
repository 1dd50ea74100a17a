package engine

import (
	"sync"

	"github.com/hexxt-git/knowdown/internal/game"
)

// Store holds the canonical battle snapshot for one running match. Every
// mutation goes through Update, which derives the next snapshot from the
// latest one at commit time, so interleaved timers and HTTP handlers never
// clobber each other with stale state.
type Store struct {
	mu     sync.Mutex
	battle *game.Battle
}

func NewStore(b *game.Battle) *Store {
	return &Store{battle: b.Clone()}
}

// Snapshot returns a deep copy of the current battle state.
func (s *Store) Snapshot() *game.Battle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battle.Clone()
}

// Update applies fn to a clone of the latest snapshot and commits it. The
// returned battle is a copy of the committed state. If fn returns an error
// the snapshot is left untouched.
func (s *Store) Update(fn func(*game.Battle) error) (*game.Battle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.battle.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.battle = next
	return next.Clone(), nil
}
