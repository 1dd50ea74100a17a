package service

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/hexxt-git/knowdown/internal/constants"
	"github.com/hexxt-git/knowdown/internal/dedupe"
	"github.com/hexxt-git/knowdown/internal/engine"
	"github.com/hexxt-git/knowdown/internal/game"
	"github.com/hexxt-git/knowdown/internal/logging"
	"github.com/hexxt-git/knowdown/internal/storage"
)

var (
	ErrBattleNotFound = errors.New("battle not found")
	ErrNotYourBattle  = errors.New("battle belongs to another player")
)

// BattleManager owns the live battle sessions. Battles are in-memory
// only; a restart forfeits them all, which matches how much a casual
// match is worth.
type BattleManager struct {
	repo     storage.Repository
	reporter engine.Reporter
	cfg      engine.Config
	idleTTL  time.Duration

	mu        sync.Mutex
	sessions  map[string]*engine.Session
	bySubject map[string]string
	// seeds hands out one seed per match under mu; every MakeMatch gets
	// its own generator so concurrent starts never share a rand source.
	seeds *rand.Rand
}

// NewBattleManager wires the manager. cfg tunes every session it
// spawns; idleTTL bounds how long an untouched battle survives before
// the sweeper forfeits it.
func NewBattleManager(repo storage.Repository, reporter engine.Reporter, cfg engine.Config, idleTTL time.Duration) *BattleManager {
	seed := time.Now().UnixNano()
	if cfg.Rand != nil {
		seed = cfg.Rand.Int63()
	}
	return &BattleManager{
		repo:      repo,
		reporter:  reporter,
		cfg:       cfg,
		idleTTL:   idleTTL,
		seeds:     rand.New(rand.NewSource(seed)),
		sessions:  make(map[string]*engine.Session),
		bySubject: make(map[string]string),
	}
}

// Start matches the player and spawns a battle session. A player with a
// running battle gets that battle back instead of a second one, and
// concurrent starts for the same subject collapse to a single
// matchmaking run.
func (m *BattleManager) Start(playerSubject string) (*game.Battle, error) {
	v, err, _ := dedupe.BattleGroup.Do(playerSubject, func() (interface{}, error) {
		m.mu.Lock()
		if id, ok := m.bySubject[playerSubject]; ok {
			if sess, live := m.sessions[id]; live {
				snap := sess.Snapshot()
				if !snap.Finished() {
					m.mu.Unlock()
					return snap, nil
				}
				// Terminal session still lingering; drop it and rematch.
				delete(m.sessions, id)
				delete(m.bySubject, playerSubject)
				m.mu.Unlock()
				sess.Stop()
				m.mu.Lock()
			}
		}
		matchSeed := m.seeds.Int63()
		sessionSeed := m.seeds.Int63()
		m.mu.Unlock()

		battle, err := MakeMatch(m.repo, playerSubject, rand.New(rand.NewSource(matchSeed)))
		if err != nil {
			return nil, err
		}
		// Every session owns a private generator; the shared config only
		// contributes the timing tunables.
		cfg := m.cfg
		cfg.Rand = rand.New(rand.NewSource(sessionSeed))
		sess := engine.NewSession(playerSubject, battle, m.reporter, cfg)

		m.mu.Lock()
		m.sessions[sess.ID] = sess
		m.bySubject[playerSubject] = sess.ID
		m.mu.Unlock()

		logging.Info("battle started", logging.Fields{
			constants.LogFieldBattleID: sess.ID,
			constants.LogFieldSubject:  playerSubject,
		})
		return sess.Snapshot(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*game.Battle), nil
}

// Get returns the session for a battle id, enforcing ownership.
func (m *BattleManager) Get(battleID, playerSubject string) (*engine.Session, error) {
	m.mu.Lock()
	sess, ok := m.sessions[battleID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrBattleNotFound
	}
	if sess.PlayerSubject != playerSubject {
		return nil, ErrNotYourBattle
	}
	return sess, nil
}

// End stops a battle session and drops it from the registry. Finished
// battles report their result through the session before removal.
func (m *BattleManager) End(battleID, playerSubject string) error {
	sess, err := m.Get(battleID, playerSubject)
	if err != nil {
		return err
	}
	m.remove(sess)
	return nil
}

func (m *BattleManager) remove(sess *engine.Session) {
	m.mu.Lock()
	delete(m.sessions, sess.ID)
	if m.bySubject[sess.PlayerSubject] == sess.ID {
		delete(m.bySubject, sess.PlayerSubject)
	}
	m.mu.Unlock()
	sess.Stop()
}

// ActiveCount reports how many sessions are live.
func (m *BattleManager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// SweepIdle forfeits battles untouched for longer than the idle TTL and
// clears finished sessions whose result has already been reported. It
// returns how many sessions were removed.
func (m *BattleManager) SweepIdle(now time.Time) int {
	m.mu.Lock()
	stale := make([]*engine.Session, 0)
	for _, sess := range m.sessions {
		if sess.Snapshot().Finished() || now.Sub(sess.LastAction()) >= m.idleTTL {
			stale = append(stale, sess)
		}
	}
	m.mu.Unlock()

	for _, sess := range stale {
		if !sess.Snapshot().Finished() {
			sess.Forfeit()
			logging.Warn("idle battle forfeited", logging.Fields{
				constants.LogFieldBattleID: sess.ID,
				constants.LogFieldSubject:  sess.PlayerSubject,
			})
		}
		m.remove(sess)
	}
	return len(stale)
}

// StartIdleSweeper runs SweepIdle on a fixed interval until the stop
// channel closes.
func (m *BattleManager) StartIdleSweeper(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.SweepIdle(time.Now())
			}
		}
	}()
}
