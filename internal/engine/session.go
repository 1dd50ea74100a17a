package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/hexxt-git/knowdown/internal/constants"
	"github.com/hexxt-git/knowdown/internal/game"
	"github.com/hexxt-git/knowdown/internal/logging"
)

// Config tunes a battle session. Zero values fall back to the production
// timings from the game package.
type Config struct {
	// AnswerDisplayDelay is how long a player-answered card stays on the
	// table before its consequence is applied, so feedback can be read.
	// Purely presentational; zero is valid and applies immediately.
	AnswerDisplayDelay time.Duration

	PowerTickInterval     time.Duration
	EnemyDecisionInterval time.Duration
	EnemyResolvePoll      time.Duration
	ExpirySweepInterval   time.Duration

	// Rand is the session's random source (enemy answer draws and timing
	// jitter). Inject a seeded source for reproducible tests; nil uses a
	// time-seeded one.
	Rand *rand.Rand

	// Now is the session clock, overridable in tests.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.PowerTickInterval <= 0 {
		c.PowerTickInterval = game.PowerTickInterval
	}
	if c.EnemyDecisionInterval <= 0 {
		c.EnemyDecisionInterval = game.EnemyDecisionInterval
	}
	if c.EnemyResolvePoll <= 0 {
		c.EnemyResolvePoll = game.EnemyResolvePoll
	}
	if c.ExpirySweepInterval <= 0 {
		c.ExpirySweepInterval = game.ExpirySweepInterval
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Session runs one battle: it owns the tick loop, the pending enemy-answer
// deadlines and the terminal report guard. All state mutations flow
// through the session's Store so the periodic actions and the HTTP-driven
// player actions serialize on one canonical snapshot.
type Session struct {
	ID            string
	PlayerSubject string

	store    *Store
	cfg      Config
	reporter Reporter

	cancel context.CancelFunc
	done   chan struct{}

	mu sync.Mutex
	// answerDeadlines maps a card id on the enemy side of the table to the
	// instant the enemy resolves it. At most one entry per card.
	answerDeadlines map[string]time.Time
	// pendingAnswers holds player-answered cards whose removal is delayed
	// for feedback display; the expiry sweep skips them.
	pendingAnswers map[string]struct{}
	pendingTimers  []*time.Timer
	lastAction     time.Time
	reported       bool
	submitStatus   SubmitStatus
}

// NewSession seeds a session with the dealt battle and starts its tick
// loop. The caller must Stop it when the match view goes away.
func NewSession(playerSubject string, battle *game.Battle, reporter Reporter, cfg Config) *Session {
	cfg = cfg.withDefaults()
	s := &Session{
		ID:              battle.ID,
		PlayerSubject:   playerSubject,
		store:           NewStore(battle),
		cfg:             cfg,
		reporter:        reporter,
		done:            make(chan struct{}),
		answerDeadlines: make(map[string]time.Time),
		pendingAnswers:  make(map[string]struct{}),
		lastAction:      cfg.Now(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx)
	return s
}

// Snapshot returns the current battle state.
func (s *Session) Snapshot() *game.Battle {
	return s.store.Snapshot()
}

// Status returns the result submission status for the finished-match
// overlay.
func (s *Session) Status() SubmitStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitStatus
}

// LastAction returns when the player last played or answered a card. The
// idle sweeper uses it to forfeit abandoned battles.
func (s *Session) LastAction() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAction
}

// Stop tears the session down: the tick loop, every pending answer timer
// and all scheduled enemy deadlines.
func (s *Session) Stop() {
	s.cancel()
	s.mu.Lock()
	timers := s.pendingTimers
	s.pendingTimers = nil
	s.answerDeadlines = make(map[string]time.Time)
	s.mu.Unlock()
	for _, t := range timers {
		t.Stop()
	}
	<-s.done
}

// PlayCard moves a card from the player's hand onto the table and
// schedules the enemy's answer to it.
func (s *Session) PlayCard(cardID string) (*game.Battle, error) {
	now := s.cfg.Now()
	next, err := s.store.Update(func(b *game.Battle) error {
		return playPlayerCard(b, cardID, now)
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastAction = now
	card, onTable := findTableCard(next.Table.EnemySide, cardID)
	if onTable {
		if _, exists := s.answerDeadlines[cardID]; !exists {
			s.answerDeadlines[cardID] = now.Add(game.EnemyAnswerTime(card.Level, s.cfg.Rand))
		}
	}
	s.mu.Unlock()

	s.maybeReport(next)
	return next, nil
}

// SubmitAnswer resolves a player answer against a card on the table. The
// feedback is computed and returned immediately; the card removal and any
// damage or capture land after the configured display delay.
func (s *Session) SubmitAnswer(cardID string, answerIndex int) AnswerResult {
	snap := s.store.Snapshot()
	result := resolvePlayerAnswer(snap, cardID, answerIndex)
	if result == notFoundResult {
		return result
	}

	s.mu.Lock()
	s.lastAction = s.cfg.Now()
	if _, already := s.pendingAnswers[cardID]; already {
		s.mu.Unlock()
		return result
	}
	s.pendingAnswers[cardID] = struct{}{}
	s.mu.Unlock()

	apply := func() {
		s.mu.Lock()
		delete(s.pendingAnswers, cardID)
		s.mu.Unlock()
		next, err := s.store.Update(func(b *game.Battle) error {
			applyPlayerAnswerOutcome(b, cardID, result.IsCorrect)
			return nil
		})
		if err == nil {
			s.maybeReport(next)
		}
	}

	if s.cfg.AnswerDisplayDelay <= 0 {
		apply()
		return result
	}
	s.mu.Lock()
	s.pendingTimers = append(s.pendingTimers, time.AfterFunc(s.cfg.AnswerDisplayDelay, apply))
	s.mu.Unlock()
	return result
}

// Forfeit ends the battle as a loss for the player, regardless of current
// health, and reports it.
func (s *Session) Forfeit() {
	next, err := s.store.Update(func(b *game.Battle) error {
		b.Player.Health = 0
		return nil
	})
	if err != nil {
		return
	}
	s.maybeReport(next)
}

// run is the session's single tick loop. One base ticker drives the four
// periodic actions at their own cadences; each action is idempotent and a
// no-op once the battle has finished.
func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.EnemyResolvePoll)
	defer ticker.Stop()

	now := s.cfg.Now()
	lastPower := now
	lastDecision := now
	lastSweep := now

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now = s.cfg.Now()

			if now.Sub(lastPower) >= s.cfg.PowerTickInterval {
				lastPower = now
				s.tickPower()
			}
			if now.Sub(lastDecision) >= s.cfg.EnemyDecisionInterval {
				lastDecision = now
				s.tickEnemyDecision(now)
			}
			s.tickEnemyAnswers(now)
			if now.Sub(lastSweep) >= s.cfg.ExpirySweepInterval {
				lastSweep = now
				s.tickExpirySweep(now)
			}
		}
	}
}

func (s *Session) tickPower() {
	next, err := s.store.Update(func(b *game.Battle) error {
		applyPowerTick(b)
		return nil
	})
	if err == nil {
		s.maybeReport(next)
	}
}

func (s *Session) tickEnemyDecision(now time.Time) {
	_, err := s.store.Update(func(b *game.Battle) error {
		playEnemyCard(b, now)
		return nil
	})
	if err != nil {
		logging.Error("enemy decision tick failed", err, logging.Fields{constants.LogFieldBattleID: s.ID})
	}
}

// tickEnemyAnswers resolves every table card whose enemy answer deadline
// has elapsed. Deadlines for cards no longer on the table (expired or
// already resolved) are dropped without effect.
func (s *Session) tickEnemyAnswers(now time.Time) {
	s.mu.Lock()
	due := make([]string, 0, len(s.answerDeadlines))
	for cardID, at := range s.answerDeadlines {
		if !now.Before(at) {
			due = append(due, cardID)
			delete(s.answerDeadlines, cardID)
		}
	}
	s.mu.Unlock()

	for _, cardID := range due {
		id := cardID
		// Draw the answer under the session mutex so the generator is
		// never shared bare with PlayCard's timing draw. Card content is
		// immutable, so the draw stays valid for the commit below.
		card, ok := findTableCard(s.store.Snapshot().Table.EnemySide, id)
		if !ok {
			continue
		}
		s.mu.Lock()
		isCorrect := enemyAnswerIndex(card, s.cfg.Rand) == card.CorrectAnswer
		s.mu.Unlock()

		next, err := s.store.Update(func(b *game.Battle) error {
			if _, onTable := findTableCard(b.Table.EnemySide, id); !onTable {
				return nil
			}
			applyEnemyAnswerOutcome(b, id, isCorrect)
			return nil
		})
		if err == nil {
			s.maybeReport(next)
		}
	}
}

func (s *Session) tickExpirySweep(now time.Time) {
	s.mu.Lock()
	skip := make(map[string]struct{}, len(s.pendingAnswers))
	for id := range s.pendingAnswers {
		skip[id] = struct{}{}
	}
	s.mu.Unlock()

	next, err := s.store.Update(func(b *game.Battle) error {
		sweepExpired(b, now, skip)
		return nil
	})
	if err == nil {
		s.maybeReport(next)
	}
}

// maybeReport hands the result package to the reporter the first time a
// terminal snapshot is observed. Health checks re-fire on later ticks and
// reads; the reported flag makes the submission at-most-once.
func (s *Session) maybeReport(b *game.Battle) {
	if b == nil || !b.Finished() {
		return
	}

	s.mu.Lock()
	if s.reported {
		s.mu.Unlock()
		return
	}
	s.reported = true
	s.mu.Unlock()

	outcome := game.OutcomeWon
	if b.Player.Health <= 0 {
		outcome = game.OutcomeLost
	}
	result := game.BattleResult{
		Result:          outcome,
		PlayerCards:     b.Player.Stash,
		OpponentSubject: b.OpponentSubject,
		OpponentCards:   b.Enemy.Stash,
	}

	status := SubmitStatus{Submitted: true, Success: true}
	if s.reporter != nil {
		ctx, cancelReport := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelReport()
		if err := s.reporter.ReportResult(ctx, s.PlayerSubject, result); err != nil {
			// The match outcome stands; only the status flag records the
			// persistence failure.
			status.Success = false
			status.Error = err.Error()
			logging.Error("failed to report battle result", err, logging.Fields{
				constants.LogFieldBattleID: s.ID,
				constants.LogFieldResult:   string(outcome),
			})
		}
	}

	s.mu.Lock()
	s.submitStatus = status
	s.mu.Unlock()

	logging.Info("battle finished", logging.Fields{
		constants.LogFieldBattleID: s.ID,
		constants.LogFieldResult:   string(outcome),
	})
	s.cancel()
}
