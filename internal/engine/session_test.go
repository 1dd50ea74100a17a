package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/hexxt-git/knowdown/internal/game"
)

type mockReporter struct {
	calls  int
	err    error
	result game.BattleResult
}

func (m *mockReporter) ReportResult(ctx context.Context, playerSubject string, result game.BattleResult) error {
	m.calls++
	m.result = result
	return m.err
}

// quietConfig keeps the tick loop idle so tests can drive transitions
// deterministically.
func quietConfig() Config {
	return Config{
		AnswerDisplayDelay:    0,
		PowerTickInterval:     time.Hour,
		EnemyDecisionInterval: time.Hour,
		EnemyResolvePoll:      time.Hour,
		ExpirySweepInterval:   time.Hour,
		Rand:                  rand.New(rand.NewSource(42)),
	}
}

func newTestBattle() *game.Battle {
	return &game.Battle{
		ID:              "battle-1",
		Type:            game.BattleCasual,
		OpponentSubject: "rival@example.com",
		OpponentName:    "Rival",
		Player:          game.CombatantState{Health: game.MaxHealth, Power: game.InitialPower},
		Enemy:           game.CombatantState{Health: game.MaxHealth, Power: game.InitialPower},
	}
}

func TestReportFiresExactlyOnce(t *testing.T) {
	rep := &mockReporter{}
	s := NewSession("me@example.com", newTestBattle(), rep, quietConfig())
	defer s.Stop()

	s.Forfeit()
	s.Forfeit()
	// Terminal checks re-fire on later reads of the snapshot too.
	s.maybeReport(s.Snapshot())

	if rep.calls != 1 {
		t.Fatalf("expected exactly one report, got %d", rep.calls)
	}
	st := s.Status()
	if !st.Submitted || !st.Success {
		t.Fatalf("expected submitted+success status, got %+v", st)
	}
	if rep.result.Result != game.OutcomeLost {
		t.Fatalf("forfeit must report a loss, got %s", rep.result.Result)
	}
	if rep.result.OpponentSubject != "rival@example.com" {
		t.Fatalf("result must carry the opponent identity")
	}
}

func TestReportFailureSurfacesStatus(t *testing.T) {
	rep := &mockReporter{err: errors.New("db unavailable")}
	s := NewSession("me@example.com", newTestBattle(), rep, quietConfig())
	defer s.Stop()

	s.Forfeit()

	st := s.Status()
	if !st.Submitted || st.Success {
		t.Fatalf("expected submitted+failed status, got %+v", st)
	}
	if st.Error == "" {
		t.Fatalf("expected error string in status")
	}
	if rep.calls != 1 {
		t.Fatalf("failures must not be retried, got %d calls", rep.calls)
	}
}

func TestPlayCardSchedulesSingleDeadline(t *testing.T) {
	b := newTestBattle()
	b.Player.Hand = []game.BattleCard{testCard("p1", 1, 2)}
	s := NewSession("me@example.com", b, &mockReporter{}, quietConfig())
	defer s.Stop()

	if _, err := s.PlayCard("p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.mu.Lock()
	deadlines := len(s.answerDeadlines)
	s.mu.Unlock()
	if deadlines != 1 {
		t.Fatalf("expected one scheduled enemy answer, got %d", deadlines)
	}

	// Replaying the same id fails (no longer in hand) and must not add a
	// second deadline.
	if _, err := s.PlayCard("p1"); err != ErrCardNotInHand {
		t.Fatalf("expected ErrCardNotInHand, got %v", err)
	}
	s.mu.Lock()
	deadlines = len(s.answerDeadlines)
	s.mu.Unlock()
	if deadlines != 1 {
		t.Fatalf("expected still one deadline, got %d", deadlines)
	}
}

func TestEnemyAnswerResolvesDueCard(t *testing.T) {
	b := newTestBattle()
	b.Player.Hand = []game.BattleCard{testCard("p1", 1, 2)}
	s := NewSession("me@example.com", b, &mockReporter{}, quietConfig())
	defer s.Stop()

	if _, err := s.PlayCard("p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Jump past the scheduled deadline.
	s.tickEnemyAnswers(time.Now().Add(game.CardTime))

	snap := s.Snapshot()
	if len(snap.Table.EnemySide) != 0 {
		t.Fatalf("due card must leave the table")
	}
	captured := len(snap.Enemy.Stash) == 1
	damaged := snap.Enemy.Health == game.MaxHealth-game.WrongAnswerDamage(1)
	if captured == damaged {
		t.Fatalf("expected exactly one of capture or damage, stash=%d health=%d", len(snap.Enemy.Stash), snap.Enemy.Health)
	}
	s.mu.Lock()
	deadlines := len(s.answerDeadlines)
	s.mu.Unlock()
	if deadlines != 0 {
		t.Fatalf("resolved deadline must be dropped")
	}
}

func TestSubmitAnswerUnknownCard(t *testing.T) {
	s := NewSession("me@example.com", newTestBattle(), &mockReporter{}, quietConfig())
	defer s.Stop()

	res := s.SubmitAnswer("ghost", 0)
	if res.IsCorrect || res.Explanation != "Card not found" {
		t.Fatalf("unknown cards resolve to a silent not-found result, got %+v", res)
	}
}

// Full scenario: the enemy plays a level-1 card, the player answers it
// correctly and captures it, then fumbles a level-3 card and takes 30
// damage.
func TestBattleScenario(t *testing.T) {
	b := newTestBattle()
	b.Enemy.Hand = []game.BattleCard{testCard("e1", 1, 2)}
	b.Enemy.Bag = []game.BattleCard{testCard("e2", 2, 1)}
	s := NewSession("me@example.com", b, &mockReporter{}, quietConfig())
	defer s.Stop()

	s.tickEnemyDecision(time.Now())

	snap := s.Snapshot()
	if len(snap.Table.PlayerSide) != 1 || snap.Table.PlayerSide[0].CardID != "e1" {
		t.Fatalf("expected enemy to play e1 onto the player side")
	}
	if snap.Enemy.Power != game.InitialPower-game.CardCost(1) {
		t.Fatalf("expected enemy power %d, got %d", game.InitialPower-game.CardCost(1), snap.Enemy.Power)
	}
	if len(snap.Enemy.Hand) != 1 || snap.Enemy.Hand[0].CardID != "e2" {
		t.Fatalf("expected enemy hand backfilled from bag")
	}

	res := s.SubmitAnswer("e1", 2)
	if !res.IsCorrect {
		t.Fatalf("expected correct answer, got %+v", res)
	}
	snap = s.Snapshot()
	if len(snap.Player.Stash) != 1 || snap.Player.Stash[0].CardID != "e1" {
		t.Fatalf("correct answer must capture the card into the stash")
	}
	if snap.Player.Health != game.MaxHealth {
		t.Fatalf("correct answers cost no health, got %d", snap.Player.Health)
	}

	// A harder card arrives and the player gets it wrong.
	hard := testCard("e3", 3, 0)
	hard.PlayedAt = time.Now()
	if _, err := s.store.Update(func(bb *game.Battle) error {
		bb.Table.PlayerSide = append(bb.Table.PlayerSide, hard)
		return nil
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	res = s.SubmitAnswer("e3", 1)
	if res.IsCorrect {
		t.Fatalf("expected wrong answer")
	}
	snap = s.Snapshot()
	if snap.Player.Health != game.MaxHealth-game.WrongAnswerDamage(3) {
		t.Fatalf("expected health %d, got %d", game.MaxHealth-game.WrongAnswerDamage(3), snap.Player.Health)
	}
}

// Player actions arrive on HTTP goroutines while enemy answers resolve on
// the session loop; both paths draw from the session's generator and must
// serialize on its mutex. Every played card has to resolve exactly once.
func TestConcurrentPlayAndEnemyResolution(t *testing.T) {
	const plays = 8

	b := newTestBattle()
	b.Player.Power = game.MaxPower
	for i := 0; i < plays; i++ {
		b.Player.Hand = append(b.Player.Hand, testCard(fmt.Sprintf("c%d", i), 1, 1))
	}
	s := NewSession("me@example.com", b, &mockReporter{}, quietConfig())
	defer s.Stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < plays; i++ {
			if _, err := s.PlayCard(fmt.Sprintf("c%d", i)); err != nil {
				t.Errorf("play c%d: %v", i, err)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			s.tickEnemyAnswers(time.Now().Add(game.CardTime))
		}
	}()
	wg.Wait()
	s.tickEnemyAnswers(time.Now().Add(game.CardTime))

	snap := s.Snapshot()
	if len(snap.Table.EnemySide) != 0 {
		t.Fatalf("all due cards must leave the table, %d left", len(snap.Table.EnemySide))
	}
	captured := len(snap.Enemy.Stash)
	damageHits := (game.MaxHealth - snap.Enemy.Health) / game.WrongAnswerDamage(1)
	if captured+damageHits != plays {
		t.Fatalf("cards must resolve exactly once each: captured=%d damage hits=%d want total %d",
			captured, damageHits, plays)
	}
}

func TestStopTearsDownLoop(t *testing.T) {
	s := NewSession("me@example.com", newTestBattle(), &mockReporter{}, quietConfig())

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Stop must terminate the session loop")
	}
}
