package service

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/hexxt-git/knowdown/internal/engine"
	"github.com/hexxt-git/knowdown/internal/game"
	"github.com/hexxt-git/knowdown/internal/storage"
)

// stubRepository backs the battle manager tests with a fixed catalog and
// no other players, so every match runs against the bot.
type stubRepository struct {
	cards    []game.Card
	recorded int
}

func (s *stubRepository) GetCards() ([]game.Card, error) { return s.cards, nil }

func (s *stubRepository) GetCardsByIDs(ids []string) ([]game.Card, error) { return nil, nil }

func (s *stubRepository) GetRandomCards(n int) ([]game.Card, error) {
	if n > len(s.cards) {
		n = len(s.cards)
	}
	return s.cards[:n], nil
}

func (s *stubRepository) CountCards() (int64, error) { return int64(len(s.cards)), nil }

func (s *stubRepository) UpsertUser(subject, displayName string) (*game.User, error) {
	return &game.User{Subject: subject, DisplayName: displayName}, nil
}

func (s *stubRepository) GetUserBySubject(subject string) (*game.User, error) { return nil, nil }
func (s *stubRepository) SaveUser(u *game.User) error                         { return nil }
func (s *stubRepository) GetCollection(subject string) ([]game.Card, error)   { return nil, nil }
func (s *stubRepository) CountCollection(subject string) (int64, error)       { return 0, nil }
func (s *stubRepository) ConnectCards(subject string, ids []string) error     { return nil }

func (s *stubRepository) RecordBattleResult(playerSubject, opponentSubject string, playerWon bool, playerCaptured, opponentCaptured []string) error {
	s.recorded++
	return nil
}

func (s *stubRepository) FindOpponent(excludeSubject string) (*game.User, error) { return nil, nil }

func (s *stubRepository) GetFriendSubjects(subject string) ([]string, error)     { return nil, nil }
func (s *stubRepository) AreFriends(a, b string) (bool, error)                   { return false, nil }
func (s *stubRepository) CreateFriendship(a, b string) error                     { return nil }
func (s *stubRepository) CreateInvite(inv *game.FriendInvite) error              { return nil }
func (s *stubRepository) GetInviteByID(id uint) (*game.FriendInvite, error)      { return nil, nil }
func (s *stubRepository) FindInviteBetween(a, b string) (*game.FriendInvite, error) {
	return nil, nil
}
func (s *stubRepository) SaveInvite(inv *game.FriendInvite) error { return nil }
func (s *stubRepository) GetPendingInvitesFor(subject string) ([]game.FriendInvite, error) {
	return nil, nil
}
func (s *stubRepository) GetUsersWithCardCounts(subjects []string) ([]storage.UserWithCardCount, error) {
	return nil, nil
}

var _ storage.Repository = (*stubRepository)(nil)

// quietEngineConfig keeps every periodic action hours away so manager
// tests only observe explicit calls.
func quietEngineConfig() engine.Config {
	return engine.Config{
		PowerTickInterval:     time.Hour,
		EnemyDecisionInterval: time.Hour,
		EnemyResolvePoll:      time.Hour,
		ExpirySweepInterval:   time.Hour,
		Rand:                  rand.New(rand.NewSource(7)),
	}
}

func newTestManager(t *testing.T) (*BattleManager, *stubRepository) {
	t.Helper()
	repo := &stubRepository{cards: catalog(30)}
	mgr := NewBattleManager(repo, NewResults(repo), quietEngineConfig(), time.Hour)
	return mgr, repo
}

func TestStartRegistersSession(t *testing.T) {
	mgr, _ := newTestManager(t)

	battle, err := mgr.Start("player@example.com")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if battle.OpponentSubject != BotSubject {
		t.Fatalf("opponent = %q, want bot", battle.OpponentSubject)
	}
	if mgr.ActiveCount() != 1 {
		t.Fatalf("active sessions = %d, want 1", mgr.ActiveCount())
	}

	sess, err := mgr.Get(battle.ID, "player@example.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer mgr.End(battle.ID, "player@example.com")
	if sess.ID != battle.ID {
		t.Fatalf("session ID = %q, want %q", sess.ID, battle.ID)
	}
}

func TestStartIsIdempotentPerPlayer(t *testing.T) {
	mgr, _ := newTestManager(t)

	first, err := mgr.Start("player@example.com")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mgr.End(first.ID, "player@example.com")

	second, err := mgr.Start("player@example.com")
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second start spawned battle %q, want existing %q", second.ID, first.ID)
	}
	if mgr.ActiveCount() != 1 {
		t.Fatalf("active sessions = %d, want 1", mgr.ActiveCount())
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	mgr, _ := newTestManager(t)

	battle, err := mgr.Start("player@example.com")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mgr.End(battle.ID, "player@example.com")

	if _, err := mgr.Get(battle.ID, "intruder@example.com"); err != ErrNotYourBattle {
		t.Fatalf("foreign Get err = %v, want ErrNotYourBattle", err)
	}
	if _, err := mgr.Get("missing", "player@example.com"); err != ErrBattleNotFound {
		t.Fatalf("missing Get err = %v, want ErrBattleNotFound", err)
	}
}

func TestSweepIdleForfeitsAbandonedBattles(t *testing.T) {
	mgr, repo := newTestManager(t)

	battle, err := mgr.Start("player@example.com")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Within the TTL nothing happens.
	if removed := mgr.SweepIdle(time.Now()); removed != 0 {
		t.Fatalf("early sweep removed %d, want 0", removed)
	}

	removed := mgr.SweepIdle(time.Now().Add(2 * time.Hour))
	if removed != 1 {
		t.Fatalf("sweep removed %d, want 1", removed)
	}
	if mgr.ActiveCount() != 0 {
		t.Fatalf("active sessions = %d, want 0", mgr.ActiveCount())
	}
	if repo.recorded != 1 {
		t.Fatalf("forfeited battle recorded %d results, want 1", repo.recorded)
	}
	if _, err := mgr.Get(battle.ID, "player@example.com"); err != ErrBattleNotFound {
		t.Fatalf("swept battle Get err = %v, want ErrBattleNotFound", err)
	}
}

func TestConcurrentStartsAcrossPlayers(t *testing.T) {
	mgr, _ := newTestManager(t)

	const players = 16
	var wg sync.WaitGroup
	battleIDs := make([]string, players)
	errs := make([]error, players)
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			subject := fmt.Sprintf("player-%d@example.com", i)
			b, err := mgr.Start(subject)
			if err != nil {
				errs[i] = err
				return
			}
			battleIDs[i] = b.ID
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, players)
	for i := 0; i < players; i++ {
		if errs[i] != nil {
			t.Fatalf("start %d: %v", i, errs[i])
		}
		if battleIDs[i] == "" || seen[battleIDs[i]] {
			t.Fatalf("start %d produced duplicate or empty battle id %q", i, battleIDs[i])
		}
		seen[battleIDs[i]] = true
	}
	if mgr.ActiveCount() != players {
		t.Fatalf("active sessions = %d, want %d", mgr.ActiveCount(), players)
	}
	for i := 0; i < players; i++ {
		subject := fmt.Sprintf("player-%d@example.com", i)
		if err := mgr.End(battleIDs[i], subject); err != nil {
			t.Fatalf("end %d: %v", i, err)
		}
	}
}

func TestEndStopsSession(t *testing.T) {
	mgr, _ := newTestManager(t)

	battle, err := mgr.Start("player@example.com")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := mgr.End(battle.ID, "player@example.com"); err != nil {
		t.Fatalf("End: %v", err)
	}
	if mgr.ActiveCount() != 0 {
		t.Fatalf("active sessions = %d, want 0", mgr.ActiveCount())
	}

	// A fresh start after ending spawns a new battle.
	again, err := mgr.Start("player@example.com")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer mgr.End(again.ID, "player@example.com")
	if again.ID == battle.ID {
		t.Fatal("restart must produce a new battle")
	}
}
