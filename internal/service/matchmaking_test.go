package service

import (
	"math/rand"
	"testing"

	"github.com/hexxt-git/knowdown/internal/game"
)

type fakeMatchRepo struct {
	cards    []game.Card
	opponent *game.User
	decks    map[string][]game.Card
}

func (f *fakeMatchRepo) GetCards() ([]game.Card, error) { return f.cards, nil }

func (f *fakeMatchRepo) GetRandomCards(n int) ([]game.Card, error) {
	if n > len(f.cards) {
		n = len(f.cards)
	}
	return f.cards[:n], nil
}

func (f *fakeMatchRepo) FindOpponent(excludeSubject string) (*game.User, error) {
	return f.opponent, nil
}

func (f *fakeMatchRepo) GetCollection(subject string) ([]game.Card, error) {
	return f.decks[subject], nil
}

func catalog(n int) []game.Card {
	cards := make([]game.Card, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, game.Card{
			CardID:        "card-" + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			Level:         i%5 + 1,
			Question:      "q",
			Answers:       game.AnswerList{"a", "b", "c", "d"},
			CorrectAnswer: i % 4,
		})
	}
	return cards
}

func TestMakeMatchFallsBackToBot(t *testing.T) {
	repo := &fakeMatchRepo{cards: catalog(30)}
	rng := rand.New(rand.NewSource(1))

	battle, err := MakeMatch(repo, "player@example.com", rng)
	if err != nil {
		t.Fatalf("MakeMatch: %v", err)
	}
	if battle.OpponentSubject != BotSubject {
		t.Fatalf("opponent = %q, want %q", battle.OpponentSubject, BotSubject)
	}
	if battle.OpponentName != BotName {
		t.Fatalf("opponent name = %q, want %q", battle.OpponentName, BotName)
	}
	if len(battle.Player.Hand) != game.HandSize {
		t.Fatalf("player hand size = %d, want %d", len(battle.Player.Hand), game.HandSize)
	}
	if len(battle.Player.Bag) != game.BagSize {
		t.Fatalf("player bag size = %d, want %d", len(battle.Player.Bag), game.BagSize)
	}
	if battle.Player.Health != game.InitialHealth || battle.Player.Power != game.InitialPower {
		t.Fatalf("player starts at %d/%d, want %d/%d",
			battle.Player.Health, battle.Player.Power, game.InitialHealth, game.InitialPower)
	}
	if battle.ID == "" {
		t.Fatal("battle ID must be assigned")
	}
}

func TestMakeMatchUsesOpponentCollection(t *testing.T) {
	cards := catalog(30)
	deck := cards[:8]
	repo := &fakeMatchRepo{
		cards:    cards,
		opponent: &game.User{Subject: "rival@example.com", DisplayName: "Rival"},
		decks:    map[string][]game.Card{"rival@example.com": deck},
	}
	rng := rand.New(rand.NewSource(2))

	battle, err := MakeMatch(repo, "player@example.com", rng)
	if err != nil {
		t.Fatalf("MakeMatch: %v", err)
	}
	if battle.OpponentSubject != "rival@example.com" {
		t.Fatalf("opponent = %q", battle.OpponentSubject)
	}
	deckIDs := make(map[string]bool, len(deck))
	for _, c := range deck {
		deckIDs[c.CardID] = true
	}
	for _, c := range append(append([]game.BattleCard{}, battle.Enemy.Hand...), battle.Enemy.Bag...) {
		if !deckIDs[c.CardID] {
			t.Fatalf("enemy card %q is not from the opponent's collection", c.CardID)
		}
	}
	// An 8-card pool cannot fill a 5-hand and 15-bag without repeats; the
	// deal just caps at the pool size.
	if len(battle.Enemy.Bag) > len(deck) {
		t.Fatalf("enemy bag size = %d exceeds pool %d", len(battle.Enemy.Bag), len(deck))
	}
}

func TestMakeMatchEmptyCatalog(t *testing.T) {
	repo := &fakeMatchRepo{}
	if _, err := MakeMatch(repo, "player@example.com", rand.New(rand.NewSource(3))); err != ErrNoCardsInCatalog {
		t.Fatalf("err = %v, want ErrNoCardsInCatalog", err)
	}
}

func TestOpponentRank(t *testing.T) {
	cases := []struct {
		played, won, want int
	}{
		{0, 0, 1},
		{10, 0, 1},
		{10, 2, 1},
		{10, 5, 3},
		{10, 10, 5},
		{3, 2, 4},
	}
	for _, tc := range cases {
		u := &game.User{GamesPlayed: tc.played, GamesWon: tc.won}
		if got := OpponentRank(u); got != tc.want {
			t.Errorf("rank(%d won of %d) = %d, want %d", tc.won, tc.played, got, tc.want)
		}
	}
	if got := OpponentRank(nil); got != 1 {
		t.Errorf("rank(nil) = %d, want 1", got)
	}
}
