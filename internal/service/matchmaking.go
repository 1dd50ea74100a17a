package service

import (
	"errors"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/hexxt-git/knowdown/internal/game"
)

var ErrNoCardsInCatalog = errors.New("no cards found in the catalog")

// BotSubject identifies the fallback opponent used when no other player
// exists. The bot gets a regular profile row so captured cards and stats
// land somewhere consistent.
const (
	BotSubject = "bot-opponent"
	BotName    = "AI Opponent"
)

// MatchRepo is the slice of the repository matchmaking needs.
type MatchRepo interface {
	GetCards() ([]game.Card, error)
	GetRandomCards(n int) ([]game.Card, error)
	FindOpponent(excludeSubject string) (*game.User, error)
	GetCollection(subject string) ([]game.Card, error)
}

// OpponentRank derives a 1-5 rank from a user's win ratio.
func OpponentRank(u *game.User) int {
	if u == nil || u.GamesPlayed == 0 {
		return 1
	}
	rank := int(math.Ceil(float64(u.GamesWon) / float64(u.GamesPlayed) * 5))
	if rank < 1 {
		rank = 1
	}
	return rank
}

// MakeMatch finds an opponent for the given player and deals both sides'
// hands and bags. The opponent is the user holding the largest collection;
// with no other users a bot deck is assembled from the catalog.
func MakeMatch(repo MatchRepo, playerSubject string, rng *rand.Rand) (*game.Battle, error) {
	allCards, err := repo.GetCards()
	if err != nil {
		return nil, err
	}
	if len(allCards) == 0 {
		return nil, ErrNoCardsInCatalog
	}

	opponentSubject := BotSubject
	opponentName := BotName
	var opponentPool []game.Card

	opponent, err := repo.FindOpponent(playerSubject)
	if err != nil {
		return nil, err
	}
	if opponent != nil && opponent.Subject != "" {
		opponentSubject = opponent.Subject
		opponentName = opponent.DisplayName
		if opponentName == "" {
			opponentName = "Opponent"
		}
		opponentPool, err = repo.GetCollection(opponent.Subject)
		if err != nil {
			return nil, err
		}
	} else {
		opponentPool, err = repo.GetRandomCards(10)
		if err != nil {
			return nil, err
		}
	}
	if len(opponentPool) == 0 {
		opponentPool = allCards
	}

	battle := &game.Battle{
		ID:              uuid.NewString(),
		Type:            game.BattleCasual,
		OpponentSubject: opponentSubject,
		OpponentName:    opponentName,
		Player: game.CombatantState{
			Health: game.InitialHealth,
			Power:  game.InitialPower,
			Hand:   deal(allCards, game.HandSize, rng),
			Bag:    deal(allCards, game.BagSize, rng),
		},
		Enemy: game.CombatantState{
			Health: game.InitialHealth,
			Power:  game.InitialPower,
			Hand:   deal(opponentPool, game.HandSize, rng),
			Bag:    deal(opponentPool, game.BagSize, rng),
		},
	}
	return battle, nil
}

// deal shuffles a copy of the pool and takes up to n cards in battle
// shape.
func deal(pool []game.Card, n int, rng *rand.Rand) []game.BattleCard {
	shuffled := make([]game.Card, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	out := make([]game.BattleCard, 0, n)
	for _, c := range shuffled[:n] {
		out = append(out, game.BattleCardFromCatalog(c))
	}
	return out
}
