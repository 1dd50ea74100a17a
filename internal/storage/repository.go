package storage

import (
	"github.com/hexxt-git/knowdown/internal/game"
)

// UserWithCardCount pairs a user row with the size of their collection,
// used by the leaderboard and stats endpoints.
type UserWithCardCount struct {
	game.User
	CardCount int `json:"card_count"`
}

type Repository interface {
	// Card catalog
	GetCards() ([]game.Card, error)
	GetCardsByIDs(cardIDs []string) ([]game.Card, error)
	// GetRandomCards returns up to n cards drawn from a random window of
	// the catalog (pack contents, bot decks).
	GetRandomCards(n int) ([]game.Card, error)
	CountCards() (int64, error)

	// Users and stats
	UpsertUser(subject, displayName string) (*game.User, error)
	GetUserBySubject(subject string) (*game.User, error)
	SaveUser(u *game.User) error

	// Collections
	GetCollection(subject string) ([]game.Card, error)
	CountCollection(subject string) (int64, error)
	ConnectCards(subject string, cardIDs []string) error

	// RecordBattleResult applies a finished battle in one transaction:
	// games-played/won/lost counters on both sides and the captured card
	// sets transferred winner <- loser.
	RecordBattleResult(playerSubject, opponentSubject string, playerWon bool, playerCaptured, opponentCaptured []string) error

	// FindOpponent returns the user (excluding the given subject) holding
	// the largest collection, or nil when no other user exists.
	FindOpponent(excludeSubject string) (*game.User, error)

	// Friends
	GetFriendSubjects(subject string) ([]string, error)
	AreFriends(a, b string) (bool, error)
	CreateFriendship(a, b string) error
	CreateInvite(inv *game.FriendInvite) error
	GetInviteByID(id uint) (*game.FriendInvite, error)
	FindInviteBetween(a, b string) (*game.FriendInvite, error)
	SaveInvite(inv *game.FriendInvite) error
	GetPendingInvitesFor(subject string) ([]game.FriendInvite, error)

	// Leaderboard. A nil subjects slice means all users.
	GetUsersWithCardCounts(subjects []string) ([]UserWithCardCount, error)
}
