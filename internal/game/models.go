package game

import (
	"time"

	"gorm.io/gorm"
)

// Card is a trivia card from the catalog. Card content is immutable once
// seeded; only ownership (which users hold the card in their collection)
// changes over time through packs and battle results.
type Card struct {
	gorm.Model
	// CardID is the stable external identifier used by clients and by the
	// battle engine. The numeric gorm primary key stays internal.
	CardID    string `json:"id" gorm:"column:card_id;uniqueIndex"`
	Level     int    `json:"level"`
	Subject   string `json:"subject"`
	Thumbnail string `json:"thumbnail"`
	Question  string `json:"question"`
	// Answers holds exactly four candidate strings; CorrectAnswer indexes
	// into it. Stored as a JSON-encoded text column so sqlite stays
	// schema-free about the list shape.
	Answers       AnswerList `json:"answers" gorm:"type:text;serializer:json"`
	CorrectAnswer int        `json:"correctAnswer"`
	Explanation   string     `json:"explanation"`

	Users []User `json:"-" gorm:"many2many:card_collections;"`
}

func (Card) TableName() string { return "cards" }

// AnswerList is the ordered candidate answers for a card.
type AnswerList []string

// User stores unique player identity, aggregate stats and social links.
// The identity subject is the Google account email.
type User struct {
	gorm.Model
	Subject     string `json:"subject" gorm:"uniqueIndex"`
	DisplayName string `json:"display_name"`

	GamesPlayed int `json:"games_played"`
	GamesWon    int `json:"games_won"`
	GamesLost   int `json:"games_lost"`

	// LastPackOpenedAt drives the pack cooldown. Zero means the user has
	// never opened a pack.
	LastPackOpenedAt time.Time `json:"last_pack_opened_at"`

	CardCollection []Card `json:"-" gorm:"many2many:card_collections;"`
}

func (User) TableName() string { return "player_profiles" }

// FriendInviteStatus is a string alias for the lifecycle of an invite.
// Using a dedicated type instead of plain string makes code safer and
// self-documenting.
type FriendInviteStatus string

const (
	InvitePending  FriendInviteStatus = "PENDING"
	InviteAccepted FriendInviteStatus = "ACCEPTED"
	InviteBlocked  FriendInviteStatus = "BLOCKED"
)

// FriendInvite is a pending or resolved friendship request between two
// users, referenced by their identity subjects.
type FriendInvite struct {
	gorm.Model
	SenderSubject   string             `json:"sender_subject" gorm:"index"`
	ReceiverSubject string             `json:"receiver_subject" gorm:"index"`
	Status          FriendInviteStatus `json:"status"`
}

func (FriendInvite) TableName() string { return "friend_invites" }

// Friendship is a confirmed link between two users. One row per direction
// so "friends of X" is a single indexed lookup.
type Friendship struct {
	gorm.Model
	UserSubject   string `json:"user_subject" gorm:"index:idx_friendship_pair,unique"`
	FriendSubject string `json:"friend_subject" gorm:"index:idx_friendship_pair,unique"`
}

func (Friendship) TableName() string { return "friendships" }
