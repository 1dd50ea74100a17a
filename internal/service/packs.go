package service

import (
	"errors"
	"time"

	"github.com/hexxt-git/knowdown/internal/game"
)

const PackSize = 5

var ErrPackOnCooldown = errors.New("pack is still on cooldown")

// PackRepo is the slice of the repository pack opening needs.
type PackRepo interface {
	GetUserBySubject(subject string) (*game.User, error)
	SaveUser(user *game.User) error
	GetRandomCards(n int) ([]game.Card, error)
	ConnectCards(subject string, cardIDs []string) error
}

// PackStatus tells a player whether a pack can be opened and how long
// remains on the cooldown otherwise.
type PackStatus struct {
	CanOpen           bool       `json:"canOpen"`
	CooldownRemaining int64      `json:"cooldownRemaining"`
	LastOpenedAt      *time.Time `json:"lastOpenedAt,omitempty"`
}

// GetPackStatus computes the cooldown state for a player at the given
// instant.
func GetPackStatus(repo PackRepo, subject string, cooldown time.Duration, now time.Time) (PackStatus, error) {
	user, err := repo.GetUserBySubject(subject)
	if err != nil {
		return PackStatus{}, err
	}
	if user == nil || user.LastPackOpenedAt.IsZero() {
		return PackStatus{CanOpen: true}, nil
	}
	openedAt := user.LastPackOpenedAt
	availableAt := openedAt.Add(cooldown)
	if !now.Before(availableAt) {
		return PackStatus{CanOpen: true, LastOpenedAt: &openedAt}, nil
	}
	remaining := int64(availableAt.Sub(now).Seconds())
	if remaining < 1 {
		remaining = 1
	}
	return PackStatus{
		CanOpen:           false,
		CooldownRemaining: remaining,
		LastOpenedAt:      &openedAt,
	}, nil
}

// OpenPack grants the player a fresh set of random cards and stamps the
// cooldown. Opening while on cooldown returns ErrPackOnCooldown.
func OpenPack(repo PackRepo, subject string, cooldown time.Duration, now time.Time) ([]game.Card, error) {
	status, err := GetPackStatus(repo, subject, cooldown, now)
	if err != nil {
		return nil, err
	}
	if !status.CanOpen {
		return nil, ErrPackOnCooldown
	}

	cards, err := repo.GetRandomCards(PackSize)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, ErrNoCardsInCatalog
	}

	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.CardID)
	}
	if err := repo.ConnectCards(subject, ids); err != nil {
		return nil, err
	}

	user, err := repo.GetUserBySubject(subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &game.User{Subject: subject}
	}
	user.LastPackOpenedAt = now
	if err := repo.SaveUser(user); err != nil {
		return nil, err
	}
	return cards, nil
}
