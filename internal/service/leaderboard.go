package service

import (
	"sort"

	"github.com/hexxt-git/knowdown/internal/storage"
)

// LeaderboardSort selects the ranking criterion.
type LeaderboardSort string

const (
	SortByWins  LeaderboardSort = "wins"
	SortByCards LeaderboardSort = "cards"
)

// LeaderboardRepo is the slice of the repository the leaderboard needs.
type LeaderboardRepo interface {
	GetFriendSubjects(subject string) ([]string, error)
	GetUsersWithCardCounts(subjects []string) ([]storage.UserWithCardCount, error)
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Subject     string  `json:"subject"`
	DisplayName string  `json:"display_name"`
	GamesPlayed int     `json:"games_played"`
	GamesWon    int     `json:"games_won"`
	GamesLost   int     `json:"games_lost"`
	WinRate     float64 `json:"win_rate"`
	CardCount   int     `json:"card_count"`
}

// ComputeLeaderboard ranks players by wins (win rate breaks ties) or by
// collection size. With friendsOnly set, the board is restricted to the
// requesting player and their friends.
func ComputeLeaderboard(repo LeaderboardRepo, subject string, sortBy LeaderboardSort, friendsOnly bool) ([]LeaderboardEntry, error) {
	var subjects []string
	if friendsOnly {
		friendSubjects, err := repo.GetFriendSubjects(subject)
		if err != nil {
			return nil, err
		}
		subjects = append(friendSubjects, subject)
	}

	users, err := repo.GetUsersWithCardCounts(subjects)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		winRate := 0.0
		if u.GamesPlayed > 0 {
			winRate = float64(u.GamesWon) / float64(u.GamesPlayed)
		}
		name := u.DisplayName
		if name == "" {
			name = u.Subject
		}
		entries = append(entries, LeaderboardEntry{
			Subject:     u.Subject,
			DisplayName: name,
			GamesPlayed: u.GamesPlayed,
			GamesWon:    u.GamesWon,
			GamesLost:   u.GamesLost,
			WinRate:     winRate,
			CardCount:   u.CardCount,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if sortBy == SortByCards {
			if a.CardCount != b.CardCount {
				return a.CardCount > b.CardCount
			}
			return a.GamesWon > b.GamesWon
		}
		if a.GamesWon != b.GamesWon {
			return a.GamesWon > b.GamesWon
		}
		return a.WinRate > b.WinRate
	})
	return entries, nil
}
