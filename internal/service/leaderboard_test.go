package service

import (
	"testing"

	"github.com/hexxt-git/knowdown/internal/game"
	"github.com/hexxt-git/knowdown/internal/storage"
)

type fakeLeaderboardRepo struct {
	friends map[string][]string
	users   []storage.UserWithCardCount
}

func (f *fakeLeaderboardRepo) GetFriendSubjects(subject string) ([]string, error) {
	return f.friends[subject], nil
}

func (f *fakeLeaderboardRepo) GetUsersWithCardCounts(subjects []string) ([]storage.UserWithCardCount, error) {
	if subjects == nil {
		return f.users, nil
	}
	wanted := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		wanted[s] = true
	}
	var out []storage.UserWithCardCount
	for _, u := range f.users {
		if wanted[u.Subject] {
			out = append(out, u)
		}
	}
	return out, nil
}

func rankedUser(subject string, played, won, cards int) storage.UserWithCardCount {
	return storage.UserWithCardCount{
		User: game.User{
			Subject:     subject,
			DisplayName: subject,
			GamesPlayed: played,
			GamesWon:    won,
			GamesLost:   played - won,
		},
		CardCount: cards,
	}
}

func TestLeaderboardSortByWins(t *testing.T) {
	repo := &fakeLeaderboardRepo{
		users: []storage.UserWithCardCount{
			rankedUser("low", 10, 2, 50),
			rankedUser("grinder", 40, 8, 10),
			rankedUser("sharp", 10, 8, 5),
		},
	}

	entries, err := ComputeLeaderboard(repo, "low", SortByWins, false)
	if err != nil {
		t.Fatalf("ComputeLeaderboard: %v", err)
	}
	// grinder and sharp tie on wins; sharp's 80% win rate beats 20%.
	want := []string{"sharp", "grinder", "low"}
	for i, subject := range want {
		if entries[i].Subject != subject {
			t.Fatalf("rank %d = %q, want %q", i, entries[i].Subject, subject)
		}
	}
}

func TestLeaderboardSortByCards(t *testing.T) {
	repo := &fakeLeaderboardRepo{
		users: []storage.UserWithCardCount{
			rankedUser("few", 5, 5, 3),
			rankedUser("hoarder", 0, 0, 80),
		},
	}

	entries, err := ComputeLeaderboard(repo, "few", SortByCards, false)
	if err != nil {
		t.Fatalf("ComputeLeaderboard: %v", err)
	}
	if entries[0].Subject != "hoarder" {
		t.Fatalf("top = %q, want hoarder", entries[0].Subject)
	}
}

func TestLeaderboardFriendsOnlyIncludesSelf(t *testing.T) {
	repo := &fakeLeaderboardRepo{
		friends: map[string][]string{"me": {"pal"}},
		users: []storage.UserWithCardCount{
			rankedUser("me", 4, 1, 10),
			rankedUser("pal", 4, 3, 10),
			rankedUser("stranger", 50, 50, 100),
		},
	}

	entries, err := ComputeLeaderboard(repo, "me", SortByWins, true)
	if err != nil {
		t.Fatalf("ComputeLeaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Subject == "stranger" {
			t.Fatal("friends-only board must not include strangers")
		}
	}
}
