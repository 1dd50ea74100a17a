package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hexxt-git/knowdown/internal/game"
)

type cardEntry struct {
	ID            string   `json:"id"`
	Level         int      `json:"level"`
	Subject       string   `json:"subject"`
	Thumbnail     string   `json:"thumbnail"`
	Question      string   `json:"question"`
	Answers       []string `json:"answers"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

type rawConfig struct {
	CardList []cardEntry `json:"card_list"`
	Server   *struct {
		Address string `json:"address"`
	} `json:"server"`
	// Optional tunables; zero values fall back to production defaults.
	PackCooldownMinutes int `json:"pack_cooldown_minutes"`
	// AnswerDisplaySeconds delays applying a player answer so feedback can
	// be read. Set to 0 for immediate application.
	AnswerDisplaySeconds *int `json:"answer_display_seconds"`
	// IdleBattleMinutes is how long a battle may go without player action
	// before the background sweeper forfeits it.
	IdleBattleMinutes int `json:"idle_battle_minutes"`
}

// LoadedConfig contains the card catalog to seed and the server tunables.
type LoadedConfig struct {
	Catalog            []game.Card
	ServerAddress      string
	PackCooldown       time.Duration
	AnswerDisplayDelay time.Duration
	IdleBattleTTL      time.Duration
}

// LoadConfig reads the configuration file at path and returns the seed
// catalog and server settings. It requires the key `card_list`.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	entries := rc.CardList
	if len(entries) == 0 {
		return nil, fmt.Errorf("config file %s: card_list is empty (provide a 'card_list' array)", path)
	}

	idSet := make(map[string]struct{}, len(entries))
	out := make([]game.Card, 0, len(entries))
	for _, e := range entries {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("config file %s: card entry missing 'id'", path)
		}
		if _, exists := idSet[id]; exists {
			return nil, fmt.Errorf("config file %s: duplicate card id '%s'", path, id)
		}
		idSet[id] = struct{}{}
		if e.Level < 1 {
			return nil, fmt.Errorf("config file %s: card '%s' has invalid level %d", path, id, e.Level)
		}
		if len(e.Answers) != 4 {
			return nil, fmt.Errorf("config file %s: card '%s' must have exactly 4 answers", path, id)
		}
		if e.CorrectAnswer < 0 || e.CorrectAnswer >= len(e.Answers) {
			return nil, fmt.Errorf("config file %s: card '%s' has correct_answer out of range", path, id)
		}
		out = append(out, game.Card{
			CardID:        id,
			Level:         e.Level,
			Subject:       e.Subject,
			Thumbnail:     e.Thumbnail,
			Question:      e.Question,
			Answers:       game.AnswerList(e.Answers),
			CorrectAnswer: e.CorrectAnswer,
			Explanation:   e.Explanation,
		})
	}

	addr := ":8080"
	if rc.Server != nil && rc.Server.Address != "" {
		addr = rc.Server.Address
	}

	cooldown := 20 * time.Minute
	if rc.PackCooldownMinutes > 0 {
		cooldown = time.Duration(rc.PackCooldownMinutes) * time.Minute
	}
	displayDelay := 3 * time.Second
	if rc.AnswerDisplaySeconds != nil {
		displayDelay = time.Duration(*rc.AnswerDisplaySeconds) * time.Second
	}
	idleTTL := 10 * time.Minute
	if rc.IdleBattleMinutes > 0 {
		idleTTL = time.Duration(rc.IdleBattleMinutes) * time.Minute
	}

	return &LoadedConfig{
		Catalog:            out,
		ServerAddress:      addr,
		PackCooldown:       cooldown,
		AnswerDisplayDelay: displayDelay,
		IdleBattleTTL:      idleTTL,
	}, nil
}
