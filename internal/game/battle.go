package game

import "time"

// BattleType distinguishes casual and ranked matches. Only casual exists
// today; the field is kept on the aggregate so match records stay stable
// when ranked play lands.
type BattleType string

const (
	BattleCasual BattleType = "casual"
	BattleRanked BattleType = "ranked"
)

// BattleCard is a card as the engine sees it during a match: catalog
// content plus the ephemeral PlayedAt timestamp that exists only while the
// card sits on the table.
type BattleCard struct {
	CardID        string     `json:"id"`
	Level         int        `json:"level"`
	Subject       string     `json:"subject"`
	Thumbnail     string     `json:"thumbnail"`
	Question      string     `json:"question"`
	Answers       AnswerList `json:"answers"`
	CorrectAnswer int        `json:"correctAnswer"`
	Explanation   string     `json:"explanation"`

	// PlayedAt is set when the card is placed on the table and cleared
	// everywhere else (hand, bag, stash).
	PlayedAt time.Time `json:"played_at,omitempty"`
}

// BattleCardFromCatalog strips a persisted Card down to its battle shape.
func BattleCardFromCatalog(c Card) BattleCard {
	answers := make(AnswerList, len(c.Answers))
	copy(answers, c.Answers)
	return BattleCard{
		CardID:        c.CardID,
		Level:         c.Level,
		Subject:       c.Subject,
		Thumbnail:     c.Thumbnail,
		Question:      c.Question,
		Answers:       answers,
		CorrectAnswer: c.CorrectAnswer,
		Explanation:   c.Explanation,
	}
}

// CombatantState is one side of a battle.
//
// Hand holds cards available to play, Bag the reserve that backfills the
// hand, Stash the cards captured through correct answers. Health and Power
// are clamped to [0, MaxHealth] and [0, MaxPower] on every mutation.
type CombatantState struct {
	Health int          `json:"health"`
	Power  int          `json:"power"`
	Hand   []BattleCard `json:"hand"`
	Bag    []BattleCard `json:"bag"`
	Stash  []BattleCard `json:"stash"`
}

// TableState is the shared table of in-flight cards. PlayerSide holds cards
// the enemy placed for the player to answer; EnemySide holds cards the
// player placed for the enemy.
type TableState struct {
	PlayerSide []BattleCard `json:"playerSide"`
	EnemySide  []BattleCard `json:"enemySide"`
}

// Battle is the aggregate root for one running match. It is never
// persisted: once a terminal health condition is reached only the stash
// contents and the outcome survive, reported through the results service.
type Battle struct {
	ID   string     `json:"id"`
	Type BattleType `json:"type"`

	OpponentSubject string `json:"opponent_subject"`
	OpponentName    string `json:"opponent_name"`

	Player CombatantState `json:"player"`
	Enemy  CombatantState `json:"enemy"`
	Table  TableState     `json:"table"`
}

// Finished reports whether either combatant has reached zero health.
func (b *Battle) Finished() bool {
	return b.Player.Health <= 0 || b.Enemy.Health <= 0
}

// Clone returns a deep copy of the battle. The engine's state store hands
// out and commits clones so no caller can mutate shared state in place.
func (b *Battle) Clone() *Battle {
	if b == nil {
		return nil
	}
	out := *b
	out.Player = b.Player.clone()
	out.Enemy = b.Enemy.clone()
	out.Table = TableState{
		PlayerSide: cloneCards(b.Table.PlayerSide),
		EnemySide:  cloneCards(b.Table.EnemySide),
	}
	return &out
}

func (s CombatantState) clone() CombatantState {
	out := s
	out.Hand = cloneCards(s.Hand)
	out.Bag = cloneCards(s.Bag)
	out.Stash = cloneCards(s.Stash)
	return out
}

func cloneCards(cards []BattleCard) []BattleCard {
	if cards == nil {
		return nil
	}
	out := make([]BattleCard, len(cards))
	for i, c := range cards {
		out[i] = c
		out[i].Answers = append(AnswerList(nil), c.Answers...)
	}
	return out
}

// BattleOutcome is the terminal result from the acting player's
// perspective.
type BattleOutcome string

const (
	OutcomeWon  BattleOutcome = "won"
	OutcomeLost BattleOutcome = "lost"
)

// BattleResult is the package handed to the results service when a match
// ends: the outcome plus the net captured card sets of both sides.
type BattleResult struct {
	Result          BattleOutcome `json:"result"`
	PlayerCards     []BattleCard  `json:"playerCards"`
	OpponentSubject string        `json:"opponentId"`
	OpponentCards   []BattleCard  `json:"opponentCards"`
}
