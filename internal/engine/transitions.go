package engine

import (
	"errors"
	"time"

	"github.com/hexxt-git/knowdown/internal/game"
)

var (
	ErrBattleOver     = errors.New("battle is already over")
	ErrCardNotInHand  = errors.New("card is not in hand")
	ErrNotEnoughPower = errors.New("not enough power")
)

// The functions in this file are the battle's state transitions. Each one
// mutates the clone the Store hands it and must leave the snapshot
// satisfying the battle invariants: a card lives in exactly one zone,
// health and power stay clamped, and a card carries PlayedAt only while it
// is on the table. All of them are no-ops once the battle is finished so a
// late timer can never mutate a decided match.

// applyPowerTick regenerates power for both combatants.
func applyPowerTick(b *game.Battle) {
	if b.Finished() {
		return
	}
	b.Player.Power = game.ClampPower(b.Player.Power + game.PowerGainPerTick)
	b.Enemy.Power = game.ClampPower(b.Enemy.Power + game.PowerGainPerTick)
}

// playPlayerCard moves a card from the player's hand onto the enemy side
// of the table, paying its power cost and backfilling the hand from the
// bag.
func playPlayerCard(b *game.Battle, cardID string, now time.Time) error {
	if b.Finished() {
		return ErrBattleOver
	}
	idx := -1
	for i := range b.Player.Hand {
		if b.Player.Hand[i].CardID == cardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrCardNotInHand
	}
	card := b.Player.Hand[idx]
	cost := game.CardCost(card.Level)
	if b.Player.Power < cost {
		return ErrNotEnoughPower
	}
	b.Player.Power = game.ClampPower(b.Player.Power - cost)
	b.Player.Hand = append(b.Player.Hand[:idx], b.Player.Hand[idx+1:]...)
	card.PlayedAt = now
	b.Table.EnemySide = append(b.Table.EnemySide, card)
	backfillHand(&b.Player)
	return nil
}

// playEnemyCard runs the opponent policy against the enemy hand and, when
// a card is affordable, places it on the player side of the table. No
// answer deadline is scheduled here: the enemy answers cards the player
// plays, and its own plays wait for the player.
func playEnemyCard(b *game.Battle, now time.Time) (game.BattleCard, bool) {
	if b.Finished() {
		return game.BattleCard{}, false
	}
	idx, ok := chooseCard(b.Enemy.Hand, b.Enemy.Power)
	if !ok {
		return game.BattleCard{}, false
	}
	card := b.Enemy.Hand[idx]
	b.Enemy.Power = game.ClampPower(b.Enemy.Power - game.CardCost(card.Level))
	b.Enemy.Hand = append(b.Enemy.Hand[:idx], b.Enemy.Hand[idx+1:]...)
	card.PlayedAt = now
	b.Table.PlayerSide = append(b.Table.PlayerSide, card)
	backfillHand(&b.Enemy)
	return card, true
}

// backfillHand draws from the bag until the hand is back at HandSize or
// the bag runs dry.
func backfillHand(s *game.CombatantState) {
	for len(s.Hand) < game.HandSize && len(s.Bag) > 0 {
		s.Hand = append(s.Hand, s.Bag[0])
		s.Bag = s.Bag[1:]
	}
}

// applyPlayerAnswerOutcome removes an answered card from the player side
// of the table and applies its consequence: capture into the player stash
// on a correct answer, health damage on a wrong one. Unknown card ids are
// a silent no-op; the card may already have expired or been swept.
func applyPlayerAnswerOutcome(b *game.Battle, cardID string, isCorrect bool) {
	if b.Finished() {
		return
	}
	card, ok := removeTableCard(&b.Table.PlayerSide, cardID)
	if !ok {
		return
	}
	if isCorrect {
		card.PlayedAt = time.Time{}
		b.Player.Stash = append(b.Player.Stash, card)
		return
	}
	b.Player.Health = game.ClampHealth(b.Player.Health - game.WrongAnswerDamage(card.Level))
}

// applyEnemyAnswerOutcome is the mirror of applyPlayerAnswerOutcome for
// cards the player placed on the enemy side.
func applyEnemyAnswerOutcome(b *game.Battle, cardID string, isCorrect bool) {
	if b.Finished() {
		return
	}
	card, ok := removeTableCard(&b.Table.EnemySide, cardID)
	if !ok {
		return
	}
	if isCorrect {
		card.PlayedAt = time.Time{}
		b.Enemy.Stash = append(b.Enemy.Stash, card)
		return
	}
	b.Enemy.Health = game.ClampHealth(b.Enemy.Health - game.WrongAnswerDamage(card.Level))
}

// sweepExpired removes every table card that has sat past CardTime and
// applies expiry damage to the side responsible for answering it. Cards in
// skip are mid answer feedback and excluded so a card is never punished
// twice.
func sweepExpired(b *game.Battle, now time.Time, skip map[string]struct{}) {
	if b.Finished() {
		return
	}
	sweepSide(&b.Table.PlayerSide, &b.Player, now, skip)
	sweepSide(&b.Table.EnemySide, &b.Enemy, now, skip)
}

func sweepSide(side *[]game.BattleCard, responsible *game.CombatantState, now time.Time, skip map[string]struct{}) {
	kept := (*side)[:0]
	for _, card := range *side {
		if _, held := skip[card.CardID]; held || now.Sub(card.PlayedAt) < game.CardTime {
			kept = append(kept, card)
			continue
		}
		responsible.Health = game.ClampHealth(responsible.Health - game.ExpiredCardDamage(card.Level))
	}
	*side = kept
}

func removeTableCard(side *[]game.BattleCard, cardID string) (game.BattleCard, bool) {
	for i := range *side {
		if (*side)[i].CardID == cardID {
			card := (*side)[i]
			*side = append((*side)[:i], (*side)[i+1:]...)
			return card, true
		}
	}
	return game.BattleCard{}, false
}

// findTableCard returns a copy of a card currently on the given side.
func findTableCard(side []game.BattleCard, cardID string) (game.BattleCard, bool) {
	for i := range side {
		if side[i].CardID == cardID {
			return side[i], true
		}
	}
	return game.BattleCard{}, false
}
