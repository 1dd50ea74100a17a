package game

import (
	"math/rand"
	"time"
)

// Game timing.
const (
	// CardTime is how long a card may sit on the table before it expires
	// and punishes the side that should have answered it.
	CardTime = 50 * time.Second

	PowerTickInterval     = 1 * time.Second
	EnemyDecisionInterval = 1 * time.Second
	EnemyResolvePoll      = 100 * time.Millisecond
	ExpirySweepInterval   = 1 * time.Second
)

// Game limits.
const (
	MaxHealth = 100
	MaxPower  = 100
)

// Costs and damage.
const (
	CardCostMultiplier          = 10 // cost = level * this value
	WrongAnswerDamageMultiplier = 10 // damage = level * this value
	PowerGainPerTick            = 1
)

// Initial deal.
const (
	InitialHealth = MaxHealth
	InitialPower  = 20
	HandSize      = 5
	BagSize       = 15
)

// Enemy answer timing and skill.
const (
	enemyAnswerLowLevelBase  = 5 * time.Second  // levels 1-3
	enemyAnswerHighLevelBase = 15 * time.Second // levels 4-5
	enemyAnswerJitter        = 10 * time.Second
)

// CardCost returns the power cost of playing a card of the given level.
func CardCost(level int) int {
	return level * CardCostMultiplier
}

// WrongAnswerDamage returns the health penalty for answering a card of the
// given level incorrectly.
func WrongAnswerDamage(level int) int {
	return level * WrongAnswerDamageMultiplier
}

// ExpiredCardDamage returns the penalty when a card times out on the table.
// Expired cards use the same damage calculation as wrong answers.
func ExpiredCardDamage(level int) int {
	return WrongAnswerDamage(level)
}

// EnemyAnswerTime returns the delay before the enemy resolves its answer to
// a card: a level-dependent base plus uniform random jitter. The delay is
// fixed when the card is placed and never recomputed.
func EnemyAnswerTime(level int, rng *rand.Rand) time.Duration {
	base := enemyAnswerLowLevelBase
	if level > 3 {
		base = enemyAnswerHighLevelBase
	}
	return base + time.Duration(rng.Int63n(int64(enemyAnswerJitter)))
}

// EnemyCorrectChance returns the probability that the enemy answers a card
// of the given level correctly.
func EnemyCorrectChance(level int) float64 {
	switch level {
	case 1:
		return 0.6
	case 2:
		return 0.4
	case 3:
		return 0.3
	default:
		return 0.5
	}
}

// ClampHealth bounds a health value to [0, MaxHealth].
func ClampHealth(h int) int {
	if h < 0 {
		return 0
	}
	if h > MaxHealth {
		return MaxHealth
	}
	return h
}

// ClampPower bounds a power value to [0, MaxPower].
func ClampPower(p int) int {
	if p < 0 {
		return 0
	}
	if p > MaxPower {
		return MaxPower
	}
	return p
}
