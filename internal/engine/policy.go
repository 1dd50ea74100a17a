package engine

import (
	"math/rand"

	"github.com/hexxt-git/knowdown/internal/game"
)

// greedThreshold is the number of affordable cards above which the
// opponent stops conserving power and plays its most valuable card.
const greedThreshold = 3

// chooseCard picks which card the opponent plays from its hand given its
// current power budget. With more than greedThreshold affordable cards it
// takes the highest level one; otherwise the lowest. Ties break on hand
// order, so the policy is fully deterministic and reproducible in tests.
func chooseCard(hand []game.BattleCard, power int) (int, bool) {
	affordable := make([]int, 0, len(hand))
	for i := range hand {
		if game.CardCost(hand[i].Level) <= power {
			affordable = append(affordable, i)
		}
	}
	if len(affordable) == 0 {
		return 0, false
	}

	best := affordable[0]
	if len(affordable) > greedThreshold {
		for _, i := range affordable[1:] {
			if hand[i].Level > hand[best].Level {
				best = i
			}
		}
		return best, true
	}
	for _, i := range affordable[1:] {
		if hand[i].Level < hand[best].Level {
			best = i
		}
	}
	return best, true
}

// enemyAnswerIndex draws the opponent's answer to a card: the correct
// index with the level-dependent skill chance, otherwise one of the three
// incorrect options uniformly.
func enemyAnswerIndex(card game.BattleCard, rng *rand.Rand) int {
	correct := card.CorrectAnswer
	if rng.Float64() < game.EnemyCorrectChance(card.Level) {
		return correct
	}
	wrong := rng.Intn(len(card.Answers) - 1)
	if wrong >= correct {
		wrong++
	}
	return wrong
}
