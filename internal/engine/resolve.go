package engine

import (
	"fmt"

	"github.com/hexxt-git/knowdown/internal/game"
)

// AnswerResult is the immediate feedback for a submitted answer. It is
// returned before any state mutation so the client can show the outcome
// while the card removal is still pending.
type AnswerResult struct {
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation"`
	CorrectAnswer int    `json:"correctAnswer"`
}

// notFoundResult is returned when the referenced card is no longer on the
// table (already answered, expired or swept). Never an error.
var notFoundResult = AnswerResult{IsCorrect: false, Explanation: "Card not found", CorrectAnswer: 0}

// resolvePlayerAnswer checks a submitted answer index against a card on
// the player side of the table. It is a pure computation; applying the
// consequence to the battle state is a separate, possibly delayed step.
//
// When the card carries no usable correct-answer index the player path
// falls back to deriving one from the card id. The enemy path does not do
// this; the asymmetry is intentional and pinned down by tests.
func resolvePlayerAnswer(b *game.Battle, cardID string, answerIndex int) AnswerResult {
	card, ok := findTableCard(b.Table.PlayerSide, cardID)
	if !ok {
		return notFoundResult
	}

	correct := card.CorrectAnswer
	if correct < 0 || correct >= len(card.Answers) {
		correct = fallbackAnswerIndex(cardID)
	}
	isCorrect := answerIndex == correct

	explanation := fmt.Sprintf("Sorry, that's wrong. The correct answer is %s.", answerText(card, correct))
	if isCorrect {
		explanation = fmt.Sprintf("That's correct! The answer is %s.", answerText(card, correct))
	}
	if card.Explanation != "" {
		explanation += " " + card.Explanation
	}
	return AnswerResult{IsCorrect: isCorrect, Explanation: explanation, CorrectAnswer: correct}
}

func answerText(card game.BattleCard, idx int) string {
	if idx >= 0 && idx < len(card.Answers) {
		return card.Answers[idx]
	}
	return fmt.Sprintf("option %d", idx+1)
}

// fallbackAnswerIndex derives a stable answer index from a card id: the
// first digit of its numeric part mod 4, or the byte sum mod 4 when the id
// has no digits.
func fallbackAnswerIndex(id string) int {
	for _, r := range id {
		if r >= '0' && r <= '9' {
			return int(r-'0') % 4
		}
	}
	sum := 0
	for _, r := range id {
		sum += int(r)
	}
	return sum % 4
}
