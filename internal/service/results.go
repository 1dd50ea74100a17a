package service

import (
	"context"

	"github.com/hexxt-git/knowdown/internal/constants"
	"github.com/hexxt-git/knowdown/internal/game"
	"github.com/hexxt-git/knowdown/internal/logging"
)

// ResultsRepo is the slice of the repository result reporting needs.
type ResultsRepo interface {
	RecordBattleResult(playerSubject, opponentSubject string, playerWon bool, playerCaptured, opponentCaptured []string) error
}

// Results persists battle outcomes. It satisfies the engine reporter
// seam so finished sessions submit through it exactly once.
type Results struct {
	repo ResultsRepo
}

func NewResults(repo ResultsRepo) *Results {
	return &Results{repo: repo}
}

// ReportResult records win/loss counters for both profiles and moves
// the captured cards to the winner in one transaction.
func (r *Results) ReportResult(ctx context.Context, playerSubject string, result game.BattleResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	playerWon := result.Result == game.OutcomeWon
	err := r.repo.RecordBattleResult(
		playerSubject,
		result.OpponentSubject,
		playerWon,
		cardIDs(result.PlayerCards),
		cardIDs(result.OpponentCards),
	)
	if err != nil {
		logging.Error("failed to record battle result", err, logging.Fields{
			constants.LogFieldSubject: playerSubject,
			constants.LogFieldResult:  string(result.Result),
		})
		return err
	}
	return nil
}

func cardIDs(cards []game.BattleCard) []string {
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.CardID)
	}
	return ids
}
