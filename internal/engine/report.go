package engine

import (
	"context"

	"github.com/hexxt-git/knowdown/internal/game"
)

// Reporter receives the terminal result of a battle exactly once. The
// implementation persists stat updates and card transfers; the engine only
// cares whether the hand-off succeeded so it can surface a status flag.
type Reporter interface {
	ReportResult(ctx context.Context, playerSubject string, result game.BattleResult) error
}

// SubmitStatus reflects the outcome of the result hand-off. The battle
// outcome stands regardless of persistence success; submission is
// best-effort, at-most-once.
type SubmitStatus struct {
	Submitted bool   `json:"submitted"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}
