package api

import (
	"time"

	"github.com/hexxt-git/knowdown/internal/service"
	"github.com/hexxt-git/knowdown/internal/storage"
)

// Handler groups the player-facing HTTP handlers.
type Handler struct {
	repo         storage.Repository
	battles      *service.BattleManager
	packCooldown time.Duration
}

// NewHandler creates a Handler with the given repository, battle manager
// and configured pack cooldown.
func NewHandler(repo storage.Repository, battles *service.BattleManager, packCooldown time.Duration) *Handler {
	return &Handler{repo: repo, battles: battles, packCooldown: packCooldown}
}
