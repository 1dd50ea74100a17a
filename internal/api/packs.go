package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hexxt-git/knowdown/internal/constants"
	"github.com/hexxt-git/knowdown/internal/dedupe"
	"github.com/hexxt-git/knowdown/internal/game"
	"github.com/hexxt-git/knowdown/internal/service"
)

// GetPackStatus reports whether the authenticated player can open a pack
// and the remaining cooldown otherwise.
func (h *Handler) GetPackStatus(c *gin.Context) {
	subject := subjectFromContext(c)
	status, err := service.GetPackStatus(h.repo, subject, h.packCooldown, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedPackStatus})
		return
	}
	c.JSON(http.StatusOK, status)
}

// OpenPack grants the player a pack of random cards. Concurrent opens by
// the same player collapse into one grant.
func (h *Handler) OpenPack(c *gin.Context) {
	subject := subjectFromContext(c)
	v, err, _ := dedupe.PackGroup.Do(subject, func() (interface{}, error) {
		return service.OpenPack(h.repo, subject, h.packCooldown, time.Now())
	})
	if err != nil {
		if errors.Is(err, service.ErrPackOnCooldown) {
			c.JSON(http.StatusTooManyRequests, gin.H{constants.JSONKeyError: constants.ErrPackOnCooldown})
			return
		}
		if errors.Is(err, service.ErrNoCardsInCatalog) {
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrNoCardsInCatalog})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedOpenPack})
		return
	}
	cards := v.([]game.Card)
	out, err := MarshalIntoSnakeTimestamps(cards)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedOpenPack})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": out})
}
