package api

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hexxt-git/knowdown/internal/constants"
	"github.com/hexxt-git/knowdown/internal/service"
)

// ListCards returns the full card catalog.
func (h *Handler) ListCards(c *gin.Context) {
	cards, err := h.repo.GetCards()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchCards})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(cards)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchCards})
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetCollection returns the authenticated player's owned cards.
func (h *Handler) GetCollection(c *gin.Context) {
	subject := subjectFromContext(c)
	cards, err := h.repo.GetCollection(subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchCollection})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(cards)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchCollection})
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetPlayerStats returns the authenticated player's profile, aggregate
// counters, collection size and derived rank.
func (h *Handler) GetPlayerStats(c *gin.Context) {
	subject := subjectFromContext(c)
	user, err := h.repo.GetUserBySubject(subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchStats})
		return
	}
	if user == nil {
		name, _ := c.Get(ctxUserName)
		displayName, _ := name.(string)
		user, err = h.repo.UpsertUser(subject, displayName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchStats})
			return
		}
	}
	count, err := h.repo.CountCollection(subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchStats})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subject":      user.Subject,
		"display_name": user.DisplayName,
		"games_played": user.GamesPlayed,
		"games_won":    user.GamesWon,
		"games_lost":   user.GamesLost,
		"card_count":   count,
		"rank":         service.OpponentRank(user),
	})
}

var displayNameRegex = regexp.MustCompile(`^[\p{L}\p{M}\p{N}.'\- ]{4,40}$`)

// UpdatePlayerProfile updates the authenticated player's display name.
func (h *Handler) UpdatePlayerProfile(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	trimmed := strings.TrimSpace(body.Name)
	if !displayNameRegex.MatchString(trimmed) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidPlayerName})
		return
	}

	subject := subjectFromContext(c)
	user, err := h.repo.UpsertUser(subject, trimmed)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedUpdateProfile})
		return
	}
	user.DisplayName = trimmed
	if err := h.repo.SaveUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedUpdateProfile})
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: "ok"})
}
