package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hexxt-git/knowdown/internal/constants"
	"github.com/hexxt-git/knowdown/internal/service"
)

// ListFriends returns the player's friends with their card counts.
func (h *Handler) ListFriends(c *gin.Context) {
	subject := subjectFromContext(c)
	friends, err := service.ListFriends(h.repo, subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchFriends})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(friends)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchFriends})
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListFriendInvites returns the pending invites addressed to the player.
func (h *Handler) ListFriendInvites(c *gin.Context) {
	subject := subjectFromContext(c)
	invites, err := service.ListPendingInvites(h.repo, subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchInvites})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(invites)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchInvites})
		return
	}
	c.JSON(http.StatusOK, out)
}

// SendFriendInvite creates an invite from the player to another subject.
func (h *Handler) SendFriendInvite(c *gin.Context) {
	var body struct {
		Subject string `json:"subject"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	subject := subjectFromContext(c)
	invite, err := service.SendInvite(h.repo, subject, body.Subject)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfInvite),
			errors.Is(err, service.ErrAlreadyFriends),
			errors.Is(err, service.ErrInviteExists):
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedSendInvite})
		}
		return
	}
	out, err := MarshalIntoSnakeTimestamps(invite)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedSendInvite})
		return
	}
	c.JSON(http.StatusOK, out)
}

// RespondFriendInvite accepts or rejects a pending invite addressed to
// the player.
func (h *Handler) RespondFriendInvite(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("inviteID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	var body struct {
		Accept bool `json:"accept"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	subject := subjectFromContext(c)
	invite, err := service.RespondToInvite(h.repo, subject, uint(id), body.Accept)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: err.Error()})
		case errors.Is(err, service.ErrNotInviteReceiver):
			c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: err.Error()})
		case errors.Is(err, service.ErrInviteProcessed):
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedRespondInvite})
		}
		return
	}
	out, err := MarshalIntoSnakeTimestamps(invite)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedRespondInvite})
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListLeaderboard returns ranked players. Query parameters: sort_by
// (wins|cards) and friends (1 restricts to the player's friends).
func (h *Handler) ListLeaderboard(c *gin.Context) {
	sortBy := service.SortByWins
	if c.Query("sort_by") == string(service.SortByCards) {
		sortBy = service.SortByCards
	}
	friendsOnly := c.Query("friends") == "1"

	subject := subjectFromContext(c)
	entries, err := service.ComputeLeaderboard(h.repo, subject, sortBy, friendsOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchLeaderboard})
		return
	}
	c.JSON(http.StatusOK, entries)
}
