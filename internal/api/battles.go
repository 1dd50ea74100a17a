package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hexxt-git/knowdown/internal/constants"
	"github.com/hexxt-git/knowdown/internal/engine"
	"github.com/hexxt-git/knowdown/internal/game"
	"github.com/hexxt-git/knowdown/internal/service"
)

// battleView strips the fields the player must not see from a snapshot.
// Cards waiting for the player's answer keep their question but lose the
// solution; the enemy's hand and bag lose their whole body, since those
// are the questions the player will be asked later. Level, subject and
// thumbnail stay for the card-back UI.
func battleView(b *game.Battle) *game.Battle {
	for i := range b.Table.PlayerSide {
		b.Table.PlayerSide[i].CorrectAnswer = -1
		b.Table.PlayerSide[i].Explanation = ""
	}
	redactCardBodies(b.Enemy.Hand)
	redactCardBodies(b.Enemy.Bag)
	return b
}

func redactCardBodies(cards []game.BattleCard) {
	for i := range cards {
		cards[i].Question = ""
		cards[i].Answers = nil
		cards[i].CorrectAnswer = -1
		cards[i].Explanation = ""
	}
}

func battleResponse(sess *engine.Session, b *game.Battle) gin.H {
	resp := gin.H{"battle": battleView(b)}
	if b.Finished() {
		status := sess.Status()
		resp["submit_status"] = status
	}
	return resp
}

// StartBattle matches the player and returns the dealt battle. A player
// with a running battle gets that battle back.
func (h *Handler) StartBattle(c *gin.Context) {
	subject := subjectFromContext(c)
	battle, err := h.battles.Start(subject)
	if err != nil {
		if errors.Is(err, service.ErrNoCardsInCatalog) {
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrNoCardsInCatalog})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedStartBattle})
		return
	}
	c.JSON(http.StatusOK, gin.H{"battle": battleView(battle)})
}

func (h *Handler) session(c *gin.Context) (*engine.Session, bool) {
	battleID := c.Param("battleID")
	if battleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidBattleID})
		return nil, false
	}
	sess, err := h.battles.Get(battleID, subjectFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrNotYourBattle) {
			c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
			return nil, false
		}
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
		return nil, false
	}
	return sess, true
}

// GetBattle returns the current state of a running battle.
func (h *Handler) GetBattle(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, battleResponse(sess, sess.Snapshot()))
}

// PlayCard places a card from the player's hand onto the table.
func (h *Handler) PlayCard(c *gin.Context) {
	var body struct {
		CardID string `json:"card_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.CardID == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}

	battle, err := sess.PlayCard(body.CardID)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrBattleOver):
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrBattleAlreadyOver})
		case errors.Is(err, engine.ErrCardNotInHand):
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrCardNotInHand})
		case errors.Is(err, engine.ErrNotEnoughPower):
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrNotEnoughPower})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		}
		return
	}
	c.JSON(http.StatusOK, battleResponse(sess, battle))
}

// SubmitAnswer answers a card on the player's side of the table. The
// feedback comes back immediately; the card leaves the table after the
// display delay.
func (h *Handler) SubmitAnswer(c *gin.Context) {
	var body struct {
		CardID      string `json:"card_id"`
		AnswerIndex *int   `json:"answer_index"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.CardID == "" || body.AnswerIndex == nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}

	result := sess.SubmitAnswer(body.CardID, *body.AnswerIndex)
	c.JSON(http.StatusOK, gin.H{
		"is_correct":     result.IsCorrect,
		"explanation":    result.Explanation,
		"correct_answer": result.CorrectAnswer,
	})
}

// ForfeitBattle ends the battle as a loss for the player.
func (h *Handler) ForfeitBattle(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.Forfeit()
	c.JSON(http.StatusOK, battleResponse(sess, sess.Snapshot()))
}
