package api

import (
	"net/http" // HTTP status codes

	"bingo_ledger/internal/domain"     // Importing domain models
	"bingo_ledger/internal/middleware" // Authenticated caller
	"bingo_ledger/internal/service"    // Business operations

	"github.com/gin-gonic/gin" // Gin web framework
)

// AssignCardsRequest replaces the card set of user ID
type AssignCardsRequest struct {
	ID    uint               `json:"id" binding:"required"`    // Target user
	Cards []domain.CardEntry `json:"cards" binding:"required"` // New card set
}

// FetchCardRequest looks a card set up by code
type FetchCardRequest struct {
	BingoCardCode string `json:"bingo_card_code" binding:"required"` // Card code
}

// AssignCardsHandler stores a new card set for a user, dropping the previous one
func AssignCardsHandler(cards *service.CardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AssignCardsRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindError(err))
			return
		}
		card, err := cards.Assign(c.Request.Context(), middleware.Actor(c), req.ID, req.Cards)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, card)
	}
}

// FetchCardHandler returns a card set by code
func FetchCardHandler(cards *service.CardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FetchCardRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindError(err))
			return
		}
		card, err := cards.Fetch(c.Request.Context(), middleware.Actor(c), req.BingoCardCode)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, card)
	}
}
