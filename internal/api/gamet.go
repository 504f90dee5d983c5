package api

import (
	"net/http" // HTTP status codes

	"bingo_ledger/internal/apperrors"  // Error kinds
	"bingo_ledger/internal/middleware" // Authenticated caller
	"bingo_ledger/internal/service"    // Business operations

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Money amounts
)

// RecordTransactionRequest is the body of POST /gamet
type RecordTransactionRequest struct {
	DedactedAmount  decimal.Decimal `json:"dedacted_amount" binding:"required,gt=0"` // Amount taken from the balance
	GameID          string          `json:"game_id"`                                 // Game reference
	BetAmount       decimal.Decimal `json:"bet_amount" binding:"gte=0"`              // Stake per card
	NumberOfPlayers int             `json:"number_of_players" binding:"gte=0"`       // Players in the game
	WinningAmount   decimal.Decimal `json:"winning_amount" binding:"gte=0"`          // Prize pool
}

// RecordTransactionHandler debits the caller and appends a ledger row
func RecordTransactionHandler(ledger *service.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RecordTransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindError(err))
			return
		}
		record, err := ledger.Record(c.Request.Context(), middleware.Actor(c), service.RecordInput{
			DedactedAmount:  req.DedactedAmount,
			GameID:          req.GameID,
			BetAmount:       req.BetAmount,
			NumberOfPlayers: req.NumberOfPlayers,
			WinningAmount:   req.WinningAmount,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, record)
	}
}

// ListTransactionsHandler returns the whole ledger
func ListTransactionsHandler(ledger *service.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		txs, err := ledger.ListAll(c.Request.Context(), middleware.Actor(c), parsePage(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, txs)
	}
}

// ListUserTransactionsHandler returns the ledger rows of the user in the path
func ListUserTransactionsHandler(ledger *service.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := parseID(c, "id")
		if !ok {
			respondError(c, apperrors.InvalidInput("id must be a positive integer"))
			return
		}
		txs, err := ledger.ListByOwner(c.Request.Context(), middleware.Actor(c), ownerID, parsePage(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, txs)
	}
}

// ListMyTransactionsHandler returns the caller's own ledger rows
func ListMyTransactionsHandler(ledger *service.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		txs, err := ledger.ListMine(c.Request.Context(), middleware.Actor(c), parsePage(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, txs)
	}
}
