package middleware

import (
	"bingo_ledger/internal/apperrors" // Error kinds
	"bingo_ledger/internal/authz"     // Permission table

	"github.com/gin-gonic/gin" // Gin web framework
)

// RequireAction rejects callers whose role may not perform action before the handler
// reads the request body. The service repeats the check.
func RequireAction(action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Actor(c) // Set by JWTAuthMiddleware
		if actor == nil {
			c.AbortWithStatusJSON(apperrors.Response(apperrors.Unauthorized(nil)))
			return
		}
		if err := authz.Authorize(actor.Role, action); err != nil {
			c.AbortWithStatusJSON(apperrors.Response(err))
			return
		}
		c.Next() // Proceed to the next handler
	}
}
