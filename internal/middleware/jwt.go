package middleware

import (
	"context"  // Context for user lookups
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"bingo_ledger/internal/apperrors" // Error kinds
	"bingo_ledger/internal/domain"    // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
)

const (
	actorKey  = "actor"  // *domain.User of the caller
	userIDKey = "userID" // uint id of the caller
)

// TokenResolver turns a bearer token into the user it names
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// JWTAuthMiddleware validates bearer tokens and loads the calling user from the store
func JWTAuthMiddleware(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, apperrors.Unauthorized(nil))
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")         // Extract the token string
		actor, err := resolver.Resolve(c.Request.Context(), tokenStr) // Parse token and reload the user
		if err != nil {
			abortUnauthorized(c, err)
			return
		}
		c.Set(actorKey, actor)     // Store the caller in context
		c.Set(userIDKey, actor.ID) // Store userID in context for logging
		c.Next()                   // Proceed to the next handler
	}
}

func abortUnauthorized(c *gin.Context, err error) {
	status, body := apperrors.Response(err)
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, body)
}

// Actor returns the authenticated caller, nil outside JWTAuthMiddleware
func Actor(c *gin.Context) *domain.User {
	v, exists := c.Get(actorKey)
	if !exists {
		return nil
	}
	actor, _ := v.(*domain.User)
	return actor
}
