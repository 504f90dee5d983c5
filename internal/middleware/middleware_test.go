package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bingo_ledger/internal/apperrors"
	"bingo_ledger/internal/authz"
	"bingo_ledger/internal/domain"
	"bingo_ledger/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeResolver map[string]*domain.User

func (f fakeResolver) Resolve(_ context.Context, token string) (*domain.User, error) {
	if u, ok := f[token]; ok {
		return u, nil
	}
	return nil, apperrors.Unauthorized(errors.New("unknown token"))
}

func newEngine(resolver middleware.TokenResolver, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestLogger())
	handlers := append([]gin.HandlerFunc{middleware.JWTAuthMiddleware(resolver)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": middleware.Actor(c).ID})
	})
	r.GET("/protected", handlers...)
	return r
}

func get(r *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := newEngine(fakeResolver{"good": {ID: 7, Role: domain.RoleUser}})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, map[string]string{"Authorization": tt.header})
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
				assert.JSONEq(t, `{"error":"Could not validate credentials","kind":"unauthorized"}`, w.Body.String())
			}
		})
	}
}

func TestRequireAction(t *testing.T) {
	r := newEngine(fakeResolver{
		"owner": {ID: 1, Role: domain.RoleOwner},
		"user":  {ID: 2, Role: domain.RoleUser},
	}, middleware.RequireAction(authz.ActionListUsers))

	assert.Equal(t, http.StatusOK, get(r, map[string]string{"Authorization": "Bearer owner"}).Code)

	w := get(r, map[string]string{"Authorization": "Bearer user"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "permission_denied")
}

func TestRequestLoggerPropagatesRequestID(t *testing.T) {
	r := newEngine(fakeResolver{})

	w := get(r, map[string]string{middleware.RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))

	w = get(r, nil)
	assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 36)
}
