package service_test

import (
	"context"
	"testing"
	"time"

	"bingo_ledger/internal/domain"
	"bingo_ledger/internal/service"
	"bingo_ledger/internal/service/servicetest"
	"bingo_ledger/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockCache is a mock implementation of service.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, prefixes ...string) error {
	args := m.Called(ctx, prefixes)
	return args.Error(0)
}

var testHasher = &utils.BcryptHasher{Cost: bcrypt.MinCost}

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// seedUser stores a user with a hashed password
func seedUser(t *testing.T, store *servicetest.MemStore, u domain.User, password string) *domain.User {
	t.Helper()
	hash, err := testHasher.Hash(password)
	require.NoError(t, err)
	u.Password = hash
	return store.Seed(u)
}

func newUserService(store service.Store) *service.UserService {
	return service.NewUserService(store, testHasher, utils.NopCache{}, time.Minute)
}
