package service

import (
	"context" // Request scoped cancellation
	"time"    // Cache lifetimes

	"bingo_ledger/internal/domain" // Domain models
	"bingo_ledger/internal/utils"  // Token claims

	"github.com/shopspring/decimal" // Exact money arithmetic
)

// UserFilter narrows a user listing. Nil fields do not filter.
type UserFilter struct {
	Role     *domain.Role // Only users holding this role
	ParentID *uint        // Only direct children of this user
}

// Page selects a window of a listing. A zero Limit means everything.
type Page struct {
	Offset int // Rows to skip
	Limit  int // Rows to return
}

// TransactionFilter narrows a ledger listing
type TransactionFilter struct {
	OwnerID *uint
	Page    Page
}

// UserRepository persists users. Lookups return nil, nil when the row does not exist.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	// Debit subtracts amount from remaining_balance only if it covers amount.
	// It reports false and changes nothing otherwise, and returns the balance after the debit.
	Debit(ctx context.Context, id uint, amount decimal.Decimal) (decimal.Decimal, bool, error)
	SetBingoCardCode(ctx context.Context, id uint, code string) error
}

// TransactionRepository persists ledger rows. Rows are never updated.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.GameTransaction) error
	List(ctx context.Context, filter TransactionFilter) ([]domain.GameTransaction, error)
}

// CardRepository persists bingo card sets
type CardRepository interface {
	Create(ctx context.Context, card *domain.BingoCard) error
	GetByID(ctx context.Context, id string) (*domain.BingoCard, error)
	Exists(ctx context.Context, id string) (bool, error)
	DeleteByOwner(ctx context.Context, ownerID uint) (int64, error)
}

// Store groups the repositories of one session
type Store interface {
	Users() UserRepository
	Transactions() TransactionRepository
	Cards() CardRepository
	// WithinTx runs fn against a transactional store. fn's error rolls everything back.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// Cache is a JSON read-through cache for listings
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, prefixes ...string) error
}

// Hasher hashes and checks passwords
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenService issues and verifies signed access tokens
type TokenService interface {
	Issue(userID uint, role domain.Role) (string, error)
	Parse(token string) (*utils.Claims, error)
}
