package repository

import (
	"context" // Request scoped cancellation
	"errors"  // Error inspection

	"bingo_ledger/internal/domain"  // Domain models and errors
	"bingo_ledger/internal/service" // Repository interfaces

	"gorm.io/gorm" // GORM ORM library
)

// Store implements service.Store on top of GORM
type Store struct {
	db *gorm.DB // Connection or transaction session
}

// NewStore creates a store over an open connection
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Users returns the user repository bound to this store's session
func (s *Store) Users() service.UserRepository { return &UserRepository{db: s.db} }

// Transactions returns the ledger repository bound to this store's session
func (s *Store) Transactions() service.TransactionRepository {
	return &TransactionRepository{db: s.db}
}

// Cards returns the card repository bound to this store's session
func (s *Store) Cards() service.CardRepository { return &CardRepository{db: s.db} }

// WithinTx runs fn inside a database transaction. The transaction commits when fn
// returns nil and rolls back on error or panic.
func (s *Store) WithinTx(ctx context.Context, fn func(tx service.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx}) // Repositories bound to the transaction
	})
}

// translate maps driver errors onto domain errors
func translate(err error) error {
	// Needs TranslateError on the gorm config
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicate
	}
	return err
}
