package repository

import (
	"context" // Request scoped cancellation
	"fmt"     // Error wrapping

	"bingo_ledger/internal/domain"  // Domain models
	"bingo_ledger/internal/service" // Filters and interfaces

	"gorm.io/gorm" // GORM ORM library
)

// TransactionRepository implements service.TransactionRepository
type TransactionRepository struct {
	db *gorm.DB
}

// Create appends a ledger row
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.GameTransaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil { // Insert ledger row
		return fmt.Errorf("failed to create game transaction for user %d: %w", tx.OwnerID, err)
	}
	return nil
}

// List returns ledger rows newest first
func (r *TransactionRepository) List(ctx context.Context, filter service.TransactionFilter) ([]domain.GameTransaction, error) {
	query := r.db.WithContext(ctx).Model(&domain.GameTransaction{}) // Base query
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID) // Filter by owner
	}
	if filter.Page.Limit > 0 {
		query = query.Offset(filter.Page.Offset).Limit(filter.Page.Limit) // Apply pagination
	}
	var txs []domain.GameTransaction
	// Newest first, id breaks ties within the same millisecond
	if err := query.Order("created_at desc").Order("id desc").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to list game transactions: %w", err)
	}
	return txs, nil
}
