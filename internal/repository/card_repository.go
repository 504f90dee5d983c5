package repository

import (
	"context" // Request scoped cancellation
	"errors"  // Error inspection
	"fmt"     // Error wrapping

	"bingo_ledger/internal/domain" // Domain models

	"gorm.io/gorm" // GORM ORM library
)

// CardRepository implements service.CardRepository
type CardRepository struct {
	db *gorm.DB
}

// Create inserts a card set
func (r *CardRepository) Create(ctx context.Context, card *domain.BingoCard) error {
	if err := r.db.WithContext(ctx).Create(card).Error; err != nil { // Insert card set
		return fmt.Errorf("failed to create bingo card %s: %w", card.ID, translate(err))
	}
	return nil
}

// GetByID retrieves a card set by code, nil when absent
func (r *CardRepository) GetByID(ctx context.Context, id string) (*domain.BingoCard, error) {
	var card domain.BingoCard
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error // Query by code
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Absence is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bingo card %s: %w", id, err)
	}
	return &card, nil
}

// Exists reports whether a card code is taken
func (r *CardRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64 // Matching rows
	if err := r.db.WithContext(ctx).Model(&domain.BingoCard{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check bingo card %s: %w", id, err)
	}
	return count > 0, nil
}

// DeleteByOwner removes the owner's card set and reports how many rows went
func (r *CardRepository) DeleteByOwner(ctx context.Context, ownerID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&domain.BingoCard{}) // Hard delete
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete bingo cards of user %d: %w", ownerID, res.Error)
	}
	return res.RowsAffected, nil
}
