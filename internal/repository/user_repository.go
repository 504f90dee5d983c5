package repository

import (
	"context" // Request scoped cancellation
	"errors"  // Error inspection
	"fmt"     // Error wrapping

	"bingo_ledger/internal/domain"  // Domain models
	"bingo_ledger/internal/service" // Filters and interfaces

	"github.com/shopspring/decimal" // Exact money arithmetic
	"gorm.io/gorm"                  // GORM ORM library
)

// UserRepository implements service.UserRepository
type UserRepository struct {
	db *gorm.DB
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	// Insert the row, the unique phone index rejects duplicates
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user with phone %s: %w", user.Phone, translate(err))
	}
	return nil
}

// GetByID retrieves a user by primary key
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByPhone retrieves a user by login phone
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.first(ctx, "phone = ?", phone)
}

func (r *UserRepository) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error // Query single user
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Absence is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// List returns users matching the filter, oldest first
func (r *UserRepository) List(ctx context.Context, filter service.UserFilter) ([]domain.User, error) {
	query := r.db.WithContext(ctx).Model(&domain.User{}) // Base query
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role) // Filter by role
	}
	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID) // Filter by parent
	}
	var users []domain.User
	if err := query.Order("id").Find(&users).Error; err != nil { // Oldest first
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Update writes the given columns of one user
func (r *UserRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil // Nothing to write
	}
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields) // Map updates write zero values too
	if res.Error != nil {
		return fmt.Errorf("failed to update user %d: %w", id, translate(res.Error))
	}
	return nil
}

// Debit deducts amount from remaining_balance only if the balance covers it
func (r *UserRepository) Debit(ctx context.Context, id uint, amount decimal.Decimal) (decimal.Decimal, bool, error) {
	// The guard and the decrement are one statement so concurrent debits cannot both pass the check
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ? AND remaining_balance >= ?", id, amount).
		Update("remaining_balance", gorm.Expr("remaining_balance - ?", amount))
	if res.Error != nil {
		return decimal.Zero, false, fmt.Errorf("failed to debit user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return decimal.Zero, false, nil // Balance did not cover the amount
	}
	var user domain.User // Read back the balance as stored
	if err := r.db.WithContext(ctx).Select("remaining_balance").First(&user, id).Error; err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to read balance of user %d: %w", id, err)
	}
	return user.RemainingBalance, true, nil
}

// SetBingoCardCode links a user to its live card set
func (r *UserRepository) SetBingoCardCode(ctx context.Context, id uint, code string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("bingo_card_code", code) // Point at the live set
	if res.Error != nil {
		return fmt.Errorf("failed to link card %s to user %d: %w", code, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with id %d not found", id) // Rolls back the card insert
	}
	return nil
}
