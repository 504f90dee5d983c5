package domain

import (
	"time" // Timestamps

	"github.com/shopspring/decimal" // Exact balance arithmetic
)

// User Model
type User struct {
	ID               uint            `gorm:"primaryKey" json:"id"`                                           // Primary key
	Phone            string          `gorm:"size:32;uniqueIndex;not null" json:"phone"`                      // Login identifier
	Password         string          `gorm:"not null" json:"-"`                                              // Bcrypt hash, never serialised
	Name             string          `gorm:"size:128" json:"name"`                                           // Display name
	Region           string          `gorm:"size:64" json:"region"`                                          // Region
	City             string          `gorm:"size:64" json:"city"`                                            // City
	Role             Role            `gorm:"size:16;index;not null;default:user" json:"role"`                // Hierarchy role
	ParentID         *uint           `gorm:"index" json:"parent_id"`                                         // Owning user
	CreatedBy        *uint           `json:"created_by"`                                                     // Creating user
	TotalBalance     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"total_balance"`     // Credited balance
	RemainingBalance decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"remaining_balance"` // Spendable balance
	BingoCardCode    *string         `gorm:"size:16" json:"bingo_card_code"`                                 // Live card set
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsChildOf reports whether u hangs directly below the user with the given id
func (u *User) IsChildOf(id uint) bool {
	return (u.ParentID != nil && *u.ParentID == id) || (u.CreatedBy != nil && *u.CreatedBy == id)
}
