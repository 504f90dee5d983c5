package domain

import "github.com/shopspring/decimal" // Exact balance arithmetic

func init() {
	// Amounts go over the wire as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// GameTransaction is an immutable ledger row. Balances are snapshots taken when it was recorded.
type GameTransaction struct {
	ID               uint            `gorm:"primaryKey" json:"id"`                                 // Primary key
	OwnerID          uint            `gorm:"index;not null" json:"owner_id"`                       // User who placed it
	OwnerName        string          `gorm:"size:128" json:"owner_name"`                           // Name at the time
	RemainingBalance decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"remaining_balance"` // Post-debit balance
	TotalBalance     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_balance"`     // Total at the time
	DedactedAmount   decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"dedacted_amount"`   // Debited amount
	GameID           string          `gorm:"size:64;index" json:"game_id"`
	BetAmount        decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"bet_amount"`
	NumberOfPlayers  int             `json:"number_of_players"`
	WinningAmount    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"winning_amount"`
	CreatedAt        int64           `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
}
