package domain

import "time"

// CardEntry is one bingo card: five labelled columns plus its printed number
type CardEntry struct {
	B          []int `json:"B"`
	I          []int `json:"I"`
	N          []int `json:"N"`
	G          []int `json:"G"`
	O          []int `json:"O"`
	CardNumber int   `json:"cardNumber"`
}

// CardSet is the stored payload of a BingoCard
type CardSet struct {
	Cards []CardEntry `json:"cards"`
}

// BingoCard Model. A user owns at most one live card set.
type BingoCard struct {
	ID        string    `gorm:"primaryKey;size:16" json:"id"`               // Generated card code
	OwnerID   uint      `gorm:"uniqueIndex;not null" json:"owner_id"`       // Owning user
	CardData  CardSet   `gorm:"serializer:json;type:text" json:"card_data"` // Card grid
	CreatedAt time.Time `json:"created_at"`
}
