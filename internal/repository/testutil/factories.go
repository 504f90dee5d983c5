package testutil

import (
	"bingo_ledger/internal/domain"

	"github.com/shopspring/decimal"
)

// CreateTestUser returns an unsaved user with a zero balance
func CreateTestUser(phone string, role domain.Role) *domain.User {
	return &domain.User{
		Phone:            phone,
		Password:         "$2a$04$placeholderplaceholderplaceholderplaceholderplacehold",
		Name:             "Test " + phone,
		Role:             role,
		TotalBalance:     decimal.Zero,
		RemainingBalance: decimal.Zero,
	}
}

// CreateTestUserWithBalance returns an unsaved user holding balance
func CreateTestUserWithBalance(phone string, role domain.Role, balance string) *domain.User {
	user := CreateTestUser(phone, role)
	user.RemainingBalance = decimal.RequireFromString(balance)
	user.TotalBalance = user.RemainingBalance
	return user
}

// CreateTestCardSet returns a one-card set that passes schema validation
func CreateTestCardSet() domain.CardSet {
	return domain.CardSet{Cards: []domain.CardEntry{{
		B:          []int{1, 2, 3, 4, 5},
		I:          []int{16, 17, 18, 19, 20},
		N:          []int{31, 32, 0, 34, 35},
		G:          []int{46, 47, 48, 49, 50},
		O:          []int{61, 62, 63, 64, 65},
		CardNumber: 1,
	}}}
}
