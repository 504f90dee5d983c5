package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"bingo_ledger/internal/apperrors"
	"bingo_ledger/internal/domain"
	"bingo_ledger/internal/service"
	"bingo_ledger/internal/service/servicetest"
	"bingo_ledger/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_InsufficientFundsWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewMemStore()
	player := store.Seed(domain.User{Phone: "1", Name: "Abebe", Role: domain.RoleUser, RemainingBalance: dec("100"), TotalBalance: dec("100")})
	ledger := service.NewLedgerService(store, utils.NopCache{}, time.Minute)

	_, err := ledger.Record(ctx, player, service.RecordInput{DedactedAmount: dec("150"), GameID: "g-1"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindInsufficientFunds))
	assert.Equal(t, "You don't have enough balance to place this bet", err.Error())

	assert.Equal(t, 0, store.TransactionCount())
	stored, _ := store.User(player.ID)
	assert.True(t, stored.RemainingBalance.Equal(dec("100")))
}

func TestLedgerService_RecordDebitsBalance(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewMemStore()
	player := store.Seed(domain.User{Phone: "1", Name: "Abebe", Role: domain.RoleUser, RemainingBalance: dec("100"), TotalBalance: dec("500")})

	cache := new(MockCache)
	cache.On("Invalidate", mock.Anything, []string{"gamet:", "users:"}).Return(nil).Twice()
	ledger := service.NewLedgerService(store, cache, time.Minute)

	record, err := ledger.Record(ctx, player, service.RecordInput{
		DedactedAmount:  dec("40"),
		GameID:          "g-7",
		BetAmount:       dec("10"),
		NumberOfPlayers: 4,
		WinningAmount:   dec("32"),
	})
	require.NoError(t, err)
	assert.True(t, record.RemainingBalance.Equal(dec("60")))
	assert.True(t, record.TotalBalance.Equal(dec("500")))
	assert.Equal(t, "Abebe", record.OwnerName)
	assert.Equal(t, player.ID, record.OwnerID)
	assert.NotZero(t, record.ID)
	assert.NotZero(t, record.CreatedAt)

	stored, _ := store.User(player.ID)
	assert.True(t, stored.RemainingBalance.Equal(dec("60")))

	// The stale actor snapshot still says 100; the store balance wins
	second, err := ledger.Record(ctx, player, service.RecordInput{DedactedAmount: dec("60"), GameID: "g-8"})
	require.NoError(t, err)
	assert.True(t, second.RemainingBalance.IsZero())

	_, err = ledger.Record(ctx, player, service.RecordInput{DedactedAmount: dec("0.01"), GameID: "g-9"})
	assert.True(t, apperrors.Is(err, apperrors.KindInsufficientFunds))

	cache.AssertExpectations(t)
	assert.Equal(t, 2, store.TransactionCount())
}

func TestLedgerService_RecordRejectsBadAmounts(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewMemStore()
	player := store.Seed(domain.User{Phone: "1", Role: domain.RoleUser, RemainingBalance: dec("100")})
	ledger := service.NewLedgerService(store, utils.NopCache{}, time.Minute)

	tests := []struct {
		name  string
		input service.RecordInput
	}{
		{"zero amount", service.RecordInput{DedactedAmount: dec("0")}},
		{"negative amount", service.RecordInput{DedactedAmount: dec("-5")}},
		{"negative bet", service.RecordInput{DedactedAmount: dec("5"), BetAmount: dec("-1")}},
		{"negative players", service.RecordInput{DedactedAmount: dec("5"), NumberOfPlayers: -2}},
		{"fraction of a cent", service.RecordInput{DedactedAmount: dec("0.004")}},
		{"sub-cent remainder", service.RecordInput{DedactedAmount: dec("10.001")}},
		{"sub-cent bet", service.RecordInput{DedactedAmount: dec("5"), BetAmount: dec("1.255")}},
		{"sub-cent winnings", service.RecordInput{DedactedAmount: dec("5"), WinningAmount: dec("0.5001")}},
		{"overflowing amount", service.RecordInput{DedactedAmount: dec("1000000000000000000")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.Record(ctx, player, tt.input)
			assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput))
		})
	}
	assert.Equal(t, 0, store.TransactionCount())
	stored, _ := store.User(player.ID)
	assert.True(t, stored.RemainingBalance.Equal(dec("100")))
}

func TestLedgerService_RecordAcceptsWholeCents(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewMemStore()
	player := store.Seed(domain.User{Phone: "1", Role: domain.RoleUser, RemainingBalance: dec("100")})
	ledger := service.NewLedgerService(store, utils.NopCache{}, time.Minute)

	record, err := ledger.Record(ctx, player, service.RecordInput{DedactedAmount: dec("0.01"), BetAmount: dec("2.50")})
	require.NoError(t, err)
	assert.Equal(t, "99.99", record.RemainingBalance.StringFixed(2))
	assert.True(t, record.RemainingBalance.Equal(record.RemainingBalance.Round(2)))
}

func TestLedgerService_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewMemStore()
	player := store.Seed(domain.User{Phone: "1", Role: domain.RoleUser, RemainingBalance: dec("100")})
	ledger := service.NewLedgerService(store, utils.NopCache{}, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Record(ctx, player, service.RecordInput{DedactedAmount: dec("30")}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 3, store.TransactionCount())
	stored, _ := store.User(player.ID)
	assert.True(t, stored.RemainingBalance.Equal(dec("10")))
}

func TestLedgerService_Listing(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewMemStore()
	owner := store.Seed(domain.User{Phone: "1", Role: domain.RoleOwner})
	manager := store.Seed(domain.User{Phone: "2", Role: domain.RoleManager, RemainingBalance: dec("50")})
	player := store.Seed(domain.User{Phone: "3", Role: domain.RoleUser, RemainingBalance: dec("50")})
	ledger := service.NewLedgerService(store, utils.NopCache{}, time.Minute)

	_, err := ledger.ListMine(ctx, player, service.Page{})
	assert.True(t, apperrors.Is(err, apperrors.KindEmptyResult))

	_, err = ledger.ListAll(ctx, owner, service.Page{})
	assert.True(t, apperrors.Is(err, apperrors.KindEmptyResult))

	for _, game := range []string{"a", "b", "c"} {
		_, err := ledger.Record(ctx, player, service.RecordInput{DedactedAmount: dec("5"), GameID: game})
		require.NoError(t, err)
	}
	_, err = ledger.Record(ctx, manager, service.RecordInput{DedactedAmount: dec("5"), GameID: "m"})
	require.NoError(t, err)

	mine, err := ledger.ListMine(ctx, player, service.Page{})
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, "c", mine[0].GameID, "newest first")

	page, err := ledger.ListByOwner(ctx, manager, player.ID, service.Page{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].GameID)

	all, err := ledger.ListAll(ctx, owner, service.Page{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = ledger.ListAll(ctx, manager, service.Page{})
	assert.True(t, apperrors.Is(err, apperrors.KindPermissionDenied))
}

func TestLedgerService_ListingServesFromCache(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewMemStore()
	player := store.Seed(domain.User{Phone: "1", Role: domain.RoleUser})

	cache := new(MockCache)
	cache.On("Get", mock.Anything, "gamet:owner=1:offset=0:limit=20", mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*[]domain.GameTransaction)
			*dest = []domain.GameTransaction{{ID: 42, OwnerID: 1, GameID: "cached"}}
		}).
		Return(true, nil).Once()
	ledger := service.NewLedgerService(store, cache, time.Minute)

	txs, err := ledger.ListMine(ctx, player, service.Page{Limit: 20})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "cached", txs[0].GameID)
	cache.AssertExpectations(t)
}
