package servicetest

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"bingo_ledger/internal/domain"
	"bingo_ledger/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_WritesOutsideTxSurviveConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	player := store.Seed(domain.User{Phone: "player", Role: domain.RoleUser, RemainingBalance: decimal.NewFromInt(1000)})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			err := store.Users().Create(ctx, &domain.User{Phone: "p" + strconv.Itoa(i), Role: domain.RoleUser})
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			err := store.WithinTx(ctx, func(tx service.Store) error {
				if _, ok, err := tx.Users().Debit(ctx, player.ID, decimal.NewFromInt(1)); err != nil || !ok {
					return errors.New("debit failed")
				}
				return tx.Transactions().Create(ctx, &domain.GameTransaction{OwnerID: player.ID})
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	users, err := store.Users().List(ctx, service.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 51)
	assert.Equal(t, 50, store.TransactionCount())
	stored, _ := store.User(player.ID)
	assert.True(t, stored.RemainingBalance.Equal(decimal.NewFromInt(950)))
}

func TestMemStore_FailedTxLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	player := store.Seed(domain.User{Phone: "player", Role: domain.RoleUser, RemainingBalance: decimal.NewFromInt(10)})

	err := store.WithinTx(ctx, func(tx service.Store) error {
		_, _, err := tx.Users().Debit(ctx, player.ID, decimal.NewFromInt(5))
		require.NoError(t, err)
		return errors.New("boom")
	})
	require.Error(t, err)

	stored, _ := store.User(player.ID)
	assert.True(t, stored.RemainingBalance.Equal(decimal.NewFromInt(10)))
}
