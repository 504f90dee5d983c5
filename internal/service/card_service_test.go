package service_test

import (
	"context"
	"strings"
	"testing"

	"bingo_ledger/internal/apperrors"
	"bingo_ledger/internal/domain"
	"bingo_ledger/internal/service"
	"bingo_ledger/internal/service/servicetest"
	"bingo_ledger/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleCards() []domain.CardEntry {
	return []domain.CardEntry{{
		B:          []int{1, 2, 3, 4, 5},
		I:          []int{16, 17, 18, 19, 20},
		N:          []int{31, 32, 0, 34, 35},
		G:          []int{46, 47, 48, 49, 50},
		O:          []int{61, 62, 63, 64, 65},
		CardNumber: 1,
	}}
}

func newCardService(t *testing.T, store service.Store) *service.CardService {
	t.Helper()
	svc, err := service.NewCardService(store, utils.NopCache{})
	require.NoError(t, err)
	return svc
}

func TestCardService_AssignReplacesPreviousSet(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewMemStore()
	player := store.Seed(domain.User{Phone: "1", Role: domain.RoleUser})
	svc := newCardService(t, store)

	first, err := svc.Assign(ctx, player, player.ID, sampleCards())
	require.NoError(t, err)
	assert.Len(t, first.ID, 8)
	assert.Equal(t, strings.ToUpper(first.ID), first.ID)

	second, err := svc.Assign(ctx, player, player.ID, sampleCards())
	require.NoError(t, err)

	assert.Equal(t, []string{second.ID}, store.CardsOwnedBy(player.ID))
	stored, _ := store.User(player.ID)
	require.NotNil(t, stored.BingoCardCode)
	assert.Equal(t, second.ID, *stored.BingoCardCode)
}

func TestCardService_AssignInvalidatesUserListings(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewMemStore()
	owner := store.Seed(domain.User{Phone: "1", Role: domain.RoleOwner})
	player := store.Seed(domain.User{Phone: "2", Role: domain.RoleUser})

	cache := new(MockCache)
	cache.On("Invalidate", mock.Anything, []string{"users:"}).Return(nil).Once()
	svc, err := service.NewCardService(store, cache)
	require.NoError(t, err)

	_, err = svc.Assign(ctx, owner, player.ID, sampleCards())
	require.NoError(t, err)
	cache.AssertExpectations(t)

	// A rejected assignment leaves the cache alone
	_, err = svc.Assign(ctx, owner, 999, sampleCards())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	cache.AssertNumberOfCalls(t, "Invalidate", 1)
}

func TestCardService_AssignRetriesTakenCodes(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewMemStore()
	alice := store.Seed(domain.User{Phone: "1", Role: domain.RoleUser})
	bob := store.Seed(domain.User{Phone: "2", Role: domain.RoleUser})
	svc := newCardService(t, store)

	codes := []string{"AAAA0001", "AAAA0001", "BBBB0002"}
	svc.SetCodeGenerator(func() string {
		next := codes[0]
		codes = codes[1:]
		return next
	})

	a, err := svc.Assign(ctx, alice, alice.ID, sampleCards())
	require.NoError(t, err)
	assert.Equal(t, "AAAA0001", a.ID)

	b, err := svc.Assign(ctx, bob, bob.ID, sampleCards())
	require.NoError(t, err)
	assert.Equal(t, "BBBB0002", b.ID)
}

func TestCardService_AssignGivesUpWhenCodesExhausted(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewMemStore()
	alice := store.Seed(domain.User{Phone: "1", Role: domain.RoleUser})
	bob := store.Seed(domain.User{Phone: "2", Role: domain.RoleUser})
	svc := newCardService(t, store)
	svc.SetCodeGenerator(func() string { return "SAMECODE" })

	_, err := svc.Assign(ctx, alice, alice.ID, sampleCards())
	require.NoError(t, err)

	_, err = svc.Assign(ctx, bob, bob.ID, sampleCards())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	assert.Empty(t, store.CardsOwnedBy(bob.ID))
}

func TestCardService_AssignValidatesCards(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewMemStore()
	player := store.Seed(domain.User{Phone: "1", Role: domain.RoleUser})
	svc := newCardService(t, store)

	tests := []struct {
		name  string
		cards []domain.CardEntry
	}{
		{"no cards", nil},
		{"number out of range", func() []domain.CardEntry {
			c := sampleCards()
			c[0].O = []int{61, 62, 63, 64, 99}
			return c
		}()},
		{"missing column", func() []domain.CardEntry {
			c := sampleCards()
			c[0].G = nil
			return c
		}()},
		{"card number zero", func() []domain.CardEntry {
			c := sampleCards()
			c[0].CardNumber = 0
			return c
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Assign(ctx, player, player.ID, tt.cards)
			assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput), "got %v", err)
		})
	}
	assert.Empty(t, store.CardsOwnedBy(player.ID))
}

func TestCardService_Access(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewMemStore()
	owner := store.Seed(domain.User{Phone: "1", Role: domain.RoleOwner})
	manager := store.Seed(domain.User{Phone: "2", Role: domain.RoleManager, ParentID: uintPtr(owner.ID)})
	child := store.Seed(domain.User{Phone: "3", Role: domain.RoleUser, ParentID: uintPtr(manager.ID)})
	stranger := store.Seed(domain.User{Phone: "4", Role: domain.RoleUser})
	svc := newCardService(t, store)

	card, err := svc.Assign(ctx, manager, child.ID, sampleCards())
	require.NoError(t, err)

	_, err = svc.Assign(ctx, stranger, child.ID, sampleCards())
	assert.True(t, apperrors.Is(err, apperrors.KindPermissionDenied))

	_, err = svc.Assign(ctx, owner, 404, sampleCards())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	for _, actor := range []*domain.User{owner, manager, child} {
		got, err := svc.Fetch(ctx, actor, strings.ToLower(card.ID))
		require.NoError(t, err, "actor %d", actor.ID)
		assert.Equal(t, child.ID, got.OwnerID)
		assert.Len(t, got.CardData.Cards, 1)
	}

	_, err = svc.Fetch(ctx, stranger, card.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindPermissionDenied))

	_, err = svc.Fetch(ctx, owner, "ZZZZZZZZ")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}
