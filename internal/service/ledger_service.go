package service

import (
	"context" // Request scoped cancellation
	"fmt"     // Error formatting
	"strconv" // Cache key formatting
	"time"    // Cache lifetimes and log timestamps

	"bingo_ledger/internal/apperrors" // Typed service errors
	"bingo_ledger/internal/authz"     // Permission table
	"bingo_ledger/internal/domain"    // Domain models
	"bingo_ledger/internal/metrics"   // Prometheus collectors

	"github.com/shopspring/decimal" // Exact money arithmetic
	"github.com/sirupsen/logrus"    // Logging library
)

const ledgerCachePrefix = "gamet:"

// Money columns are decimal(20,2)
const amountScale = 2

// maxAmount is the first value that no longer fits 18 integer digits
var maxAmount = decimal.New(1, 20-amountScale)

// checkAmount rejects amounts the money columns would round or overflow
func checkAmount(field string, amount decimal.Decimal) error {
	// Anything finer than a cent would be rounded away on write
	if !amount.Equal(amount.Round(amountScale)) {
		return apperrors.InvalidInput(fmt.Sprintf("%s must not have more than %d decimal places", field, amountScale))
	}
	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return apperrors.InvalidInput(fmt.Sprintf("%s is too large", field))
	}
	return nil
}

// RecordInput carries the caller-supplied fields of a game transaction
type RecordInput struct {
	DedactedAmount  decimal.Decimal
	GameID          string
	BetAmount       decimal.Decimal
	NumberOfPlayers int
	WinningAmount   decimal.Decimal
}

// LedgerService records game transactions against user balances.
// User.RemainingBalance is the source of truth; every ledger row snapshots it after the debit.
type LedgerService struct {
	store    Store
	cache    Cache
	cacheTTL time.Duration
}

// NewLedgerService creates the ledger service
func NewLedgerService(store Store, cache Cache, cacheTTL time.Duration) *LedgerService {
	return &LedgerService{store: store, cache: cache, cacheTTL: cacheTTL}
}

// Record debits actor's remaining balance by the deducted amount and appends the ledger row,
// both in one transaction. Nothing is written when the balance does not cover the amount.
func (s *LedgerService) Record(ctx context.Context, actor *domain.User, in RecordInput) (*domain.GameTransaction, error) {
	// Check permission before touching the store
	if err := authz.Authorize(actor.Role, authz.ActionRecordTransaction); err != nil {
		return nil, err
	}
	// Validate amounts
	if !in.DedactedAmount.IsPositive() {
		return nil, apperrors.InvalidInput("dedacted_amount must be greater than zero")
	}
	if in.NumberOfPlayers < 0 || in.BetAmount.IsNegative() || in.WinningAmount.IsNegative() {
		return nil, apperrors.InvalidInput("amounts and player counts cannot be negative")
	}
	if err := checkAmount("dedacted_amount", in.DedactedAmount); err != nil {
		return nil, err
	}
	if err := checkAmount("bet_amount", in.BetAmount); err != nil {
		return nil, err
	}
	if err := checkAmount("winning_amount", in.WinningAmount); err != nil {
		return nil, err
	}

	var record *domain.GameTransaction // Ledger row written by the transaction
	// Debit and ledger row commit together
	err := s.store.WithinTx(ctx, func(tx Store) error {
		user, err := tx.Users().GetByID(ctx, actor.ID) // Fresh balance, not the token snapshot
		if err != nil {
			return err // Return error to rollback
		}
		if user == nil {
			return apperrors.Unauthorized(fmt.Errorf("user %d no longer exists", actor.ID))
		}
		// Check sufficient funds
		if in.DedactedAmount.GreaterThan(user.RemainingBalance) {
			return apperrors.InsufficientFunds()
		}
		remaining, ok, err := tx.Users().Debit(ctx, user.ID, in.DedactedAmount) // Conditional decrement
		if err != nil {
			return err // Return error to rollback
		}
		if !ok {
			return apperrors.InsufficientFunds() // Lost a race with a concurrent debit
		}
		record = &domain.GameTransaction{
			OwnerID:          user.ID,           // Owner of the bet
			OwnerName:        user.Name,         // Name snapshot
			RemainingBalance: remaining,         // Balance after the debit
			TotalBalance:     user.TotalBalance, // Total snapshot
			DedactedAmount:   in.DedactedAmount,
			GameID:           in.GameID,
			BetAmount:        in.BetAmount,
			NumberOfPlayers:  in.NumberOfPlayers,
			WinningAmount:    in.WinningAmount,
		}
		return tx.Transactions().Create(ctx, record) // Append the ledger row
	})
	if err != nil {
		// Insufficient funds is a client error, log it as a warning
		if apperrors.Is(err, apperrors.KindInsufficientFunds) {
			metrics.LedgerTransactions.WithLabelValues("insufficient_funds").Inc()
			logrus.WithFields(logrus.Fields{
				"user_id": actor.ID,
				"amount":  in.DedactedAmount.String(),
			}).Warn("Game transaction rejected: insufficient funds")
			return nil, err
		}
		metrics.LedgerTransactions.WithLabelValues("error").Inc()
		logrus.WithFields(logrus.Fields{
			"user_id": actor.ID,
			"amount":  in.DedactedAmount.String(),
			"error":   err.Error(),
		}).Error("Game transaction failed")
		return nil, err
	}

	metrics.LedgerTransactions.WithLabelValues("recorded").Inc()
	metrics.LedgerDebited.Observe(in.DedactedAmount.InexactFloat64())
	// Log successful transaction
	logrus.WithFields(logrus.Fields{
		"user_id":           actor.ID,
		"transaction_id":    record.ID,
		"amount":            in.DedactedAmount.String(),
		"remaining_balance": record.RemainingBalance.String(),
		"type":              "game_transaction",
		"timestamp":         time.Now().Format(time.RFC3339),
	}).Info("Game transaction recorded")
	// Invalidate cached ledger pages and user listings, both carry the balance
	if err := s.cache.Invalidate(ctx, ledgerCachePrefix, usersCachePrefix); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate ledger cache")
	}
	return record, nil
}

// ListAll returns the whole ledger. Owner only.
func (s *LedgerService) ListAll(ctx context.Context, actor *domain.User, page Page) ([]domain.GameTransaction, error) {
	if err := authz.Authorize(actor.Role, authz.ActionListAllTransactions); err != nil {
		return nil, err
	}
	return s.list(ctx, nil, page, "No game transaction found")
}

// ListByOwner returns the ledger rows of one user
func (s *LedgerService) ListByOwner(ctx context.Context, actor *domain.User, ownerID uint, page Page) ([]domain.GameTransaction, error) {
	if err := authz.Authorize(actor.Role, authz.ActionListUserTransactions); err != nil {
		return nil, err
	}
	return s.list(ctx, &ownerID, page, "you don't have a game transaction yet.")
}

// ListMine returns the actor's own ledger rows
func (s *LedgerService) ListMine(ctx context.Context, actor *domain.User, page Page) ([]domain.GameTransaction, error) {
	if err := authz.Authorize(actor.Role, authz.ActionListOwnTransactions); err != nil {
		return nil, err
	}
	return s.list(ctx, &actor.ID, page, "you don't have a game transaction yet.")
}

func (s *LedgerService) list(ctx context.Context, ownerID *uint, page Page, emptyMessage string) ([]domain.GameTransaction, error) {
	key := ledgerCachePrefix + "owner=all" // Cache key per owner and page
	if ownerID != nil {
		key = ledgerCachePrefix + "owner=" + strconv.FormatUint(uint64(*ownerID), 10)
	}
	key += ":offset=" + strconv.Itoa(page.Offset) + ":limit=" + strconv.Itoa(page.Limit)

	var txs []domain.GameTransaction
	// Try cache first
	if found, err := s.cache.Get(ctx, key, &txs); err == nil && found {
		return txs, nil // Return cached page
	}
	txs, err := s.store.Transactions().List(ctx, TransactionFilter{OwnerID: ownerID, Page: page}) // Query ledger
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, apperrors.EmptyResult(emptyMessage)
	}
	_ = s.cache.Set(ctx, key, txs, s.cacheTTL) // Cache the page, a failed write only costs a query
	return txs, nil
}
