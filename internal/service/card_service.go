package service

import (
	"context" // Request scoped cancellation
	_ "embed" // Embedded card schema
	"fmt"     // Error formatting
	"strings" // Code normalisation
	"time"    // Log timestamps

	"bingo_ledger/internal/apperrors" // Typed service errors
	"bingo_ledger/internal/authz"     // Permission table
	"bingo_ledger/internal/domain"    // Domain models
	"bingo_ledger/internal/metrics"   // Prometheus collectors

	"github.com/google/uuid"          // Random card codes
	"github.com/sirupsen/logrus"      // Logging library
	"github.com/xeipuuv/gojsonschema" // Card payload validation
)

//go:embed schemas/bingo_cards.schema.json
var cardSetSchema string

const (
	cardCodeLength   = 8  // Characters in a card code
	cardCodeAttempts = 10 // Draws before giving up on a free code
)

// CardService keeps one live bingo card set per user
type CardService struct {
	store   Store
	cache   Cache
	schema  *gojsonschema.Schema
	newCode func() string
}

// NewCardService creates the card registry. It fails only if the embedded schema is broken.
func NewCardService(store Store, cache Cache) (*CardService, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(cardSetSchema)) // Compile once
	if err != nil {
		return nil, fmt.Errorf("failed to load card schema: %w", err)
	}
	return &CardService{store: store, cache: cache, schema: schema, newCode: randomCardCode}, nil
}

func randomCardCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "") // 32 hex characters
	return strings.ToUpper(raw[:cardCodeLength])
}

// Validate checks a card set against the card schema
func (s *CardService) Validate(set domain.CardSet) error {
	res, err := s.schema.Validate(gojsonschema.NewGoLoader(set)) // Validate against the schema
	if err != nil {
		return fmt.Errorf("failed to validate card set: %w", err)
	}
	if res.Valid() {
		return nil
	}
	details := make([]string, 0, len(res.Errors())) // Collect every violation
	for _, e := range res.Errors() {
		details = append(details, e.String())
	}
	return apperrors.InvalidInput("invalid card set: " + strings.Join(details, "; "))
}

// Assign replaces the card set of userID with cards and links it to the user
func (s *CardService) Assign(ctx context.Context, actor *domain.User, userID uint, cards []domain.CardEntry) (*domain.BingoCard, error) {
	// Check permission before validating the payload
	if err := authz.Authorize(actor.Role, authz.ActionAssignCards); err != nil {
		return nil, err
	}
	set := domain.CardSet{Cards: cards}
	if err := s.Validate(set); err != nil {
		return nil, err
	}

	var card *domain.BingoCard // Newly stored card set
	var replaced int64         // Card sets removed on the way
	// Delete, insert and relink commit together
	err := s.store.WithinTx(ctx, func(tx Store) error {
		target, err := tx.Users().GetByID(ctx, userID) // Find target user
		if err != nil {
			return err // Return error to rollback
		}
		if target == nil {
			return apperrors.NotFound(fmt.Sprintf("User with id %d not found", userID))
		}
		// Only self, owners and direct parents may assign
		if !authz.CanManage(actor, target) {
			metrics.AuthzDenials.WithLabelValues(string(authz.ActionAssignCards)).Inc()
			return apperrors.PermissionDenied("you may only assign cards to yourself or users below you")
		}
		// Drop the previous set
		if replaced, err = tx.Cards().DeleteByOwner(ctx, userID); err != nil {
			return err
		}
		code, err := s.uniqueCode(ctx, tx)
		if err != nil {
			return err
		}
		card = &domain.BingoCard{ID: code, OwnerID: userID, CardData: set}
		if err := tx.Cards().Create(ctx, card); err != nil {
			return err // Return error to rollback
		}
		return tx.Users().SetBingoCardCode(ctx, userID, code) // Link the user to the new set
	})
	if err != nil {
		return nil, err
	}
	metrics.CardAssignments.Inc()
	logrus.WithFields(logrus.Fields{
		"actor_id":  actor.ID,
		"user_id":   userID,
		"card_id":   card.ID,
		"cards":     len(cards),
		"replaced":  replaced,
		"timestamp": time.Now().Format(time.RFC3339),
	}).Info("Bingo cards assigned")
	// User listings carry bingo_card_code
	if err := s.cache.Invalidate(ctx, usersCachePrefix); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate user cache")
	}
	return card, nil
}

// uniqueCode draws codes until one is not taken
func (s *CardService) uniqueCode(ctx context.Context, tx Store) (string, error) {
	for i := 0; i < cardCodeAttempts; i++ {
		code := s.newCode() // Draw a candidate
		taken, err := tx.Cards().Exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free card code after %d attempts", cardCodeAttempts)
}

// Fetch returns a card set the actor is allowed to see
func (s *CardService) Fetch(ctx context.Context, actor *domain.User, code string) (*domain.BingoCard, error) {
	if err := authz.Authorize(actor.Role, authz.ActionFetchCard); err != nil {
		return nil, err
	}
	card, err := s.store.Cards().GetByID(ctx, strings.ToUpper(strings.TrimSpace(code))) // Codes are stored upper case
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, apperrors.NotFound("Bingo card not found")
	}
	// Someone else's card needs a hierarchy check
	if card.OwnerID != actor.ID {
		owner, err := s.store.Users().GetByID(ctx, card.OwnerID)
		if err != nil {
			return nil, err
		}
		if !authz.CanManage(actor, owner) {
			metrics.AuthzDenials.WithLabelValues(string(authz.ActionFetchCard)).Inc()
			return nil, apperrors.PermissionDenied("you may only view your own cards or cards of users below you")
		}
	}
	return card, nil
}
