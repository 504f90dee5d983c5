package service

import (
	"context" // Request scoped cancellation
	"errors"  // Error inspection
	"fmt"     // Error formatting
	"strings" // Input normalisation
	"time"    // Cache lifetimes and log timestamps

	"bingo_ledger/internal/apperrors" // Typed service errors
	"bingo_ledger/internal/authz"     // Permission table
	"bingo_ledger/internal/domain"    // Domain models
	"bingo_ledger/internal/metrics"   // Prometheus collectors

	"github.com/shopspring/decimal" // Exact money arithmetic
	"github.com/sirupsen/logrus"    // Logging library
)

const usersCachePrefix = "users:"

// CreateUserInput describes a new account
type CreateUserInput struct {
	Phone    string
	Password string
	Name     string
	Region   string
	City     string
	Role     domain.Role
	ParentID *uint
}

// UpdateUserInput is a partial update. Nil fields are left untouched;
// non-nil fields are written even when they hold a zero value.
type UpdateUserInput struct {
	ID               uint
	Phone            *string
	Password         *string
	Name             *string
	Region           *string
	City             *string
	Role             *domain.Role
	ParentID         *uint
	CreatedBy        *uint
	RemainingBalance *decimal.Decimal
	TotalBalance     *decimal.Decimal
}

// UserService manages accounts in the hierarchy
type UserService struct {
	store    Store
	hasher   Hasher
	cache    Cache
	cacheTTL time.Duration
}

// NewUserService creates the user service
func NewUserService(store Store, hasher Hasher, cache Cache, cacheTTL time.Duration) *UserService {
	return &UserService{store: store, hasher: hasher, cache: cache, cacheTTL: cacheTTL}
}

// Bootstrap creates an account without an authenticated actor
func (s *UserService) Bootstrap(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	// No actor, so only the role itself is checked
	if !in.Role.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown role %q", in.Role))
	}
	return s.create(ctx, in, nil)
}

// Create adds an account on behalf of actor
func (s *UserService) Create(ctx context.Context, actor *domain.User, in CreateUserInput) (*domain.User, error) {
	// Check the actor may hand out this role
	if err := authz.CanCreate(actor.Role, in.Role); err != nil {
		return nil, err
	}
	if in.ParentID == nil {
		in.ParentID = &actor.ID // Hang new accounts below their creator by default
	} else if actor.Role != domain.RoleOwner && *in.ParentID != actor.ID {
		return nil, apperrors.PermissionDenied("Manager may only create users below itself")
	}
	return s.create(ctx, in, &actor.ID)
}

func (s *UserService) create(ctx context.Context, in CreateUserInput, createdBy *uint) (*domain.User, error) {
	in.Phone = strings.TrimSpace(in.Phone) // Normalise login identifier
	if in.Phone == "" || in.Password == "" {
		return nil, apperrors.InvalidInput("phone and password are required")
	}
	existing, err := s.store.Users().GetByPhone(ctx, in.Phone) // Check if phone exists
	if err != nil {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("Phone number already registered", nil)
	}
	hash, err := s.hasher.Hash(in.Password) // Hash the password
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	// New accounts start with zero balances
	user := &domain.User{
		Phone:            in.Phone,
		Password:         hash,
		Name:             in.Name,
		Region:           in.Region,
		City:             in.City,
		Role:             in.Role,
		ParentID:         in.ParentID,
		CreatedBy:        createdBy,
		TotalBalance:     decimal.Zero,
		RemainingBalance: decimal.Zero,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		// A concurrent create may still win the unique index
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperrors.Conflict("Phone number already registered", err)
		}
		logrus.WithFields(logrus.Fields{"phone": in.Phone, "error": err.Error()}).Error("Failed to create user")
		return nil, err
	}
	metrics.UsersCreated.WithLabelValues(string(user.Role)).Inc()
	logrus.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"role":       user.Role,
		"created_by": createdBy,
		"timestamp":  time.Now().Format(time.RFC3339),
	}).Info("User created")
	s.invalidate(ctx) // Listings are stale now
	return user, nil
}

// ListAll returns every account. Owner only.
func (s *UserService) ListAll(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	return s.list(ctx, actor, nil)
}

// ListByRole returns accounts holding role. Owner only.
func (s *UserService) ListByRole(ctx context.Context, actor *domain.User, role domain.Role) ([]domain.User, error) {
	return s.list(ctx, actor, &role)
}

func (s *UserService) list(ctx context.Context, actor *domain.User, role *domain.Role) ([]domain.User, error) {
	if err := authz.Authorize(actor.Role, authz.ActionListUsers); err != nil {
		return nil, err
	}
	key := usersCachePrefix + "role=all" // Cache key per role filter
	if role != nil {
		key = usersCachePrefix + "role=" + string(*role)
	}
	var users []domain.User
	// Try cache first
	if found, err := s.cache.Get(ctx, key, &users); err == nil && found {
		return users, nil // Return cached listing
	}
	users, err := s.store.Users().List(ctx, UserFilter{Role: role}) // Query users
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.EmptyResult(emptyUsersMessage(role))
	}
	_ = s.cache.Set(ctx, key, users, s.cacheTTL) // Cache the listing
	return users, nil
}

func emptyUsersMessage(role *domain.Role) string {
	if role == nil {
		return "No Users found"
	}
	switch *role {
	case domain.RoleManager:
		return "No Managers found"
	case domain.RoleSuperagent:
		return "No Superagents found"
	default:
		return "No Users found"
	}
}

// Me returns the actor's own record, freshly read
func (s *UserService) Me(ctx context.Context, actor *domain.User) (*domain.User, error) {
	if err := authz.Authorize(actor.Role, authz.ActionReadSelf); err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByID(ctx, actor.ID) // Re-read, the actor may be stale
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("User not found")
	}
	return user, nil
}

// Children lists users whose parent is parentID, optionally narrowed to one role.
// A missing parent is NotFound; a parent without matching children is EmptyResult.
func (s *UserService) Children(ctx context.Context, actor *domain.User, parentID uint, role *domain.Role) ([]domain.User, error) {
	if err := authz.Authorize(actor.Role, authz.ActionListChildren); err != nil {
		return nil, err
	}
	// Owners never hang below anyone
	if role != nil && (!role.Valid() || *role == domain.RoleOwner) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cannot list children with role %q", *role))
	}
	// Distinguish a missing parent from a parent without children
	if parentID != actor.ID {
		parent, err := s.store.Users().GetByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperrors.NotFound(fmt.Sprintf("User with id %d not found", parentID))
		}
	}
	users, err := s.store.Users().List(ctx, UserFilter{Role: role, ParentID: &parentID}) // Query children
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		if parentID == actor.ID {
			return nil, apperrors.EmptyResult("No users found created by the current user")
		}
		return nil, apperrors.EmptyResult(fmt.Sprintf("No users found created by user with id %d", parentID))
	}
	return users, nil
}

// Update applies a partial update to any user
func (s *UserService) Update(ctx context.Context, actor *domain.User, in UpdateUserInput) (*domain.User, error) {
	if err := authz.Authorize(actor.Role, authz.ActionUpdateUser); err != nil {
		return nil, err
	}
	fields := map[string]any{} // Columns to write, keyed by column name
	if in.Phone != nil {
		fields["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Region != nil {
		fields["region"] = *in.Region
	}
	if in.City != nil {
		fields["city"] = *in.City
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown role %q", *in.Role))
		}
		fields["role"] = *in.Role
	}
	if in.ParentID != nil {
		fields["parent_id"] = *in.ParentID
	}
	if in.CreatedBy != nil {
		fields["created_by"] = *in.CreatedBy
	}
	if in.RemainingBalance != nil {
		if err := checkBalance("remaining_balance", *in.RemainingBalance); err != nil {
			return nil, err
		}
		fields["remaining_balance"] = *in.RemainingBalance
	}
	if in.TotalBalance != nil {
		if err := checkBalance("total_balance", *in.TotalBalance); err != nil {
			return nil, err
		}
		fields["total_balance"] = *in.TotalBalance
	}

	var updated *domain.User // Row as stored after the update
	err := s.store.WithinTx(ctx, func(tx Store) error {
		target, err := tx.Users().GetByID(ctx, in.ID) // Find target user
		if err != nil {
			return err // Return error to rollback
		}
		if target == nil {
			return apperrors.NotFound("User not found")
		}
		// A new phone must still be unique
		if phone, ok := fields["phone"].(string); ok && phone != target.Phone {
			other, err := tx.Users().GetByPhone(ctx, phone)
			if err != nil {
				return err
			}
			if other != nil {
				return apperrors.Conflict("Phone number already registered", nil)
			}
		}
		// An empty password leaves the stored hash alone
		if in.Password != nil && *in.Password != "" {
			hash, err := s.hasher.Hash(*in.Password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			fields["password"] = hash // Store the new hash
		}
		if err := tx.Users().Update(ctx, in.ID, fields); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return apperrors.Conflict("Phone number already registered", err)
			}
			return err
		}
		updated, err = tx.Users().GetByID(ctx, in.ID) // Reload the stored row
		return err
	})
	if err != nil {
		return nil, err
	}
	_, passwordChanged := fields["password"] // Never log the hash itself
	logrus.WithFields(logrus.Fields{
		"actor_id":         actor.ID,
		"user_id":          in.ID,
		"fields":           len(fields),
		"password_changed": passwordChanged,
	}).Info("User updated")
	s.invalidate(ctx) // Listings are stale now
	return updated, nil
}

// checkBalance rejects balances the money columns cannot hold exactly
func checkBalance(field string, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return apperrors.InvalidInput(field + " cannot be negative")
	}
	return checkAmount(field, balance)
}

func (s *UserService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, usersCachePrefix); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate user cache")
	}
}
