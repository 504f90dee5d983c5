// Package authz decides which role may perform which action, and over which users.
//
// The permission table is evaluated once per operation by the service layer;
// handlers never check roles themselves.
package authz

import (
	"fmt"

	"bingo_ledger/internal/apperrors"
	"bingo_ledger/internal/domain"
	"bingo_ledger/internal/metrics"
)

// Action is a privileged operation. Its value reads as a sentence fragment in denial messages.
type Action string

const (
	ActionCreateUser           Action = "create users"
	ActionListUsers            Action = "list users"
	ActionReadSelf             Action = "read their own account"
	ActionListChildren         Action = "list child users"
	ActionUpdateUser           Action = "update users"
	ActionRecordTransaction    Action = "record game transactions"
	ActionListAllTransactions  Action = "list all game transactions"
	ActionListUserTransactions Action = "list game transactions of a user"
	ActionListOwnTransactions  Action = "list their own game transactions"
	ActionAssignCards          Action = "assign bingo cards"
	ActionFetchCard            Action = "fetch bingo cards"
)

type roleSet map[domain.Role]bool

func only(roles ...domain.Role) roleSet {
	set := roleSet{}
	for _, r := range roles {
		set[r] = true
	}
	return set
}

func atLeast(min domain.Role) roleSet {
	set := roleSet{}
	for _, r := range domain.Roles {
		if r.AtLeast(min) {
			set[r] = true
		}
	}
	return set
}

// permissions is the action x role table
var permissions = map[Action]roleSet{
	ActionCreateUser:           only(domain.RoleManager, domain.RoleOwner),
	ActionListUsers:            only(domain.RoleOwner),
	ActionReadSelf:             atLeast(domain.RoleUser),
	ActionListChildren:         atLeast(domain.RoleUser),
	ActionUpdateUser:           atLeast(domain.RoleUser),
	ActionRecordTransaction:    atLeast(domain.RoleUser),
	ActionListAllTransactions:  only(domain.RoleOwner),
	ActionListUserTransactions: atLeast(domain.RoleUser),
	ActionListOwnTransactions:  atLeast(domain.RoleUser),
	ActionAssignCards:          atLeast(domain.RoleUser),
	ActionFetchCard:            atLeast(domain.RoleUser),
}

// creatable lists the roles each role may hand out
var creatable = map[domain.Role]roleSet{
	domain.RoleOwner:   atLeast(domain.RoleUser),
	domain.RoleManager: only(domain.RoleUser),
}

// Allowed reports whether role may perform action. Unknown actions are denied.
func Allowed(role domain.Role, action Action) bool {
	return permissions[action][role]
}

// Authorize returns a PermissionDenied error when role may not perform action
func Authorize(role domain.Role, action Action) error {
	if Allowed(role, action) {
		return nil
	}
	metrics.AuthzDenials.WithLabelValues(string(action)).Inc()
	return apperrors.PermissionDenied(fmt.Sprintf("%s does not have permission to %s", displayName(role), action))
}

// CanCreate checks that actor may create an account with the target role
func CanCreate(actor, target domain.Role) error {
	if err := Authorize(actor, ActionCreateUser); err != nil {
		return err
	}
	if !target.Valid() {
		return apperrors.InvalidInput(fmt.Sprintf("unknown role %q", target))
	}
	if creatable[actor][target] {
		return nil
	}
	metrics.AuthzDenials.WithLabelValues(string(ActionCreateUser)).Inc()
	return apperrors.PermissionDenied(fmt.Sprintf("%s does not have permission to create a %s", displayName(actor), target))
}

// CanManage reports whether actor may act on target's cards: itself, anything for an owner,
// or a user directly below it.
func CanManage(actor, target *domain.User) bool {
	if actor == nil || target == nil {
		return false
	}
	return actor.ID == target.ID || actor.Role == domain.RoleOwner || target.IsChildOf(actor.ID)
}

func displayName(role domain.Role) string {
	switch role {
	case domain.RoleOwner:
		return "Owner"
	case domain.RoleManager:
		return "Manager"
	case domain.RoleSuperagent:
		return "Superagent"
	default:
		return "User"
	}
}
