package authz

import (
	"testing"

	"bingo_ledger/internal/apperrors"
	"bingo_ledger/internal/domain"

	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

func TestOwnerOnlyActions(t *testing.T) {
	for _, action := range []Action{ActionListUsers, ActionListAllTransactions} {
		for _, role := range domain.Roles {
			err := Authorize(role, action)
			if role == domain.RoleOwner {
				assert.NoError(t, err, "%s/%s", role, action)
				continue
			}
			assert.True(t, apperrors.Is(err, apperrors.KindPermissionDenied), "%s/%s", role, action)
		}
	}
}

func TestEveryRoleMayActOnItself(t *testing.T) {
	for _, action := range []Action{ActionReadSelf, ActionListChildren, ActionUpdateUser, ActionRecordTransaction, ActionListOwnTransactions} {
		for _, role := range domain.Roles {
			assert.NoError(t, Authorize(role, action), "%s/%s", role, action)
		}
	}
}

func TestUnknownRoleAndActionDenied(t *testing.T) {
	assert.False(t, Allowed(domain.Role("admin"), ActionReadSelf))
	assert.False(t, Allowed(domain.RoleOwner, Action("drop tables")))
}

func TestCanCreate(t *testing.T) {
	tests := []struct {
		actor  domain.Role
		target domain.Role
		kind   apperrors.Kind
		ok     bool
	}{
		{domain.RoleOwner, domain.RoleOwner, 0, true},
		{domain.RoleOwner, domain.RoleManager, 0, true},
		{domain.RoleOwner, domain.RoleSuperagent, 0, true},
		{domain.RoleOwner, domain.RoleUser, 0, true},
		{domain.RoleManager, domain.RoleUser, 0, true},
		{domain.RoleManager, domain.RoleSuperagent, apperrors.KindPermissionDenied, false},
		{domain.RoleManager, domain.RoleManager, apperrors.KindPermissionDenied, false},
		{domain.RoleManager, domain.RoleOwner, apperrors.KindPermissionDenied, false},
		{domain.RoleSuperagent, domain.RoleUser, apperrors.KindPermissionDenied, false},
		{domain.RoleUser, domain.RoleUser, apperrors.KindPermissionDenied, false},
		{domain.RoleOwner, domain.Role("admin"), apperrors.KindInvalidInput, false},
	}
	for _, tt := range tests {
		err := CanCreate(tt.actor, tt.target)
		if tt.ok {
			assert.NoError(t, err, "%s creating %s", tt.actor, tt.target)
			continue
		}
		assert.True(t, apperrors.Is(err, tt.kind), "%s creating %s: %v", tt.actor, tt.target, err)
	}
}

func TestCanManage(t *testing.T) {
	owner := &domain.User{ID: 1, Role: domain.RoleOwner}
	manager := &domain.User{ID: 2, Role: domain.RoleManager, ParentID: uintPtr(1)}
	child := &domain.User{ID: 3, Role: domain.RoleUser, ParentID: uintPtr(2)}
	created := &domain.User{ID: 4, Role: domain.RoleUser, CreatedBy: uintPtr(2)}
	stranger := &domain.User{ID: 5, Role: domain.RoleUser}

	assert.True(t, CanManage(owner, stranger))
	assert.True(t, CanManage(manager, child))
	assert.True(t, CanManage(manager, created))
	assert.True(t, CanManage(child, child))
	assert.False(t, CanManage(manager, stranger))
	assert.False(t, CanManage(child, manager))
	assert.False(t, CanManage(nil, child))
}

func TestDenialMessage(t *testing.T) {
	err := Authorize(domain.RoleSuperagent, ActionCreateUser)
	assert.EqualError(t, err, "Superagent does not have permission to create users")
}
