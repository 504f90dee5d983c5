package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleOrdering(t *testing.T) {
	for i := 1; i < len(Roles); i++ {
		assert.Greater(t, Roles[i].Rank(), Roles[i-1].Rank())
	}
	assert.True(t, RoleOwner.AtLeast(RoleManager))
	assert.True(t, RoleManager.AtLeast(RoleManager))
	assert.False(t, RoleSuperagent.AtLeast(RoleManager))
	assert.False(t, Role("admin").AtLeast(RoleUser))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Manager ")
	assert.True(t, ok)
	assert.Equal(t, RoleManager, r)

	_, ok = ParseRole("admin")
	assert.False(t, ok)
}

func TestIsChildOf(t *testing.T) {
	parent := uint(7)
	assert.True(t, (&User{ParentID: &parent}).IsChildOf(7))
	assert.True(t, (&User{CreatedBy: &parent}).IsChildOf(7))
	assert.False(t, (&User{}).IsChildOf(7))
}
