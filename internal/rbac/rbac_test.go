package rbac

import (
	"testing"

	"safezone/internal/domain"

	"github.com/stretchr/testify/assert"
)

func mockUser(role domain.Role) *domain.User {
	return &domain.User{ID: "u1", Name: "Test User", Email: "test@example.com", Phone: "123456789", Role: role}
}

func TestCan_NilUserAlwaysDenied(t *testing.T) {
	for _, a := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
		assert.False(t, Can(nil, a, ResourceZones), "action %s", a)
	}
}

func TestCan_ZonesMatrix(t *testing.T) {
	cases := []struct {
		role   domain.Role
		action Action
		want   bool
	}{
		{domain.RoleAdmin, ActionCreate, true},
		{domain.RoleAdmin, ActionRead, true},
		{domain.RoleAdmin, ActionUpdate, true},
		{domain.RoleAdmin, ActionDelete, true},
		{domain.RoleUser, ActionCreate, true},
		{domain.RoleUser, ActionRead, true},
		{domain.RoleUser, ActionUpdate, true},
		{domain.RoleUser, ActionDelete, true},
		{domain.RoleViewer, ActionCreate, false},
		{domain.RoleViewer, ActionRead, true},
		{domain.RoleViewer, ActionUpdate, false},
		{domain.RoleViewer, ActionDelete, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Can(mockUser(c.role), c.action, ResourceZones), "%s %s", c.role, c.action)
	}
}

func TestCan_UnknownCombinationsDenied(t *testing.T) {
	assert.False(t, Can(mockUser("superuser"), ActionRead, ResourceZones))
	assert.False(t, Can(mockUser(domain.RoleAdmin), ActionRead, Resource("themes")))
	assert.False(t, Can(mockUser(domain.RoleAdmin), Action("share"), ResourceZones))
}

func TestCanOnZone_UserDeleteRequiresOwnership(t *testing.T) {
	user := mockUser(domain.RoleUser)
	own := domain.Zone{ID: "zone-1", CreatedBy: "u1"}
	foreign := domain.Zone{ID: "zone-2", CreatedBy: "u2"}

	assert.True(t, CanOnZone(user, ActionDelete, own))
	assert.False(t, CanOnZone(user, ActionDelete, foreign))
	assert.True(t, CanOnZone(user, ActionUpdate, foreign))

	admin := mockUser(domain.RoleAdmin)
	assert.True(t, CanOnZone(admin, ActionDelete, foreign))
	assert.False(t, CanOnZone(mockUser(domain.RoleViewer), ActionDelete, own))
	assert.False(t, CanOnZone(nil, ActionRead, own))
}

func TestPermissions(t *testing.T) {
	p := Permissions(domain.RoleViewer)
	assert.Equal(t, domain.CRUD{Read: true}, p.Zones)
	assert.Equal(t, domain.CRUD{Read: true}, p.Devices)

	p = Permissions(domain.RoleAdmin)
	assert.Equal(t, domain.CRUD{Create: true, Read: true, Update: true, Delete: true}, p.Zones)
}

func TestRoleHelpers(t *testing.T) {
	assert.True(t, IsViewer(mockUser(domain.RoleViewer)))
	assert.True(t, IsAdmin(mockUser(domain.RoleAdmin)))
	assert.True(t, IsUser(mockUser(domain.RoleUser)))
	assert.False(t, IsAdmin(nil))
}
