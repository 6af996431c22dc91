package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_UnionOfDirectAndInherited(t *testing.T) {
	s, _ := newTestService(t)

	user := mustUser(t, s.db, "alice", "alice@example.com")

	editor := mustRole(t, s.db, "editor")
	view := mustPermission(t, s.db, "posts.view")
	edit := mustPermission(t, s.db, "posts.edit")
	special := mustPermission(t, s.db, "reports.export")

	mustGrant(t, s.db, editor, view)
	mustGrant(t, s.db, editor, edit)
	mustAssign(t, s.db, user, editor)

	// direct grant on top of the role-inherited ones
	require.NoError(t, s.SyncUserPermissions(user.ID, []string{special.Name}))

	access, err := s.Resolve(user.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"editor"}, access.RoleNames)
	assert.Equal(t, []string{"posts.edit", "posts.view", "reports.export"}, access.PermissionNames)
	assert.True(t, access.Can("reports.export"))
	assert.True(t, access.HasRole("editor"))
}

func TestResolve_NoAssignments(t *testing.T) {
	s, _ := newTestService(t)

	user := mustUser(t, s.db, "bob", "bob@example.com")

	access, err := s.Resolve(user.ID)
	require.NoError(t, err)

	assert.Empty(t, access.RoleNames)
	assert.Empty(t, access.PermissionNames)
	assert.False(t, access.Can("posts.view"))
	assert.False(t, access.HasRole("editor"))
}

func TestCheckPermission_SuperAdminBypass(t *testing.T) {
	s, _ := newTestService(t)

	user := mustUser(t, s.db, "root", "root@example.com")
	superAdmin := mustRole(t, s.db, RoleSuperAdmin)
	mustAssign(t, s.db, user, superAdmin)

	// the bypass role holds no permission rows
	access, err := s.Resolve(user.ID)
	require.NoError(t, err)
	assert.Empty(t, access.PermissionNames)

	// yet every check passes, including names that do not exist anywhere
	ok, err := s.CheckPermission(user.ID, "no.such.permission")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CheckPermission(user.ID, PermManageUsers)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckPermission_RegularUser(t *testing.T) {
	s, _ := newTestService(t)

	user := mustUser(t, s.db, "carol", "carol@example.com")
	editor := mustRole(t, s.db, "editor")
	view := mustPermission(t, s.db, "posts.view")
	mustGrant(t, s.db, editor, view)
	mustAssign(t, s.db, user, editor)

	ok, err := s.CheckPermission(user.ID, "posts.view")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CheckPermission(user.ID, "posts.delete")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckPermission_BypassRevocationTakesEffect(t *testing.T) {
	s, _ := newTestService(t)

	user := mustUser(t, s.db, "dave", "dave@example.com")
	mustRole(t, s.db, RoleSuperAdmin)

	require.NoError(t, s.SyncUserRoles(user.ID, []string{RoleSuperAdmin}))

	ok, err := s.CheckPermission(user.ID, "anything")
	require.NoError(t, err)
	assert.True(t, ok)

	// membership is re-verified per call, so revocation applies immediately
	require.NoError(t, s.SyncUserRoles(user.ID, nil))

	ok, err = s.CheckPermission(user.ID, "anything")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccess_Lookup(t *testing.T) {
	access := Access{
		RoleNames:       []string{"editor"},
		PermissionNames: []string{"posts.edit", "posts.view"},
	}

	lookup := access.Lookup()

	assert.True(t, lookup["posts.edit"])
	assert.True(t, lookup["posts.view"])
	assert.False(t, lookup["posts.delete"])
	assert.Len(t, lookup, 2)
}

func TestAssignmentsForUsers(t *testing.T) {
	s, _ := newTestService(t)

	alice := mustUser(t, s.db, "alice", "alice@example.com")
	bob := mustUser(t, s.db, "bob", "bob@example.com")

	editor := mustRole(t, s.db, "editor")
	view := mustPermission(t, s.db, "posts.view")

	mustAssign(t, s.db, alice, editor)
	require.NoError(t, s.SyncUserPermissions(bob.ID, []string{view.Name}))

	out, err := s.AssignmentsForUsers([]uint64{alice.ID, bob.ID})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, []string{"editor"}, out[alice.ID].RoleNames)
	assert.Empty(t, out[alice.ID].PermissionNames)
	assert.Empty(t, out[bob.ID].RoleNames)
	assert.Equal(t, []string{"posts.view"}, out[bob.ID].PermissionNames)

	// role-inherited permissions are not part of direct assignments
	mustGrant(t, s.db, editor, view)

	out, err = s.AssignmentsForUsers([]uint64{alice.ID})
	require.NoError(t, err)
	assert.Empty(t, out[alice.ID].PermissionNames)
}

func TestAssignmentsForUsers_Empty(t *testing.T) {
	s, _ := newTestService(t)

	out, err := s.AssignmentsForUsers(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPermissionsForRoles(t *testing.T) {
	s, _ := newTestService(t)

	editor := mustRole(t, s.db, "editor")
	viewer := mustRole(t, s.db, "viewer")

	view := mustPermission(t, s.db, "posts.view")
	edit := mustPermission(t, s.db, "posts.edit")

	mustGrant(t, s.db, editor, edit)
	mustGrant(t, s.db, editor, view)

	out, err := s.PermissionsForRoles([]uint{editor.ID, viewer.ID})
	require.NoError(t, err)

	assert.Equal(t, []string{"posts.edit", "posts.view"}, out[editor.ID])
	assert.Equal(t, []string{}, out[viewer.ID], "roles without grants get an empty slice")
}
