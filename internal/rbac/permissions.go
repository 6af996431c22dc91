package rbac

// Permission constants define the available permissions in the system.
// These are used for role-based access control (RBAC) to restrict access
// to specific resources and actions.
const (
	// PermUsersView allows viewing user accounts.
	PermUsersView = "users.view"
	// PermUsersCreate allows creating user accounts.
	PermUsersCreate = "users.create"
	// PermUsersEdit allows editing user accounts.
	PermUsersEdit = "users.edit"
	// PermUsersDelete allows deleting user accounts.
	PermUsersDelete = "users.delete"
	// PermManageUsers allows managing user accounts and their assignments.
	PermManageUsers = "manage users"

	// PermRolesView allows viewing roles.
	PermRolesView = "roles.view"
	// PermRolesCreate allows creating roles.
	PermRolesCreate = "roles.create"
	// PermRolesEdit allows editing roles.
	PermRolesEdit = "roles.edit"
	// PermRolesDelete allows deleting roles.
	PermRolesDelete = "roles.delete"
	// PermManageRoles allows managing roles and their permissions.
	PermManageRoles = "manage roles"

	// PermPermissionsView allows viewing permissions.
	PermPermissionsView = "permissions.view"
	// PermPermissionsCreate allows creating permissions.
	PermPermissionsCreate = "permissions.create"
	// PermPermissionsEdit allows editing permissions.
	PermPermissionsEdit = "permissions.edit"
	// PermPermissionsDelete allows deleting permissions.
	PermPermissionsDelete = "permissions.delete"
	// PermManagePermissions allows managing the permission vocabulary.
	PermManagePermissions = "manage permissions"

	// PermPostsView allows viewing posts (content management example).
	PermPostsView = "posts.view"
	// PermPostsCreate allows creating posts.
	PermPostsCreate = "posts.create"
	// PermPostsEdit allows editing posts.
	PermPostsEdit = "posts.edit"
	// PermPostsDelete allows deleting posts.
	PermPostsDelete = "posts.delete"
	// PermPostsPublish allows publishing posts.
	PermPostsPublish = "posts.publish"
)

// Standard role names provisioned by Seed.
const (
	// RoleAdmin holds the full permission vocabulary through explicit grants.
	RoleAdmin = "admin"
	// RoleEditor holds the content management permissions.
	RoleEditor = "editor"
	// RoleUser holds read-only content permissions.
	RoleUser = "user"
	// RoleSuperAdmin is the distinguished bypass role: holders pass every
	// permission check unconditionally. It carries no permission rows.
	RoleSuperAdmin = "super-admin"
)

// DefaultPermissions is the fixed permission vocabulary provisioned by Seed.
func DefaultPermissions() []string {
	return []string{
		PermUsersView,
		PermUsersCreate,
		PermUsersEdit,
		PermUsersDelete,
		PermManageUsers,

		PermRolesView,
		PermRolesCreate,
		PermRolesEdit,
		PermRolesDelete,
		PermManageRoles,

		PermPermissionsView,
		PermPermissionsCreate,
		PermPermissionsEdit,
		PermPermissionsDelete,
		PermManagePermissions,

		PermPostsView,
		PermPostsCreate,
		PermPostsEdit,
		PermPostsDelete,
		PermPostsPublish,
	}
}
