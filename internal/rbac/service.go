package rbac

import (
	"fmt"
	"sort"

	"github.com/gofiber/storage"
	"gorm.io/gorm"
)

// Service provides authorization functionality: permission resolution,
// assignment synchronization and the graph cache lifecycle.
type Service struct {
	db    *gorm.DB
	cache storage.Storage
}

// NewService creates a new rbac service. The cache storage holds the
// materialized role/permission graph and may be nil to disable caching.
func NewService(db *gorm.DB, cache storage.Storage) *Service {
	return &Service{db: db, cache: cache}
}

// Access is the effective access of a user at resolution time: the names of
// all assigned roles and the union of direct and role-inherited permissions.
type Access struct {
	RoleNames       []string
	PermissionNames []string
}

// HasRole reports whether the user holds the named role.
func (a Access) HasRole(name string) bool {
	for _, n := range a.RoleNames {
		if n == name {
			return true
		}
	}

	return false
}

// Can reports whether the named permission is in the effective permission set.
// It does not apply the super-admin bypass; use Service.CheckPermission for
// authorization decisions.
func (a Access) Can(name string) bool {
	for _, n := range a.PermissionNames {
		if n == name {
			return true
		}
	}

	return false
}

// Lookup returns the effective permission set as a map for conditional
// rendering in the presentation layer.
func (a Access) Lookup() map[string]bool {
	out := make(map[string]bool, len(a.PermissionNames))
	for _, n := range a.PermissionNames {
		out[n] = true
	}

	return out
}

// Resolve computes the effective access for a user: role names from the
// user's role assignments, permission names as the union of direct grants
// and permissions inherited through assigned roles.
// Role-inherited permissions are read through the graph cache; direct
// assignments are always read fresh. Output slices are sorted for stable
// responses.
func (s *Service) Resolve(userID uint64) (Access, error) {
	var roleNames []string

	err := s.db.Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Pluck("roles.name", &roleNames).Error
	if err != nil {
		return Access{}, fmt.Errorf("failed to get user roles: %w", err)
	}

	var directNames []string

	err = s.db.Table("permissions").
		Joins("JOIN user_permissions ON user_permissions.permission_id = permissions.id").
		Where("user_permissions.user_id = ?", userID).
		Pluck("permissions.name", &directNames).Error
	if err != nil {
		return Access{}, fmt.Errorf("failed to get direct permissions: %w", err)
	}

	graph, err := s.graph()
	if err != nil {
		return Access{}, err
	}

	permSet := make(map[string]bool, len(directNames))
	for _, name := range directNames {
		permSet[name] = true
	}

	for _, role := range roleNames {
		for _, name := range graph[role] {
			permSet[name] = true
		}
	}

	permNames := make([]string, 0, len(permSet))
	for name := range permSet {
		permNames = append(permNames, name)
	}

	sort.Strings(roleNames)
	sort.Strings(permNames)

	return Access{RoleNames: roleNames, PermissionNames: permNames}, nil
}

// CheckPermission checks if a user holds a specific permission.
// A user assigned the super-admin role passes unconditionally, even for
// permission names that do not exist in the system. The role membership is
// re-verified on every call since assignments can change between requests.
func (s *Service) CheckPermission(userID uint64, permission string) (bool, error) {
	access, err := s.Resolve(userID)
	if err != nil {
		return false, err
	}

	if access.HasRole(RoleSuperAdmin) {
		return true, nil
	}

	return access.Can(permission), nil
}

// UserAssignments holds the direct assignments of a user: assigned role
// names and directly granted permission names (role-inherited permissions
// are not included).
type UserAssignments struct {
	RoleNames       []string
	PermissionNames []string
}

type userNameRow struct {
	UserID uint64
	Name   string
}

// AssignmentsForUsers loads the direct role and permission assignments for
// a set of users in two queries, for embedding into user listings.
func (s *Service) AssignmentsForUsers(userIDs []uint64) (map[uint64]UserAssignments, error) {
	out := make(map[uint64]UserAssignments, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var roleRows []userNameRow

	err := s.db.Table("user_roles").
		Select("user_roles.user_id AS user_id, roles.name AS name").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id IN ?", userIDs).
		Order("roles.name ASC").
		Scan(&roleRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user role assignments: %w", err)
	}

	var permRows []userNameRow

	err = s.db.Table("user_permissions").
		Select("user_permissions.user_id AS user_id, permissions.name AS name").
		Joins("JOIN permissions ON permissions.id = user_permissions.permission_id").
		Where("user_permissions.user_id IN ?", userIDs).
		Order("permissions.name ASC").
		Scan(&permRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user permission grants: %w", err)
	}

	for _, id := range userIDs {
		out[id] = UserAssignments{RoleNames: []string{}, PermissionNames: []string{}}
	}

	for _, row := range roleRows {
		a := out[row.UserID]
		a.RoleNames = append(a.RoleNames, row.Name)
		out[row.UserID] = a
	}

	for _, row := range permRows {
		a := out[row.UserID]
		a.PermissionNames = append(a.PermissionNames, row.Name)
		out[row.UserID] = a
	}

	return out, nil
}

type roleNameRow struct {
	RoleID uint
	Name   string
}

// PermissionsForRoles loads the granted permission names for a set of roles,
// for embedding into role listings.
func (s *Service) PermissionsForRoles(roleIDs []uint) (map[uint][]string, error) {
	out := make(map[uint][]string, len(roleIDs))
	if len(roleIDs) == 0 {
		return out, nil
	}

	for _, id := range roleIDs {
		out[id] = []string{}
	}

	var rows []roleNameRow

	err := s.db.Table("role_permissions").
		Select("role_permissions.role_id AS role_id, permissions.name AS name").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id IN ?", roleIDs).
		Order("permissions.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}

	for _, row := range rows {
		out[row.RoleID] = append(out[row.RoleID], row.Name)
	}

	return out, nil
}
