package rbac

import (
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/db/models"
)

// LookupRoleIDs resolves role names to IDs within the web guard. If any
// name does not exist, an UnknownAssignmentError listing every offending
// name is returned and no IDs are resolved.
func (s *Service) LookupRoleIDs(names []string) ([]uint, error) {
	names = dedupeNames(names)
	if len(names) == 0 {
		return nil, nil
	}

	var roles []models.Role

	err := s.db.Where("name IN ? AND guard_name = ?", names, models.GuardWeb).Find(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up roles: %w", err)
	}

	byName := make(map[string]uint, len(roles))
	for _, role := range roles {
		byName[role.Name] = role.ID
	}

	ids := make([]uint, 0, len(names))

	var missing []string

	for _, name := range names {
		id, ok := byName[name]
		if !ok {
			missing = append(missing, name)
			continue
		}

		ids = append(ids, id)
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &UnknownAssignmentError{Kind: "roles", Names: missing}
	}

	return ids, nil
}

// LookupPermissionIDs resolves permission names to IDs within the web guard.
// If any name does not exist, an UnknownAssignmentError listing every
// offending name is returned and no IDs are resolved.
func (s *Service) LookupPermissionIDs(names []string) ([]uint, error) {
	names = dedupeNames(names)
	if len(names) == 0 {
		return nil, nil
	}

	var permissions []models.Permission

	err := s.db.Where("name IN ? AND guard_name = ?", names, models.GuardWeb).Find(&permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up permissions: %w", err)
	}

	byName := make(map[string]uint, len(permissions))
	for _, permission := range permissions {
		byName[permission.Name] = permission.ID
	}

	ids := make([]uint, 0, len(names))

	var missing []string

	for _, name := range names {
		id, ok := byName[name]
		if !ok {
			missing = append(missing, name)
			continue
		}

		ids = append(ids, id)
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &UnknownAssignmentError{Kind: "permissions", Names: missing}
	}

	return ids, nil
}

// SyncUserRoles replaces the user's role assignments with the desired set.
// The desired list is the complete target state, not a delta: names absent
// from it are removed, an empty list clears all assignments. Every name must
// exist as a role. The add/remove diff is computed against the current rows
// and applied inside one transaction; calling twice with the same list
// performs zero writes the second time.
func (s *Service) SyncUserRoles(userID uint64, names []string) error {
	if err := s.userExists(userID); err != nil {
		return err
	}

	desired, err := s.LookupRoleIDs(names)
	if err != nil {
		return err
	}

	var changed bool

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var current []models.UserRole
		if err := tx.Where("user_id = ?", userID).Find(&current).Error; err != nil {
			return err
		}

		currentIDs := make([]uint, 0, len(current))
		for _, row := range current {
			currentIDs = append(currentIDs, row.RoleID)
		}

		toAdd, toRemove := diffIDs(currentIDs, desired)
		changed = len(toAdd) > 0 || len(toRemove) > 0

		if len(toRemove) > 0 {
			err := tx.Where("user_id = ? AND role_id IN ?", userID, toRemove).
				Delete(&models.UserRole{}).Error
			if err != nil {
				return err
			}
		}

		for _, id := range toAdd {
			if err := tx.Create(&models.UserRole{UserID: userID, RoleID: id}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sync user roles: %w", err)
	}

	if changed {
		s.InvalidateGraph()
	}

	return nil
}

// SyncUserPermissions replaces the user's direct permission grants with the
// desired set. Same full-replace, validated, transactional contract as
// SyncUserRoles.
func (s *Service) SyncUserPermissions(userID uint64, names []string) error {
	if err := s.userExists(userID); err != nil {
		return err
	}

	desired, err := s.LookupPermissionIDs(names)
	if err != nil {
		return err
	}

	var changed bool

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var current []models.UserPermission
		if err := tx.Where("user_id = ?", userID).Find(&current).Error; err != nil {
			return err
		}

		currentIDs := make([]uint, 0, len(current))
		for _, row := range current {
			currentIDs = append(currentIDs, row.PermissionID)
		}

		toAdd, toRemove := diffIDs(currentIDs, desired)
		changed = len(toAdd) > 0 || len(toRemove) > 0

		if len(toRemove) > 0 {
			err := tx.Where("user_id = ? AND permission_id IN ?", userID, toRemove).
				Delete(&models.UserPermission{}).Error
			if err != nil {
				return err
			}
		}

		for _, id := range toAdd {
			if err := tx.Create(&models.UserPermission{UserID: userID, PermissionID: id}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sync user permissions: %w", err)
	}

	if changed {
		s.InvalidateGraph()
	}

	return nil
}

// SyncRolePermissions replaces the role's permission grants with the desired
// set. Same full-replace, validated, transactional contract as SyncUserRoles.
func (s *Service) SyncRolePermissions(roleID uint, names []string) error {
	if err := s.roleExists(roleID); err != nil {
		return err
	}

	desired, err := s.LookupPermissionIDs(names)
	if err != nil {
		return err
	}

	var changed bool

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var current []models.RolePermission
		if err := tx.Where("role_id = ?", roleID).Find(&current).Error; err != nil {
			return err
		}

		currentIDs := make([]uint, 0, len(current))
		for _, row := range current {
			currentIDs = append(currentIDs, row.PermissionID)
		}

		toAdd, toRemove := diffIDs(currentIDs, desired)
		changed = len(toAdd) > 0 || len(toRemove) > 0

		if len(toRemove) > 0 {
			err := tx.Where("role_id = ? AND permission_id IN ?", roleID, toRemove).
				Delete(&models.RolePermission{}).Error
			if err != nil {
				return err
			}
		}

		for _, id := range toAdd {
			if err := tx.Create(&models.RolePermission{RoleID: roleID, PermissionID: id}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sync role permissions: %w", err)
	}

	if changed {
		s.InvalidateGraph()
	}

	return nil
}

// diffIDs computes the minimal add/remove sets turning current into desired.
func diffIDs(current, desired []uint) (toAdd, toRemove []uint) {
	currentSet := make(map[uint]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}

	desiredSet := make(map[uint]bool, len(desired))
	for _, id := range desired {
		desiredSet[id] = true
	}

	for _, id := range desired {
		if !currentSet[id] {
			toAdd = append(toAdd, id)
		}
	}

	for _, id := range current {
		if !desiredSet[id] {
			toRemove = append(toRemove, id)
		}
	}

	return toAdd, toRemove
}

// dedupeNames removes duplicates while preserving the first occurrence order.
func dedupeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))

	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}

		seen[name] = true

		out = append(out, name)
	}

	return out
}
