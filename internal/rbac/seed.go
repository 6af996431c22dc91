package rbac

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/db/models"
)

// Seed provisions the fixed permission vocabulary and the standard roles
// with create-if-absent semantics, so it is safe to run on every boot.
//
// Two deliberate, distinct super-user mechanisms exist: the admin role is
// granted the full vocabulary explicitly (its grants survive removal of the
// bypass rule), while the super-admin role holds no permission rows and
// passes checks purely through the bypass in CheckPermission (it survives
// permission table changes). If no user holds super-admin yet, it is
// assigned to the first-created user as the break-glass recovery account.
func (s *Service) Seed() error {
	for _, name := range DefaultPermissions() {
		permission := models.Permission{Name: name, GuardName: models.GuardWeb}

		err := s.db.Where("name = ? AND guard_name = ?", name, models.GuardWeb).
			FirstOrCreate(&permission).Error
		if err != nil {
			return fmt.Errorf("failed to seed permission %s: %w", name, err)
		}
	}

	admin, err := s.seedRole(RoleAdmin)
	if err != nil {
		return err
	}

	if err := s.grantPermissions(admin, DefaultPermissions()); err != nil {
		return err
	}

	editor, err := s.seedRole(RoleEditor)
	if err != nil {
		return err
	}

	err = s.grantPermissions(editor, []string{
		PermPostsView,
		PermPostsCreate,
		PermPostsEdit,
		PermPostsPublish,
	})
	if err != nil {
		return err
	}

	user, err := s.seedRole(RoleUser)
	if err != nil {
		return err
	}

	if err := s.grantPermissions(user, []string{PermPostsView}); err != nil {
		return err
	}

	// bypass role, deliberately without permission rows
	superAdmin, err := s.seedRole(RoleSuperAdmin)
	if err != nil {
		return err
	}

	if err := s.assignBypassRole(superAdmin); err != nil {
		return err
	}

	s.InvalidateGraph()

	return nil
}

func (s *Service) seedRole(name string) (*models.Role, error) {
	role := models.Role{Name: name, GuardName: models.GuardWeb}

	err := s.db.Where("name = ? AND guard_name = ?", name, models.GuardWeb).
		FirstOrCreate(&role).Error
	if err != nil {
		return nil, fmt.Errorf("failed to seed role %s: %w", name, err)
	}

	return &role, nil
}

// grantPermissions adds the named permissions to the role if absent.
// Unlike SyncRolePermissions it never removes grants, so manual additions
// survive reseeding.
func (s *Service) grantPermissions(role *models.Role, names []string) error {
	ids, err := s.LookupPermissionIDs(names)
	if err != nil {
		return fmt.Errorf("failed to resolve grants for role %s: %w", role.Name, err)
	}

	for _, id := range ids {
		grant := models.RolePermission{RoleID: role.ID, PermissionID: id}

		err := s.db.Where("role_id = ? AND permission_id = ?", role.ID, id).
			FirstOrCreate(&grant).Error
		if err != nil {
			return fmt.Errorf("failed to grant permission to role %s: %w", role.Name, err)
		}
	}

	return nil
}

// assignBypassRole assigns the super-admin role to the first-created user
// when no user holds it yet.
func (s *Service) assignBypassRole(superAdmin *models.Role) error {
	var count int64

	err := s.db.Model(&models.UserRole{}).Where("role_id = ?", superAdmin.ID).Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to count bypass role holders: %w", err)
	}

	if count > 0 {
		return nil
	}

	var first models.User

	err = s.db.Order("id ASC").First(&first).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// no users yet, nothing to assign
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to load first user: %w", err)
	}

	assignment := models.UserRole{UserID: first.ID, RoleID: superAdmin.ID}

	err = s.db.Where("user_id = ? AND role_id = ?", first.ID, superAdmin.ID).
		FirstOrCreate(&assignment).Error
	if err != nil {
		return fmt.Errorf("failed to assign bypass role: %w", err)
	}

	return nil
}
