package rbac

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/db/models"
)

func (s *Service) userExists(userID uint64) error {
	var user models.User

	err := s.db.Select("id").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}

	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}

	return nil
}

func (s *Service) roleExists(roleID uint) error {
	var role models.Role

	err := s.db.Select("id").First(&role, roleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRoleNotFound
	}

	if err != nil {
		return fmt.Errorf("failed to check role: %w", err)
	}

	return nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(userID uint64) (*models.User, error) {
	var user models.User

	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return &user, nil
}

// CreateUser creates a new user with a hashed password.
// The email address must not belong to an existing user.
func (s *Service) CreateUser(name, email, password string) (*models.User, error) {
	var existing models.User

	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Password: models.HashPassword(password),
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// UpdateUser updates a user's name and email, and rehashes the password
// only when a non-empty one is supplied. Email uniqueness is validated
// excluding the user itself.
func (s *Service) UpdateUser(userID uint64, name, email, password string) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	var existing models.User

	err = s.db.Where("email = ? AND id <> ?", email, userID).First(&existing).Error
	if err == nil {
		return nil, ErrEmailExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user.Name = name
	user.Email = email

	if password != "" {
		user.Password = models.HashPassword(password)
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser deletes a user and cascades its role assignments and direct
// permission grants in one transaction. A user may not delete their own
// account: when userID equals actingUserID the call fails with
// ErrSelfDeletion and nothing is mutated.
func (s *Service) DeleteUser(userID, actingUserID uint64) error {
	if userID == actingUserID {
		return ErrSelfDeletion
	}

	if err := s.userExists(userID); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.UserPermission{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.InvalidateGraph()

	return nil
}

// GetRole retrieves a role by ID.
func (s *Service) GetRole(roleID uint) (*models.Role, error) {
	var role models.Role

	err := s.db.First(&role, roleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load role: %w", err)
	}

	return &role, nil
}

// CreateRole creates a new role in the web guard. The name must be unique
// within the guard.
func (s *Service) CreateRole(name string) (*models.Role, error) {
	var existing models.Role

	err := s.db.Where("name = ? AND guard_name = ?", name, models.GuardWeb).First(&existing).Error
	if err == nil {
		return nil, ErrRoleExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing role: %w", err)
	}

	role := models.Role{Name: name, GuardName: models.GuardWeb}
	if err := s.db.Create(&role).Error; err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	s.InvalidateGraph()

	return &role, nil
}

// RenameRole renames a role. Name uniqueness is validated excluding the
// role itself. The graph cache keys on role names, so a rename invalidates.
func (s *Service) RenameRole(roleID uint, name string) (*models.Role, error) {
	role, err := s.GetRole(roleID)
	if err != nil {
		return nil, err
	}

	var existing models.Role

	err = s.db.Where("name = ? AND guard_name = ? AND id <> ?", name, models.GuardWeb, roleID).
		First(&existing).Error
	if err == nil {
		return nil, ErrRoleExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing role: %w", err)
	}

	role.Name = name

	if err := s.db.Save(role).Error; err != nil {
		return nil, fmt.Errorf("failed to rename role: %w", err)
	}

	s.InvalidateGraph()

	return role, nil
}

// DeleteRole deletes a role and cascades its permission grants and user
// assignments in one transaction, leaving no orphaned junction rows.
func (s *Service) DeleteRole(roleID uint) error {
	if err := s.roleExists(roleID); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		if err := tx.Where("role_id = ?", roleID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Role{}, roleID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	s.InvalidateGraph()

	return nil
}

// GetPermission retrieves a permission by ID.
func (s *Service) GetPermission(permissionID uint) (*models.Permission, error) {
	var permission models.Permission

	err := s.db.First(&permission, permissionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPermissionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load permission: %w", err)
	}

	return &permission, nil
}

// CreatePermission creates a new permission in the web guard. The name must
// be unique within the guard.
func (s *Service) CreatePermission(name string) (*models.Permission, error) {
	var existing models.Permission

	err := s.db.Where("name = ? AND guard_name = ?", name, models.GuardWeb).First(&existing).Error
	if err == nil {
		return nil, ErrPermissionExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing permission: %w", err)
	}

	permission := models.Permission{Name: name, GuardName: models.GuardWeb}
	if err := s.db.Create(&permission).Error; err != nil {
		return nil, fmt.Errorf("failed to create permission: %w", err)
	}

	s.InvalidateGraph()

	return &permission, nil
}

// RenamePermission renames a permission. Name uniqueness is validated
// excluding the permission itself.
func (s *Service) RenamePermission(permissionID uint, name string) (*models.Permission, error) {
	permission, err := s.GetPermission(permissionID)
	if err != nil {
		return nil, err
	}

	var existing models.Permission

	err = s.db.Where("name = ? AND guard_name = ? AND id <> ?", name, models.GuardWeb, permissionID).
		First(&existing).Error
	if err == nil {
		return nil, ErrPermissionExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing permission: %w", err)
	}

	permission.Name = name

	if err := s.db.Save(permission).Error; err != nil {
		return nil, fmt.Errorf("failed to rename permission: %w", err)
	}

	s.InvalidateGraph()

	return permission, nil
}

// DeletePermission deletes a permission and cascades its role grants and
// direct user grants in one transaction.
func (s *Service) DeletePermission(permissionID uint) error {
	if _, err := s.GetPermission(permissionID); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", permissionID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		if err := tx.Where("permission_id = ?", permissionID).Delete(&models.UserPermission{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Permission{}, permissionID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete permission: %w", err)
	}

	s.InvalidateGraph()

	return nil
}
