package models

import "time"

// GuardWeb is the default guard name. The panel runs a single
// authentication context, but the column is kept so multiple
// permission sets can coexist for different guard types.
const GuardWeb = "web"

// Role represents a role in the role-based access control (RBAC) system.
// Roles are collections of permissions that can be assigned to users.
// Examples include the "admin", "editor" and "user" roles.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the name of the role, unique within its guard.
	Name string `gorm:"size:100;not null;uniqueIndex:idx_roles_name_guard"`
	// GuardName is the authentication context this role applies to.
	GuardName string `gorm:"size:50;not null;default:'web';uniqueIndex:idx_roles_name_guard"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}
