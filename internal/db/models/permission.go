package models

import "time"

// Permission represents a specific permission in the authorization system.
// Permission names are free-form strings, conventionally in resource.action
// format (e.g. "users.edit"). They are granted to roles or directly to users.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Name is the permission identifier, unique within its guard.
	Name string `gorm:"size:100;not null;uniqueIndex:idx_permissions_name_guard"`
	// GuardName is the authentication context this permission applies to.
	GuardName string `gorm:"size:50;not null;default:'web';uniqueIndex:idx_permissions_name_guard"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
// This overrides GORM's default pluralized table naming.
func (Permission) TableName() string {
	return "permissions"
}
