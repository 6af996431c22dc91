package rbac

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrRoleNotFound is returned when a role cannot be found in the database.
	ErrRoleNotFound = errors.New("role not found")

	// ErrPermissionNotFound is returned when a permission cannot be found in the database.
	ErrPermissionNotFound = errors.New("permission not found")

	// ErrSelfDeletion is returned when a user attempts to delete their own account.
	ErrSelfDeletion = errors.New("you cannot delete your own account")

	// ErrEmailExists is returned when attempting to create or update a user
	// with an email address that already belongs to another user.
	ErrEmailExists = errors.New("user with this email already exists")

	// ErrRoleExists is returned when attempting to create or rename a role
	// to a name that already exists within the guard.
	ErrRoleExists = errors.New("role with this name already exists")

	// ErrPermissionExists is returned when attempting to create or rename a
	// permission to a name that already exists within the guard.
	ErrPermissionExists = errors.New("permission with this name already exists")
)

// UnknownAssignmentError is returned when an assignment request references
// role or permission names that do not exist. The whole request is rejected;
// unknown names are never silently created.
type UnknownAssignmentError struct {
	// Kind is the assignment kind, "roles" or "permissions".
	Kind string
	// Names lists every offending name of the request.
	Names []string
}

// Error implements the error interface.
func (e *UnknownAssignmentError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Kind, strings.Join(e.Names, ", "))
}
