package rbac

import (
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/storage"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// Migrate the schema
	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.UserRole{},
		&models.RolePermission{},
		&models.UserPermission{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// countingStorage is a minimal in-memory implementation of storage.Storage
// that records writes and evictions, and can be switched into a failing mode.
type countingStorage struct {
	mu      sync.RWMutex
	data    map[string][]byte
	sets    int
	deletes int
	fail    bool
}

var _ storage.Storage = (*countingStorage)(nil)

var errStorageDown = errors.New("storage down")

func newCountingStorage() *countingStorage {
	return &countingStorage{data: make(map[string][]byte)}
}

func (s *countingStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.fail {
		return nil, errStorageDown
	}

	v := s.data[key]
	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

func (s *countingStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return errStorageDown
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf
	s.sets++

	return nil
}

func (s *countingStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return errStorageDown
	}

	delete(s.data, key)
	s.deletes++

	return nil
}

func (s *countingStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *countingStorage) Close() error { return nil }

func (s *countingStorage) cached(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data[key]) > 0
}

func newTestService(t *testing.T) (*Service, *countingStorage) {
	t.Helper()

	cache := newCountingStorage()

	return NewService(setupTestDB(t), cache), cache
}

func mustUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	user := models.User{Name: name, Email: email, Password: models.HashPassword("secret")}
	require.NoError(t, db.Create(&user).Error, "failed to seed user %s", name)

	return &user
}

func mustRole(t *testing.T, db *gorm.DB, name string) *models.Role {
	t.Helper()

	role := models.Role{Name: name, GuardName: models.GuardWeb}
	require.NoError(t, db.Create(&role).Error, "failed to seed role %s", name)

	return &role
}

func mustPermission(t *testing.T, db *gorm.DB, name string) *models.Permission {
	t.Helper()

	permission := models.Permission{Name: name, GuardName: models.GuardWeb}
	require.NoError(t, db.Create(&permission).Error, "failed to seed permission %s", name)

	return &permission
}

func mustGrant(t *testing.T, db *gorm.DB, role *models.Role, permission *models.Permission) {
	t.Helper()

	grant := models.RolePermission{RoleID: role.ID, PermissionID: permission.ID}
	require.NoError(t, db.Create(&grant).Error, "failed to grant %s to %s", permission.Name, role.Name)
}

func mustAssign(t *testing.T, db *gorm.DB, user *models.User, role *models.Role) {
	t.Helper()

	assignment := models.UserRole{UserID: user.ID, RoleID: role.ID}
	require.NoError(t, db.Create(&assignment).Error, "failed to assign %s to %s", role.Name, user.Name)
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)

	return count
}
