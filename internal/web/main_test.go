package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/config"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/db/models"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/rbac"
	loginhandler "github.com/GoRBAC-Admin/GoRBAC-Admin/internal/web/handler/login"
	mehandler "github.com/GoRBAC-Admin/GoRBAC-Admin/internal/web/handler/me"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/web/session"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.UserRole{},
		&models.RolePermission{},
		&models.UserPermission{},
	)
	require.NoError(t, err, "failed to migrate test database")

	session.Init(memory.New())

	rbacService := rbac.NewService(db, memory.New())

	require.NoError(t, db.Create(&models.User{
		Name:     "root",
		Email:    "root@example.com",
		Password: models.HashPassword("root-secret"),
	}).Error)

	require.NoError(t, rbacService.Seed())

	cfg := &config.Config{
		DevMode: true,
		Title:   "GoRBAC-Admin",
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
	}

	return New(cfg, db, rbacService)
}

func TestCheckAlive_NoAuthRequired(t *testing.T) {
	s := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, CheckAlivePath, nil)

	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware_RejectsWithoutSession(t *testing.T) {
	s := newTestService(t)

	for _, target := range []string{"/me", "/admin/users", "/admin/roles", "/admin/permissions"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)

		resp, err := s.App.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "expected 401 for %s", target)
		_ = resp.Body.Close()
	}
}

func TestAuthMiddleware_RejectsBogusSession(t *testing.T) {
	s := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "not-a-real-session"})

	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginFlow_EndToEnd(t *testing.T) {
	s := newTestService(t)

	// login with the seeded account
	body := `{"email":"root@example.com","password":"root-secret"}`
	req := httptest.NewRequest(http.MethodPost, loginhandler.Path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sessionCookie string

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "session" {
			sessionCookie = cookie.Value
		}
	}

	_ = resp.Body.Close()
	require.NotEmpty(t, sessionCookie, "login must set a session cookie")

	// the authenticated profile reflects the bypass role assigned at seed time
	req = httptest.NewRequest(http.MethodGet, mehandler.Path, nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: sessionCookie})

	resp, err = s.App.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := make(map[string]interface{})
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	_ = resp.Body.Close()

	assert.Equal(t, "root@example.com", out["email"])
	assert.Contains(t, out["roleNames"], rbac.RoleSuperAdmin)

	// and the bypass opens the admin area
	req = httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: sessionCookie})

	resp, err = s.App.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// logout invalidates the session
	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: sessionCookie})

	resp, err = s.App.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	req = httptest.NewRequest(http.MethodGet, mehandler.Path, nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: sessionCookie})

	resp, err = s.App.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}
