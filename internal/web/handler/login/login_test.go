package login

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage"
	"gorm.io/gorm"

	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/config"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/db/models"
	websess "github.com/GoRBAC-Admin/GoRBAC-Admin/internal/web/session"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate user model: %v", err)
	}

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		DevMode: false,
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
	}
}

// testStorage is a minimal in-memory implementation of storage.Storage for tests.
type testStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Storage = (*testStorage)(nil)

func (s *testStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.data[key]
	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

func (s *testStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string][]byte)
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

func (s *testStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *testStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *testStorage) Close() error { return nil }

func initSessionStore() {
	// Initialize a fresh in-memory session store for each test.
	websess.Init(&testStorage{data: make(map[string][]byte)})
}

func seedUser(t *testing.T, db *gorm.DB, name, email, password string) *models.User {
	t.Helper()

	user := models.User{Name: name, Email: email, Password: models.HashPassword(password)}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return &user
}

func performLogin(t *testing.T, app *fiber.App, email, password string) *http.Response {
	t.Helper()

	body, err := json.Marshal(credentials{Email: email, Password: password})
	if err != nil {
		t.Fatalf("failed to marshal credentials: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	return resp
}

func TestPost_Success_SetsSecureCookie(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	cfg.DevMode = false // Secure cookie expected

	app := fiber.New()

	initSessionStore()

	var s Service
	if err := s.Init(app, cfg, db); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	seedUser(t, db, "bob", "bob@example.com", "s3cr3t-pass")

	resp := performLogin(t, app, "bob@example.com", "s3cr3t-pass")

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", resp.StatusCode)
	}

	setCookie := resp.Header.Get("Set-Cookie")
	if !strings.Contains(setCookie, "session=") {
		t.Fatalf("expected session cookie, got %q", setCookie)
	}

	if !strings.Contains(strings.ToLower(setCookie), "secure") {
		t.Fatalf("expected Secure flag on cookie when DevMode=false, got %q", setCookie)
	}

	var out struct {
		ID    uint64 `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if out.Email != "bob@example.com" || out.Name != "bob" {
		t.Fatalf("unexpected response body: %+v", out)
	}
}

func TestPost_Success_DevModeDisablesSecure(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	cfg.DevMode = true // Secure=false expected

	app := fiber.New()

	initSessionStore()

	var s Service
	if err := s.Init(app, cfg, db); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	seedUser(t, db, "carol", "carol@example.com", "passw0rd!")

	resp := performLogin(t, app, "carol@example.com", "passw0rd!")

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", resp.StatusCode)
	}

	setCookie := resp.Header.Get("Set-Cookie")
	if strings.Contains(strings.ToLower(setCookie), "secure") {
		t.Fatalf("did not expect Secure flag when DevMode=true, got %q", setCookie)
	}
}

func TestPost_InvalidCredentials(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	app := fiber.New()

	initSessionStore()

	var s Service
	if err := s.Init(app, cfg, db); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	seedUser(t, db, "dave", "dave@example.com", "right-pass")

	// wrong password
	resp := performLogin(t, app, "dave@example.com", "wrong-pass")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.StatusCode)
	}

	_ = resp.Body.Close()

	// unknown email gets the same answer, no user enumeration
	resp = performLogin(t, app, "nobody@example.com", "right-pass")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", resp.StatusCode)
	}

	_ = resp.Body.Close()
}

func TestPost_MalformedBody(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	app := fiber.New()

	initSessionStore()

	var s Service
	if err := s.Init(app, cfg, db); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 Bad Request, got %d", resp.StatusCode)
	}
}

func TestInit_NilArgs(t *testing.T) {
	var s Service
	if err := s.Init(nil, nil, nil); err == nil {
		t.Fatal("expected error for nil arguments")
	}
}
