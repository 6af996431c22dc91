// Package daemon wires the database, cache, session store and web
// service together into a runnable process.
package daemon

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/storage"
	cachememory "github.com/gofiber/storage/memory/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/config"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/db/dsn"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/db/models"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/rbac"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/web"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until it shuts down.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.UserRole{},
		&models.RolePermission{},
		&models.UserPermission{},
	); err != nil {
		panic("failed to migrate database")
	}

	// Initialize fiber session store
	session.Init(openSessionStorage(cfg))

	// The resolved permission graph lives in process memory and is
	// rebuilt on demand after invalidation.
	rbacService := rbac.NewService(db, cachememory.New())

	seed(cfg, db, rbacService)

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, rbacService),
	}
}

// openDialector selects the gorm driver matching the configured engine.
func openDialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DB.Engine {
	case "mysql":
		return gormmysql.Open(dsn.Create(cfg))
	case "postgres":
		return gormpostgres.Open(dsn.CreatePostgres(cfg))
	case "sqlite":
		return sqlite.Open(cfg.DB.File)
	default:
		log.Fatal().Str("engine", cfg.DB.Engine).Msg("unknown database engine")
		return nil
	}
}

// openSessionStorage keeps sessions in the configured database so they
// survive restarts. The sqlite engine falls back to in-memory sessions.
func openSessionStorage(cfg *config.Config) storage.Storage {
	switch cfg.DB.Engine {
	case "mysql":
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		})
	case "postgres":
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.CreatePostgres(cfg),
			Table:         "sessions",
		})
	default:
		return cachememory.New()
	}
}
