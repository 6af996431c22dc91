// Package me provides the handler exposing the authenticated user's
// effective access to the presentation layer.
package me

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/config"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/db/models"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/rbac"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/web/handler"
)

const (
	// Path is the path to the current-user endpoint.
	Path = "/me"
)

// Service is the current-user handler service.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	rbac *rbac.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, rbacService *rbac.Service) {
	if app == nil || cfg == nil || db == nil || rbacService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.rbac = rbacService

	app.Get(Path, s.Get)
}

// Get returns the authenticated user with role names, effective permission
// names and the permission lookup map used for conditional rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	userID := rbac.SessionUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Msg("failed to load session user")

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	// resolved once per request by the access middleware
	access, ok := rbac.AccessFromLocals(c)
	if !ok {
		var err error

		access, err = s.rbac.Resolve(userID)
		if err != nil {
			return handler.RenderError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"id":               user.ID,
		"name":             user.Name,
		"email":            user.Email,
		"roleNames":        access.RoleNames,
		"permissionNames":  access.PermissionNames,
		"permissionLookup": access.Lookup(),
	})
}
