// Package permission provides handlers for managing permissions (CRUD)
// in the admin area.
package permission

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/config"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/db/models"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/rbac"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/web/handler"
)

const (
	// Path is the base path for permission management.
	Path = "/admin/permissions"
)

type upsertInput struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// Service provides CRUD operations for permissions.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	rbac      *rbac.Service
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, rbacService *rbac.Service) {
	if app == nil || cfg == nil || db == nil || rbacService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.rbac = rbacService
	s.validator = validator.New()

	// Routes
	app.Get(Path,
		rbac.RequirePermission(rbacService, rbac.PermManagePermissions),
		s.List,
	)
	app.Post(Path,
		rbac.RequirePermission(rbacService, rbac.PermManagePermissions),
		s.Create,
	)
	app.Put(Path+"/:id",
		rbac.RequirePermission(rbacService, rbac.PermManagePermissions),
		s.Update,
	)
	app.Delete(Path+"/:id",
		rbac.RequirePermission(rbacService, rbac.PermManagePermissions),
		s.Delete,
	)
}

// List shows permissions in insertion order with pagination and
// case-insensitive name search.
func (s *Service) List(c *fiber.Ctx) error {
	page, pageSize := handler.ParsePaging(c)
	search := c.Query("search", "")

	var (
		permissions []models.Permission
		totalCount  int64
		tx          = s.db.Model(&models.Permission{})
	)

	if search != "" {
		tx = tx.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	if err := tx.Count(&totalCount).Error; err != nil {
		log.Error().Err(err).Msg("count permissions failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load permissions"})
	}

	offset := (page - 1) * pageSize
	if err := tx.Order("id ASC").Limit(pageSize).Offset(offset).Find(&permissions).Error; err != nil {
		log.Error().Err(err).Msg("query permissions failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load permissions"})
	}

	type permissionView struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}

	views := make([]permissionView, 0, len(permissions))
	for _, p := range permissions {
		views = append(views, permissionView{ID: p.ID, Name: p.Name})
	}

	return c.JSON(fiber.Map{
		"permissions": handler.NewPage(views, page, pageSize, totalCount),
		"search":      search,
	})
}

// Create creates a new permission.
func (s *Service) Create(c *fiber.Ctx) error {
	in := new(upsertInput)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": handler.ValidationFields(err),
		})
	}

	created, err := s.rbac.CreatePermission(in.Name)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":   created.ID,
		"name": created.Name,
	})
}

// Update renames a permission. Role grants and direct user grants keep
// pointing at the renamed permission.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid permission id"})
	}

	in := new(upsertInput)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": handler.ValidationFields(err),
		})
	}

	updated, err := s.rbac.RenamePermission(uint(id), in.Name)
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":   updated.ID,
		"name": updated.Name,
	})
}

// Delete deletes a permission and cascades its role grants and direct
// user grants.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid permission id"})
	}

	if err := s.rbac.DeletePermission(uint(id)); err != nil {
		return handler.RenderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
