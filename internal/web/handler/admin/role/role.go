// Package role provides handlers for managing roles (CRUD) in the admin area.
package role

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
	// Path is the base path for role management.
	Path = "/admin/roles"
)

type upsertInput struct {
	Name        string   `json:"name"        validate:"required,min=1,max=100"`
	Permissions []string `json:"permissions" validate:"dive,required"`
}

// roleView is the listing shape with embedded permission names.
type roleView struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// Service provides CRUD operations for roles.
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
		rbac.RequirePermission(rbacService, rbac.PermManageRoles),
		s.List,
	)
	app.Post(Path,
		rbac.RequirePermission(rbacService, rbac.PermManageRoles),
		s.Create,
	)
	app.Put(Path+"/:id",
		rbac.RequirePermission(rbacService, rbac.PermManageRoles),
		s.Update,
	)
	app.Delete(Path+"/:id",
		rbac.RequirePermission(rbacService, rbac.PermManageRoles),
		s.Delete,
	)
}

// List shows roles ordered by name with pagination and case-insensitive
// name search. Each role embeds its granted permission names; the full
// permission vocabulary is included for the forms.
func (s *Service) List(c *fiber.Ctx) error {
	page, pageSize := handler.ParsePaging(c)
	search := c.Query("search", "")

	var (
		roles      []models.Role
		totalCount int64
		tx         = s.db.Model(&models.Role{})
	)

	if search != "" {
		tx = tx.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	if err := tx.Count(&totalCount).Error; err != nil {
		log.Error().Err(err).Msg("count roles failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load roles"})
	}

	offset := (page - 1) * pageSize
	if err := tx.Order("name ASC").Limit(pageSize).Offset(offset).Find(&roles).Error; err != nil {
		log.Error().Err(err).Msg("query roles failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load roles"})
	}

	roleIDs := make([]uint, 0, len(roles))
	for _, r := range roles {
		roleIDs = append(roleIDs, r.ID)
	}

	grants, err := s.rbac.PermissionsForRoles(roleIDs)
	if err != nil {
		return handler.RenderError(c, err)
	}

	views := make([]roleView, 0, len(roles))
	for _, r := range roles {
		views = append(views, roleView{
			ID:          r.ID,
			Name:        r.Name,
			Permissions: grants[r.ID],
		})
	}

	var permissionNames []string
	if err := s.db.Model(&models.Permission{}).Order("name ASC").
		Pluck("name", &permissionNames).Error; err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"roles":       handler.NewPage(views, page, pageSize, totalCount),
		"permissions": permissionNames,
		"search":      search,
	})
}

// Create creates a new role and synchronizes its initial permission grants.
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

	// reject unknown permission names before any write
	if _, err := s.rbac.LookupPermissionIDs(in.Permissions); err != nil {
		return handler.RenderError(c, err)
	}

	created, err := s.rbac.CreateRole(in.Name)
	if err != nil {
		return handler.RenderError(c, err)
	}

	if err := s.rbac.SyncRolePermissions(created.ID, in.Permissions); err != nil {
		return handler.RenderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":   created.ID,
		"name": created.Name,
	})
}

// Update renames a role and replaces its permission grants with the
// submitted list. An absent list clears all grants.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role id"})
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

	if _, err := s.rbac.LookupPermissionIDs(in.Permissions); err != nil {
		return handler.RenderError(c, err)
	}

	updated, err := s.rbac.RenameRole(uint(id), in.Name)
	if err != nil {
		return handler.RenderError(c, err)
	}

	if err := s.rbac.SyncRolePermissions(updated.ID, in.Permissions); err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":   updated.ID,
		"name": updated.Name,
	})
}

// Delete deletes a role and cascades its permission grants and user assignments.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role id"})
	}

	if err := s.rbac.DeleteRole(uint(id)); err != nil {
		return handler.RenderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
