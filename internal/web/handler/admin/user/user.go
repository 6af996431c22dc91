// Package user provides handlers for managing users (CRUD) in the admin area.
package user

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
	// Path is the base path for user management.
	Path = "/admin/users"
)

// Service provides CRUD operations for users.
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
		rbac.RequirePermission(rbacService, rbac.PermManageUsers),
		s.List,
	)
	app.Post(Path,
		rbac.RequirePermission(rbacService, rbac.PermManageUsers),
		s.Create,
	)
	app.Put(Path+"/:id",
		rbac.RequirePermission(rbacService, rbac.PermManageUsers),
		s.Update,
	)
	app.Delete(Path+"/:id",
		rbac.RequirePermission(rbacService, rbac.PermManageUsers),
		s.Delete,
	)
}

// List shows users with pagination and case-insensitive name-or-email search.
// Each user embeds assigned role names and direct permission grants; the
// available role and permission vocabularies are included for the forms.
func (s *Service) List(c *fiber.Ctx) error {
	page, pageSize := handler.ParsePaging(c)
	search := c.Query("search", "")

	var (
		users      []models.User
		totalCount int64
		tx         = s.db.Model(&models.User{})
	)

	if search != "" {
		like := "%" + search + "%"
		tx = tx.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", like, like)
	}

	if err := tx.Count(&totalCount).Error; err != nil {
		log.Error().Err(err).Msg("count users failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load users"})
	}

	offset := (page - 1) * pageSize
	if err := tx.Order("id ASC").Limit(pageSize).Offset(offset).Find(&users).Error; err != nil {
		log.Error().Err(err).Msg("query users failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load users"})
	}

	userIDs := make([]uint64, 0, len(users))
	for _, u := range users {
		userIDs = append(userIDs, u.ID)
	}

	assignments, err := s.rbac.AssignmentsForUsers(userIDs)
	if err != nil {
		return handler.RenderError(c, err)
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{
			ID:          u.ID,
			Name:        u.Name,
			Email:       u.Email,
			Roles:       assignments[u.ID].RoleNames,
			Permissions: assignments[u.ID].PermissionNames,
		})
	}

	roleNames, permissionNames, err := s.vocabularies()
	if err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"users":       handler.NewPage(views, page, pageSize, totalCount),
		"roles":       roleNames,
		"permissions": permissionNames,
		"search":      search,
	})
}

// Create creates a new user and synchronizes its initial assignments.
func (s *Service) Create(c *fiber.Ctx) error {
	in := new(createInput)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": handler.ValidationFields(err),
		})
	}

	// reject unknown assignment names before any write
	if _, err := s.rbac.LookupRoleIDs(in.Roles); err != nil {
		return handler.RenderError(c, err)
	}

	if _, err := s.rbac.LookupPermissionIDs(in.Permissions); err != nil {
		return handler.RenderError(c, err)
	}

	created, err := s.rbac.CreateUser(in.Name, in.Email, in.Password)
	if err != nil {
		return handler.RenderError(c, err)
	}

	if err := s.rbac.SyncUserRoles(created.ID, in.Roles); err != nil {
		return handler.RenderError(c, err)
	}

	if err := s.rbac.SyncUserPermissions(created.ID, in.Permissions); err != nil {
		return handler.RenderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    created.ID,
		"name":  created.Name,
		"email": created.Email,
	})
}

// Update updates a user and replaces its assignments with the submitted
// lists. An absent list clears all assignments of that kind.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	in := new(updateInput)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": handler.ValidationFields(err),
		})
	}

	if _, err := s.rbac.LookupRoleIDs(in.Roles); err != nil {
		return handler.RenderError(c, err)
	}

	if _, err := s.rbac.LookupPermissionIDs(in.Permissions); err != nil {
		return handler.RenderError(c, err)
	}

	updated, err := s.rbac.UpdateUser(uint64(id), in.Name, in.Email, in.Password)
	if err != nil {
		return handler.RenderError(c, err)
	}

	if err := s.rbac.SyncUserRoles(updated.ID, in.Roles); err != nil {
		return handler.RenderError(c, err)
	}

	if err := s.rbac.SyncUserPermissions(updated.ID, in.Permissions); err != nil {
		return handler.RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":    updated.ID,
		"name":  updated.Name,
		"email": updated.Email,
	})
}

// Delete deletes a user unless the target is the acting user's own account.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	if err := s.rbac.DeleteUser(uint64(id), rbac.SessionUserID(c)); err != nil {
		return handler.RenderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// vocabularies loads all role and permission names for the admin forms.
func (s *Service) vocabularies() (roleNames, permissionNames []string, err error) {
	if err = s.db.Model(&models.Role{}).Order("name ASC").Pluck("name", &roleNames).Error; err != nil {
		return nil, nil, err
	}

	if err = s.db.Model(&models.Permission{}).Order("name ASC").Pluck("name", &permissionNames).Error; err != nil {
		return nil, nil, err
	}

	return roleNames, permissionNames, nil
}
