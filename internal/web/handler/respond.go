package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/rbac"
)

// Page is the pagination envelope shared by all listing endpoints.
type Page struct {
	Items      interface{} `json:"items"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalItems int64       `json:"totalItems"`
	TotalPages int         `json:"totalPages"`
}

// NewPage builds the pagination envelope for a result set.
func NewPage(items interface{}, page, pageSize int, totalItems int64) Page {
	totalPages := int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}

	return Page{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// ParsePaging reads and clamps the page and pageSize query parameters.
func ParsePaging(c *fiber.Ctx) (page, pageSize int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize = c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	return page, pageSize
}

// ValidationFields converts validator errors into a field to message map.
func ValidationFields(err error) map[string]string {
	fields := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldErr := range validationErrors {
			fields[fieldErr.Field()] = "failed on " + fieldErr.Tag()
		}
	}

	return fields
}

// RenderError maps a business error from the rbac core onto an HTTP response.
// Validation and uniqueness problems surface with enough detail to correct
// the input; persistence failures surface generically.
func RenderError(c *fiber.Ctx, err error) error {
	var unknown *rbac.UnknownAssignmentError

	switch {
	case errors.As(err, &unknown):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  unknown.Error(),
			"fields": fiber.Map{unknown.Kind: unknown.Names},
		})
	case errors.Is(err, rbac.ErrSelfDeletion):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, rbac.ErrEmailExists):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  err.Error(),
			"fields": fiber.Map{"email": err.Error()},
		})
	case errors.Is(err, rbac.ErrRoleExists), errors.Is(err, rbac.ErrPermissionExists):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  err.Error(),
			"fields": fiber.Map{"name": err.Error()},
		})
	case errors.Is(err, rbac.ErrUserNotFound),
		errors.Is(err, rbac.ErrRoleNotFound),
		errors.Is(err, rbac.ErrPermissionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}
