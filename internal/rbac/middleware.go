package rbac

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/web/session"
)

// accessLocalsKey is the fiber.Locals key holding the resolved Access.
const accessLocalsKey = "access"

// SessionUserID returns the ID of the user owning the request's session,
// or 0 when the session is missing or invalid.
func SessionUserID(c *fiber.Ctx) uint64 {
	sessionID := c.Cookies("session")
	if sessionID == "" {
		return 0
	}

	sessionData := new(session.Data)
	if err := sessionData.Read(sessionID); err != nil {
		return 0
	}

	return sessionData.User.ID
}

// RequirePermission creates Fiber middleware that requires a specific permission.
// The check goes through CheckPermission, so super-admin holders always pass.
func RequirePermission(service *Service, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := SessionUserID(c)
		if userID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		hasPermission, err := service.CheckPermission(userID, permission)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", userID).Str("permission", permission).
				Msg("Failed to check permission")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", userID).Str("permission", permission).
				Msg("User lacks required permission")

			return c.Status(fiber.StatusForbidden).
				JSON(fiber.Map{"error": "Forbidden: You don't have permission to access this resource"})
		}

		// User has permission, proceed
		return c.Next()
	}
}

// AddAccessToLocals is a Fiber middleware that resolves the current user's
// effective access and adds it to fiber.Locals, so handlers can embed the
// role names, permission names and permission lookup into their responses
// without recomputation.
func AddAccessToLocals(service *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := SessionUserID(c)
		if userID == 0 {
			// Not authenticated, continue without access info
			return c.Next()
		}

		access, err := service.Resolve(userID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", userID).
				Msg("Failed to resolve user access")

			return c.Next()
		}

		c.Locals(accessLocalsKey, access)

		return c.Next()
	}
}

// AccessFromLocals returns the Access stored by AddAccessToLocals.
// The second return value is false when no access was resolved for the request.
func AccessFromLocals(c *fiber.Ctx) (Access, bool) {
	access, ok := c.Locals(accessLocalsKey).(Access)
	return access, ok
}
