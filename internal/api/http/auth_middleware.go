package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/session-service/internal/api/operations"
	"github.com/spec-kit/session-service/internal/domain"
	apperrors "github.com/spec-kit/session-service/pkg/util"
)

const adminKey = "auth_admin"

// RequireAdmin validates an admin bearer token through the session manager.
func RequireAdmin(sessions operations.SessionManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperrors.NewUnauthorized("missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperrors.NewUnauthorized("invalid authorization header")
		}

		admin, err := sessions.VerifyAdminToken(c.UserContext(), parts[1])
		if err != nil {
			return err
		}

		c.Locals(adminKey, admin)
		return c.Next()
	}
}

// AdminFromContext retrieves the authenticated admin.
func AdminFromContext(c *fiber.Ctx) (*domain.AdminInfo, bool) {
	admin, ok := c.Locals(adminKey).(*domain.AdminInfo)
	return admin, ok
}
