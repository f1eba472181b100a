package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/session-service/internal/api/operations"
)

// SessionHandler exposes the session operations over HTTP. Replies use the
// same envelope as the broker transport; the HTTP status mirrors statusCode.
type SessionHandler struct {
	router *operations.Router
}

// NewSessionHandler constructs handler.
func NewSessionHandler(router *operations.Router) *SessionHandler {
	return &SessionHandler{router: router}
}

// AdminLogin handles POST /auth/admin/login.
func (h *SessionHandler) AdminLogin(c *fiber.Ctx) error {
	return h.dispatch(c, operations.PatternAdminLogin)
}

// VerifyAdminToken handles POST /auth/admin/verify.
func (h *SessionHandler) VerifyAdminToken(c *fiber.Ctx) error {
	return h.dispatch(c, operations.PatternVerifyAdminToken)
}

// UserLogin handles POST /auth/users/login.
func (h *SessionHandler) UserLogin(c *fiber.Ctx) error {
	return h.dispatch(c, operations.PatternUserLogin)
}

// VerifyToken handles POST /auth/tokens/verify.
func (h *SessionHandler) VerifyToken(c *fiber.Ctx) error {
	return h.dispatch(c, operations.PatternVerifyToken)
}

// RefreshToken handles POST /auth/tokens/refresh.
func (h *SessionHandler) RefreshToken(c *fiber.Ctx) error {
	return h.dispatch(c, operations.PatternUserRefreshToken)
}

func (h *SessionHandler) dispatch(c *fiber.Ctx, pattern string) error {
	// fiber reuses the body buffer after the handler returns
	body := append([]byte(nil), c.Body()...)
	env := h.router.Handle(c.UserContext(), pattern, json.RawMessage(body))
	return c.Status(env.StatusCode).JSON(env)
}
