package access

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/casekit/case-gateway/internal/domain"
)

const principalKey = "session_principal"

// StorePrincipal attaches the resolved officer to the request context.
func StorePrincipal(c *fiber.Ctx, user *domain.User) {
	c.Locals(principalKey, user)
}

// PrincipalFromContext retrieves the authenticated officer.
func PrincipalFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok && user != nil
}

// RequireRole ensures the caller's role sits at or above required.
func RequireRole(e *Evaluator, required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if !e.HasRole(required, user.Role) {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// RequirePermission ensures the caller's role carries the permission.
func RequirePermission(e *Evaluator, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if !e.HasPermission(permission, user.Role) {
			return fiber.NewError(http.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
