package access

import (
	"github.com/gofiber/fiber/v2"

	"github.com/casekit/case-gateway/internal/session"
	apperrors "github.com/casekit/case-gateway/pkg/util"
)

const controllerKey = "session_controller"

// SessionMiddleware resolves the session cookie into a live controller
// and stores the officer as the request principal. Requests without a
// usable session are rejected; the decision to redirect stays with the
// UI, never with this layer.
type SessionMiddleware struct {
	manager    *session.Manager
	cookieName string
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(manager *session.Manager, cookieName string) *SessionMiddleware {
	return &SessionMiddleware{manager: manager, cookieName: cookieName}
}

// Handle enforces an authenticated session for protected routes.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	sid := c.Cookies(m.cookieName)
	if sid == "" {
		return apperrors.NewUnauthorized("missing session")
	}

	ctl, ok := m.manager.Resume(c.UserContext(), sid)
	if !ok {
		return apperrors.NewUnauthorized("session expired")
	}

	user := ctl.User()
	if user == nil {
		return apperrors.NewUnauthorized("session expired")
	}

	c.Locals(controllerKey, ctl)
	StorePrincipal(c, user)
	return c.Next()
}

// ControllerFromContext retrieves the session controller bound to the
// request.
func ControllerFromContext(c *fiber.Ctx) (*session.Controller, bool) {
	val := c.Locals(controllerKey)
	if val == nil {
		return nil, false
	}
	ctl, ok := val.(*session.Controller)
	return ctl, ok
}
