package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/casekit/case-gateway/internal/access"
	"github.com/casekit/case-gateway/internal/api/dto"
	"github.com/casekit/case-gateway/internal/session"
	"github.com/casekit/case-gateway/internal/token"
)

// AuthHandler exposes the session lifecycle to the browser. The token
// never crosses this boundary; the cookie only names the session.
type AuthHandler struct {
	manager    *session.Manager
	inspector  *token.Inspector
	cookieName string
	validate   *validator.Validate
}

// NewAuthHandler constructs handler.
func NewAuthHandler(manager *session.Manager, inspector *token.Inspector, cookieName string) *AuthHandler {
	return &AuthHandler{
		manager:    manager,
		inspector:  inspector,
		cookieName: cookieName,
		validate:   validator.New(),
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "username and password required")
	}

	sid := uuid.NewString()
	ctl := h.manager.Create(sid)
	res := ctl.Login(c.UserContext(), req.Username, req.Password)
	if !res.Success {
		h.manager.Drop(sid)
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   res.Error,
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.sessionResponse(ctl),
	})
}

// Logout handles POST /auth/logout. It succeeds unconditionally, even
// for a cookie that no longer names a live session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := c.Cookies(h.cookieName)
	if sid != "" {
		if ctl, ok := h.manager.Resume(c.UserContext(), sid); ok {
			ctl.Logout(c.UserContext())
		}
		h.manager.Drop(sid)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"success": true})
}

// Refresh handles POST /auth/refresh for explicit refresh triggers.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	ctl, ok := access.ControllerFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "no active session")
	}

	res := ctl.Refresh(c.UserContext())
	if !res.Success {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   res.Error,
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.sessionResponse(ctl),
	})
}

// Session handles GET /auth/session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	ctl, ok := access.ControllerFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "no active session")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.sessionResponse(ctl),
	})
}

// UpdateProfile handles PUT /auth/profile.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	ctl, ok := access.ControllerFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "no active session")
	}

	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid profile fields")
	}

	res := ctl.UpdateProfile(c.UserContext(), req.ToDomain())
	if !res.Success {
		status := http.StatusBadRequest
		if !ctl.IsAuthenticated() {
			status = http.StatusUnauthorized
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   res.Error,
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    ctl.User(),
	})
}

func (h *AuthHandler) sessionResponse(ctl *session.Controller) dto.SessionResponse {
	tok := ctl.Token()
	return dto.SessionResponse{
		User:             ctl.User(),
		State:            string(ctl.State()),
		RemainingSeconds: int64(h.inspector.TimeRemaining(tok) / time.Second),
		ExpiringSoon:     h.inspector.IsExpiringSoon(tok),
	}
}
