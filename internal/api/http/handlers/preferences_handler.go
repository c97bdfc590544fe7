package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/casekit/case-gateway/internal/access"
	"github.com/casekit/case-gateway/internal/api/dto"
	"github.com/casekit/case-gateway/internal/session"
)

// PreferencesHandler serves the cached UI preference entries that live
// next to the session and disappear with it on logout.
type PreferencesHandler struct{}

// NewPreferencesHandler constructs handler.
func NewPreferencesHandler() *PreferencesHandler {
	return &PreferencesHandler{}
}

func allowedPreference(key string) bool {
	for _, k := range session.PreferenceKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// Get handles GET /preferences/:key.
func (h *PreferencesHandler) Get(c *fiber.Ctx) error {
	key := c.Params("key")
	if !allowedPreference(key) {
		return fiber.NewError(http.StatusNotFound, "unknown preference")
	}
	ctl, ok := access.ControllerFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "no active session")
	}

	value, found, err := ctl.Store().GetPreference(c.UserContext(), key)
	if err != nil {
		return err
	}
	if !found {
		return fiber.NewError(http.StatusNotFound, "preference not set")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": dto.PreferenceResponse{
			Key:       key,
			Value:     value,
			Retrieved: time.Now(),
		},
	})
}

// Put handles PUT /preferences/:key with the raw value as the body.
func (h *PreferencesHandler) Put(c *fiber.Ctx) error {
	key := c.Params("key")
	if !allowedPreference(key) {
		return fiber.NewError(http.StatusNotFound, "unknown preference")
	}
	ctl, ok := access.ControllerFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "no active session")
	}

	if err := ctl.Store().SetPreference(c.UserContext(), key, string(c.Body())); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
