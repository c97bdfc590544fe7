package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/casekit/case-gateway/internal/access"
	"github.com/casekit/case-gateway/internal/service"
)

// CasesHandler serves case summaries filtered by assignment.
type CasesHandler struct {
	cases *service.CaseService
}

// NewCasesHandler constructs handler.
func NewCasesHandler(cases *service.CaseService) *CasesHandler {
	return &CasesHandler{cases: cases}
}

// List handles GET /cases.
func (h *CasesHandler) List(c *fiber.Ctx) error {
	user, ok := access.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	visible := h.cases.List(user)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    visible,
		"total":   len(visible),
	})
}

// Get handles GET /cases/:id.
func (h *CasesHandler) Get(c *fiber.Ctx) error {
	user, ok := access.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	found, err := h.cases.Get(c.Params("id"), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    found,
	})
}
