package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/casekit/case-gateway/internal/access"
	"github.com/casekit/case-gateway/internal/service"
)

// DashboardHandler serves the stats screen. The analytics panel rides
// along only for roles granted analytics:read.
type DashboardHandler struct {
	dashboard *service.DashboardService
	policy    *access.Evaluator
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService, policy *access.Evaluator) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, policy: policy}
}

// Stats handles GET /dashboard/stats.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	user, ok := access.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	withAnalytics := h.policy.HasPermission("analytics:read", user.Role)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.dashboard.Stats(withAnalytics),
	})
}
