package access

import "github.com/casekit/case-gateway/internal/domain"

// GrantTable maps a role to its permission strings. Entries follow the
// resource:action convention; an entry ending in :* grants every action
// on the resource. The table is static configuration loaded once at
// startup and must be kept in sync with the enforcement the auth
// backend applies server-side.
type GrantTable map[domain.Role][]string

// DefaultGrants returns the unit's standing permission grants.
func DefaultGrants() GrantTable {
	return GrantTable{
		domain.RoleInvestigator: {
			"cases:read",
			"cases:create",
			"cases:update_own",
			"evidence:read",
			"evidence:upload",
			"evidence:analyze",
			"interrogation:create",
			"interrogation:manage_own",
			"reports:read",
			"reports:create",
			"dashboard:read",
		},
		domain.RoleSupervisor: {
			"cases:read",
			"cases:create",
			"cases:update",
			"cases:assign",
			"evidence:read",
			"evidence:upload",
			"evidence:analyze",
			"evidence:delete",
			"interrogation:create",
			"interrogation:manage",
			"reports:read",
			"reports:create",
			"reports:approve",
			"dashboard:read",
			"analytics:read",
			"predictive:read",
		},
		domain.RoleAdmin: {
			"cases:*",
			"evidence:*",
			"interrogation:*",
			"reports:*",
			"dashboard:*",
			"analytics:*",
			"predictive:*",
			"users:*",
			"system:*",
			"audit:*",
		},
	}
}
