package access

import (
	"strings"

	"github.com/casekit/case-gateway/internal/domain"
)

// Evaluator answers role and permission questions for UI gating. It is
// a pure decision function over the grant table: no I/O, no state
// beyond the table handed to it. Every check here is advisory; the auth
// backend must enforce the same rules independently because the client
// can hold tampered claims.
type Evaluator struct {
	grants GrantTable
}

// NewEvaluator returns an evaluator over the given grant table.
func NewEvaluator(grants GrantTable) *Evaluator {
	if grants == nil {
		grants = DefaultGrants()
	}
	return &Evaluator{grants: grants}
}

// HasRole reports whether actual sits at or above required in the role
// hierarchy. Any permission granted to investigator is implicitly
// available to supervisor and admin. Unknown or empty roles fail
// closed.
func (e *Evaluator) HasRole(required, actual domain.Role) bool {
	if !actual.Known() || !required.Known() {
		return false
	}
	return actual.Level() >= required.Level()
}

// HasPermission reports whether the role's grant set contains the
// permission, either exactly or through a resource:* wildcard entry.
// Unrecognized roles fail closed.
func (e *Evaluator) HasPermission(permission string, role domain.Role) bool {
	granted, ok := e.grants[role]
	if !ok || permission == "" {
		return false
	}
	for _, g := range granted {
		if g == permission {
			return true
		}
		if strings.HasSuffix(g, ":*") && strings.HasPrefix(permission, strings.TrimSuffix(g, "*")) {
			return true
		}
	}
	return false
}

// CanAccessCase decides whether the requesting officer may open a case.
// Supervisors and admins may open any case; investigators only cases
// assigned to them. Missing ids or roles fail closed.
func (e *Evaluator) CanAccessCase(assignedOfficerID, requestingUserID string, role domain.Role) bool {
	if requestingUserID == "" || !role.Known() {
		return false
	}
	if role == domain.RoleAdmin || role == domain.RoleSupervisor {
		return true
	}
	return assignedOfficerID != "" && assignedOfficerID == requestingUserID
}
