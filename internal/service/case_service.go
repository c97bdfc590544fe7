package service

import (
	"time"

	"github.com/casekit/case-gateway/internal/access"
	"github.com/casekit/case-gateway/internal/domain"
	apperrors "github.com/casekit/case-gateway/pkg/util"
)

// CaseService serves case summaries filtered by the access policy.
// Data is an in-memory fixture set; the full case files live in the
// external storage backend.
type CaseService struct {
	policy *access.Evaluator
	cases  []domain.Case
}

// NewCaseService builds the service over the seed data.
func NewCaseService(policy *access.Evaluator) *CaseService {
	return &CaseService{policy: policy, cases: SeedCases(time.Now())}
}

// List returns the cases the officer may open. Supervisors and admins
// see the whole docket; investigators only their assignments.
func (s *CaseService) List(user *domain.User) []domain.Case {
	visible := make([]domain.Case, 0, len(s.cases))
	for _, c := range s.cases {
		if s.policy.CanAccessCase(c.AssignedOfficer, user.ID, user.Role) {
			visible = append(visible, c)
		}
	}
	return visible
}

// Get returns one case, enforcing the access rule. A case the officer
// may not open reads as forbidden, not as missing, so the UI can
// explain the denial.
func (s *CaseService) Get(id string, user *domain.User) (*domain.Case, error) {
	for _, c := range s.cases {
		if c.ID != id {
			continue
		}
		if !s.policy.CanAccessCase(c.AssignedOfficer, user.ID, user.Role) {
			return nil, apperrors.NewForbidden("case not assigned to you")
		}
		found := c
		return &found, nil
	}
	return nil, apperrors.NewNotFound("case", map[string]any{"id": id})
}
