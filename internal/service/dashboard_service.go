package service

import (
	"time"

	"github.com/casekit/case-gateway/internal/domain"
)

// DashboardService aggregates the unit's headline numbers from the
// fixture dataset.
type DashboardService struct {
	cases    []domain.Case
	activity []domain.ActivityItem
	now      func() time.Time
}

// NewDashboardService builds the service over the seed data.
func NewDashboardService() *DashboardService {
	now := time.Now()
	return &DashboardService{
		cases:    SeedCases(now),
		activity: SeedActivity(now),
		now:      time.Now,
	}
}

// Stats computes the dashboard counters. Evidence totals come from the
// analysis backend in production; fixed figures stand in here. The
// analytics panel is included only when the caller holds the
// analytics:read grant.
func (s *DashboardService) Stats(withAnalytics bool) domain.DashboardStats {
	now := s.now()
	stats := domain.DashboardStats{
		TotalEvidence:   324,
		PendingAnalysis: 15,
		RecentActivity:  s.activity,
	}
	for _, c := range s.cases {
		stats.TotalCases++
		switch c.Status {
		case domain.CaseStatusUnderInvestigation:
			stats.ActiveCases++
			if c.Deadline != nil && c.Deadline.Before(now) {
				stats.OverdueCases++
			}
		case domain.CaseStatusClosed, domain.CaseStatusArchived:
			stats.CompletedCases++
		}
	}
	if withAnalytics {
		stats.Analytics = s.analytics()
	}
	return stats
}

func (s *DashboardService) analytics() *domain.DashboardAnalytics {
	a := &domain.DashboardAnalytics{
		CasesByPriority: make(map[domain.CasePriority]int, 4),
	}
	completed := 0
	var resolution time.Duration
	for _, c := range s.cases {
		a.CasesByPriority[c.Priority]++
		if c.Status == domain.CaseStatusClosed || c.Status == domain.CaseStatusArchived {
			completed++
			resolution += c.UpdatedAt.Sub(c.CreatedAt)
		}
	}
	if len(s.cases) > 0 {
		a.ClearanceRate = float64(completed) / float64(len(s.cases))
	}
	if completed > 0 {
		a.AvgResolutionHours = (resolution / time.Duration(completed)).Hours()
	}
	return a
}
