package service

import (
	"time"

	"github.com/casekit/case-gateway/internal/domain"
)

// Fixture officer ids, aligned with the development auth stub.
const (
	OfficerSomchai = "u-1001"
	OfficerPranee  = "u-1002"
	OfficerWirote  = "u-1003"
)

// SeedCases returns the deterministic case set the dashboard serves
// until the real storage backend is wired in.
func SeedCases(now time.Time) []domain.Case {
	deadline := now.Add(72 * time.Hour)
	overdue := now.Add(-24 * time.Hour)
	return []domain.Case{
		{
			ID:                  "c-2024-044",
			CaseNumber:          "2024-044",
			Title:               "Downtown warehouse burglary",
			Description:         "Forced entry and theft of electronics from a bonded warehouse.",
			Status:              domain.CaseStatusUnderInvestigation,
			Priority:            domain.CasePriorityHigh,
			AssignedOfficer:     OfficerSomchai,
			AssignedOfficerName: "Somchai Jaidee",
			CreatedAt:           now.Add(-240 * time.Hour),
			UpdatedAt:           now.Add(-2 * time.Hour),
			Deadline:            &deadline,
			Location:            "Warehouse district, pier 4",
			Tags:                []string{"burglary", "cctv"},
		},
		{
			ID:                  "c-2024-045",
			CaseNumber:          "2024-045",
			Title:               "Vehicle theft ring",
			Description:         "Series of luxury vehicle thefts linked by plate-cloning pattern.",
			Status:              domain.CaseStatusUnderInvestigation,
			Priority:            domain.CasePriorityUrgent,
			AssignedOfficer:     OfficerPranee,
			AssignedOfficerName: "Pranee Suksai",
			CreatedAt:           now.Add(-96 * time.Hour),
			UpdatedAt:           now.Add(-30 * time.Minute),
			Deadline:            &overdue,
			Location:            "Multiple districts",
			Tags:                []string{"auto-theft", "organized"},
		},
		{
			ID:                  "c-2024-041",
			CaseNumber:          "2024-041",
			Title:               "Wire fraud complaint",
			Description:         "Transfer records under financial analysis.",
			Status:              domain.CaseStatusReportSubmitted,
			Priority:            domain.CasePriorityMedium,
			AssignedOfficer:     OfficerSomchai,
			AssignedOfficerName: "Somchai Jaidee",
			CreatedAt:           now.Add(-400 * time.Hour),
			UpdatedAt:           now.Add(-48 * time.Hour),
			Tags:                []string{"fraud", "financial"},
		},
		{
			ID:                  "c-2024-032",
			CaseNumber:          "2024-032",
			Title:               "Market arson",
			Description:         "Closed after confession; archived pending appeal window.",
			Status:              domain.CaseStatusClosed,
			Priority:            domain.CasePriorityLow,
			AssignedOfficer:     OfficerWirote,
			AssignedOfficerName: "Wirote Thongdee",
			CreatedAt:           now.Add(-1200 * time.Hour),
			UpdatedAt:           now.Add(-720 * time.Hour),
			Tags:                []string{"arson"},
		},
	}
}

// SeedActivity returns the recent-activity feed entries.
func SeedActivity(now time.Time) []domain.ActivityItem {
	return []domain.ActivityItem{
		{
			ID:          "a-1",
			Type:        domain.ActivityCaseCreated,
			Description: "Opened case #2024-045 - vehicle theft ring",
			Timestamp:   now.Add(-96 * time.Hour),
			UserID:      OfficerPranee,
			UserName:    "Pranee Suksai",
			CaseID:      "c-2024-045",
		},
		{
			ID:          "a-2",
			Type:        domain.ActivityEvidenceUploaded,
			Description: "Uploaded CCTV footage for case #2024-044",
			Timestamp:   now.Add(-5 * time.Hour),
			UserID:      OfficerSomchai,
			UserName:    "Somchai Jaidee",
			CaseID:      "c-2024-044",
		},
		{
			ID:          "a-3",
			Type:        domain.ActivityAnalysisCompleted,
			Description: "Plate recognition completed for case #2024-045",
			Timestamp:   now.Add(-2 * time.Hour),
			UserID:      OfficerPranee,
			UserName:    "Pranee Suksai",
			CaseID:      "c-2024-045",
		},
		{
			ID:          "a-4",
			Type:        domain.ActivityReportGenerated,
			Description: "Investigation report generated for case #2024-041",
			Timestamp:   now.Add(-48 * time.Hour),
			UserID:      OfficerSomchai,
			UserName:    "Somchai Jaidee",
			CaseID:      "c-2024-041",
		},
	}
}
