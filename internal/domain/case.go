package domain

import "time"

// CaseStatus tracks where a case sits in the investigative workflow.
type CaseStatus string

const (
	CaseStatusUnderInvestigation CaseStatus = "under_investigation"
	CaseStatusReportSubmitted    CaseStatus = "report_submitted"
	CaseStatusClosed             CaseStatus = "closed"
	CaseStatusArchived           CaseStatus = "archived"
)

// CasePriority ranks urgency.
type CasePriority string

const (
	CasePriorityLow    CasePriority = "low"
	CasePriorityMedium CasePriority = "medium"
	CasePriorityHigh   CasePriority = "high"
	CasePriorityUrgent CasePriority = "urgent"
)

// Case is the summary record the dashboard lists. The full case file
// (evidence, reports, suspects) lives in the external storage backend.
type Case struct {
	ID                  string       `json:"id"`
	CaseNumber          string       `json:"caseNumber"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	Status              CaseStatus   `json:"status"`
	Priority            CasePriority `json:"priority"`
	AssignedOfficer     string       `json:"assignedOfficer"`
	AssignedOfficerName string       `json:"assignedOfficerName"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
	Deadline            *time.Time   `json:"deadline,omitempty"`
	Location            string       `json:"location,omitempty"`
	Tags                []string     `json:"tags"`
}

// ActivityType enumerates recent-activity feed entries.
type ActivityType string

const (
	ActivityCaseCreated       ActivityType = "case_created"
	ActivityEvidenceUploaded  ActivityType = "evidence_uploaded"
	ActivityAnalysisCompleted ActivityType = "analysis_completed"
	ActivityReportGenerated   ActivityType = "report_generated"
)

// ActivityItem is one row of the dashboard's recent-activity feed.
type ActivityItem struct {
	ID          string       `json:"id"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
	UserID      string       `json:"userId"`
	UserName    string       `json:"userName"`
	CaseID      string       `json:"caseId,omitempty"`
}

// DashboardStats aggregates the unit's headline numbers. Analytics is
// populated only for officers holding the analytics:read grant.
type DashboardStats struct {
	TotalCases      int                 `json:"totalCases"`
	ActiveCases     int                 `json:"activeCases"`
	OverdueCases    int                 `json:"overdueCases"`
	CompletedCases  int                 `json:"completedCases"`
	TotalEvidence   int                 `json:"totalEvidence"`
	PendingAnalysis int                 `json:"pendingAnalysis"`
	RecentActivity  []ActivityItem      `json:"recentActivity"`
	Analytics       *DashboardAnalytics `json:"analytics,omitempty"`
}

// DashboardAnalytics carries the supervisor-level analytics panel
// figures.
type DashboardAnalytics struct {
	ClearanceRate      float64              `json:"clearanceRate"`
	AvgResolutionHours float64              `json:"avgResolutionHours"`
	CasesByPriority    map[CasePriority]int `json:"casesByPriority"`
}
