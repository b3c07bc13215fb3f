package models

import "time"

// ConsistencyMode selects how the active-day window is derived.
type ConsistencyMode string

const (
	// ConsistencySpan measures from an account's first to last submission day.
	ConsistencySpan ConsistencyMode = "span"
	// ConsistencyCalendar measures against the designated task-day calendar.
	ConsistencyCalendar ConsistencyMode = "calendar"
)

// ZeroRatio is reported when the active-day window is empty.
const ZeroRatio = "0%"

// NotSubmitted is the derived status of an account with no submission for a day.
const NotSubmitted = "Not Submitted"

// ConsistencySnapshot is an account's submission consistency over its active-day window.
type ConsistencySnapshot struct {
	ActiveDaySpan    int    `json:"activeDaySpan"`
	SubmittedDays    int    `json:"submittedDays"`
	MissedDays       int    `json:"missedDays"`
	ConsistencyRatio string `json:"consistencyRatio"`
}

// BranchRow is one branch's rollup for a day.
type BranchRow struct {
	Branch    string `json:"branch"`
	Total     int    `json:"total"`
	Submitted int    `json:"submitted"`
	Missed    int    `json:"missed"`
	Approved  int    `json:"approved"`
	Pending   int    `json:"pending"`
	Rejected  int    `json:"rejected"`
}

// StatusSelector narrows filtered accounts by their derived status for a day.
type StatusSelector string

const (
	SelectAny       StatusSelector = ""
	SelectMissed    StatusSelector = "missed"
	SelectSubmitted StatusSelector = "submitted"
	SelectApproved  StatusSelector = StatusSelector(SubmissionApproved)
	SelectRejected  StatusSelector = StatusSelector(SubmissionRejected)
	SelectPending   StatusSelector = StatusSelector(SubmissionPending)
)

// Valid reports whether s is a supported selector.
func (s StatusSelector) Valid() bool {
	switch s {
	case SelectAny, SelectMissed, SelectSubmitted, SelectApproved, SelectRejected, SelectPending:
		return true
	default:
		return false
	}
}

// FilterCriteria scopes a filtered account query.
type FilterCriteria struct {
	Day     string
	College string
	Branch  string
	Section string
	Status  StatusSelector
}

// FilteredAccount is a student annotated with a day's submission outcome.
type FilteredAccount struct {
	AccountSummary
	Submitted   bool    `json:"submitted"`
	Status      string  `json:"status"`
	LinkedInURL *string `json:"linkedinUrl"`
}

// LeaderboardEntry is one ranked account.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	AccountID string `json:"accountId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Score     int    `json:"score"`
}

// PerformanceSnapshot holds raw submission counts for one account.
type PerformanceSnapshot struct {
	TotalDays int `json:"totalDays"`
	Approved  int `json:"approved"`
	Pending   int `json:"pending"`
	Rejected  int `json:"rejected"`
}

// SearchResult is the first account matching a search and its performance.
type SearchResult struct {
	Account     AccountSummary      `json:"account"`
	Performance PerformanceSnapshot `json:"performance"`
}

// DailySummary is the admin overview for a day.
type DailySummary struct {
	Day            string `json:"day"`
	TotalStudents  int    `json:"totalStudents"`
	SubmittedCount int    `json:"submittedCount"`
	PendingCount   int    `json:"pendingCount"`
	ApprovedCount  int    `json:"approvedCount"`
	RejectedCount  int    `json:"rejectedCount"`
	MissingCount   int    `json:"missingCount"`
}

// SystemMetrics represents system level figures captured from instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	DBQueryCount             uint64    `json:"dbQueryCount"`
	AverageDBQueryDurationMs float64   `json:"averageDbQueryDurationMs"`
	OrphanedReferences       uint64    `json:"orphanedReferences"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
