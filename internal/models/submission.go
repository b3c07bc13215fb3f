package models

import "time"

// SubmissionStatus is the review state of a submission.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "Pending"
	SubmissionApproved SubmissionStatus = "Approved"
	SubmissionRejected SubmissionStatus = "Rejected"
)

// Valid reports whether s is a known status.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionApproved, SubmissionRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no review may move the submission out of s.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionApproved || s == SubmissionRejected
}

// CanTransition reports whether a review may move a submission from one status to another.
// Re-applying the current terminal status is allowed.
func CanTransition(from, to SubmissionStatus) bool {
	if !to.Terminal() {
		return false
	}
	return from == SubmissionPending || from == to
}

// Submission is one account's proof of work for one calendar day.
type Submission struct {
	ID          string           `db:"id" json:"id"`
	AccountID   string           `db:"account_id" json:"accountId"`
	Day         string           `db:"day" json:"day"`
	LinkedInURL string           `db:"linkedin_url" json:"linkedinUrl"`
	Status      SubmissionStatus `db:"status" json:"status"`
	Remark      string           `db:"remark" json:"remark"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updatedAt"`
}

// SubmissionWithOwner is a submission left-joined to its owning account.
// Owner fields are nil when the account no longer exists.
type SubmissionWithOwner struct {
	Submission
	OwnerName   *string `db:"owner_name" json:"-"`
	OwnerEmail  *string `db:"owner_email" json:"-"`
	OwnerRole   *string `db:"owner_role" json:"-"`
	OwnerBranch *string `db:"owner_branch" json:"-"`
}

// Orphaned reports whether the owning account is missing.
func (s SubmissionWithOwner) Orphaned() bool {
	return s.OwnerRole == nil
}

// OwnedByStudent reports whether the owner exists and is a student.
func (s SubmissionWithOwner) OwnedByStudent() bool {
	return s.OwnerRole != nil && Role(*s.OwnerRole) == RoleStudent
}

// ReviewItem is a pending submission annotated with its owner for the review queue.
type ReviewItem struct {
	Submission
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
}

// StatusCount is one row of a group-by-status aggregation.
type StatusCount struct {
	Status SubmissionStatus `db:"status"`
	Count  int              `db:"count"`
}

// AccountScore is one row of a group-by-account aggregation.
type AccountScore struct {
	AccountID string `db:"account_id"`
	Score     int    `db:"score"`
}
