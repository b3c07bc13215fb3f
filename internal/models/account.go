package models

import (
	"strings"
	"time"
)

// Role tags an account. It is fixed at creation.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// UnknownBranch groups students whose branch is blank.
const UnknownBranch = "Unknown"

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// CanSubmit reports whether the role may create daily submissions.
func CanSubmit(r Role) bool {
	return r == RoleStudent
}

// CanReview reports whether the role may approve or reject submissions.
func CanReview(r Role) bool {
	return r == RoleAdmin
}

// CanViewCohort reports whether the role may read cohort-wide analytics.
func CanViewCohort(r Role) bool {
	return r == RoleAdmin
}

// Account is a person record stored in the accounts table.
type Account struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	RollNo       string    `db:"roll_no" json:"rollNo"`
	College      string    `db:"college" json:"college"`
	Branch       string    `db:"branch" json:"branch"`
	Section      string    `db:"section" json:"section"`
	Gender       string    `db:"gender" json:"gender"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// BranchKey returns the grouping key used by cohort rollups.
func (a Account) BranchKey() string {
	return BranchKey(a.Branch)
}

// BranchKey normalises a raw branch value into a cohort key.
func BranchKey(branch string) string {
	if b := strings.TrimSpace(branch); b != "" {
		return b
	}
	return UnknownBranch
}

// AccountFilter narrows account listings. Empty fields impose no constraint.
type AccountFilter struct {
	Role    Role
	College string
	Branch  string
	Section string
}

// AccountSummary is the public projection of an account used in analytics payloads.
type AccountSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	RollNo  string `json:"rollNo"`
	College string `json:"college"`
	Branch  string `json:"branch"`
	Section string `json:"section"`
}

// Summary projects the account for analytics responses.
func (a Account) Summary() AccountSummary {
	return AccountSummary{
		ID:      a.ID,
		Name:    a.Name,
		Email:   a.Email,
		RollNo:  a.RollNo,
		College: a.College,
		Branch:  a.Branch,
		Section: a.Section,
	}
}
