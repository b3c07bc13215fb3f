package service

import (
	"sort"

	"github.com/noah-isme/task-tracker-api/internal/models"
)

// foldBranchRows rolls students and a day's submissions up into per-branch rows sorted by
// total descending then branch name. Submissions not owned by an existing student are ignored.
func foldBranchRows(students []models.Account, submissions []models.SubmissionWithOwner) []models.BranchRow {
	rows := make(map[string]*models.BranchRow)
	row := func(branch string) *models.BranchRow {
		r, ok := rows[branch]
		if !ok {
			r = &models.BranchRow{Branch: branch}
			rows[branch] = r
		}
		return r
	}

	for _, student := range students {
		row(student.BranchKey()).Total++
	}

	for _, sub := range submissions {
		if !sub.OwnedByStudent() {
			continue
		}
		var branch string
		if sub.OwnerBranch != nil {
			branch = *sub.OwnerBranch
		}
		r := row(models.BranchKey(branch))
		r.Submitted++
		switch sub.Status {
		case models.SubmissionApproved:
			r.Approved++
		case models.SubmissionRejected:
			r.Rejected++
		default:
			r.Pending++
		}
	}

	out := make([]models.BranchRow, 0, len(rows))
	for _, r := range rows {
		r.Missed = r.Total - r.Submitted
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Branch < out[j].Branch
	})
	return out
}

// matchesSelector reports whether an account with the given day submission (nil when absent)
// satisfies selector.
func matchesSelector(selector models.StatusSelector, sub *models.Submission) bool {
	switch selector {
	case models.SelectAny:
		return true
	case models.SelectMissed:
		return sub == nil
	case models.SelectSubmitted:
		return sub != nil
	default:
		return sub != nil && string(sub.Status) == string(selector)
	}
}

// annotate projects a student with the outcome of its day submission.
func annotate(student models.Account, sub *models.Submission) models.FilteredAccount {
	item := models.FilteredAccount{AccountSummary: student.Summary(), Status: models.NotSubmitted}
	if sub != nil {
		link := sub.LinkedInURL
		item.Submitted = true
		item.Status = string(sub.Status)
		item.LinkedInURL = &link
	}
	return item
}

// indexByAccount maps account ids to their submission, skipping rows not owned by a student.
func indexByAccount(submissions []models.SubmissionWithOwner) map[string]*models.Submission {
	index := make(map[string]*models.Submission, len(submissions))
	for i := range submissions {
		if !submissions[i].OwnedByStudent() {
			continue
		}
		index[submissions[i].AccountID] = &submissions[i].Submission
	}
	return index
}
