package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/task-tracker-api/internal/models"
)

// memStore is an in-memory stand-in for the account, submission and task-day repositories.
type memStore struct {
	accounts    map[string]models.Account
	submissions []models.Submission
	taskDays    []string
	err         error
	seq         int
	clock       time.Time
}

func newMemStore() *memStore {
	return &memStore{accounts: map[string]models.Account{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memStore) addStudent(id, name, branch string) models.Account {
	account := models.Account{
		ID:        id,
		Email:     id + "@example.com",
		Name:      name,
		Role:      models.RoleStudent,
		RollNo:    strings.ToUpper(id),
		College:   "MIT",
		Branch:    branch,
		Section:   "A",
		CreatedAt: m.tick(),
	}
	m.accounts[id] = account
	return account
}

func (m *memStore) addSubmission(accountID, day string, status models.SubmissionStatus) models.Submission {
	m.seq++
	sub := models.Submission{
		ID:          fmt.Sprintf("sub-%d", m.seq),
		AccountID:   accountID,
		Day:         day,
		LinkedInURL: "https://linkedin.com/posts/" + accountID + "-" + day,
		Status:      status,
		CreatedAt:   m.tick(),
	}
	m.submissions = append(m.submissions, sub)
	return sub
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, a := range m.accounts {
		if a.Email == email {
			account := a
			return &account, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) FindByID(_ context.Context, id string) (*models.Account, error) {
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func (m *memStore) FindByIDs(_ context.Context, ids []string) ([]models.Account, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Account
	for _, id := range ids {
		if a, ok := m.accounts[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (m *memStore) Create(_ context.Context, account *models.Account) error {
	if m.err != nil {
		return m.err
	}
	if account.ID == "" {
		m.seq++
		account.ID = fmt.Sprintf("acc-%d", m.seq)
	}
	account.CreatedAt = m.tick()
	m.accounts[account.ID] = *account
	return nil
}

func (m *memStore) UpdateProfile(_ context.Context, account *models.Account) error {
	if m.err != nil {
		return m.err
	}
	m.accounts[account.ID] = *account
	return nil
}

func (m *memStore) List(_ context.Context, filter models.AccountFilter) ([]models.Account, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Account
	for _, a := range m.accounts {
		if filter.Role != "" && a.Role != filter.Role {
			continue
		}
		if filter.College != "" && a.College != filter.College {
			continue
		}
		if filter.Branch != "" && a.Branch != filter.Branch {
			continue
		}
		if filter.Section != "" && a.Section != filter.Section {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memStore) SearchStudents(_ context.Context, query string, limit int) ([]models.Account, error) {
	if m.err != nil {
		return nil, m.err
	}
	q := strings.ToLower(query)
	var out []models.Account
	for _, a := range m.accounts {
		if a.Role != models.RoleStudent {
			continue
		}
		if strings.Contains(strings.ToLower(a.Name), q) || strings.Contains(strings.ToLower(a.Email), q) || strings.Contains(strings.ToLower(a.RollNo), q) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) CreateIfAbsent(_ context.Context, submission *models.Submission) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, s := range m.submissions {
		if s.AccountID == submission.AccountID && s.Day == submission.Day {
			return false, nil
		}
	}
	m.seq++
	submission.ID = fmt.Sprintf("sub-%d", m.seq)
	submission.CreatedAt = m.tick()
	m.submissions = append(m.submissions, *submission)
	return true, nil
}

func (m *memStore) findSubmission(match func(models.Submission) bool) (*models.Submission, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, s := range m.submissions {
		if match(s) {
			sub := s
			return &sub, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) FindSubmission(id string) (*models.Submission, error) {
	return m.findSubmission(func(s models.Submission) bool { return s.ID == id })
}

func (m *memStore) FindByAccountAndDay(_ context.Context, accountID, day string) (*models.Submission, error) {
	return m.findSubmission(func(s models.Submission) bool { return s.AccountID == accountID && s.Day == day })
}

func (m *memStore) ListByAccount(_ context.Context, accountID string) ([]models.Submission, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Submission
	for _, s := range m.submissions {
		if s.AccountID == accountID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day > out[j].Day })
	return out, nil
}

func (m *memStore) ListDaysByAccount(ctx context.Context, accountID string) ([]string, error) {
	subs, err := m.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	days := make([]string, 0, len(subs))
	for _, s := range subs {
		days = append(days, s.Day)
	}
	sort.Strings(days)
	return days, nil
}

func (m *memStore) ListByDayWithOwner(_ context.Context, day string, status *models.SubmissionStatus) ([]models.SubmissionWithOwner, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.SubmissionWithOwner
	for _, s := range m.submissions {
		if s.Day != day || (status != nil && s.Status != *status) {
			continue
		}
		row := models.SubmissionWithOwner{Submission: s}
		if owner, ok := m.accounts[s.AccountID]; ok {
			name, email, role, branch := owner.Name, owner.Email, string(owner.Role), owner.Branch
			row.OwnerName, row.OwnerEmail, row.OwnerRole, row.OwnerBranch = &name, &email, &role, &branch
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *memStore) Review(_ context.Context, id string, status models.SubmissionStatus, remark string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for i, s := range m.submissions {
		if s.ID == id && (s.Status == models.SubmissionPending || s.Status == status) {
			m.submissions[i].Status = status
			m.submissions[i].Remark = remark
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ApprovedScores(_ context.Context) ([]models.AccountScore, error) {
	if m.err != nil {
		return nil, m.err
	}
	counts := map[string]int{}
	for _, s := range m.submissions {
		if s.Status == models.SubmissionApproved {
			counts[s.AccountID]++
		}
	}
	out := make([]models.AccountScore, 0, len(counts))
	for id, n := range counts {
		out = append(out, models.AccountScore{AccountID: id, Score: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out, nil
}

func (m *memStore) StatusCountsByAccount(_ context.Context, accountID string) ([]models.StatusCount, error) {
	if m.err != nil {
		return nil, m.err
	}
	counts := map[models.SubmissionStatus]int{}
	for _, s := range m.submissions {
		if s.AccountID == accountID {
			counts[s.Status]++
		}
	}
	out := make([]models.StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, models.StatusCount{Status: status, Count: n})
	}
	return out, nil
}

func (m *memStore) TaskDays(_ context.Context, from, to string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []string
	for _, d := range m.taskDays {
		if (from == "" || d >= from) && (to == "" || d <= to) {
			out = append(out, d)
		}
	}
	return out, nil
}

// submissionStore adapts memStore to the submission repository, whose FindByID looks up submissions.
type submissionStore struct{ *memStore }

func (s submissionStore) FindByID(_ context.Context, id string) (*models.Submission, error) {
	return s.FindSubmission(id)
}
