package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/task-tracker-api/internal/models"
)

const submissionColumns = `id, account_id, day, linkedin_url, status, remark, created_at, updated_at`

// SubmissionRepository manages daily submission rows.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// CreateIfAbsent inserts the submission unless one already exists for the same account and day.
// It reports whether a row was written.
func (r *SubmissionRepository) CreateIfAbsent(ctx context.Context, submission *models.Submission) (bool, error) {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = now
	}
	submission.UpdatedAt = now
	if submission.Status == "" {
		submission.Status = models.SubmissionPending
	}
	const query = `INSERT INTO submissions (id, account_id, day, linkedin_url, status, remark, created_at, updated_at)
        VALUES (:id, :account_id, :day, :linkedin_url, :status, :remark, :created_at, :updated_at)
        ON CONFLICT (account_id, day) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, submission)
	if err != nil {
		return false, fmt.Errorf("create submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create submission rows affected: %w", err)
	}
	return affected > 0, nil
}

// FindByID returns a submission by id.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return &submission, nil
}

// FindByAccountAndDay returns the account's submission for day.
func (r *SubmissionRepository) FindByAccountAndDay(ctx context.Context, accountID, day string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE account_id = $1 AND day = $2`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, accountID, day); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find submission by day: %w", err)
	}
	return &submission, nil
}

// ListByAccount returns an account's submissions, newest day first.
func (r *SubmissionRepository) ListByAccount(ctx context.Context, accountID string) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE account_id = $1 ORDER BY day DESC`
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, accountID); err != nil {
		return nil, fmt.Errorf("list submissions by account: %w", err)
	}
	return submissions, nil
}

// ListDaysByAccount returns the distinct days an account submitted on, ascending.
func (r *SubmissionRepository) ListDaysByAccount(ctx context.Context, accountID string) ([]string, error) {
	const query = `SELECT DISTINCT day FROM submissions WHERE account_id = $1 ORDER BY day ASC`
	var days []string
	if err := r.db.SelectContext(ctx, &days, query, accountID); err != nil {
		return nil, fmt.Errorf("list submission days: %w", err)
	}
	return days, nil
}

// ListByDayWithOwner returns the day's submissions left-joined to their owners.
// An optional status narrows the result.
func (r *SubmissionRepository) ListByDayWithOwner(ctx context.Context, day string, status *models.SubmissionStatus) ([]models.SubmissionWithOwner, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT s.id, s.account_id, s.day, s.linkedin_url, s.status, s.remark, s.created_at, s.updated_at,
        a.name AS owner_name, a.email AS owner_email, a.role AS owner_role, a.branch AS owner_branch
        FROM submissions s LEFT JOIN accounts a ON a.id = s.account_id WHERE s.day = $1`)
	args := []interface{}{day}
	if status != nil {
		args = append(args, *status)
		builder.WriteString(fmt.Sprintf(" AND s.status = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY s.created_at ASC, s.id ASC")

	var rows []models.SubmissionWithOwner
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list submissions by day: %w", err)
	}
	return rows, nil
}

// Review moves a submission to status when it is Pending or already carries status.
// It reports whether the row matched.
func (r *SubmissionRepository) Review(ctx context.Context, id string, status models.SubmissionStatus, remark string) (bool, error) {
	const query = `UPDATE submissions SET status = $2, remark = $3, updated_at = $4
        WHERE id = $1 AND status IN ('Pending', $2)`
	res, err := r.db.ExecContext(ctx, query, id, status, remark, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("review submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("review submission rows affected: %w", err)
	}
	return affected > 0, nil
}

// ApprovedScores counts approved submissions per account, highest first with ties broken by account id.
func (r *SubmissionRepository) ApprovedScores(ctx context.Context) ([]models.AccountScore, error) {
	const query = `SELECT account_id, COUNT(*) AS score FROM submissions WHERE status = $1
        GROUP BY account_id ORDER BY score DESC, account_id ASC`
	var scores []models.AccountScore
	if err := r.db.SelectContext(ctx, &scores, query, models.SubmissionApproved); err != nil {
		return nil, fmt.Errorf("approved scores: %w", err)
	}
	return scores, nil
}

// StatusCountsByAccount groups an account's submissions by status.
func (r *SubmissionRepository) StatusCountsByAccount(ctx context.Context, accountID string) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM submissions WHERE account_id = $1 GROUP BY status`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query, accountID); err != nil {
		return nil, fmt.Errorf("status counts by account: %w", err)
	}
	return counts, nil
}
