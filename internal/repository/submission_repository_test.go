package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/task-tracker-api/internal/models"
)

func TestSubmissionRepositoryCreateIfAbsent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	args := make([]driver.Value, 8)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (account_id, day) DO NOTHING")).WithArgs(args...).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (account_id, day) DO NOTHING")).WithArgs(args...).WillReturnResult(sqlmock.NewResult(0, 0))

	first := &models.Submission{AccountID: "acc-1", Day: "2024-01-02", LinkedInURL: "https://linkedin.com/p/1"}
	inserted, err := repo.CreateIfAbsent(context.Background(), first)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, models.SubmissionPending, first.Status)
	assert.NotEmpty(t, first.ID)

	inserted, err = repo.CreateIfAbsent(context.Background(), &models.Submission{AccountID: "acc-1", Day: "2024-01-02", LinkedInURL: "https://linkedin.com/p/2"})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryFindByAccountAndDayNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM submissions WHERE account_id = $1 AND day = $2")).
		WithArgs("acc-1", "2024-01-02").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByAccountAndDay(context.Background(), "acc-1", "2024-01-02")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryListDaysByAccount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT day FROM submissions WHERE account_id = $1 ORDER BY day ASC")).
		WithArgs("acc-1").
		WillReturnRows(sqlmock.NewRows([]string{"day"}).AddRow("2024-01-01").AddRow("2024-01-03"))

	days, err := repo.ListDaysByAccount(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-03"}, days)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryListByDayWithOwnerKeepsOrphans(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	now := time.Now()
	columns := []string{"id", "account_id", "day", "linkedin_url", "status", "remark", "created_at", "updated_at", "owner_name", "owner_email", "owner_role", "owner_branch"}
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN accounts a ON a.id = s.account_id WHERE s.day = $1 AND s.status = $2")).
		WithArgs("2024-01-02", models.SubmissionPending).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("sub-1", "acc-1", "2024-01-02", "https://x", "Pending", "", now, now, "Asha", "a@example.com", "student", "CSE").
			AddRow("sub-2", "ghost", "2024-01-02", "https://y", "Pending", "", now, now, nil, nil, nil, nil))

	status := models.SubmissionPending
	rows, err := repo.ListByDayWithOwner(context.Background(), "2024-01-02", &status)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].OwnedByStudent())
	assert.True(t, rows[1].Orphaned())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryReview(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status IN ('Pending', $2)")).
		WithArgs("sub-1", models.SubmissionApproved, "nice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status IN ('Pending', $2)")).
		WithArgs("sub-1", models.SubmissionRejected, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Review(context.Background(), "sub-1", models.SubmissionApproved, "nice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Review(context.Background(), "sub-1", models.SubmissionRejected, "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryApprovedScores(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY account_id ORDER BY score DESC, account_id ASC")).
		WithArgs(models.SubmissionApproved).
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "score"}).AddRow("acc-2", 5).AddRow("acc-1", 3))

	scores, err := repo.ApprovedScores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.AccountScore{{AccountID: "acc-2", Score: 5}, {AccountID: "acc-1", Score: 3}}, scores)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryStatusCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE account_id = $1 GROUP BY status")).
		WithArgs("acc-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("Approved", 2).AddRow("Pending", 1))

	counts, err := repo.StatusCountsByAccount(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Len(t, counts, 2)
	assert.Equal(t, models.SubmissionApproved, counts[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskDayRepositoryTaskDays(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaskDayRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND ($1 = '' OR day >= $1) AND ($2 = '' OR day <= $2) ORDER BY day ASC")).
		WithArgs("", "2024-01-31").
		WillReturnRows(sqlmock.NewRows([]string{"day"}).AddRow("2024-01-02").AddRow("2024-01-03"))

	days, err := repo.TaskDays(context.Background(), "", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-02", "2024-01-03"}, days)
	assert.NoError(t, mock.ExpectationsWereMet())
}
