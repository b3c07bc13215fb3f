package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/task-tracker-api/internal/models"
	appErrors "github.com/noah-isme/task-tracker-api/pkg/errors"
)

var accountRowColumns = []string{"id", "email", "name", "password_hash", "role", "roll_no", "college", "branch", "section", "gender", "created_at", "updated_at"}

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows(accountRowColumns)
}

func TestAccountRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE email = $1 LIMIT 1")).
		WithArgs("asha@example.com").
		WillReturnRows(accountRows().AddRow("acc-1", "asha@example.com", "Asha", "hash", "student", "R1", "MIT", "CSE", "A", "F", now, now))

	account, err := repo.FindByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, account.Role)
	assert.Equal(t, "CSE", account.Branch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryFindByIDsEmptyShortCircuits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	accounts, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, accounts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryFindByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(accountRows().AddRow("acc-1", "a@example.com", "A", "hash", "student", "", "", "", "", "", now, now))

	accounts, err := repo.FindByIDs(context.Background(), []string{"acc-1", "gone"})
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM accounts WHERE email = $1")).
		WithArgs("new@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM accounts WHERE email = $1")).
		WithArgs("taken@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByEmail(context.Background(), "taken@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	args := make([]driver.Value, 12)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	mock.ExpectExec("INSERT INTO accounts").WithArgs(args...).WillReturnResult(sqlmock.NewResult(1, 1))

	account := &models.Account{Email: "s@example.com", Name: "S", PasswordHash: "hash", Role: models.RoleStudent}
	require.NoError(t, repo.Create(context.Background(), account))
	assert.NotEmpty(t, account.ID)
	assert.False(t, account.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryCreateMapsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	args := make([]driver.Value, 12)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	mock.ExpectExec("INSERT INTO accounts").WithArgs(args...).WillReturnError(&pq.Error{Code: "23505", Constraint: "accounts_email_key"})
	mock.ExpectExec("INSERT INTO accounts").WithArgs(args...).WillReturnError(&pq.Error{Code: "08006"})

	err := repo.Create(context.Background(), &models.Account{Email: "dup@example.com", Name: "D", PasswordHash: "hash", Role: models.RoleStudent})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	err = repo.Create(context.Background(), &models.Account{Email: "down@example.com", Name: "D", PasswordHash: "hash", Role: models.RoleStudent})
	require.Error(t, err)
	assert.False(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryListBuildsFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE 1=1 AND role = $1 AND branch = $2 AND section = $3 ORDER BY name ASC, id ASC")).
		WithArgs(models.RoleStudent, "CSE", "A").
		WillReturnRows(accountRows().
			AddRow("acc-1", "a@example.com", "Asha", "hash", "student", "R1", "MIT", "CSE", "A", "F", now, now).
			AddRow("acc-2", "b@example.com", "Bala", "hash", "student", "R2", "MIT", "CSE", "A", "M", now, now))

	accounts, err := repo.List(context.Background(), models.AccountFilter{Role: models.RoleStudent, Branch: "CSE", Section: "A"})
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	assert.Equal(t, "Asha", accounts[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositorySearchStudentsEscapesWildcards(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at ASC, id ASC LIMIT $3")).
		WithArgs(models.RoleStudent, `%50\%\_a\_b%`, 1).
		WillReturnRows(accountRows())

	accounts, err := repo.SearchStudents(context.Background(), "50%_A_b", 0)
	require.NoError(t, err)
	assert.Empty(t, accounts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
