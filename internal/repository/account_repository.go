package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/task-tracker-api/internal/models"
	appErrors "github.com/noah-isme/task-tracker-api/pkg/errors"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = pq.ErrorCode("23505")

const accountColumns = `id, email, name, password_hash, role, roll_no, college, branch, section, gender, created_at, updated_at`

// AccountRepository provides database access for admin and student accounts.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new instance of AccountRepository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByEmail returns an account by email address.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1 LIMIT 1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return &account, nil
}

// FindByID returns an account by identifier.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 LIMIT 1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return &account, nil
}

// FindByIDs returns the accounts that exist among ids. Missing ids are silently absent.
func (r *AccountRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Account, error) {
	if len(ids) == 0 {
		return []models.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ANY($1)`
	var accounts []models.Account
	if err := r.db.SelectContext(ctx, &accounts, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find accounts by ids: %w", err)
	}
	return accounts, nil
}

// ExistsByEmail checks whether the email is already registered.
func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM accounts WHERE email = $1 LIMIT 1`, email); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now
	const query = `INSERT INTO accounts (id, email, name, password_hash, role, roll_no, college, branch, section, gender, created_at, updated_at)
        VALUES (:id, :email, :name, :password_hash, :role, :roll_no, :college, :branch, :section, :gender, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, account); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "email already registered")
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// UpdateProfile persists the mutable profile attributes. Role and email are never changed.
func (r *AccountRepository) UpdateProfile(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now().UTC()
	const query = `UPDATE accounts SET name = :name, roll_no = :roll_no, college = :college, branch = :branch, section = :section, gender = :gender, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, account); err != nil {
		return fmt.Errorf("update account profile: %w", err)
	}
	return nil
}

// List returns accounts matching the equality filters ordered by name.
func (r *AccountRepository) List(ctx context.Context, filter models.AccountFilter) ([]models.Account, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT ` + accountColumns + ` FROM accounts WHERE 1=1`)
	var args []interface{}
	if filter.Role != "" {
		args = append(args, filter.Role)
		builder.WriteString(fmt.Sprintf(" AND role = $%d", len(args)))
	}
	if filter.College != "" {
		args = append(args, filter.College)
		builder.WriteString(fmt.Sprintf(" AND college = $%d", len(args)))
	}
	if filter.Branch != "" {
		args = append(args, filter.Branch)
		builder.WriteString(fmt.Sprintf(" AND branch = $%d", len(args)))
	}
	if filter.Section != "" {
		args = append(args, filter.Section)
		builder.WriteString(fmt.Sprintf(" AND section = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY name ASC, id ASC")

	var accounts []models.Account
	if err := r.db.SelectContext(ctx, &accounts, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// SearchStudents returns students whose name, email or roll number contains query, case-insensitively,
// in registration order.
func (r *AccountRepository) SearchStudents(ctx context.Context, query string, limit int) ([]models.Account, error) {
	if limit <= 0 {
		limit = 1
	}
	const sqlQuery = `SELECT ` + accountColumns + ` FROM accounts
        WHERE role = $1 AND (LOWER(name) LIKE $2 OR LOWER(email) LIKE $2 OR LOWER(roll_no) LIKE $2)
        ORDER BY created_at ASC, id ASC LIMIT $3`
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	var accounts []models.Account
	if err := r.db.SelectContext(ctx, &accounts, sqlQuery, models.RoleStudent, pattern, limit); err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return accounts, nil
}

// escapeLike neutralises LIKE wildcards so user text matches literally.
func escapeLike(raw string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(raw)
}
