package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/task-tracker-api/internal/models"
	appErrors "github.com/noah-isme/task-tracker-api/pkg/errors"
)

type accountRepository interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, account *models.Account) error
	UpdateProfile(ctx context.Context, account *models.Account) error
	List(ctx context.Context, filter models.AccountFilter) ([]models.Account, error)
}

// RegisterStudentRequest holds payload for registering a student.
type RegisterStudentRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	RollNo   string `json:"rollNo"`
	College  string `json:"college"`
	Branch   string `json:"branch"`
	Section  string `json:"section"`
	Gender   string `json:"gender"`
}

// UpdateProfileRequest holds the profile fields an account may change. Omitted fields are left untouched.
type UpdateProfileRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1"`
	RollNo  *string `json:"rollNo"`
	College *string `json:"college"`
	Branch  *string `json:"branch"`
	Section *string `json:"section"`
	Gender  *string `json:"gender"`
}

// SeedAdmin describes the administrator created at startup.
type SeedAdmin struct {
	Email    string
	Password string
	Name     string
}

// AccountService manages the account directory.
type AccountService struct {
	repo      accountRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAccountService constructs the account service.
func NewAccountService(repo accountRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AccountService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// RegisterStudent creates a student account.
func (s *AccountService) RegisterStudent(ctx context.Context, req RegisterStudentRequest) (*models.Account, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	account := &models.Account{
		Email:   req.Email,
		Name:    req.Name,
		Role:    models.RoleStudent,
		RollNo:  strings.TrimSpace(req.RollNo),
		College: strings.TrimSpace(req.College),
		Branch:  strings.TrimSpace(req.Branch),
		Section: strings.TrimSpace(req.Section),
		Gender:  strings.TrimSpace(req.Gender),
	}
	if err := s.create(ctx, account, req.Password); err != nil {
		return nil, err
	}
	if err := s.cache.InvalidateAnalytics(ctx); err != nil {
		s.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
	}
	return account, nil
}

// ListStudents returns every student ordered by name.
func (s *AccountService) ListStudents(ctx context.Context) ([]models.Account, error) {
	students, err := s.repo.List(ctx, models.AccountFilter{Role: models.RoleStudent})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.Account{}
	}
	return students, nil
}

// Profile returns the account for id.
func (s *AccountService) Profile(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	return account, nil
}

// UpdateProfile applies the provided profile fields to the account for id.
func (s *AccountService) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*models.Account, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	account, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&account.Name, req.Name)
	apply(&account.RollNo, req.RollNo)
	apply(&account.College, req.College)
	apply(&account.Branch, req.Branch)
	apply(&account.Section, req.Section)
	apply(&account.Gender, req.Gender)
	if account.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name cannot be blank")
	}

	if err := s.repo.UpdateProfile(ctx, account); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	if err := s.cache.InvalidateAnalytics(ctx); err != nil {
		s.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
	}
	return account, nil
}

// EnsureAdmin creates the seed administrator unless the email is already registered.
// It reports whether an account was created.
func (s *AccountService) EnsureAdmin(ctx context.Context, seed SeedAdmin) (bool, error) {
	email := normalizeEmail(seed.Email)
	if email == "" || seed.Password == "" {
		return false, nil
	}
	name := strings.TrimSpace(seed.Name)
	if name == "" {
		name = "Administrator"
	}
	account := &models.Account{Email: email, Name: name, Role: models.RoleAdmin}
	if err := s.create(ctx, account, seed.Password); err != nil {
		if appErrors.Is(err, appErrors.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	s.logger.Info("seeded admin account", zap.String("email", email))
	return true, nil
}

func (s *AccountService) create(ctx context.Context, account *models.Account, password string) error {
	exists, err := s.repo.ExistsByEmail(ctx, account.Email)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	account.PasswordHash = string(hash)

	if err := s.repo.Create(ctx, account); err != nil {
		if appErrors.Is(err, appErrors.ErrConflict) {
			return appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
