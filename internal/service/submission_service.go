package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/task-tracker-api/internal/models"
	appErrors "github.com/noah-isme/task-tracker-api/pkg/errors"
)

type submissionRepository interface {
	CreateIfAbsent(ctx context.Context, submission *models.Submission) (bool, error)
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	FindByAccountAndDay(ctx context.Context, accountID, day string) (*models.Submission, error)
	ListByAccount(ctx context.Context, accountID string) ([]models.Submission, error)
	ListByDayWithOwner(ctx context.Context, day string, status *models.SubmissionStatus) ([]models.SubmissionWithOwner, error)
	Review(ctx context.Context, id string, status models.SubmissionStatus, remark string) (bool, error)
}

// SubmitRequest holds payload for a daily submission.
type SubmitRequest struct {
	Day         string `json:"day" validate:"required"`
	LinkedInURL string `json:"linkedinUrl" validate:"required,url"`
}

// ReviewRequest holds payload for reviewing a submission.
type ReviewRequest struct {
	Status models.SubmissionStatus `json:"status" validate:"required,oneof=Approved Rejected"`
	Remark string                  `json:"remark" validate:"max=1000"`
}

// SubmissionService handles the daily submission workflow.
type SubmissionService struct {
	repo      submissionRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(repo submissionRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger, now: time.Now}
}

// Submit records the caller's proof of work for a day that is not in the future.
func (s *SubmissionService) Submit(ctx context.Context, accountID string, role models.Role, req SubmitRequest) (*models.Submission, error) {
	if !models.CanSubmit(role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can submit")
	}
	req.Day = strings.TrimSpace(req.Day)
	req.LinkedInURL = strings.TrimSpace(req.LinkedInURL)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	if err := validateDay(req.Day); err != nil {
		return nil, err
	}
	if req.Day > s.today() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot submit for a future day")
	}

	if _, err := s.repo.FindByAccountAndDay(ctx, accountID, req.Day); err == nil {
		s.metrics.RecordSubmission("duplicate")
		return nil, appErrors.ErrDuplicateSubmission
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing submission")
	}

	submission := &models.Submission{
		AccountID:   accountID,
		Day:         req.Day,
		LinkedInURL: req.LinkedInURL,
		Status:      models.SubmissionPending,
	}
	inserted, err := s.repo.CreateIfAbsent(ctx, submission)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission")
	}
	if !inserted {
		s.metrics.RecordSubmission("duplicate")
		return nil, appErrors.ErrDuplicateSubmission
	}

	s.metrics.RecordSubmission("created")
	s.invalidate(ctx)
	return submission, nil
}

// Today returns the caller's submission for the current day, or nil.
func (s *SubmissionService) Today(ctx context.Context, accountID string) (*models.Submission, error) {
	submission, err := s.repo.FindByAccountAndDay(ctx, accountID, s.today())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load today's submission")
	}
	return submission, nil
}

// History returns the caller's submissions, newest day first.
func (s *SubmissionService) History(ctx context.Context, accountID string) ([]models.Submission, error) {
	submissions, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission history")
	}
	if submissions == nil {
		submissions = []models.Submission{}
	}
	return submissions, nil
}

// Pending returns the review queue for day. An empty day means today.
func (s *SubmissionService) Pending(ctx context.Context, day string) ([]models.ReviewItem, error) {
	if strings.TrimSpace(day) == "" {
		day = s.today()
	}
	if err := validateDay(day); err != nil {
		return nil, err
	}
	status := models.SubmissionPending
	rows, err := s.repo.ListByDayWithOwner(ctx, day, &status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending submissions")
	}

	items := make([]models.ReviewItem, 0, len(rows))
	for _, row := range dropOrphans(rows, "pending", s.logger, s.metrics) {
		item := models.ReviewItem{Submission: row.Submission}
		if row.OwnerName != nil {
			item.StudentName = *row.OwnerName
		}
		if row.OwnerEmail != nil {
			item.StudentEmail = *row.OwnerEmail
		}
		items = append(items, item)
	}
	return items, nil
}

// Review approves or rejects a Pending submission. Re-applying the current status only updates the remark.
func (s *SubmissionService) Review(ctx context.Context, id string, req ReviewRequest) (*models.Submission, error) {
	req.Remark = strings.TrimSpace(req.Remark)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if !models.CanTransition(current.Status, req.Status) {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot change status from %s to %s", current.Status, req.Status))
	}

	updated, err := s.repo.Review(ctx, id, req.Status, req.Remark)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review submission")
	}
	if !updated {
		return nil, appErrors.Clone(appErrors.ErrConflict, "submission was reviewed concurrently")
	}

	current.Status = req.Status
	current.Remark = req.Remark
	current.UpdatedAt = s.now().UTC()
	s.metrics.RecordReview(req.Status)
	s.invalidate(ctx)
	return current, nil
}

func (s *SubmissionService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAnalytics(ctx); err != nil {
		s.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
	}
}

func (s *SubmissionService) today() string {
	return models.FormatDay(s.now())
}
