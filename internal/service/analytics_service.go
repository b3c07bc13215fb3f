package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/task-tracker-api/internal/models"
	appErrors "github.com/noah-isme/task-tracker-api/pkg/errors"
)

const defaultLeaderboardSize = 10

type analyticsAccountRepository interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Account, error)
	List(ctx context.Context, filter models.AccountFilter) ([]models.Account, error)
	SearchStudents(ctx context.Context, query string, limit int) ([]models.Account, error)
}

type analyticsSubmissionRepository interface {
	ListDaysByAccount(ctx context.Context, accountID string) ([]string, error)
	ListByDayWithOwner(ctx context.Context, day string, status *models.SubmissionStatus) ([]models.SubmissionWithOwner, error)
	ApprovedScores(ctx context.Context) ([]models.AccountScore, error)
	StatusCountsByAccount(ctx context.Context, accountID string) ([]models.StatusCount, error)
}

// TaskDayProvider supplies the designated non-holiday task days between two days inclusive.
// An empty bound is open.
type TaskDayProvider interface {
	TaskDays(ctx context.Context, from, to string) ([]string, error)
}

// AnalyticsOptions tunes AnalyticsService behaviour.
type AnalyticsOptions struct {
	CalendarMode    bool
	LeaderboardSize int
	Now             func() time.Time
}

// AnalyticsService computes read-only accountability analytics with cache integration.
type AnalyticsService struct {
	accounts    analyticsAccountRepository
	submissions analyticsSubmissionRepository
	taskDays    TaskDayProvider
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
	opts        AnalyticsOptions
}

// NewAnalyticsService constructs an analytics service. taskDays may be nil when calendar mode is off.
func NewAnalyticsService(accounts analyticsAccountRepository, submissions analyticsSubmissionRepository, taskDays TaskDayProvider, cache *CacheService, metrics *MetricsService, logger *zap.Logger, opts AnalyticsOptions) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.LeaderboardSize <= 0 {
		opts.LeaderboardSize = defaultLeaderboardSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AnalyticsService{
		accounts:    accounts,
		submissions: submissions,
		taskDays:    taskDays,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		opts:        opts,
	}
}

// CalendarEnabled reports whether calendar-mode consistency can be served.
func (s *AnalyticsService) CalendarEnabled() bool {
	return s.opts.CalendarMode && s.taskDays != nil
}

// Consistency returns an account's submission consistency in the requested mode. An empty mode means span.
func (s *AnalyticsService) Consistency(ctx context.Context, accountID string, mode models.ConsistencyMode) (*models.ConsistencySnapshot, bool, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "account id is required")
	}
	if mode == "" {
		mode = models.ConsistencySpan
	}
	var keyParts []string
	switch mode {
	case models.ConsistencySpan:
		keyParts = []string{"consistency", string(mode), accountID}
	case models.ConsistencyCalendar:
		if !s.CalendarEnabled() {
			return nil, false, appErrors.Clone(appErrors.ErrValidation, "calendar consistency is disabled")
		}
		keyParts = []string{"consistency", string(mode), accountID, s.today()}
	default:
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "mode must be span or calendar")
	}

	return readThrough(ctx, s.cache, makeAnalyticsCacheKey(keyParts...), func(ctx context.Context) (*models.ConsistencySnapshot, error) {
		if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
		}

		start := time.Now()
		days, err := s.submissions.ListDaysByAccount(ctx, accountID)
		s.metrics.ObserveDBQuery("consistency_days", time.Since(start))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission days")
		}

		if mode == models.ConsistencyCalendar {
			start = time.Now()
			taskDays, err := s.taskDays.TaskDays(ctx, "", s.today())
			s.metrics.ObserveDBQuery("consistency_task_days", time.Since(start))
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task days")
			}
			snapshot := CalendarConsistency(taskDays, days)
			return &snapshot, nil
		}

		snapshot, err := SpanConsistency(days)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute consistency")
		}
		return &snapshot, nil
	})
}

// CohortAnalytics returns one row per branch for day.
func (s *AnalyticsService) CohortAnalytics(ctx context.Context, day string) ([]models.BranchRow, bool, error) {
	if err := validateDay(day); err != nil {
		return nil, false, err
	}
	return readThrough(ctx, s.cache, makeAnalyticsCacheKey("branches", day), func(ctx context.Context) ([]models.BranchRow, error) {
		students, err := s.listStudents(ctx, models.AccountFilter{})
		if err != nil {
			return nil, err
		}
		submissions, err := s.daySubmissions(ctx, day, "branches")
		if err != nil {
			return nil, err
		}
		rows := foldBranchRows(students, submissions)
		for _, row := range rows {
			if row.Missed < 0 {
				s.logger.Warn("branch submissions exceed student total",
					zap.String("day", day),
					zap.String("branch", row.Branch),
					zap.Int("total", row.Total),
					zap.Int("submitted", row.Submitted),
				)
			}
		}
		return rows, nil
	})
}

// FilterAccounts returns students matching the criteria annotated with their day outcome, ordered by name.
func (s *AnalyticsService) FilterAccounts(ctx context.Context, criteria models.FilterCriteria) ([]models.FilteredAccount, bool, error) {
	if err := validateDay(criteria.Day); err != nil {
		return nil, false, err
	}
	if !criteria.Status.Valid() {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "status must be one of missed, submitted, Approved, Rejected, Pending")
	}
	key := makeAnalyticsCacheKey("filter", criteria.Day,
		"college="+criteria.College,
		"branch="+criteria.Branch,
		"section="+criteria.Section,
		"status="+string(criteria.Status),
	)
	return readThrough(ctx, s.cache, key, func(ctx context.Context) ([]models.FilteredAccount, error) {
		students, err := s.listStudents(ctx, models.AccountFilter{
			College: criteria.College,
			Branch:  criteria.Branch,
			Section: criteria.Section,
		})
		if err != nil {
			return nil, err
		}
		submissions, err := s.daySubmissions(ctx, criteria.Day, "filter")
		if err != nil {
			return nil, err
		}
		byAccount := indexByAccount(submissions)

		result := make([]models.FilteredAccount, 0, len(students))
		for _, student := range students {
			sub := byAccount[student.ID]
			if !matchesSelector(criteria.Status, sub) {
				continue
			}
			result = append(result, annotate(student, sub))
		}
		return result, nil
	})
}

// Leaderboard returns the top accounts by approved submissions.
func (s *AnalyticsService) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, bool, error) {
	return readThrough(ctx, s.cache, makeAnalyticsCacheKey("leaderboard"), func(ctx context.Context) ([]models.LeaderboardEntry, error) {
		start := time.Now()
		scores, err := s.submissions.ApprovedScores(ctx)
		s.metrics.ObserveDBQuery("leaderboard_scores", time.Since(start))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load approved scores")
		}

		ids := make([]string, 0, len(scores))
		for _, score := range scores {
			ids = append(ids, score.AccountID)
		}
		start = time.Now()
		owners, err := s.accounts.FindByIDs(ctx, ids)
		s.metrics.ObserveDBQuery("leaderboard_owners", time.Since(start))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve leaderboard accounts")
		}
		byID := make(map[string]models.Account, len(owners))
		for _, owner := range owners {
			byID[owner.ID] = owner
		}

		entries := make([]models.LeaderboardEntry, 0, s.opts.LeaderboardSize)
		orphans := 0
		for _, score := range scores {
			if len(entries) == s.opts.LeaderboardSize {
				break
			}
			owner, ok := byID[score.AccountID]
			if !ok {
				orphans++
				s.logger.Warn("skipping orphaned leaderboard score", zap.String("account_id", score.AccountID), zap.Int("score", score.Score))
				continue
			}
			if owner.Role != models.RoleStudent {
				continue
			}
			entries = append(entries, models.LeaderboardEntry{
				Rank:      len(entries) + 1,
				AccountID: owner.ID,
				Name:      owner.Name,
				Email:     owner.Email,
				Score:     score.Score,
			})
		}
		s.metrics.RecordOrphans("leaderboard", orphans)
		return entries, nil
	})
}

// Search returns the earliest registered student matching query with their performance.
// A nil result means nothing matched.
func (s *AnalyticsService) Search(ctx context.Context, query string) (*models.SearchResult, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "search query is required")
	}
	return readThrough(ctx, s.cache, makeAnalyticsCacheKey("search", strings.ToLower(query)), func(ctx context.Context) (*models.SearchResult, error) {
		start := time.Now()
		matches, err := s.accounts.SearchStudents(ctx, query, 1)
		s.metrics.ObserveDBQuery("search_students", time.Since(start))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search students")
		}
		if len(matches) == 0 {
			return nil, nil
		}
		account := matches[0]

		start = time.Now()
		counts, err := s.submissions.StatusCountsByAccount(ctx, account.ID)
		s.metrics.ObserveDBQuery("search_performance", time.Since(start))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load performance")
		}
		return &models.SearchResult{Account: account.Summary(), Performance: performanceFrom(counts)}, nil
	})
}

// DailySummary returns headline counts for day.
func (s *AnalyticsService) DailySummary(ctx context.Context, day string) (*models.DailySummary, bool, error) {
	if err := validateDay(day); err != nil {
		return nil, false, err
	}
	return readThrough(ctx, s.cache, makeAnalyticsCacheKey("summary", day), func(ctx context.Context) (*models.DailySummary, error) {
		students, err := s.listStudents(ctx, models.AccountFilter{})
		if err != nil {
			return nil, err
		}
		submissions, err := s.daySubmissions(ctx, day, "summary")
		if err != nil {
			return nil, err
		}
		summary := &models.DailySummary{Day: day, TotalStudents: len(students)}
		for _, sub := range submissions {
			if !sub.OwnedByStudent() {
				continue
			}
			summary.SubmittedCount++
			switch sub.Status {
			case models.SubmissionApproved:
				summary.ApprovedCount++
			case models.SubmissionRejected:
				summary.RejectedCount++
			default:
				summary.PendingCount++
			}
		}
		summary.MissingCount = summary.TotalStudents - summary.SubmittedCount
		return summary, nil
	})
}

// MissedStudents returns the students without a submission on day, ordered by name.
func (s *AnalyticsService) MissedStudents(ctx context.Context, day string) ([]models.AccountSummary, bool, error) {
	if err := validateDay(day); err != nil {
		return nil, false, err
	}
	return readThrough(ctx, s.cache, makeAnalyticsCacheKey("missed", day), func(ctx context.Context) ([]models.AccountSummary, error) {
		students, err := s.listStudents(ctx, models.AccountFilter{})
		if err != nil {
			return nil, err
		}
		submissions, err := s.daySubmissions(ctx, day, "missed")
		if err != nil {
			return nil, err
		}
		byAccount := indexByAccount(submissions)
		missed := make([]models.AccountSummary, 0)
		for _, student := range students {
			if _, ok := byAccount[student.ID]; !ok {
				missed = append(missed, student.Summary())
			}
		}
		return missed, nil
	})
}

// SystemMetrics returns system instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	return s.metrics.Snapshot()
}

func (s *AnalyticsService) listStudents(ctx context.Context, filter models.AccountFilter) ([]models.Account, error) {
	filter.Role = models.RoleStudent
	start := time.Now()
	students, err := s.accounts.List(ctx, filter)
	s.metrics.ObserveDBQuery("list_students", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// daySubmissions loads the day's submissions and drops orphans, logging each one.
func (s *AnalyticsService) daySubmissions(ctx context.Context, day, operation string) ([]models.SubmissionWithOwner, error) {
	start := time.Now()
	rows, err := s.submissions.ListByDayWithOwner(ctx, day, nil)
	s.metrics.ObserveDBQuery("day_submissions", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submissions")
	}
	return dropOrphans(rows, operation, s.logger, s.metrics), nil
}

func (s *AnalyticsService) today() string {
	return models.FormatDay(s.opts.Now())
}

func dropOrphans(rows []models.SubmissionWithOwner, operation string, logger *zap.Logger, metrics *MetricsService) []models.SubmissionWithOwner {
	kept := rows[:0]
	orphans := 0
	for _, row := range rows {
		if row.Orphaned() {
			orphans++
			logger.Warn("skipping orphaned submission",
				zap.String("operation", operation),
				zap.String("submission_id", row.ID),
				zap.String("account_id", row.AccountID),
			)
			continue
		}
		kept = append(kept, row)
	}
	metrics.RecordOrphans(operation, orphans)
	return kept
}

func performanceFrom(counts []models.StatusCount) models.PerformanceSnapshot {
	var perf models.PerformanceSnapshot
	for _, c := range counts {
		perf.TotalDays += c.Count
		switch c.Status {
		case models.SubmissionApproved:
			perf.Approved += c.Count
		case models.SubmissionRejected:
			perf.Rejected += c.Count
		case models.SubmissionPending:
			perf.Pending += c.Count
		}
	}
	return perf
}

func validateDay(day string) error {
	if strings.TrimSpace(day) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "day is required")
	}
	if _, err := models.ParseDay(day); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "day must be formatted as YYYY-MM-DD")
	}
	return nil
}

// readThrough serves key from cache or loads, caches and returns a fresh value.
func readThrough[T any](ctx context.Context, cache *CacheService, key string, load func(context.Context) (T, error)) (T, bool, error) {
	var cached T
	if cache.Get(ctx, key, &cached) {
		return cached, true, nil
	}
	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}
	cache.Set(ctx, key, value, 0)
	return value, false, nil
}

func makeAnalyticsCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("analytics")
	for _, part := range parts {
		if part == "" {
			continue
		}
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}
