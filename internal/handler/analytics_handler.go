package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/task-tracker-api/internal/models"
	"github.com/noah-isme/task-tracker-api/pkg/response"
)

type analyticsService interface {
	Consistency(ctx context.Context, accountID string, mode models.ConsistencyMode) (*models.ConsistencySnapshot, bool, error)
	CohortAnalytics(ctx context.Context, day string) ([]models.BranchRow, bool, error)
	FilterAccounts(ctx context.Context, criteria models.FilterCriteria) ([]models.FilteredAccount, bool, error)
	Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, bool, error)
	Search(ctx context.Context, query string) (*models.SearchResult, bool, error)
	DailySummary(ctx context.Context, day string) (*models.DailySummary, bool, error)
	MissedStudents(ctx context.Context, day string) ([]models.AccountSummary, bool, error)
	SystemMetrics() models.SystemMetrics
}

// AnalyticsHandler exposes admin analytics endpoints.
type AnalyticsHandler struct {
	analytics analyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Summary godoc
// @Summary Daily submission summary
// @Tags Analytics
// @Produce json
// @Param day query string true "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	start := time.Now()
	summary, cacheHit, err := h.analytics.DailySummary(c.Request.Context(), c.Query("day"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, analyticsMeta(c, cacheHit, start))
}

// Missed lists students without a submission on ?day=.
func (h *AnalyticsHandler) Missed(c *gin.Context) {
	start := time.Now()
	students, cacheHit, err := h.analytics.MissedStudents(c.Request.Context(), c.Query("day"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, analyticsMeta(c, cacheHit, start))
}

// Branches godoc
// @Summary Branch rollup for a day
// @Tags Analytics
// @Produce json
// @Param day query string true "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /analytics/branches [get]
func (h *AnalyticsHandler) Branches(c *gin.Context) {
	start := time.Now()
	rows, cacheHit, err := h.analytics.CohortAnalytics(c.Request.Context(), c.Query("day"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, analyticsMeta(c, cacheHit, start))
}

// Filter godoc
// @Summary Filter students by cohort and day outcome
// @Tags Analytics
// @Produce json
// @Param day query string true "YYYY-MM-DD"
// @Param college query string false "College"
// @Param branch query string false "Branch"
// @Param section query string false "Section"
// @Param status query string false "missed, submitted, Approved, Rejected or Pending"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /analytics/filter [get]
func (h *AnalyticsHandler) Filter(c *gin.Context) {
	criteria := models.FilterCriteria{
		Day:     c.Query("day"),
		College: strings.TrimSpace(c.Query("college")),
		Branch:  strings.TrimSpace(c.Query("branch")),
		Section: strings.TrimSpace(c.Query("section")),
		Status:  models.StatusSelector(strings.TrimSpace(c.Query("status"))),
	}
	start := time.Now()
	accounts, cacheHit, err := h.analytics.FilterAccounts(c.Request.Context(), criteria)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, accounts, analyticsMeta(c, cacheHit, start))
}

// Leaderboard returns the top students by approved submissions.
func (h *AnalyticsHandler) Leaderboard(c *gin.Context) {
	start := time.Now()
	entries, cacheHit, err := h.analytics.Leaderboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, analyticsMeta(c, cacheHit, start))
}

// Search godoc
// @Summary Find the first student matching a query
// @Description Returns null data when nothing matches
// @Tags Analytics
// @Produce json
// @Param q query string true "Name, email or roll number fragment"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /analytics/search [get]
func (h *AnalyticsHandler) Search(c *gin.Context) {
	start := time.Now()
	result, cacheHit, err := h.analytics.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, analyticsMeta(c, cacheHit, start))
}

// Performance returns any account's consistency.
func (h *AnalyticsHandler) Performance(c *gin.Context) {
	start := time.Now()
	snapshot, cacheHit, err := h.analytics.Consistency(c.Request.Context(), c.Param("id"), models.ConsistencyMode(c.Query("mode")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, analyticsMeta(c, cacheHit, start))
}

// System returns instrumentation metrics snapshots.
func (h *AnalyticsHandler) System(c *gin.Context) {
	start := time.Now()
	metrics := h.analytics.SystemMetrics()
	response.JSON(c, http.StatusOK, metrics, analyticsMeta(c, false, start))
}
