package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/task-tracker-api/internal/models"
	"github.com/noah-isme/task-tracker-api/internal/service"
	appErrors "github.com/noah-isme/task-tracker-api/pkg/errors"
	"github.com/noah-isme/task-tracker-api/pkg/response"
)

type submissionService interface {
	Submit(ctx context.Context, accountID string, role models.Role, req service.SubmitRequest) (*models.Submission, error)
	Today(ctx context.Context, accountID string) (*models.Submission, error)
	History(ctx context.Context, accountID string) ([]models.Submission, error)
	Pending(ctx context.Context, day string) ([]models.ReviewItem, error)
	Review(ctx context.Context, id string, req service.ReviewRequest) (*models.Submission, error)
}

type consistencyService interface {
	Consistency(ctx context.Context, accountID string, mode models.ConsistencyMode) (*models.ConsistencySnapshot, bool, error)
}

// SubmissionHandler exposes the daily submission workflow.
type SubmissionHandler struct {
	submissions submissionService
	consistency consistencyService
}

// NewSubmissionHandler constructs the submission handler.
func NewSubmissionHandler(submissions submissionService, consistency consistencyService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, consistency: consistency}
}

// Submit godoc
// @Summary Submit today's proof of work
// @Description Students submit one LinkedIn link per day; future days are rejected
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body service.SubmitRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}
	submission, err := h.submissions.Submit(c.Request.Context(), claims.UserID, claims.Role, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}

// Today returns the caller's submission for today or null.
func (h *SubmissionHandler) Today(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	submission, err := h.submissions.Today(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission)
}

// History returns the caller's submissions newest first.
func (h *SubmissionHandler) History(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	submissions, err := h.submissions.History(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submissions)
}

// MyPerformance godoc
// @Summary Caller's consistency
// @Tags Submissions
// @Produce json
// @Param mode query string false "span or calendar"
// @Success 200 {object} response.Envelope
// @Router /submissions/my-performance [get]
func (h *SubmissionHandler) MyPerformance(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	start := time.Now()
	snapshot, cacheHit, err := h.consistency.Consistency(c.Request.Context(), claims.UserID, models.ConsistencyMode(c.Query("mode")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, analyticsMeta(c, cacheHit, start))
}

// Pending returns the review queue for ?day=, defaulting to today.
func (h *SubmissionHandler) Pending(c *gin.Context) {
	items, err := h.submissions.Pending(c.Request.Context(), c.Query("day"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Review godoc
// @Summary Approve or reject a submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body service.ReviewRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /submissions/{id}/review [patch]
func (h *SubmissionHandler) Review(c *gin.Context) {
	var req service.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}
	submission, err := h.submissions.Review(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission)
}
