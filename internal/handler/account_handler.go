package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/task-tracker-api/internal/models"
	"github.com/noah-isme/task-tracker-api/internal/service"
	appErrors "github.com/noah-isme/task-tracker-api/pkg/errors"
	"github.com/noah-isme/task-tracker-api/pkg/response"
)

type accountService interface {
	RegisterStudent(ctx context.Context, req service.RegisterStudentRequest) (*models.Account, error)
	ListStudents(ctx context.Context) ([]models.Account, error)
	Profile(ctx context.Context, id string) (*models.Account, error)
	UpdateProfile(ctx context.Context, id string, req service.UpdateProfileRequest) (*models.Account, error)
}

// AccountHandler exposes the account directory.
type AccountHandler struct {
	service accountService
}

// NewAccountHandler constructs the account handler.
func NewAccountHandler(svc accountService) *AccountHandler {
	return &AccountHandler{service: svc}
}

// Profile godoc
// @Summary Current account profile
// @Tags Accounts
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/profile [get]
func (h *AccountHandler) Profile(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	account, err := h.service.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, account)
}

// UpdateProfile godoc
// @Summary Update current account profile
// @Tags Accounts
// @Accept json
// @Produce json
// @Param payload body service.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/profile [put]
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}
	account, err := h.service.UpdateProfile(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, account)
}

// RegisterStudent godoc
// @Summary Register a student
// @Tags Accounts
// @Accept json
// @Produce json
// @Param payload body service.RegisterStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/students [post]
func (h *AccountHandler) RegisterStudent(c *gin.Context) {
	var req service.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	account, err := h.service.RegisterStudent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, account)
}

// ListStudents returns every registered student.
func (h *AccountHandler) ListStudents(c *gin.Context) {
	students, err := h.service.ListStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}
