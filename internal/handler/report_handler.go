package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/task-tracker-api/internal/models"
	"github.com/noah-isme/task-tracker-api/pkg/response"
)

type reportService interface {
	BranchReport(ctx context.Context, day string, format models.ReportFormat) (*models.ReportFile, error)
}

// ReportHandler serves downloadable reports.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs a report handler.
func NewReportHandler(svc reportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Branch godoc
// @Summary Download the branch report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param day query string true "YYYY-MM-DD"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /reports/branch [get]
func (h *ReportHandler) Branch(c *gin.Context) {
	file, err := h.service.BranchReport(c.Request.Context(), c.Query("day"), models.ReportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
