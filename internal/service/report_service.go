package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/task-tracker-api/internal/models"
	appErrors "github.com/noah-isme/task-tracker-api/pkg/errors"
	"github.com/noah-isme/task-tracker-api/pkg/export"
)

var branchReportHeaders = []string{"Branch", "Total Students", "Submitted", "Missed", "Approved", "Rejected", "Pending"}

type branchRowSource interface {
	CohortAnalytics(ctx context.Context, day string) ([]models.BranchRow, bool, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ReportService renders downloadable reports from analytics results.
type ReportService struct {
	analytics branchRowSource
	renderers map[models.ReportFormat]datasetRenderer
	logger    *zap.Logger
}

// NewReportService constructs a ReportService with the CSV and PDF renderers.
func NewReportService(analytics branchRowSource, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		analytics: analytics,
		renderers: map[models.ReportFormat]datasetRenderer{
			models.ReportFormatCSV: export.NewCSVExporter(),
			models.ReportFormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
	}
}

// BranchReport renders the branch rollup for day. An empty format means csv.
func (s *ReportService) BranchReport(ctx context.Context, day string, format models.ReportFormat) (*models.ReportFile, error) {
	format = models.ReportFormat(strings.ToLower(string(format)))
	if format == "" {
		format = models.ReportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok || !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	rows, _, err := s.analytics.CohortAnalytics(ctx, day)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Branch report %s", day),
		Headers: branchReportHeaders,
	}
	for _, row := range rows {
		if err := dataset.AddRow(
			row.Branch,
			strconv.Itoa(row.Total),
			strconv.Itoa(row.Submitted),
			strconv.Itoa(row.Missed),
			strconv.Itoa(row.Approved),
			strconv.Itoa(row.Rejected),
			strconv.Itoa(row.Pending),
		); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build report")
		}
	}

	payload, err := renderer.Render(dataset)
	if err != nil {
		s.logger.Error("render branch report", zap.String("day", day), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	return &models.ReportFile{
		Filename:    fmt.Sprintf("branch-report-%s.%s", day, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Payload:     payload,
	}, nil
}
