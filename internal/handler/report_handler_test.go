package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/task-tracker-api/internal/middleware"
	"github.com/noah-isme/task-tracker-api/internal/models"
	appErrors "github.com/noah-isme/task-tracker-api/pkg/errors"
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func withClaims(c *gin.Context, id string, role models.Role) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: id, Role: role})
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type reportServiceStub struct {
	day    string
	format models.ReportFormat
	file   *models.ReportFile
	err    error
}

func (s *reportServiceStub) BranchReport(_ context.Context, day string, format models.ReportFormat) (*models.ReportFile, error) {
	s.day, s.format = day, format
	return s.file, s.err
}

func TestReportHandlerBranchStreamsAttachment(t *testing.T) {
	stub := &reportServiceStub{file: &models.ReportFile{
		Filename:    "branch-report-2024-01-10.csv",
		ContentType: "text/csv",
		Payload:     []byte("Branch,Total Students\nCSE,2\n"),
	}}
	handler := NewReportHandler(stub)

	c, w := newGinContext(http.MethodGet, "/reports/branch?day=2024-01-10&format=csv", nil)
	handler.Branch(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=branch-report-2024-01-10.csv", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "Branch,Total Students\nCSE,2\n", w.Body.String())
	assert.Equal(t, "2024-01-10", stub.day)
	assert.Equal(t, models.ReportFormatCSV, stub.format)
}

func TestReportHandlerBranchError(t *testing.T) {
	handler := NewReportHandler(&reportServiceStub{err: appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")})

	c, w := newGinContext(http.MethodGet, "/reports/branch?day=2024-01-10&format=xlsx", nil)
	handler.Branch(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, env.Error.Code)
}
