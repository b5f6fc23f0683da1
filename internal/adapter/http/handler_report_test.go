package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/adapter/persistence"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/domain"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/usecase"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/pkg/response"
)

type mockReportGenerator struct {
	mock.Mock
}

func (m *mockReportGenerator) Generate(ctx context.Context, req usecase.ReportRequest) (*usecase.ReportResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ReportResult), args.Error(1)
}

func (m *mockReportGenerator) ListRuns(ctx context.Context, limit int) ([]*domain.ReportRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReportRun), args.Error(1)
}

func (m *mockReportGenerator) FindRun(ctx context.Context, id string) (*domain.ReportRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportRun), args.Error(1)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestRouter(generator ReportGenerator) *mux.Router {
	router := mux.NewRouter()
	NewReportHandler(generator, testLogger()).RegisterRoutes(router)
	return router
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.NewDecoder(body).Decode(&envelope))
	return envelope
}

func TestGenerateReport_Success(t *testing.T) {
	generator := new(mockReportGenerator)
	result := &usecase.ReportResult{
		RunID:      "run-1",
		Document:   domain.ReportDocument{Title: "Weekly Report"},
		Markdown:   "# Weekly Report",
		Format:     usecase.FormatMarkdown,
		OutputPath: "/tmp/report.md",
		Warnings: []domain.DataQualityWarning{
			{RecordID: "INC-002", Field: "resolved_at", Reason: "missing"},
		},
	}
	generator.On("Generate", mock.Anything, mock.MatchedBy(func(req usecase.ReportRequest) bool {
		return req.Title == "Weekly Report" && req.Format == "markdown" && len(req.Incidents) == 1
	})).Return(result, nil)

	body, _ := json.Marshal(map[string]any{
		"title":  "Weekly Report",
		"format": "markdown",
		"incidents": []map[string]any{
			{"id": "INC-001"},
		},
	})

	req := httptest.NewRequest("POST", "/api/v1/reports", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	newTestRouter(generator).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	envelope := decodeEnvelope(t, rr.Body)
	assert.True(t, envelope.Status)

	data := envelope.Data.(map[string]any)
	assert.Equal(t, "run-1", data["run_id"])
	assert.Equal(t, "markdown", data["format"])
	warnings := data["warnings"].([]any)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "INC-002")

	generator.AssertExpectations(t)
}

func TestGenerateReport_InvalidBody(t *testing.T) {
	generator := new(mockReportGenerator)

	req := httptest.NewRequest("POST", "/api/v1/reports", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	newTestRouter(generator).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	generator.AssertNotCalled(t, "Generate")
}

func TestGenerateReport_SchemaErrorMapsTo422(t *testing.T) {
	generator := new(mockReportGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).
		Return(nil, domain.NewEmptyBatchError())

	body, _ := json.Marshal(map[string]any{"incidents": []map[string]any{}})
	req := httptest.NewRequest("POST", "/api/v1/reports", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	newTestRouter(generator).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	envelope := decodeEnvelope(t, rr.Body)
	assert.False(t, envelope.Status)
	assert.Contains(t, envelope.Message, "empty incident batch")
}

func TestGenerateReport_FormatErrorMapsTo422(t *testing.T) {
	generator := new(mockReportGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).
		Return(nil, &domain.FormatError{RecordID: "INC-001", Field: "created_at", Value: "bogus"})

	body, _ := json.Marshal(map[string]any{"incidents": []map[string]any{{"id": "INC-001"}}})
	req := httptest.NewRequest("POST", "/api/v1/reports", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	newTestRouter(generator).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	envelope := decodeEnvelope(t, rr.Body)
	assert.Contains(t, envelope.Message, "INC-001")
}

func TestGenerateReport_InternalError(t *testing.T) {
	generator := new(mockReportGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	body, _ := json.Marshal(map[string]any{"incidents": []map[string]any{{"id": "INC-001"}}})
	req := httptest.NewRequest("POST", "/api/v1/reports", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	newTestRouter(generator).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestListReports(t *testing.T) {
	generator := new(mockReportGenerator)
	runs := []*domain.ReportRun{
		{ID: "run-2", Title: "Later", CreatedAt: time.Now()},
		{ID: "run-1", Title: "Earlier", CreatedAt: time.Now().Add(-time.Hour)},
	}
	generator.On("ListRuns", mock.Anything, 0).Return(runs, nil)

	req := httptest.NewRequest("GET", "/api/v1/reports", nil)
	rr := httptest.NewRecorder()
	newTestRouter(generator).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	envelope := decodeEnvelope(t, rr.Body)
	assert.True(t, envelope.Status)
	assert.Len(t, envelope.Data.([]any), 2)
}

func TestListReports_LimitValidation(t *testing.T) {
	generator := new(mockReportGenerator)

	req := httptest.NewRequest("GET", "/api/v1/reports?limit=abc", nil)
	rr := httptest.NewRecorder()
	newTestRouter(generator).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	generator.AssertNotCalled(t, "ListRuns")
}

func TestDownloadReport_NotFound(t *testing.T) {
	generator := new(mockReportGenerator)
	generator.On("FindRun", mock.Anything, "missing").Return(nil, persistence.ErrRunNotFound)

	req := httptest.NewRequest("GET", "/api/v1/reports/missing/download", nil)
	rr := httptest.NewRecorder()
	newTestRouter(generator).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDownloadReport_ServesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, os.WriteFile(path, []byte("# Weekly"), 0o644))

	generator := new(mockReportGenerator)
	generator.On("FindRun", mock.Anything, "run-1").Return(&domain.ReportRun{
		ID:         "run-1",
		OutputPath: path,
	}, nil)

	req := httptest.NewRequest("GET", "/api/v1/reports/run-1/download", nil)
	rr := httptest.NewRecorder()
	newTestRouter(generator).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "# Weekly", rr.Body.String())
}

func TestSampleData(t *testing.T) {
	generator := new(mockReportGenerator)

	req := httptest.NewRequest("GET", "/api/v1/sample-data", nil)
	rr := httptest.NewRecorder()
	newTestRouter(generator).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	envelope := decodeEnvelope(t, rr.Body)
	incidents := envelope.Data.(map[string]any)["incidents"].([]any)
	assert.NotEmpty(t, incidents)
	first := incidents[0].(map[string]any)
	assert.Equal(t, "INC-001", first["id"])
}
