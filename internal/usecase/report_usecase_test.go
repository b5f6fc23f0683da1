package usecase

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/adapter/persistence"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/domain"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/ports"
)

type stubSummaryProvider struct {
	summary string
	err     error
	input   *ports.SummaryInput
}

func (s *stubSummaryProvider) Summarize(ctx context.Context, input ports.SummaryInput) (string, error) {
	s.input = &input
	return s.summary, s.err
}

func (s *stubSummaryProvider) Validate(ctx context.Context) error { return nil }

type stubRenderer struct {
	err      error
	requests []ports.RenderRequest
}

func (s *stubRenderer) Render(ctx context.Context, req ports.RenderRequest) error {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(req.OutputPath, []byte("%PDF-1.4"), 0o644)
}

func (s *stubRenderer) Validate(ctx context.Context) error { return s.err }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func sampleBatch() []map[string]any {
	return []map[string]any{
		{
			"id":          "INC-001",
			"title":       "Email server outage",
			"priority":    "High",
			"department":  "IT",
			"category":    "Infrastructure",
			"status":      "Resolved",
			"created_at":  "2024-01-15T09:30:00Z",
			"resolved_at": "2024-01-15T14:45:00Z",
			"sla_status":  "Within SLA",
		},
		{
			"id":         "INC-002",
			"title":      "VPN connection failures",
			"priority":   "Medium",
			"department": "IT",
			"category":   "Network",
			"status":     "Unresolved",
			"created_at": "2024-01-16T11:00:00Z",
			"sla_status": "Breached",
		},
	}
}

func newTestUseCase(t *testing.T, provider ports.SummaryProvider, renderer ports.DocumentRenderer) (*ReportUseCase, *persistence.MemoryReportRunRepository) {
	t.Helper()
	runs := persistence.NewMemoryReportRunRepository()
	uc := NewReportUseCase(provider, renderer, runs, quietLogger(), t.TempDir(), 0)
	return uc, runs
}

func TestGenerate_MarkdownFormat(t *testing.T) {
	provider := &stubSummaryProvider{summary: "A calm week overall."}
	renderer := &stubRenderer{}
	uc, runs := newTestUseCase(t, provider, renderer)

	result, err := uc.Generate(context.Background(), ReportRequest{
		Incidents: sampleBatch(),
		Title:     "Weekly Report",
		Format:    FormatMarkdown,
	})
	require.NoError(t, err)

	assert.Equal(t, FormatMarkdown, result.Format)
	assert.NotEmpty(t, result.RunID)
	assert.Contains(t, result.Markdown, "A calm week overall.")
	assert.Empty(t, renderer.requests, "markdown output needs no conversion")

	data, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, result.Markdown, string(data))

	// the summary provider sees the computed metrics
	require.NotNil(t, provider.input)
	assert.Equal(t, 2, provider.input.Metrics.Total)

	run, err := runs.FindByID(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, "Weekly Report", run.Title)
	assert.Equal(t, 2, run.TotalIncidents)
}

func TestGenerate_PDFFormatRemovesIntermediateMarkdown(t *testing.T) {
	provider := &stubSummaryProvider{summary: "summary"}
	renderer := &stubRenderer{}
	uc, _ := newTestUseCase(t, provider, renderer)

	result, err := uc.Generate(context.Background(), ReportRequest{
		Incidents: sampleBatch(),
		Format:    FormatPDF,
	})
	require.NoError(t, err)

	assert.Equal(t, FormatPDF, result.Format)
	assert.True(t, strings.HasSuffix(result.OutputPath, ".pdf"))
	require.Len(t, renderer.requests, 1)

	mdPath := strings.TrimSuffix(result.OutputPath, ".pdf") + ".md"
	_, err = os.Stat(mdPath)
	assert.True(t, os.IsNotExist(err), "intermediate markdown should be removed")
}

func TestGenerate_DefaultsToPDF(t *testing.T) {
	renderer := &stubRenderer{}
	uc, _ := newTestUseCase(t, &stubSummaryProvider{summary: "s"}, renderer)

	result, err := uc.Generate(context.Background(), ReportRequest{Incidents: sampleBatch()})
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, result.Format)
}

func TestGenerate_RendererFailureFallsBackToMarkdown(t *testing.T) {
	renderer := &stubRenderer{err: errors.New("wkhtmltopdf not found")}
	uc, runs := newTestUseCase(t, &stubSummaryProvider{summary: "s"}, renderer)

	result, err := uc.Generate(context.Background(), ReportRequest{
		Incidents: sampleBatch(),
		Format:    FormatPDF,
	})
	require.NoError(t, err, "render failure degrades, it does not abort")

	assert.Equal(t, FormatMarkdown, result.Format)
	assert.True(t, strings.HasSuffix(result.OutputPath, ".md"))
	_, statErr := os.Stat(result.OutputPath)
	assert.NoError(t, statErr, "markdown file is kept on fallback")

	run, err := runs.FindByID(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, run.Format)
}

func TestGenerate_ProviderFailureUsesFallbackSummary(t *testing.T) {
	provider := &stubSummaryProvider{err: errors.New("upstream 500")}
	uc, _ := newTestUseCase(t, provider, &stubRenderer{})

	result, err := uc.Generate(context.Background(), ReportRequest{
		Incidents: sampleBatch(),
		Format:    FormatMarkdown,
	})
	require.NoError(t, err, "summary failure degrades, it does not abort")

	assert.Equal(t, SummaryFallback, result.Document.Summary)
	assert.Contains(t, result.Markdown, SummaryFallback)
}

func TestGenerate_SchemaErrorProducesNoOutput(t *testing.T) {
	uc, _ := newTestUseCase(t, &stubSummaryProvider{summary: "s"}, &stubRenderer{})

	_, err := uc.Generate(context.Background(), ReportRequest{Incidents: nil})
	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	uc, _ := newTestUseCase(t, &stubSummaryProvider{summary: "s"}, &stubRenderer{})

	_, err := uc.Generate(context.Background(), ReportRequest{
		Incidents: sampleBatch(),
		Format:    "docx",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docx")
}

func TestGenerate_WarningsSurfaceInResult(t *testing.T) {
	batch := sampleBatch()
	// resolved with no timestamp
	batch[1]["status"] = "Resolved"

	uc, _ := newTestUseCase(t, &stubSummaryProvider{summary: "s"}, &stubRenderer{})

	result, err := uc.Generate(context.Background(), ReportRequest{
		Incidents: batch,
		Format:    FormatMarkdown,
	})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "INC-002", result.Warnings[0].RecordID)
	assert.Contains(t, result.Markdown, "## Data Quality Notes")
}

func TestGenerate_StylesheetForwardedToRenderer(t *testing.T) {
	renderer := &stubRenderer{}
	uc, _ := newTestUseCase(t, &stubSummaryProvider{summary: "s"}, renderer)

	_, err := uc.Generate(context.Background(), ReportRequest{
		Incidents:  sampleBatch(),
		Format:     FormatPDF,
		Stylesheet: "brand.css",
	})
	require.NoError(t, err)
	require.Len(t, renderer.requests, 1)
	assert.Equal(t, "brand.css", renderer.requests[0].Stylesheet)
}

var (
	_ ports.SummaryProvider  = (*stubSummaryProvider)(nil)
	_ ports.DocumentRenderer = (*stubRenderer)(nil)
)
