package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/domain"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/ports"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/report"
)

// Output formats accepted by GenerateReport
const (
	FormatPDF      = "pdf"
	FormatMarkdown = "markdown"
)

// SummaryFallback replaces the narrative when the provider fails. A report is
// always produced even if the narrative step is unavailable.
const SummaryFallback = "Narrative summary generation failed. Please review the metrics below."

// ReportRequest is one report generation request
type ReportRequest struct {
	Incidents  []map[string]any
	Title      string
	Format     string // pdf or markdown; defaults to pdf
	Stylesheet string // optional CSS file applied during PDF conversion
}

// ReportResult is the outcome of one pipeline run
type ReportResult struct {
	RunID      string
	Document   domain.ReportDocument
	Markdown   string
	Format     string // format actually produced, after any fallback
	OutputPath string
	Warnings   []domain.DataQualityWarning
}

// ReportUseCase runs the full pipeline: normalize, aggregate, break down,
// summarize, assemble, render. Each invocation operates on its own data, so
// concurrent requests need no locking.
type ReportUseCase struct {
	summaries   ports.SummaryProvider
	renderer    ports.DocumentRenderer
	runs        ports.ReportRunRepository
	logger      *logrus.Logger
	outputDir   string
	recentLimit int
}

// NewReportUseCase creates a new report use case
func NewReportUseCase(
	summaries ports.SummaryProvider,
	renderer ports.DocumentRenderer,
	runs ports.ReportRunRepository,
	logger *logrus.Logger,
	outputDir string,
	recentLimit int,
) *ReportUseCase {
	if recentLimit <= 0 {
		recentLimit = report.DefaultRecentLimit
	}
	return &ReportUseCase{
		summaries:   summaries,
		renderer:    renderer,
		runs:        runs,
		logger:      logger,
		outputDir:   outputDir,
		recentLimit: recentLimit,
	}
}

// Generate runs the pipeline once. Schema and format violations abort with no
// partial output; provider and renderer failures degrade instead of aborting.
func (uc *ReportUseCase) Generate(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	records, warnings, err := report.Normalize(req.Incidents)
	if err != nil {
		return nil, err
	}

	metrics := report.Aggregate(records)
	byPriority, err := report.BreakDown(records, domain.DimensionPriority)
	if err != nil {
		return nil, err
	}
	byDepartment, err := report.BreakDown(records, domain.DimensionDepartment)
	if err != nil {
		return nil, err
	}
	byCategory, err := report.BreakDown(records, domain.DimensionCategory)
	if err != nil {
		return nil, err
	}

	summary, err := uc.summaries.Summarize(ctx, ports.SummaryInput{
		Metrics:      metrics,
		ByPriority:   byPriority,
		ByDepartment: byDepartment,
		ByCategory:   byCategory,
	})
	if err != nil {
		uc.logger.WithError(err).Warn("Narrative summary generation failed, using fallback")
		summary = SummaryFallback
	}

	generatedAt := time.Now()
	doc := report.Assemble(metrics, byPriority, byDepartment, byCategory, summary, records, warnings, report.AssembleOptions{
		Title:       req.Title,
		RecentLimit: uc.recentLimit,
		GeneratedAt: generatedAt,
	})
	markdown := report.RenderMarkdown(doc)

	result := &ReportResult{
		RunID:    uuid.New().String(),
		Document: doc,
		Markdown: markdown,
		Warnings: warnings,
	}

	format := req.Format
	if format == "" {
		format = FormatPDF
	}
	if format != FormatPDF && format != FormatMarkdown {
		return nil, fmt.Errorf("unsupported output format %q", format)
	}

	outputPath, finalFormat, err := uc.writeOutput(ctx, doc.Title, markdown, format, req.Stylesheet, generatedAt)
	if err != nil {
		return nil, err
	}
	result.OutputPath = outputPath
	result.Format = finalFormat

	uc.recordRun(ctx, result, doc)

	return result, nil
}

// writeOutput materializes the markdown file and, when PDF is requested,
// converts it. On conversion failure the markdown file is kept and returned
// instead of failing the whole request.
func (uc *ReportUseCase) writeOutput(ctx context.Context, title, markdown, format, stylesheet string, generatedAt time.Time) (string, string, error) {
	if err := os.MkdirAll(uc.outputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory: %w", err)
	}

	base := fmt.Sprintf("incident_report_%s", generatedAt.Format("20060102_150405"))
	markdownPath := filepath.Join(uc.outputDir, base+".md")
	if err := os.WriteFile(markdownPath, []byte(markdown), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write markdown report: %w", err)
	}

	if format != FormatPDF {
		return markdownPath, FormatMarkdown, nil
	}

	pdfPath := filepath.Join(uc.outputDir, base+".pdf")
	renderErr := uc.renderer.Render(ctx, ports.RenderRequest{
		Markdown:   markdown,
		Title:      title,
		Stylesheet: stylesheet,
		OutputPath: pdfPath,
	})
	if renderErr != nil {
		uc.logger.WithError(renderErr).WithField("path", markdownPath).
			Warn("PDF conversion failed, falling back to markdown")
		return markdownPath, FormatMarkdown, nil
	}

	// PDF succeeded, the markdown intermediate is no longer needed
	if err := os.Remove(markdownPath); err != nil {
		uc.logger.WithError(err).WithField("path", markdownPath).Debug("Failed to remove intermediate markdown")
	}
	return pdfPath, FormatPDF, nil
}

func (uc *ReportUseCase) recordRun(ctx context.Context, result *ReportResult, doc domain.ReportDocument) {
	run := &domain.ReportRun{
		ID:             result.RunID,
		Title:          doc.Title,
		Format:         result.Format,
		OutputPath:     result.OutputPath,
		TotalIncidents: doc.Metrics.Total,
		CreatedAt:      doc.GeneratedAt,
	}
	if err := uc.runs.Save(ctx, run); err != nil {
		uc.logger.WithError(err).WithField("run_id", run.ID).Warn("Failed to record report run")
	}
}

// ListRuns returns recent report runs, newest first
func (uc *ReportUseCase) ListRuns(ctx context.Context, limit int) ([]*domain.ReportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	return uc.runs.List(ctx, limit)
}

// FindRun retrieves one recorded run
func (uc *ReportUseCase) FindRun(ctx context.Context, id string) (*domain.ReportRun, error) {
	return uc.runs.FindByID(ctx, id)
}
