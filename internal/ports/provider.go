package ports

import (
	"context"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/domain"
)

// SummaryConfig configures a narrative summary provider
type SummaryConfig struct {
	Provider    string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	TimeoutMs   int
	MaxAttempts int
}

// SummaryInput carries the computed metrics handed to the provider. Providers
// see derived numbers only, never the raw incident records.
type SummaryInput struct {
	Metrics      domain.AggregateMetrics
	ByPriority   []domain.DimensionBreakdown
	ByDepartment []domain.DimensionBreakdown
	ByCategory   []domain.DimensionBreakdown
}

// SummaryProvider generates the executive narrative for a report. A failed
// Summarize never aborts report generation; callers substitute a fallback.
type SummaryProvider interface {
	Summarize(ctx context.Context, input SummaryInput) (string, error)
	Validate(ctx context.Context) error
}

// RenderRequest asks for one markdown document to be converted
type RenderRequest struct {
	Markdown   string
	Title      string
	Stylesheet string // optional CSS file layered over the base style
	OutputPath string
}

// DocumentRenderer converts an assembled markdown report into its final
// format. A failed Render degrades to keeping the markdown output.
type DocumentRenderer interface {
	Render(ctx context.Context, req RenderRequest) error
	Validate(ctx context.Context) error
}
