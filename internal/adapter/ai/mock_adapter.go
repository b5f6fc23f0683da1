package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/ports"
)

// MockSummaryProvider produces a deterministic narrative from the metrics
// without any external call. Used in tests and when no API key is configured.
type MockSummaryProvider struct {
	enabled bool
	failure error // when set, every Summarize call fails with it
}

// NewMockSummaryProvider creates a new mock narrative provider
func NewMockSummaryProvider() *MockSummaryProvider {
	return &MockSummaryProvider{enabled: true}
}

// NewFailingSummaryProvider creates a mock that always fails, for exercising
// the pipeline's fallback path
func NewFailingSummaryProvider(err error) *MockSummaryProvider {
	return &MockSummaryProvider{enabled: true, failure: err}
}

// Summarize composes a canned narrative from the aggregate numbers
func (m *MockSummaryProvider) Summarize(ctx context.Context, input ports.SummaryInput) (string, error) {
	if !m.enabled {
		return "", fmt.Errorf("summary provider disabled")
	}
	if m.failure != nil {
		return "", m.failure
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "During the reporting period, %d incidents were recorded, of which %d were resolved (%.1f%%). ",
		input.Metrics.Total, input.Metrics.ResolvedCount, input.Metrics.ResolutionRate)
	fmt.Fprintf(&b, "SLA compliance stood at %.1f%%, with an average resolution time of %.1f hours.",
		input.Metrics.SLAComplianceRate, input.Metrics.AvgResolutionTimeHours)
	if len(input.ByPriority) > 0 {
		top := input.ByPriority[0]
		fmt.Fprintf(&b, " The %s priority band accounted for the largest share of incidents (%d).", top.Key, top.Total)
	}
	if len(input.ByDepartment) > 0 {
		top := input.ByDepartment[0]
		fmt.Fprintf(&b, " %s reported the most incidents among departments (%d).", top.Key, top.Total)
	}

	return b.String(), nil
}

// Validate reports whether the mock provider is available
func (m *MockSummaryProvider) Validate(ctx context.Context) error {
	if !m.enabled {
		return fmt.Errorf("summary provider disabled")
	}
	return nil
}
