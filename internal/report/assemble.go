package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/domain"
)

const (
	// DefaultRecentLimit is the size of the recent-incidents table
	DefaultRecentLimit = 5

	// unresolvedPlaceholder keeps a missing resolution timestamp visually
	// distinguishable from a formatting bug
	unresolvedPlaceholder = "not yet resolved"

	timestampFormat = "2006-01-02 15:04:05"
)

// AssembleOptions controls report assembly. Zero values fall back to a
// timestamped title, DefaultRecentLimit, and the current time.
type AssembleOptions struct {
	Title       string
	RecentLimit int
	GeneratedAt time.Time
}

// Assemble merges the aggregate metrics, the three dimensional breakdowns,
// the narrative summary, and the normalized batch into one ReportDocument.
// The batch has already passed validation, so the time range is always
// well-defined.
func Assemble(
	metrics domain.AggregateMetrics,
	byPriority, byDepartment, byCategory []domain.DimensionBreakdown,
	summary string,
	records []domain.IncidentRecord,
	warnings []domain.DataQualityWarning,
	opts AssembleOptions,
) domain.ReportDocument {
	generatedAt := opts.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("Incident Report - %s", generatedAt.Format("20060102_150405"))
	}
	limit := opts.RecentLimit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	return domain.ReportDocument{
		Title:           title,
		TimeRange:       timeRange(records),
		Metrics:         metrics,
		ByPriority:      byPriority,
		ByDepartment:    byDepartment,
		ByCategory:      byCategory,
		Summary:         summary,
		RecentIncidents: recentIncidents(records, limit),
		Warnings:        warnings,
		GeneratedAt:     generatedAt,
	}
}

func timeRange(records []domain.IncidentRecord) domain.TimeRange {
	if len(records) == 0 {
		return domain.TimeRange{}
	}
	tr := domain.TimeRange{Start: records[0].CreatedAt, End: records[0].CreatedAt}
	for i := range records[1:] {
		created := records[i+1].CreatedAt
		if created.Before(tr.Start) {
			tr.Start = created
		}
		if created.After(tr.End) {
			tr.End = created
		}
	}
	return tr
}

// recentIncidents selects the top-K records by created_at descending, with an
// id tiebreak so equal timestamps order deterministically
func recentIncidents(records []domain.IncidentRecord, limit int) []domain.IncidentRecord {
	recent := make([]domain.IncidentRecord, len(records))
	copy(recent, records)
	sort.SliceStable(recent, func(i, j int) bool {
		if !recent[i].CreatedAt.Equal(recent[j].CreatedAt) {
			return recent[i].CreatedAt.After(recent[j].CreatedAt)
		}
		return recent[i].ID < recent[j].ID
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

// RenderMarkdown serializes the assembled document. The section order is a
// fixed compatibility contract with downstream converters; changing it is a
// breaking change.
func RenderMarkdown(doc domain.ReportDocument) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	fmt.Fprintf(&b, "Reporting period: %s to %s\n\n",
		doc.TimeRange.Start.Format(timestampFormat), doc.TimeRange.End.Format(timestampFormat))

	b.WriteString("## Executive Summary\n")
	b.WriteString(doc.Summary)
	b.WriteString("\n\n")

	b.WriteString("## Metrics Overview\n")
	fmt.Fprintf(&b, "- Total Incidents: %d\n", doc.Metrics.Total)
	fmt.Fprintf(&b, "- Resolved Incidents: %d\n", doc.Metrics.ResolvedCount)
	fmt.Fprintf(&b, "- Unresolved Incidents: %d\n", doc.Metrics.UnresolvedCount)
	fmt.Fprintf(&b, "- Resolution Rate: %.1f%%\n", doc.Metrics.ResolutionRate)
	fmt.Fprintf(&b, "- Average Resolution Time: %.1f hours\n", doc.Metrics.AvgResolutionTimeHours)
	fmt.Fprintf(&b, "- SLA Compliance Rate: %.1f%%\n\n", doc.Metrics.SLAComplianceRate)

	b.WriteString("## Department Analysis\n")
	writeComplianceTable(&b, "Department", doc.ByDepartment)

	b.WriteString("## Category Analysis\n")
	writeComplianceTable(&b, "Category", doc.ByCategory)

	b.WriteString("## Priority Distribution\n")
	b.WriteString("| Priority | Total | Resolved | Unresolved | SLA Breached | Compliance Rate | Avg Resolution (hours) |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, row := range doc.ByPriority {
		avg := 0.0
		if row.AvgResolutionTimeHours != nil {
			avg = *row.AvgResolutionTimeHours
		}
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %.1f%% | %.1f |\n",
			row.Key, row.Total, row.Resolved, row.Unresolved, row.SLABreached, row.ComplianceRate, avg)
	}
	b.WriteString("\n")

	b.WriteString("## Status Distribution\n")
	b.WriteString("| Status | Count |\n")
	b.WriteString("|---|---|\n")
	fmt.Fprintf(&b, "| %s | %d |\n", domain.StatusResolved, doc.Metrics.ResolvedCount)
	fmt.Fprintf(&b, "| %s | %d |\n\n", domain.StatusUnresolved, doc.Metrics.UnresolvedCount)

	b.WriteString("## Recent Incidents\n")
	b.WriteString("| ID | Title | Priority | Department | Category | Status | Created | Resolved | SLA Status |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for i := range doc.RecentIncidents {
		r := &doc.RecentIncidents[i]
		resolved := unresolvedPlaceholder
		if r.ResolvedAt != nil {
			resolved = r.ResolvedAt.Format(timestampFormat)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			r.ID, escapePipes(r.Title), r.Priority, r.Department, r.Category,
			r.Status, r.CreatedAt.Format(timestampFormat), resolved, r.SLAStatus)
	}
	b.WriteString("\n")

	if len(doc.Warnings) > 0 {
		b.WriteString("## Data Quality Notes\n")
		for _, w := range doc.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n")
	fmt.Fprintf(&b, "Report generated on: %s\n", doc.GeneratedAt.Format(timestampFormat))

	return b.String()
}

func writeComplianceTable(b *strings.Builder, label string, rows []domain.DimensionBreakdown) {
	fmt.Fprintf(b, "| %s | Total | Within SLA | Breached | Compliance Rate |\n", label)
	b.WriteString("|---|---|---|---|---|\n")
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %d | %d | %d | %.1f%% |\n",
			row.Key, row.Total, row.Total-row.SLABreached, row.SLABreached, row.ComplianceRate)
	}
	b.WriteString("\n")
}

// escapePipes keeps free-text fields from breaking table layout
func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
