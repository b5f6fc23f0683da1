package report

import (
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/domain"
)

// Aggregate computes batch-wide metrics in a single pass over the records in
// input order, so identical batches always produce identical floating-point
// results. Zero-total batches yield zero rates rather than NaN; an empty
// resolution-time subset yields a zero mean.
func Aggregate(records []domain.IncidentRecord) domain.AggregateMetrics {
	m := domain.AggregateMetrics{Total: len(records)}

	withinSLA := 0
	hoursSum := 0.0
	eligible := 0
	for i := range records {
		r := &records[i]
		if r.IsResolved() {
			m.ResolvedCount++
		}
		if r.WithinSLA() {
			withinSLA++
		}
		if d, ok := r.ResolutionTime(); ok {
			hoursSum += d.Hours()
			eligible++
		}
	}

	m.UnresolvedCount = m.Total - m.ResolvedCount
	if m.Total > 0 {
		m.ResolutionRate = float64(m.ResolvedCount) / float64(m.Total) * 100
		m.SLAComplianceRate = float64(withinSLA) / float64(m.Total) * 100
	}
	if eligible > 0 {
		m.AvgResolutionTimeHours = hoursSum / float64(eligible)
	}

	return m
}
