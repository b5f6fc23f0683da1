package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/domain"
)

var testBase = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

// rec builds a record resolved after the given number of hours; hours < 0
// means unresolved
func rec(id, priority, department, category, slaStatus string, createdOffset time.Duration, resolvedAfterHours float64) domain.IncidentRecord {
	r := domain.IncidentRecord{
		ID:         id,
		Title:      "incident " + id,
		Priority:   priority,
		Department: department,
		Category:   category,
		Status:     domain.StatusUnresolved,
		CreatedAt:  testBase.Add(createdOffset),
		SLAStatus:  slaStatus,
	}
	if resolvedAfterHours >= 0 {
		resolved := r.CreatedAt.Add(time.Duration(resolvedAfterHours * float64(time.Hour)))
		r.Status = domain.StatusResolved
		r.ResolvedAt = &resolved
	}
	return r
}

func TestAggregate_MixedBatch(t *testing.T) {
	records := []domain.IncidentRecord{
		rec("INC-001", "High", "IT", "Infrastructure", domain.SLAWithin, 0, 4),
		rec("INC-002", "High", "IT", "Network", domain.SLABreached, time.Hour, 8),
		rec("INC-003", "Medium", "Finance", "Application", domain.SLAWithin, 2*time.Hour, 6),
		rec("INC-004", "Low", "Facilities", "Hardware", domain.SLAWithin, 3*time.Hour, -1),
	}

	m := Aggregate(records)

	assert.Equal(t, 4, m.Total)
	assert.Equal(t, 3, m.ResolvedCount)
	assert.Equal(t, 1, m.UnresolvedCount)
	assert.InDelta(t, 75.0, m.ResolutionRate, 1e-9)
	assert.InDelta(t, 75.0, m.SLAComplianceRate, 1e-9)
	assert.InDelta(t, 6.0, m.AvgResolutionTimeHours, 1e-9) // (4+8+6)/3
}

func TestAggregate_AllUnresolved(t *testing.T) {
	records := []domain.IncidentRecord{
		rec("INC-001", "High", "IT", "Network", domain.SLABreached, 0, -1),
		rec("INC-002", "Low", "IT", "Network", domain.SLABreached, time.Hour, -1),
	}

	m := Aggregate(records)

	assert.Equal(t, 2, m.Total)
	assert.Equal(t, 0, m.ResolvedCount)
	assert.Equal(t, 2, m.UnresolvedCount)
	assert.Zero(t, m.ResolutionRate)
	assert.Zero(t, m.SLAComplianceRate)
	assert.Zero(t, m.AvgResolutionTimeHours)
}

func TestAggregate_ExclusionDoesNotShrinkTotals(t *testing.T) {
	// resolved but back-dated: counts as resolved, excluded from the mean
	backdated := rec("INC-002", "High", "IT", "Network", domain.SLAWithin, 2*time.Hour, 0)
	earlier := backdated.CreatedAt.Add(-1 * time.Hour)
	backdated.ResolvedAt = &earlier

	// resolved with no timestamp at all
	missing := rec("INC-003", "High", "IT", "Network", domain.SLAWithin, 3*time.Hour, 1)
	missing.ResolvedAt = nil

	records := []domain.IncidentRecord{
		rec("INC-001", "High", "IT", "Network", domain.SLAWithin, 0, 10),
		backdated,
		missing,
	}

	m := Aggregate(records)

	assert.Equal(t, 3, m.Total)
	assert.Equal(t, 3, m.ResolvedCount)
	assert.InDelta(t, 100.0, m.ResolutionRate, 1e-9)
	// only INC-001 contributes to the mean
	assert.InDelta(t, 10.0, m.AvgResolutionTimeHours, 1e-9)
}

func TestAggregate_EmptySlice(t *testing.T) {
	m := Aggregate(nil)
	assert.Equal(t, 0, m.Total)
	assert.Zero(t, m.ResolutionRate)
	assert.Zero(t, m.SLAComplianceRate)
	assert.Zero(t, m.AvgResolutionTimeHours)
}

func TestAggregate_UnexpectedSLAValueCountsAsBreach(t *testing.T) {
	records := []domain.IncidentRecord{
		rec("INC-001", "High", "IT", "Network", "At Risk", 0, 2),
		rec("INC-002", "High", "IT", "Network", domain.SLAWithin, time.Hour, 2),
	}

	m := Aggregate(records)
	assert.InDelta(t, 50.0, m.SLAComplianceRate, 1e-9)
}
