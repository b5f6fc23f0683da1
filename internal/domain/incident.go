package domain

import (
	"time"
)

// IncidentStatus represents the resolution state of an incident
type IncidentStatus string

const (
	StatusResolved   IncidentStatus = "Resolved"
	StatusUnresolved IncidentStatus = "Unresolved"
)

// SLA status values as they appear in incident data. Anything other than
// SLAWithin counts as breached.
const (
	SLAWithin   = "Within SLA"
	SLABreached = "Breached"
)

// Priority values commonly seen in incident data. Priority is an open
// dimension: a value outside this set still gets its own breakdown row.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// IncidentRecord represents one reported incident after validation
type IncidentRecord struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Priority   string         `json:"priority"`
	Department string         `json:"department"`
	Category   string         `json:"category"`
	Status     IncidentStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
	SLAStatus  string         `json:"sla_status"`
}

// IsResolved reports whether the incident has been resolved
func (r *IncidentRecord) IsResolved() bool {
	return r.Status == StatusResolved
}

// WithinSLA treats every value other than "Within SLA" as a breach
func (r *IncidentRecord) WithinSLA() bool {
	return r.SLAStatus == SLAWithin
}

// ResolutionTime returns the creation-to-resolution duration and whether the
// record is eligible for resolution-time statistics. Resolved records with a
// missing or back-dated resolution timestamp are not eligible.
func (r *IncidentRecord) ResolutionTime() (time.Duration, bool) {
	if r.Status != StatusResolved || r.ResolvedAt == nil {
		return 0, false
	}
	if r.ResolvedAt.Before(r.CreatedAt) {
		return 0, false
	}
	return r.ResolvedAt.Sub(r.CreatedAt), true
}

// Dimension selects the grouping field for a breakdown
type Dimension string

const (
	DimensionPriority   Dimension = "priority"
	DimensionDepartment Dimension = "department"
	DimensionCategory   Dimension = "category"
)
