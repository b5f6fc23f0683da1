package domain

import (
	"time"
)

// AggregateMetrics holds batch-wide counts and rates, computed once per
// report run. Rate fields are percentages in [0, 100] and are defined as 0
// when the batch is empty.
type AggregateMetrics struct {
	Total                  int     `json:"total"`
	ResolvedCount          int     `json:"resolved_count"`
	UnresolvedCount        int     `json:"unresolved_count"`
	ResolutionRate         float64 `json:"resolution_rate"`
	AvgResolutionTimeHours float64 `json:"avg_resolution_time_hours"`
	SLAComplianceRate      float64 `json:"sla_compliance_rate"`
}

// DimensionBreakdown is the rollup for one distinct value of a dimension.
// AvgResolutionTimeHours is populated for the priority dimension only.
type DimensionBreakdown struct {
	Key                    string   `json:"key"`
	Total                  int      `json:"total"`
	Resolved               int      `json:"resolved"`
	Unresolved             int      `json:"unresolved"`
	SLABreached            int      `json:"sla_breached"`
	ComplianceRate         float64  `json:"compliance_rate"`
	AvgResolutionTimeHours *float64 `json:"avg_resolution_time_hours,omitempty"`
}

// TimeRange spans the earliest and latest created_at in the batch
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ReportDocument is the fully assembled report, ready for serialization.
// Section order in the rendered output is a compatibility contract with
// downstream converters.
type ReportDocument struct {
	Title           string               `json:"title"`
	TimeRange       TimeRange            `json:"time_range"`
	Metrics         AggregateMetrics     `json:"metrics"`
	ByPriority      []DimensionBreakdown `json:"by_priority"`
	ByDepartment    []DimensionBreakdown `json:"by_department"`
	ByCategory      []DimensionBreakdown `json:"by_category"`
	Summary         string               `json:"summary"`
	RecentIncidents []IncidentRecord     `json:"recent_incidents"`
	Warnings        []DataQualityWarning `json:"warnings,omitempty"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

// ReportRun records one completed report generation
type ReportRun struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Format         string    `json:"format"`
	OutputPath     string    `json:"output_path"`
	TotalIncidents int       `json:"total_incidents"`
	CreatedAt      time.Time `json:"created_at"`
}
