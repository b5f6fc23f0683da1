package report

import (
	"fmt"
	"sort"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/domain"
)

// accessor extracts the grouping key for one dimension
type accessor func(*domain.IncidentRecord) string

func dimensionAccessor(dim domain.Dimension) (accessor, error) {
	switch dim {
	case domain.DimensionPriority:
		return func(r *domain.IncidentRecord) string { return r.Priority }, nil
	case domain.DimensionDepartment:
		return func(r *domain.IncidentRecord) string { return r.Department }, nil
	case domain.DimensionCategory:
		return func(r *domain.IncidentRecord) string { return r.Category }, nil
	default:
		return nil, fmt.Errorf("unknown dimension %q", dim)
	}
}

type rollup struct {
	total       int
	resolved    int
	slaBreached int
	hoursSum    float64
	eligible    int
}

// BreakDown groups the batch by the chosen dimension and computes one rollup
// row per distinct value observed in the data. No fixed universe of values is
// assumed. Rows are ordered by descending total, ties broken by key, so
// output is deterministic across runs. The priority dimension additionally
// carries a per-group resolution-time mean using the same exclusion rule as
// the global aggregate.
func BreakDown(records []domain.IncidentRecord, dim domain.Dimension) ([]domain.DimensionBreakdown, error) {
	key, err := dimensionAccessor(dim)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*rollup)
	order := make([]string, 0) // first-seen order keeps float accumulation deterministic
	for i := range records {
		r := &records[i]
		k := key(r)
		g, ok := groups[k]
		if !ok {
			g = &rollup{}
			groups[k] = g
			order = append(order, k)
		}
		g.total++
		if r.IsResolved() {
			g.resolved++
		}
		if !r.WithinSLA() {
			g.slaBreached++
		}
		if d, ok := r.ResolutionTime(); ok {
			g.hoursSum += d.Hours()
			g.eligible++
		}
	}

	withAvg := dim == domain.DimensionPriority
	rows := make([]domain.DimensionBreakdown, 0, len(order))
	for _, k := range order {
		g := groups[k]
		row := domain.DimensionBreakdown{
			Key:         k,
			Total:       g.total,
			Resolved:    g.resolved,
			Unresolved:  g.total - g.resolved,
			SLABreached: g.slaBreached,
		}
		if g.total > 0 {
			row.ComplianceRate = float64(g.total-g.slaBreached) / float64(g.total) * 100
		}
		if withAvg {
			avg := 0.0
			if g.eligible > 0 {
				avg = g.hoursSum / float64(g.eligible)
			}
			row.AvgResolutionTimeHours = &avg
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Key < rows[j].Key
	})

	return rows, nil
}
