package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/domain"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/ports"
)

// MemoryReportRunRepository keeps run metadata in memory. Used when no
// database is configured and in tests.
type MemoryReportRunRepository struct {
	mu   sync.RWMutex
	runs map[string]*domain.ReportRun
}

// NewMemoryReportRunRepository creates an in-memory run repository
func NewMemoryReportRunRepository() *MemoryReportRunRepository {
	return &MemoryReportRunRepository{runs: make(map[string]*domain.ReportRun)}
}

// Save records a completed run
func (r *MemoryReportRunRepository) Save(ctx context.Context, run *domain.ReportRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *run
	r.runs[run.ID] = &copied
	return nil
}

// FindByID retrieves one run
func (r *MemoryReportRunRepository) FindByID(ctx context.Context, id string) (*domain.ReportRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	copied := *run
	return &copied, nil
}

// List retrieves the most recent runs, newest first
func (r *MemoryReportRunRepository) List(ctx context.Context, limit int) ([]*domain.ReportRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runs := make([]*domain.ReportRun, 0, len(r.runs))
	for _, run := range r.runs {
		copied := *run
		runs = append(runs, &copied)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

var _ ports.ReportRunRepository = (*MemoryReportRunRepository)(nil)
