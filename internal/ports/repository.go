package ports

import (
	"context"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/domain"
)

// ReportRunRepository persists metadata about completed report runs.
// Recording is best effort: failures are logged, never fatal.
type ReportRunRepository interface {
	// Save records a completed run
	Save(ctx context.Context, run *domain.ReportRun) error

	// FindByID retrieves one run
	FindByID(ctx context.Context, id string) (*domain.ReportRun, error)

	// List retrieves the most recent runs, newest first
	List(ctx context.Context, limit int) ([]*domain.ReportRun, error)
}
