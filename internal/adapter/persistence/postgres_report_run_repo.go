package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/domain"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/ports"
)

// ErrRunNotFound is returned when no run matches the requested ID
var ErrRunNotFound = fmt.Errorf("report run not found")

// PostgresReportRunRepository persists report run metadata in PostgreSQL
type PostgresReportRunRepository struct {
	db *sql.DB
}

// NewPostgresReportRunRepository creates a new PostgreSQL run repository
func NewPostgresReportRunRepository(db *sql.DB) *PostgresReportRunRepository {
	return &PostgresReportRunRepository{db: db}
}

// EnsureSchema creates the report_runs table when it does not exist yet
func (r *PostgresReportRunRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS report_runs (
			id              TEXT PRIMARY KEY,
			title           TEXT NOT NULL,
			format          TEXT NOT NULL,
			output_path     TEXT NOT NULL,
			total_incidents INTEGER NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure report_runs schema: %w", err)
	}
	return nil
}

// Save records a completed run
func (r *PostgresReportRunRepository) Save(ctx context.Context, run *domain.ReportRun) error {
	query := `
		INSERT INTO report_runs (id, title, format, output_path, total_incidents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Title,
		run.Format,
		run.OutputPath,
		run.TotalIncidents,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save report run: %w", err)
	}
	return nil
}

// FindByID retrieves one run
func (r *PostgresReportRunRepository) FindByID(ctx context.Context, id string) (*domain.ReportRun, error) {
	query := `
		SELECT id, title, format, output_path, total_incidents, created_at
		FROM report_runs
		WHERE id = $1
	`
	var run domain.ReportRun
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.Title,
		&run.Format,
		&run.OutputPath,
		&run.TotalIncidents,
		&run.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to find report run: %w", err)
	}
	return &run, nil
}

// List retrieves the most recent runs, newest first
func (r *PostgresReportRunRepository) List(ctx context.Context, limit int) ([]*domain.ReportRun, error) {
	query := `
		SELECT id, title, format, output_path, total_incidents, created_at
		FROM report_runs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list report runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*domain.ReportRun, 0)
	for rows.Next() {
		var run domain.ReportRun
		if err := rows.Scan(
			&run.ID,
			&run.Title,
			&run.Format,
			&run.OutputPath,
			&run.TotalIncidents,
			&run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report run: %w", err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate report runs: %w", err)
	}
	return runs, nil
}

// verify interface conformance
var _ ports.ReportRunRepository = (*PostgresReportRunRepository)(nil)
