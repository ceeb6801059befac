package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minsuk/revpulse/internal/engine"
)

// ReportRepository persists computed report snapshots for history
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// SaveSnapshot stores one computed report
func (r *ReportRepository) SaveSnapshot(ctx context.Context, report *engine.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO revenue.report_snapshots (generated_at, report)
		VALUES ($1, $2)
	`, report.GeneratedAt, data)
	if err != nil {
		return fmt.Errorf("failed to save report snapshot: %w", err)
	}

	return nil
}

// LatestSnapshot returns the most recent stored report, or nil when none
// has been saved yet
func (r *ReportRepository) LatestSnapshot(ctx context.Context) (*engine.Report, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `
		SELECT report
		FROM revenue.report_snapshots
		ORDER BY generated_at DESC, id DESC
		LIMIT 1
	`).Scan(&data)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}

	var report engine.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &report, nil
}
