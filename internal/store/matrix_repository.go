package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minsuk/revpulse/internal/engine"
)

// MatrixRepository persists the raw revenue matrix
type MatrixRepository struct {
	pool *pgxpool.Pool
}

// NewMatrixRepository creates a new matrix repository
func NewMatrixRepository(pool *pgxpool.Pool) *MatrixRepository {
	return &MatrixRepository{pool: pool}
}

// ReplaceMatrix atomically swaps the stored matrix for the given records.
// Input order is preserved via the position column.
func (r *MatrixRepository) ReplaceMatrix(ctx context.Context, records []engine.CustomerRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM revenue.customers`); err != nil {
		return fmt.Errorf("failed to clear matrix: %w", err)
	}

	for pos, record := range records {
		_, err := tx.Exec(ctx, `
			INSERT INTO revenue.customers (name, start_date, end_date, position)
			VALUES ($1, $2, $3, $4)
		`, record.Name, record.StartDate, record.EndDate, pos)
		if err != nil {
			return fmt.Errorf("failed to insert customer %q: %w", record.Name, err)
		}

		batch := &pgx.Batch{}
		for month, raw := range record.Revenue {
			batch.Queue(`
				INSERT INTO revenue.monthly_revenue (customer_name, month, raw_value)
				VALUES ($1, $2, $3)
			`, record.Name, month, fmt.Sprintf("%v", raw))
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert revenue for %q: %w", record.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit matrix: %w", err)
	}

	return nil
}

// LoadRecords reads the stored matrix back in input order
func (r *MatrixRepository) LoadRecords(ctx context.Context) ([]engine.CustomerRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.name, c.start_date, c.end_date, m.month, m.raw_value
		FROM revenue.customers c
		JOIN revenue.monthly_revenue m ON m.customer_name = c.name
		ORDER BY c.position, m.month
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query matrix: %w", err)
	}
	defer rows.Close()

	var records []engine.CustomerRecord
	index := make(map[string]int)

	for rows.Next() {
		var name, startDate, endDate, month, raw string
		if err := rows.Scan(&name, &startDate, &endDate, &month, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan matrix row: %w", err)
		}

		i, ok := index[name]
		if !ok {
			i = len(records)
			index[name] = i
			records = append(records, engine.CustomerRecord{
				Name:      name,
				StartDate: startDate,
				EndDate:   endDate,
				Revenue:   make(map[string]any),
			})
		}
		records[i].Revenue[month] = raw
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read matrix rows: %w", err)
	}

	return records, nil
}

// LoadMatrix reads and validates the stored matrix
func (r *MatrixRepository) LoadMatrix(ctx context.Context) (*engine.Matrix, error) {
	records, err := r.LoadRecords(ctx)
	if err != nil {
		return nil, err
	}

	matrix, err := engine.NewMatrix(records)
	if err != nil {
		return nil, fmt.Errorf("stored matrix is invalid: %w", err)
	}
	return matrix, nil
}
