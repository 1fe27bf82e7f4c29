package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stonksapi/backend/internal/market"
)

// Repository persists served forecasts so prediction accuracy can be
// reviewed once the forecast horizon has passed. Persistence is
// best-effort: the serving path logs and continues when a write fails.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a forecast repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// StoredForecast is one persisted forecast row.
type StoredForecast struct {
	ID          int64           `json:"id"`
	Symbol      string          `json:"symbol"`
	Interval    market.Interval `json:"interval"`
	Prices      []float64       `json:"prices"`
	Timestamps  []time.Time     `json:"timestamps"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// SaveForecast inserts one served forecast.
func (r *Repository) SaveForecast(ctx context.Context, f *Forecast) error {
	query := `
		INSERT INTO forecasts (symbol, interval, prices, timestamps, generated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		f.Symbol, string(f.Interval), f.Prices, f.Timestamps, f.GeneratedAt)
	if err != nil {
		return fmt.Errorf("insert forecast: %w", err)
	}

	return nil
}

// RecentForecasts returns the latest forecasts for a symbol, newest first.
func (r *Repository) RecentForecasts(ctx context.Context, symbol string, limit int) ([]StoredForecast, error) {
	query := `
		SELECT id, symbol, interval, prices, timestamps, generated_at
		FROM forecasts
		WHERE symbol = $1
		ORDER BY generated_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query forecasts: %w", err)
	}
	defer rows.Close()

	var out []StoredForecast
	for rows.Next() {
		var f StoredForecast
		var interval string
		if err := rows.Scan(&f.ID, &f.Symbol, &interval, &f.Prices, &f.Timestamps, &f.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan forecast row: %w", err)
		}
		f.Interval = market.Interval(interval)
		out = append(out, f)
	}

	return out, rows.Err()
}

// EnsureSchema creates the forecasts table when it does not exist.
// Called once at startup when history persistence is enabled.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS forecasts (
			id           BIGSERIAL PRIMARY KEY,
			symbol       TEXT NOT NULL,
			interval     TEXT NOT NULL,
			prices       DOUBLE PRECISION[] NOT NULL,
			timestamps   TIMESTAMPTZ[] NOT NULL,
			generated_at TIMESTAMPTZ NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_forecasts_symbol_generated
			ON forecasts (symbol, generated_at DESC);`

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure forecasts schema: %w", err)
	}

	return nil
}
