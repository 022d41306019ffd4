package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/YGJH/backend-test/internal/weather"
)

const schema = `
	CREATE TABLE IF NOT EXISTS advice_history (
		id           UUID PRIMARY KEY,
		city         TEXT NOT NULL,
		weather      TEXT NOT NULL,
		pop          TEXT NOT NULL,
		min_temp     TEXT NOT NULL,
		max_temp     TEXT NOT NULL,
		forecast     TEXT NOT NULL,
		advice       TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL
	)`

// PostgresHistory implements weather.AdviceHistory
type PostgresHistory struct {
	pool *pgxpool.Pool
}

// NewPostgresHistory creates the history table if needed.
func NewPostgresHistory(ctx context.Context, pool *pgxpool.Pool) (*PostgresHistory, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("history: failed to create table: %w", err)
	}
	return &PostgresHistory{pool: pool}, nil
}

// Save appends one advice entry
func (h *PostgresHistory) Save(ctx context.Context, entry weather.AdviceEntry) error {
	query := `
		INSERT INTO advice_history (
			id, city, weather, pop, min_temp, max_temp, forecast, advice, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := h.pool.Exec(ctx, query,
		uuid.New(),
		entry.City,
		entry.Current.Weather,
		entry.Current.PoP,
		entry.Current.MinTemp,
		entry.Current.MaxTemp,
		entry.Forecast,
		entry.Advice,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("history: failed to save advice: %w", err)
	}
	return nil
}

// Health checks database connectivity
func (h *PostgresHistory) Health(ctx context.Context) error {
	return h.pool.Ping(ctx)
}
