package history

import (
	"context"

	"github.com/YGJH/backend-test/internal/weather"
)

// Store is an advice history that can report its own health.
type Store interface {
	weather.AdviceHistory
	Health(ctx context.Context) error
}

// NopHistory implements weather.AdviceHistory when no database is configured
type NopHistory struct{}

// Save is a no-op
func (NopHistory) Save(ctx context.Context, entry weather.AdviceEntry) error {
	return nil
}

// Health always returns nil
func (NopHistory) Health(ctx context.Context) error {
	return nil
}
