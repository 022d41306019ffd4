package weather

import (
	"context"

	"github.com/YGJH/backend-test/internal/store"
)

// CurrentFetcher fetches the nationwide current-conditions snapshot.
type CurrentFetcher interface {
	FetchCurrent(ctx context.Context) (*CurrentSnapshot, error)
}

// ForecastFetcher fetches the nationwide forecast snapshot.
type ForecastFetcher interface {
	FetchForecast(ctx context.Context) (*ForecastSnapshot, error)
}

// CityResolver maps coordinates to a first-level administrative area name.
type CityResolver interface {
	ResolveCity(ctx context.Context, lat, lon float64) (string, error)
}

// Advisor turns a resolved record into clothing advice. It never fails;
// upstream problems are absorbed into a fallback phrase.
type Advisor interface {
	Generate(ctx context.Context, rec Record) string
}

// SnapshotStore is the contract both the file store and the in-memory store satisfy.
type SnapshotStore interface {
	Save(kind store.Kind, data []byte) error
	Load(kind store.Kind) ([]byte, error)
}

// AdviceHistory records generated advice.
type AdviceHistory interface {
	Save(ctx context.Context, entry AdviceEntry) error
}
