package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/YGJH/backend-test/internal/store"
)

// DefaultTimeout bounds every outbound call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// FallbackAdvice replaces advice that could not be generated.
const FallbackAdvice = "Clothing advice is temporarily unavailable. Please check the weather above and dress accordingly."

// fallbackAdvisor is used when no Advisor is configured.
type fallbackAdvisor struct{}

func (fallbackAdvisor) Generate(ctx context.Context, rec Record) string {
	return FallbackAdvice
}

// ServiceConfig wires the collaborators of a Service.
type ServiceConfig struct {
	Current  CurrentFetcher
	Forecast ForecastFetcher
	Geocoder CityResolver
	Store    SnapshotStore
	Advisor  Advisor       // optional, defaults to FallbackAdvice
	History  AdviceHistory // optional

	// Timeout applies to each outbound call separately.
	Timeout time.Duration
}

// Service runs the fetch, fallback, resolve and advise pipeline.
type Service struct {
	current  CurrentFetcher
	forecast ForecastFetcher
	geocoder CityResolver
	store    SnapshotStore
	resolver *Resolver
	advisor  Advisor
	history  AdviceHistory
	timeout  time.Duration

	wgBg sync.WaitGroup // tracks history writes
}

// NewService creates a new Service.
func NewService(cfg ServiceConfig) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	advisor := cfg.Advisor
	if advisor == nil {
		advisor = fallbackAdvisor{}
	}
	return &Service{
		current:  cfg.Current,
		forecast: cfg.Forecast,
		geocoder: cfg.Geocoder,
		store:    cfg.Store,
		resolver: NewResolver(),
		advisor:  advisor,
		history:  cfg.History,
		timeout:  timeout,
	}
}

// Wait blocks until pending history writes complete.
func (s *Service) Wait() {
	s.wgBg.Wait()
}

// AdviseAt geocodes the coordinates to a city and runs Advise for it.
func (s *Service) AdviseAt(ctx context.Context, lat, lon float64) (Report, error) {
	if s.geocoder == nil {
		return Report{}, UpstreamError("geocoder", errors.New("not configured"))
	}

	gctx, cancel := context.WithTimeout(ctx, s.timeout)
	city, err := s.geocoder.ResolveCity(gctx, lat, lon)
	cancel()
	if err != nil {
		return Report{}, err
	}

	log.Printf("DEBUG: weather: (%f, %f) resolved to %s", lat, lon, city)
	return s.Advise(ctx, city)
}

// Advise resolves the weather for city and asks the advisor what to wear.
func (s *Service) Advise(ctx context.Context, city string) (Report, error) {
	snaps := s.snapshots(ctx)

	if snaps.currentErr != nil {
		return Report{}, snaps.currentErr
	}

	// An absent forecast degrades the report; a broken one fails it.
	forecast := snaps.forecast
	if snaps.forecastErr != nil {
		if !errors.Is(snaps.forecastErr, ErrNoSnapshot) {
			return Report{}, snaps.forecastErr
		}
		log.Printf("INFO: weather: forecast unavailable, continuing without it: %v", snaps.forecastErr)
		forecast = nil
	}

	rec, err := s.resolver.Resolve(city, snaps.current, forecast)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Record:         rec,
		CurrentSource:  snaps.currentSource,
		ForecastSource: snaps.forecastSource,
	}
	if !rec.ForecastAvailable {
		report.ForecastSource = SourceNone
	}
	report.Advice = s.advisor.Generate(ctx, rec)

	s.recordHistory(report)
	return report, nil
}

// Refresh fetches both snapshots and writes through whatever succeeded.
// Both fetches run even if one fails.
func (s *Service) Refresh(ctx context.Context) error {
	var (
		wg               sync.WaitGroup
		curErr, fcastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, curErr = s.fetchCurrent(ctx)
	}()
	go func() {
		defer wg.Done()
		_, fcastErr = s.fetchForecast(ctx)
	}()
	wg.Wait()

	return errors.Join(curErr, fcastErr)
}

// CurrentDocument returns the current-conditions document verbatim, live when possible.
func (s *Service) CurrentDocument(ctx context.Context) ([]byte, Source, error) {
	snap, src, err := s.currentSnapshot(ctx)
	if err != nil {
		return nil, SourceNone, err
	}
	return snap.Raw, src, nil
}

type snapshotSet struct {
	current       *CurrentSnapshot
	currentSource Source
	currentErr    error

	forecast       *ForecastSnapshot
	forecastSource Source
	forecastErr    error
}

// snapshots obtains both snapshots concurrently; neither blocks the other.
func (s *Service) snapshots(ctx context.Context) snapshotSet {
	var (
		wg  sync.WaitGroup
		set snapshotSet
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		set.current, set.currentSource, set.currentErr = s.currentSnapshot(ctx)
	}()
	go func() {
		defer wg.Done()
		set.forecast, set.forecastSource, set.forecastErr = s.forecastSnapshot(ctx)
	}()
	wg.Wait()

	return set
}

func (s *Service) currentSnapshot(ctx context.Context) (*CurrentSnapshot, Source, error) {
	snap, fetchErr := s.fetchCurrent(ctx)
	if fetchErr == nil {
		return snap, SourceLive, nil
	}

	log.Printf("ERROR: weather: current fetch failed, falling back to snapshot: %v", fetchErr)
	raw, err := s.loadSnapshot(store.KindCurrent, fetchErr)
	if err != nil {
		return nil, SourceNone, err
	}
	snap, err = ParseCurrent(raw)
	if err != nil {
		return nil, SourceNone, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, store.KindCurrent, err)
	}
	return snap, SourceSnapshot, nil
}

func (s *Service) forecastSnapshot(ctx context.Context) (*ForecastSnapshot, Source, error) {
	snap, fetchErr := s.fetchForecast(ctx)
	if fetchErr == nil {
		return snap, SourceLive, nil
	}

	log.Printf("ERROR: weather: forecast fetch failed, falling back to snapshot: %v", fetchErr)
	raw, err := s.loadSnapshot(store.KindForecast, fetchErr)
	if err != nil {
		return nil, SourceNone, err
	}
	snap, err = ParseForecast(raw)
	if err != nil {
		return nil, SourceNone, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, store.KindForecast, err)
	}
	return snap, SourceSnapshot, nil
}

func (s *Service) fetchCurrent(ctx context.Context) (*CurrentSnapshot, error) {
	if s.current == nil {
		return nil, UpstreamError("current", errors.New("not configured"))
	}

	fctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snap, err := s.current.FetchCurrent(fctx)
	if err != nil {
		return nil, err
	}
	s.saveSnapshot(store.KindCurrent, snap.Raw)
	return snap, nil
}

func (s *Service) fetchForecast(ctx context.Context) (*ForecastSnapshot, error) {
	if s.forecast == nil {
		return nil, UpstreamError("forecast", errors.New("not configured"))
	}

	fctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snap, err := s.forecast.FetchForecast(fctx)
	if err != nil {
		return nil, err
	}
	s.saveSnapshot(store.KindForecast, snap.Raw)
	return snap, nil
}

// saveSnapshot writes through a fresh payload. A failed write is logged only;
// the live data is still good for this request.
func (s *Service) saveSnapshot(kind store.Kind, raw []byte) {
	if s.store == nil || len(raw) == 0 {
		return
	}
	if err := s.store.Save(kind, raw); err != nil {
		log.Printf("ERROR: weather: failed to save %s snapshot: %v", kind, err)
	}
}

func (s *Service) loadSnapshot(kind store.Kind, fetchErr error) ([]byte, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoSnapshot, kind, fetchErr)
	}

	raw, err := s.store.Load(kind)
	switch {
	case err == nil:
		return raw, nil
	case errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("%w: %s: %w", ErrNoSnapshot, kind, fetchErr)
	case errors.Is(err, store.ErrCorrupt):
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	default:
		return nil, fmt.Errorf("weather: load %s snapshot: %w", kind, err)
	}
}

func (s *Service) recordHistory(report Report) {
	if s.history == nil {
		return
	}

	entry := AdviceEntry{
		City:      report.City,
		Current:   report.Current,
		Forecast:  report.Forecast,
		Advice:    report.Advice,
		CreatedAt: report.Timestamp,
	}

	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.history.Save(ctx, entry); err != nil {
			log.Printf("ERROR: weather: failed to save advice history: %v", err)
		}
	}()
}
