package weather

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/YGJH/backend-test/internal/store"
)

type stubCurrent struct {
	raw []byte
	err error
}

func (s *stubCurrent) FetchCurrent(ctx context.Context) (*CurrentSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	snap, err := ParseCurrent(s.raw)
	if err != nil {
		return nil, UpstreamError("stub", err)
	}
	return snap, nil
}

type stubForecast struct {
	raw []byte
	err error
}

func (s *stubForecast) FetchForecast(ctx context.Context) (*ForecastSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	snap, err := ParseForecast(s.raw)
	if err != nil {
		return nil, UpstreamError("stub", err)
	}
	return snap, nil
}

type stubGeocoder struct {
	city string
	err  error
}

func (g stubGeocoder) ResolveCity(ctx context.Context, lat, lon float64) (string, error) {
	return g.city, g.err
}

type stubAdvisor struct {
	mu   sync.Mutex
	seen []Record
}

func (a *stubAdvisor) Generate(ctx context.Context, rec Record) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seen = append(a.seen, rec)
	return "wear a light jacket"
}

type recordingHistory struct {
	mu      sync.Mutex
	entries []AdviceEntry
}

func (h *recordingHistory) Save(ctx context.Context, entry AdviceEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	return nil
}

var errBoom = errors.New("connection refused")

func newTestService(cur CurrentFetcher, fc ForecastFetcher, st SnapshotStore) (*Service, *stubAdvisor) {
	adv := &stubAdvisor{}
	svc := NewService(ServiceConfig{
		Current:  cur,
		Forecast: fc,
		Geocoder: stubGeocoder{city: "Taipei City"},
		Store:    st,
		Advisor:  adv,
		Timeout:  time.Second,
	})
	return svc, adv
}

func TestAdviseLiveWritesThrough(t *testing.T) {
	fcRaw := forecastDoc(forecastOpts{city: "Taipei City", points: 24})
	st := store.NewMemoryStore()
	svc, adv := newTestService(&stubCurrent{raw: []byte(taipeiCurrent)}, &stubForecast{raw: fcRaw}, st)

	report, err := svc.Advise(context.Background(), "Taipei City")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.CurrentSource != SourceLive || report.ForecastSource != SourceLive {
		t.Fatalf("expected live sources, got %s/%s", report.CurrentSource, report.ForecastSource)
	}
	if report.Advice != "wear a light jacket" {
		t.Fatalf("unexpected advice %q", report.Advice)
	}
	if len(report.ForecastDays) != 3 {
		t.Fatalf("expected 3 forecast days, got %d", len(report.ForecastDays))
	}
	if len(adv.seen) != 1 || adv.seen[0].City != "Taipei City" {
		t.Fatalf("advisor did not receive the record: %+v", adv.seen)
	}

	cur, err := st.Load(store.KindCurrent)
	if err != nil || string(cur) != taipeiCurrent {
		t.Fatalf("expected current snapshot to be written verbatim, got %s (%v)", cur, err)
	}
	fc, err := st.Load(store.KindForecast)
	if err != nil || string(fc) != string(fcRaw) {
		t.Fatalf("expected forecast snapshot to be written verbatim (%v)", err)
	}
}

func TestAdviseFallsBackToSnapshot(t *testing.T) {
	st := store.NewMemoryStore()
	_ = st.Save(store.KindCurrent, []byte(taipeiCurrent))
	_ = st.Save(store.KindForecast, forecastDoc(forecastOpts{city: "Taipei City", points: 24}))

	svc, _ := newTestService(
		&stubCurrent{err: UpstreamError("cwa", errBoom)},
		&stubForecast{err: UpstreamError("cwa", errBoom)},
		st,
	)

	report, err := svc.Advise(context.Background(), "Taipei City")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.CurrentSource != SourceSnapshot || report.ForecastSource != SourceSnapshot {
		t.Fatalf("expected snapshot sources, got %s/%s", report.CurrentSource, report.ForecastSource)
	}
	if report.Current.Weather != "Cloudy" {
		t.Fatalf("unexpected current conditions %+v", report.Current)
	}
}

func TestAdviseFailedFetchKeepsSnapshot(t *testing.T) {
	st := store.NewMemoryStore()
	_ = st.Save(store.KindCurrent, []byte(taipeiCurrent))

	svc, _ := newTestService(
		&stubCurrent{raw: []byte(`{"success":"false"}`)},
		&stubForecast{err: UpstreamError("cwa", errBoom)},
		st,
	)

	if _, err := svc.Advise(context.Background(), "Taipei City"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := st.Load(store.KindCurrent)
	if err != nil || string(raw) != taipeiCurrent {
		t.Fatalf("malformed live payload must not overwrite the snapshot, got %s (%v)", raw, err)
	}
}

func TestAdviseNoSnapshot(t *testing.T) {
	svc, _ := newTestService(
		&stubCurrent{err: UpstreamError("cwa", errBoom)},
		&stubForecast{err: UpstreamError("cwa", errBoom)},
		store.NewMemoryStore(),
	)

	_, err := svc.Advise(context.Background(), "Taipei City")
	if !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected the upstream cause to be preserved, got %v", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Fatalf("did not expect a timeout, got %v", err)
	}
}

func TestAdviseTimeoutWithoutSnapshot(t *testing.T) {
	svc, _ := newTestService(
		&stubCurrent{err: UpstreamError("cwa", context.DeadlineExceeded)},
		&stubForecast{err: UpstreamError("cwa", context.DeadlineExceeded)},
		store.NewMemoryStore(),
	)

	_, err := svc.Advise(context.Background(), "Taipei City")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestAdviseCorruptSnapshot(t *testing.T) {
	st := store.NewMemoryStore()
	_ = st.Save(store.KindCurrent, []byte(`{"records":`))

	svc, _ := newTestService(
		&stubCurrent{err: UpstreamError("cwa", errBoom)},
		&stubForecast{raw: forecastDoc(forecastOpts{city: "Taipei City", points: 24})},
		st,
	)

	_, err := svc.Advise(context.Background(), "Taipei City")
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("expected ErrCorruptSnapshot, got %v", err)
	}
	if errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("corrupt snapshot must be distinct from a missing one")
	}
}

func TestAdviseUnparsableStoredSnapshot(t *testing.T) {
	st := store.NewMemoryStore()
	_ = st.Save(store.KindCurrent, []byte(`{"records":{"location":[]}}`))

	svc, _ := newTestService(
		&stubCurrent{err: UpstreamError("cwa", errBoom)},
		&stubForecast{raw: forecastDoc(forecastOpts{city: "Taipei City", points: 24})},
		st,
	)

	_, err := svc.Advise(context.Background(), "Taipei City")
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("expected ErrCorruptSnapshot, got %v", err)
	}
}

func TestAdviseForecastMissingDegrades(t *testing.T) {
	svc, _ := newTestService(
		&stubCurrent{raw: []byte(taipeiCurrent)},
		&stubForecast{err: UpstreamError("cwa", errBoom)},
		store.NewMemoryStore(),
	)

	report, err := svc.Advise(context.Background(), "Taipei City")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ForecastAvailable || report.ForecastSource != SourceNone {
		t.Fatalf("expected degraded forecast, got %+v", report)
	}
	if report.Current.MaxTemp != "25" {
		t.Fatalf("unexpected current conditions %+v", report.Current)
	}
}

func TestAdviseForecastCityMissingDegrades(t *testing.T) {
	svc, _ := newTestService(
		&stubCurrent{raw: []byte(taipeiCurrent)},
		&stubForecast{raw: forecastDoc(forecastOpts{city: "Tainan City", points: 24})},
		store.NewMemoryStore(),
	)

	report, err := svc.Advise(context.Background(), "Taipei City")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ForecastAvailable || report.Forecast != "" || report.ForecastSource != SourceNone {
		t.Fatalf("expected degraded forecast, got %+v", report)
	}
}

func TestAdviseCityNotFound(t *testing.T) {
	svc, adv := newTestService(
		&stubCurrent{raw: []byte(taipeiCurrent)},
		&stubForecast{raw: forecastDoc(forecastOpts{city: "Taipei City", points: 24})},
		store.NewMemoryStore(),
	)

	_, err := svc.Advise(context.Background(), "Nonexistent City")
	if !errors.Is(err, ErrCityNotFound) {
		t.Fatalf("expected ErrCityNotFound, got %v", err)
	}
	if len(adv.seen) != 0 {
		t.Fatalf("advisor must not be called when resolution fails")
	}
}

func TestAdviseAtGeocodes(t *testing.T) {
	svc, _ := newTestService(
		&stubCurrent{raw: []byte(taipeiCurrent)},
		&stubForecast{raw: forecastDoc(forecastOpts{city: "Taipei City", points: 24})},
		store.NewMemoryStore(),
	)

	report, err := svc.AdviseAt(context.Background(), 25.04, 121.56)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.City != "Taipei City" {
		t.Fatalf("expected Taipei City, got %q", report.City)
	}
}

func TestAdviseAtGeocodeNotFound(t *testing.T) {
	svc := NewService(ServiceConfig{
		Current:  &stubCurrent{raw: []byte(taipeiCurrent)},
		Forecast: &stubForecast{raw: forecastDoc(forecastOpts{city: "Taipei City", points: 24})},
		Geocoder: stubGeocoder{err: ErrLocationNotFound},
		Store:    store.NewMemoryStore(),
	})

	_, err := svc.AdviseAt(context.Background(), 0, 0)
	if !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
}

func TestAdviseWithoutAdvisorUsesFallback(t *testing.T) {
	svc := NewService(ServiceConfig{
		Current:  &stubCurrent{raw: []byte(taipeiCurrent)},
		Forecast: &stubForecast{raw: forecastDoc(forecastOpts{city: "Taipei City", points: 24})},
		Store:    store.NewMemoryStore(),
	})

	report, err := svc.Advise(context.Background(), "Taipei City")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Advice != FallbackAdvice {
		t.Fatalf("expected fallback advice, got %q", report.Advice)
	}
}

func TestAdviseRecordsHistory(t *testing.T) {
	hist := &recordingHistory{}
	svc := NewService(ServiceConfig{
		Current:  &stubCurrent{raw: []byte(taipeiCurrent)},
		Forecast: &stubForecast{raw: forecastDoc(forecastOpts{city: "Taipei City", points: 24})},
		Store:    store.NewMemoryStore(),
		Advisor:  &stubAdvisor{},
		History:  hist,
	})

	if _, err := svc.Advise(context.Background(), "Taipei City"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc.Wait()

	if len(hist.entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(hist.entries))
	}
	if hist.entries[0].City != "Taipei City" || hist.entries[0].Advice != "wear a light jacket" {
		t.Fatalf("unexpected history entry %+v", hist.entries[0])
	}
}

func TestRefreshIsIndependent(t *testing.T) {
	st := store.NewMemoryStore()
	svc, _ := newTestService(
		&stubCurrent{err: UpstreamError("cwa", errBoom)},
		&stubForecast{raw: forecastDoc(forecastOpts{city: "Taipei City", points: 24})},
		st,
	)

	err := svc.Refresh(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected the current failure to be reported, got %v", err)
	}
	if _, err := st.Load(store.KindForecast); err != nil {
		t.Fatalf("expected forecast to be saved despite current failure: %v", err)
	}
	if _, err := st.Load(store.KindCurrent); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no current snapshot, got %v", err)
	}
}

func TestCurrentDocument(t *testing.T) {
	st := store.NewMemoryStore()
	_ = st.Save(store.KindCurrent, []byte(taipeiCurrent))
	svc, _ := newTestService(&stubCurrent{err: UpstreamError("cwa", errBoom)}, nil, st)

	raw, src, err := svc.CurrentDocument(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src != SourceSnapshot || string(raw) != taipeiCurrent {
		t.Fatalf("expected stored document, got %s from %s", raw, src)
	}
}
