package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/YGJH/backend-test/internal/weather"
	"github.com/sony/gobreaker"
)

const (
	DefaultCWABaseURL      = "https://opendata.cwa.gov.tw/api/v1/rest/datastore"
	DefaultCurrentDataset  = "F-C0032-001"
	DefaultForecastDataset = "F-D0047-089"
)

// CWAConfig configures the Central Weather Administration open-data client.
type CWAConfig struct {
	BaseURL         string
	APIKey          string
	CurrentDataset  string
	ForecastDataset string
}

// CWAProvider implements weather.CurrentFetcher and weather.ForecastFetcher against
// the CWA open-data datastore. The two datasets have separate breakers so one failing
// endpoint does not trip the other.
type CWAProvider struct {
	name            string
	baseURL         string
	apiKey          string
	currentDataset  string
	forecastDataset string
	client          *http.Client
	currentCircuit  *gobreaker.CircuitBreaker
	forecastCircuit *gobreaker.CircuitBreaker
}

func NewCWAProvider(client *http.Client, cfg CWAConfig) *CWAProvider {
	p := &CWAProvider{
		name:            "cwa",
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:          cfg.APIKey,
		currentDataset:  cfg.CurrentDataset,
		forecastDataset: cfg.ForecastDataset,
		client:          client,
		currentCircuit:  newCircuit("cwa-current"),
		forecastCircuit: newCircuit("cwa-forecast"),
	}
	if p.baseURL == "" {
		p.baseURL = DefaultCWABaseURL
	}
	if p.currentDataset == "" {
		p.currentDataset = DefaultCurrentDataset
	}
	if p.forecastDataset == "" {
		p.forecastDataset = DefaultForecastDataset
	}
	return p
}

func (p *CWAProvider) Name() string {
	return p.name
}

// FetchCurrent downloads and validates the current-conditions dataset.
func (p *CWAProvider) FetchCurrent(ctx context.Context) (*weather.CurrentSnapshot, error) {
	body, err := p.fetch(ctx, p.currentDataset, p.currentCircuit)
	if err != nil {
		return nil, err
	}

	snap, err := weather.ParseCurrent(body)
	if err != nil {
		return nil, weather.UpstreamError(p.name, fmt.Errorf("%s: %w", p.currentDataset, err))
	}
	return snap, nil
}

// FetchForecast downloads and validates the forecast dataset.
func (p *CWAProvider) FetchForecast(ctx context.Context) (*weather.ForecastSnapshot, error) {
	body, err := p.fetch(ctx, p.forecastDataset, p.forecastCircuit)
	if err != nil {
		return nil, err
	}

	snap, err := weather.ParseForecast(body)
	if err != nil {
		return nil, weather.UpstreamError(p.name, fmt.Errorf("%s: %w", p.forecastDataset, err))
	}
	return snap, nil
}

func (p *CWAProvider) fetch(ctx context.Context, dataset string, cb *gobreaker.CircuitBreaker) ([]byte, error) {
	if p.apiKey == "" {
		return nil, weather.UpstreamError(p.name, errors.New("cwa api key is not configured"))
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("Authorization", p.apiKey)
		values.Set("format", "JSON")

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, url.PathEscape(dataset), values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	body, err := doRequest(ctx, p.client, cb, buildRequest)
	if err != nil {
		return nil, weather.UpstreamError(p.name, fmt.Errorf("%s: %w", dataset, err))
	}
	return body, nil
}
