package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/YGJH/backend-test/internal/weather"
	"github.com/sony/gobreaker"
)

const (
	DefaultGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"
	DefaultLanguage   = "zh-TW"

	adminLevel1 = "administrative_area_level_1"
)

// GoogleGeocoder implements weather.CityResolver with the Google Geocoding API.
// The language defaults to zh-TW so that area names come back in the same form
// the CWA datasets use.
type GoogleGeocoder struct {
	name     string
	apiKey   string
	baseURL  string
	language string
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
}

func NewGoogleGeocoder(client *http.Client, apiKey, baseURL, language string) *GoogleGeocoder {
	if baseURL == "" {
		baseURL = DefaultGeocodeURL
	}
	if language == "" {
		language = DefaultLanguage
	}
	return &GoogleGeocoder{
		name:     "geocoder",
		apiKey:   apiKey,
		baseURL:  baseURL,
		language: language,
		client:   client,
		circuit:  newCircuit("google-geocode"),
	}
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// ResolveCity returns the first-level administrative area of the first result.
// A non-OK status or a result without such a component is weather.ErrLocationNotFound.
func (g *GoogleGeocoder) ResolveCity(ctx context.Context, lat, lon float64) (string, error) {
	if g.apiKey == "" {
		return "", weather.UpstreamError(g.name, errors.New("google maps api key is not configured"))
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latlng", fmt.Sprintf("%f,%f", lat, lon))
		values.Set("language", g.language)
		values.Set("key", g.apiKey)

		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", g.baseURL, values.Encode()), nil)
	}

	body, err := doRequest(ctx, g.client, g.circuit, buildRequest)
	if err != nil {
		return "", weather.UpstreamError(g.name, err)
	}

	var payload geocodeResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", weather.UpstreamError(g.name, err)
	}

	if payload.Status != "OK" {
		return "", fmt.Errorf("%w: geocoder status %s %s", weather.ErrLocationNotFound, payload.Status, payload.ErrorMessage)
	}
	if len(payload.Results) == 0 {
		return "", fmt.Errorf("%w: no results for (%f, %f)", weather.ErrLocationNotFound, lat, lon)
	}

	for _, comp := range payload.Results[0].AddressComponents {
		for _, t := range comp.Types {
			if t == adminLevel1 && comp.LongName != "" {
				return comp.LongName, nil
			}
		}
	}

	return "", fmt.Errorf("%w: no %s in %q", weather.ErrLocationNotFound, adminLevel1, payload.Results[0].FormattedAddress)
}
