package weather

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

const (
	// ForecastStride is the sampling step over the forecast series; one sample per day.
	ForecastStride = 8
	// MaxForecastDays caps the number of sampled entries.
	MaxForecastDays = 3
	// ForecastDelimiter separates days in the composite forecast text.
	ForecastDelimiter = "\n"
	// Placeholder stands in for supplementary values the payload does not carry.
	Placeholder = "N/A"
)

// Element identifiers for the current-conditions dataset.
var (
	elemWx   = []string{"Wx"}
	elemPoP  = []string{"PoP"}
	elemMinT = []string{"MinT"}
	elemMaxT = []string{"MaxT"}
)

// Element identifiers and value keys for the forecast dataset. The localized names
// come first; the English codes match the older version of the dataset.
var (
	seriesPhenomenon  = []string{"天氣現象", "Wx"}
	seriesDescription = []string{"天氣預報綜合描述", "WeatherDescription"}
	seriesTemperature = []string{"溫度", "T"}
	seriesApparent    = []string{"體感溫度", "AT"}

	keyPhenomenon  = []string{"Weather", "value"}
	keyDescription = []string{"WeatherDescription", "value"}
	keyTemperature = []string{"Temperature", "value"}
	keyApparent    = []string{"ApparentTemperature", "value"}
)

// Resolver extracts a single city's normalized fields out of nationwide snapshots.
// Apart from the timestamp, its output depends only on its inputs.
type Resolver struct {
	now func() time.Time
}

// NewResolver creates a Resolver stamping records with the wall clock.
func NewResolver() *Resolver {
	return &Resolver{now: time.Now}
}

// Resolve builds the record for city. The current snapshot is consulted first and a miss
// there fails without looking at the forecast. A city missing from the forecast, or a nil
// forecast snapshot, yields a record with no forecast days and ForecastAvailable unset.
func (r *Resolver) Resolve(city string, current *CurrentSnapshot, forecast *ForecastSnapshot) (Record, error) {
	cond, err := r.ResolveCurrent(city, current)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		City:         city,
		Current:      cond,
		ForecastDays: []ForecastDay{},
		Timestamp:    r.now(),
	}

	if forecast == nil {
		return rec, nil
	}

	days, err := r.ResolveForecast(city, forecast)
	if err != nil {
		if errors.Is(err, ErrCityNotFound) {
			log.Printf("INFO: weather: %s has no forecast entry; returning current conditions only", city)
			return rec, nil
		}
		return Record{}, err
	}

	rec.ForecastDays = days
	rec.Forecast = FormatForecast(days)
	rec.ForecastAvailable = true
	return rec, nil
}

// ResolveCurrent extracts Wx, PoP, MinT and MaxT for city, taking each element's first value.
func (r *Resolver) ResolveCurrent(city string, snap *CurrentSnapshot) (CurrentConditions, error) {
	loc, ok := snap.Location(city)
	if !ok {
		return CurrentConditions{}, fmt.Errorf("%w: %q in current weather", ErrCityNotFound, city)
	}

	var (
		cond    CurrentConditions
		targets = []struct {
			names []string
			dst   *string
		}{
			{elemWx, &cond.Weather},
			{elemPoP, &cond.PoP},
			{elemMinT, &cond.MinTemp},
			{elemMaxT, &cond.MaxTemp},
		}
	)

	for _, t := range targets {
		el, ok := loc.Element(t.names...)
		if !ok || len(el.Time) == 0 || el.Time[0].Parameter.ParameterName == "" {
			log.Printf("ERROR: weather: %s current weather lacks %s; elements present: %v",
				city, t.names[0], loc.elementNames())
			return CurrentConditions{}, fmt.Errorf("%w: %s for %q", ErrElementMissing, t.names[0], city)
		}
		*t.dst = el.Time[0].Parameter.ParameterName
	}

	return cond, nil
}

// ResolveForecast samples the phenomenon series every ForecastStride entries, up to
// MaxForecastDays, pulling the other series at the same index. Phenomenon and temperature
// are required; a missing description falls back to the phenomenon text and a missing
// apparent temperature to Placeholder.
func (r *Resolver) ResolveForecast(city string, snap *ForecastSnapshot) ([]ForecastDay, error) {
	loc, ok := snap.Location(city)
	if !ok {
		return nil, fmt.Errorf("%w: %q in forecast", ErrCityNotFound, city)
	}

	phenomenon, ok := loc.Element(seriesPhenomenon...)
	if !ok {
		return nil, r.missingSeries(city, seriesPhenomenon[0], loc)
	}
	temperature, ok := loc.Element(seriesTemperature...)
	if !ok {
		return nil, r.missingSeries(city, seriesTemperature[0], loc)
	}
	description, hasDescription := loc.Element(seriesDescription...)
	apparent, hasApparent := loc.Element(seriesApparent...)

	days := make([]ForecastDay, 0, MaxForecastDays)
	for i := 0; i < len(phenomenon.Time) && len(days) < MaxForecastDays; i += ForecastStride {
		slot := phenomenon.Time[i]

		wx, ok := slot.Value(keyPhenomenon...)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] for %q", ErrElementMissing, seriesPhenomenon[0], i, city)
		}

		if i >= len(temperature.Time) {
			return nil, fmt.Errorf("%w: %s[%d] for %q", ErrElementMissing, seriesTemperature[0], i, city)
		}
		temp, ok := temperature.Time[i].Value(keyTemperature...)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] for %q", ErrElementMissing, seriesTemperature[0], i, city)
		}

		desc := wx
		if hasDescription && i < len(description.Time) {
			if v, ok := description.Time[i].Value(keyDescription...); ok {
				desc = v
			}
		}

		feels := Placeholder
		if hasApparent && i < len(apparent.Time) {
			if v, ok := apparent.Time[i].Value(keyApparent...); ok {
				feels = v
			}
		}

		days = append(days, ForecastDay{
			Date:          slot.Date(),
			Description:   desc,
			Temp:          temp,
			FeelsLikeTemp: feels,
		})
	}

	return days, nil
}

func (r *Resolver) missingSeries(city, name string, loc *ForecastLocation) error {
	log.Printf("ERROR: weather: %s forecast lacks %s; elements present: %v", city, name, loc.elementNames())
	return fmt.Errorf("%w: %s for %q", ErrElementMissing, name, city)
}

// FormatForecast renders days as one line each.
func FormatForecast(days []ForecastDay) string {
	lines := make([]string, 0, len(days))
	for _, d := range days {
		feels := d.FeelsLikeTemp
		if feels != Placeholder {
			feels += "°C"
		}
		lines = append(lines, fmt.Sprintf("%s: %s, temperature %s°C, feels like %s",
			d.Date, d.Description, d.Temp, feels))
	}
	return strings.Join(lines, ForecastDelimiter)
}
