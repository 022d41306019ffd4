package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CurrentSnapshot is the nationwide current-conditions payload (CWA dataset F-C0032-001).
// Raw keeps the provider document verbatim so it can be persisted unchanged.
type CurrentSnapshot struct {
	Success string `json:"success"`
	Records struct {
		Location []CurrentLocation `json:"location"`
	} `json:"records"`

	Raw []byte `json:"-"`
}

// CurrentLocation is one administrative area inside a CurrentSnapshot.
type CurrentLocation struct {
	LocationName   string           `json:"locationName"`
	WeatherElement []CurrentElement `json:"weatherElement"`
}

// CurrentElement is a named, time-indexed element such as Wx or PoP.
type CurrentElement struct {
	ElementName string        `json:"elementName"`
	Time        []CurrentTime `json:"time"`
}

type CurrentTime struct {
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Parameter Parameter `json:"parameter"`
}

type Parameter struct {
	ParameterName  string `json:"parameterName"`
	ParameterValue string `json:"parameterValue,omitempty"`
	ParameterUnit  string `json:"parameterUnit,omitempty"`
}

// ForecastSnapshot is the township forecast payload (CWA dataset F-D0047-089).
// Field matching is case-insensitive, so both the PascalCase and the older
// camelCase variants of the dataset decode into the same shape.
type ForecastSnapshot struct {
	Success string `json:"success"`
	Records struct {
		Locations []ForecastLocations `json:"Locations"`
	} `json:"records"`

	Raw []byte `json:"-"`
}

// ForecastLocations groups the locations of one forecast region.
type ForecastLocations struct {
	LocationsName string             `json:"LocationsName"`
	Location      []ForecastLocation `json:"Location"`
}

type ForecastLocation struct {
	LocationName   string            `json:"LocationName"`
	WeatherElement []ForecastElement `json:"WeatherElement"`
}

// ForecastElement is a fine-grained time series for one named element.
type ForecastElement struct {
	ElementName string         `json:"ElementName"`
	Time        []ForecastTime `json:"Time"`
}

type ForecastTime struct {
	StartTime    string              `json:"StartTime,omitempty"`
	EndTime      string              `json:"EndTime,omitempty"`
	DataTime     string              `json:"DataTime,omitempty"`
	ElementValue []map[string]string `json:"ElementValue"`
}

var errMalformedSnapshot = errors.New("malformed snapshot")

// ParseCurrent decodes and validates a current-conditions document.
func ParseCurrent(raw []byte) (*CurrentSnapshot, error) {
	var snap CurrentSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedSnapshot, err)
	}
	if snap.Success == "false" {
		return nil, fmt.Errorf("%w: provider reported failure", errMalformedSnapshot)
	}
	if len(snap.Records.Location) == 0 {
		return nil, fmt.Errorf("%w: no locations", errMalformedSnapshot)
	}
	for i, loc := range snap.Records.Location {
		if loc.LocationName == "" {
			return nil, fmt.Errorf("%w: location %d has no name", errMalformedSnapshot, i)
		}
	}
	snap.Raw = raw
	return &snap, nil
}

// ParseForecast decodes and validates a forecast document.
func ParseForecast(raw []byte) (*ForecastSnapshot, error) {
	var snap ForecastSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedSnapshot, err)
	}
	if snap.Success == "false" {
		return nil, fmt.Errorf("%w: provider reported failure", errMalformedSnapshot)
	}

	n := 0
	for _, group := range snap.Records.Locations {
		for i, loc := range group.Location {
			if loc.LocationName == "" {
				return nil, fmt.Errorf("%w: %s location %d has no name", errMalformedSnapshot, group.LocationsName, i)
			}
			n++
		}
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: no locations", errMalformedSnapshot)
	}
	snap.Raw = raw
	return &snap, nil
}

// Location returns the entry whose name matches city exactly.
func (s *CurrentSnapshot) Location(city string) (*CurrentLocation, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Records.Location {
		if s.Records.Location[i].LocationName == city {
			return &s.Records.Location[i], true
		}
	}
	return nil, false
}

// Location returns the entry whose name matches city exactly, searching every region.
func (s *ForecastSnapshot) Location(city string) (*ForecastLocation, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Records.Locations {
		group := &s.Records.Locations[i]
		for j := range group.Location {
			if group.Location[j].LocationName == city {
				return &group.Location[j], true
			}
		}
	}
	return nil, false
}

// Element returns the first element with one of the given names.
func (l *CurrentLocation) Element(names ...string) (*CurrentElement, bool) {
	for _, name := range names {
		for i := range l.WeatherElement {
			if l.WeatherElement[i].ElementName == name {
				return &l.WeatherElement[i], true
			}
		}
	}
	return nil, false
}

func (l *CurrentLocation) elementNames() []string {
	names := make([]string, 0, len(l.WeatherElement))
	for _, e := range l.WeatherElement {
		names = append(names, e.ElementName)
	}
	return names
}

// Element returns the first series with one of the given names.
func (l *ForecastLocation) Element(names ...string) (*ForecastElement, bool) {
	for _, name := range names {
		for i := range l.WeatherElement {
			if l.WeatherElement[i].ElementName == name {
				return &l.WeatherElement[i], true
			}
		}
	}
	return nil, false
}

func (l *ForecastLocation) elementNames() []string {
	names := make([]string, 0, len(l.WeatherElement))
	for _, e := range l.WeatherElement {
		names = append(names, e.ElementName)
	}
	return names
}

// Value returns the first non-empty value stored under one of keys.
func (t ForecastTime) Value(keys ...string) (string, bool) {
	for _, key := range keys {
		for _, v := range t.ElementValue {
			if s, ok := v[key]; ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// Date returns the date portion of the period start, or of the data time for point series.
func (t ForecastTime) Date() string {
	ts := t.StartTime
	if ts == "" {
		ts = t.DataTime
	}
	if len(ts) >= len("2006-01-02") {
		return ts[:len("2006-01-02")]
	}
	return ts
}

// CurrentConditions are the four current values extracted for a city.
type CurrentConditions struct {
	Weather string `json:"weather"`
	PoP     string `json:"pop"`
	MinTemp string `json:"minTemp"`
	MaxTemp string `json:"maxTemp"`
}

// ForecastDay is one stride-sampled forecast entry.
type ForecastDay struct {
	Date          string `json:"date"`
	Description   string `json:"description"`
	Temp          string `json:"temp"`
	FeelsLikeTemp string `json:"feelsLikeTemp"`
}

// Record is the flattened, city-specific weather view built per request.
type Record struct {
	City              string            `json:"city"`
	Current           CurrentConditions `json:"currentWeather"`
	ForecastDays      []ForecastDay     `json:"forecastDays"`
	Forecast          string            `json:"forecast"`
	ForecastAvailable bool              `json:"forecastAvailable"`
	Timestamp         time.Time         `json:"timestamp"`
}

// Source tells whether a piece of data came from the live provider or the stored snapshot.
type Source string

const (
	SourceLive     Source = "live"
	SourceSnapshot Source = "snapshot"
	SourceNone     Source = "none"
)

// Report is the full pipeline result: resolved weather plus advice.
type Report struct {
	Record
	Advice         string `json:"advice"`
	CurrentSource  Source `json:"currentSource"`
	ForecastSource Source `json:"forecastSource"`
}

// AdviceEntry is what gets appended to the advice history.
type AdviceEntry struct {
	City      string
	Current   CurrentConditions
	Forecast  string
	Advice    string
	CreatedAt time.Time
}
