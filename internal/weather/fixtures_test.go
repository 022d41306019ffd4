package weather

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

// taipeiCurrent is a minimal F-C0032-001 document with one city.
const taipeiCurrent = `{"records":{"location":[{"locationName":"Taipei City","weatherElement":[` +
	`{"elementName":"Wx","time":[{"parameter":{"parameterName":"Cloudy"}}]},` +
	`{"elementName":"PoP","time":[{"parameter":{"parameterName":"20"}}]},` +
	`{"elementName":"MinT","time":[{"parameter":{"parameterName":"18"}}]},` +
	`{"elementName":"MaxT","time":[{"parameter":{"parameterName":"25"}}]}]}]}}`

// currentWith returns a current snapshot for Taipei City and Kaohsiung City.
func currentWith(t *testing.T) *CurrentSnapshot {
	t.Helper()
	raw := `{"success":"true","records":{"location":[` +
		`{"locationName":"Taipei City","weatherElement":[` +
		`{"elementName":"Wx","time":[{"parameter":{"parameterName":"Cloudy"}},{"parameter":{"parameterName":"Sunny"}}]},` +
		`{"elementName":"PoP","time":[{"parameter":{"parameterName":"20"}}]},` +
		`{"elementName":"MinT","time":[{"parameter":{"parameterName":"18"}}]},` +
		`{"elementName":"MaxT","time":[{"parameter":{"parameterName":"25"}}]}]},` +
		`{"locationName":"Kaohsiung City","weatherElement":[` +
		`{"elementName":"Wx","time":[{"parameter":{"parameterName":"Sunny"}}]},` +
		`{"elementName":"PoP","time":[{"parameter":{"parameterName":"0"}}]},` +
		`{"elementName":"MinT","time":[{"parameter":{"parameterName":"22"}}]},` +
		`{"elementName":"MaxT","time":[{"parameter":{"parameterName":"30"}}]}]}]}}`
	snap, err := ParseCurrent([]byte(raw))
	if err != nil {
		t.Fatalf("ParseCurrent: %v", err)
	}
	return snap
}

type forecastOpts struct {
	city       string
	points     int
	noApparent bool
	noDescr    bool
	noTemp     bool
	noWeather  bool
	shortTemp  int  // when > 0, temperature series length
	legacy     bool // older dataset: English element codes and "value" keys
}

// forecastDoc builds an F-D0047-089 style document for a single city.
func forecastDoc(o forecastOpts) []byte {
	legacyNames := map[string]string{
		"天氣現象":     "Wx",
		"天氣預報綜合描述": "WeatherDescription",
		"溫度":       "T",
		"體感溫度":     "AT",
	}
	name := func(s string) string {
		if o.legacy {
			return legacyNames[s]
		}
		return s
	}

	start := time.Date(2024, 12, 20, 6, 0, 0, 0, time.FixedZone("CST", 8*3600))
	series := func(elem, key string, n int, point bool) ForecastElement {
		el := ForecastElement{ElementName: name(elem)}
		if o.legacy {
			key = "value"
		}
		for i := 0; i < n; i++ {
			ts := start.Add(time.Duration(i) * 3 * time.Hour).Format(time.RFC3339)
			ft := ForecastTime{ElementValue: []map[string]string{{key: fmt.Sprintf("%s-%d", key, i)}}}
			if point {
				ft.DataTime = ts
			} else {
				ft.StartTime = ts
			}
			el.Time = append(el.Time, ft)
		}
		return el
	}

	tempLen := o.points
	if o.shortTemp > 0 {
		tempLen = o.shortTemp
	}

	loc := ForecastLocation{LocationName: o.city}
	if !o.noWeather {
		loc.WeatherElement = append(loc.WeatherElement, series("天氣現象", "Weather", o.points, false))
	}
	if !o.noDescr {
		loc.WeatherElement = append(loc.WeatherElement, series("天氣預報綜合描述", "WeatherDescription", o.points, false))
	}
	if !o.noTemp {
		loc.WeatherElement = append(loc.WeatherElement, series("溫度", "Temperature", tempLen, true))
	}
	if !o.noApparent {
		loc.WeatherElement = append(loc.WeatherElement, series("體感溫度", "ApparentTemperature", o.points, true))
	}

	var doc ForecastSnapshot
	doc.Success = "true"
	doc.Records.Locations = []ForecastLocations{{LocationsName: "臺灣", Location: []ForecastLocation{loc}}}
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return raw
}

func forecastSnap(t *testing.T, o forecastOpts) *ForecastSnapshot {
	t.Helper()
	snap, err := ParseForecast(forecastDoc(o))
	if err != nil {
		t.Fatalf("ParseForecast: %v", err)
	}
	return snap
}

func fixedResolver() *Resolver {
	ts := time.Date(2024, 12, 20, 8, 30, 0, 0, time.UTC)
	return &Resolver{now: func() time.Time { return ts }}
}
