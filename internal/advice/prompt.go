// Package advice turns a resolved weather record into clothing advice.
package advice

import (
	"fmt"
	"strings"
	"time"

	"github.com/YGJH/backend-test/internal/weather"
)

// DefaultLanguage is the language the model is told to answer in.
const DefaultLanguage = "Traditional Chinese"

// taipei is fixed at UTC+8; Taiwan does not observe daylight saving time.
var taipei = time.FixedZone("Asia/Taipei", 8*60*60)

// BuildPrompt renders the prompt for rec. The output depends only on rec and language.
func BuildPrompt(rec weather.Record, language string) string {
	if language == "" {
		language = DefaultLanguage
	}

	forecast := rec.Forecast
	if !rec.ForecastAvailable || forecast == "" {
		forecast = "not available"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Current time: %s\n", rec.Timestamp.In(taipei).Format("2006-01-02 15:04"))
	fmt.Fprintf(&sb, "City: %s\n", rec.City)
	fmt.Fprintf(&sb, "Current weather: %s\n", rec.Current.Weather)
	fmt.Fprintf(&sb, "Chance of precipitation: %s%%\n", rec.Current.PoP)
	fmt.Fprintf(&sb, "Minimum temperature: %s°C\n", rec.Current.MinTemp)
	fmt.Fprintf(&sb, "Maximum temperature: %s°C\n", rec.Current.MaxTemp)
	fmt.Fprintf(&sb, "Forecast for the coming days:\n%s\n", forecast)
	fmt.Fprintf(&sb, "Given this weather, what should I wear today? Answer only in %s.", language)
	return sb.String()
}
