package httpapi

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/YGJH/backend-test/internal/weather"
)

var validate = validator.New()

// Options configures the guard applied to data routes.
type Options struct {
	// APIKey, when non-empty, must match the X-API-Key request header.
	APIKey string

	// RateLimitMax requests per RateLimitWindow per client IP; 0 disables limiting.
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Health, when set, is reported by /health as the database status.
	Health HealthChecker
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, opts Options) {
	guard := guardHandlers(opts)
	guarded := func(h fiber.Handler) []fiber.Handler {
		handlers := make([]fiber.Handler, 0, len(guard)+1)
		handlers = append(handlers, guard...)
		return append(handlers, h)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if opts.Health != nil {
			if err := opts.Health.Health(c.UserContext()); err != nil {
				log.Printf("ERROR: http: health check failed: %v", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status":   "degraded",
					"service":  "weather-advisor",
					"database": "unreachable",
				})
			}
		}
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-advisor",
		})
	})

	// Raw current-conditions document, live when possible, otherwise the stored copy.
	app.Get("/weather.json", guarded(func(c *fiber.Ctx) error {
		raw, src, err := service.CurrentDocument(c.UserContext())
		if err != nil {
			log.Printf("ERROR: http: current document unavailable: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "weather data unavailable")
		}

		c.Set("X-Snapshot-Source", string(src))
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.Send(raw)
	})...)

	app.Post("/weather", guarded(func(c *fiber.Ctx) error {
		var req cityRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "cityName is required")
		}

		report, err := service.Advise(c.UserContext(), req.CityName)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(newWeatherResponse(report))
	})...)

	app.Get("/weather", guarded(func(c *fiber.Ctx) error {
		lat, lon, err := parseCoordinates(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := service.AdviseAt(c.UserContext(), lat, lon)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(newWeatherResponse(report))
	})...)
}

// cityRequest is the body of POST /weather.
type cityRequest struct {
	CityName string `json:"cityName" validate:"required"`
}

// coordinateQuery holds the query parameters of GET /weather.
type coordinateQuery struct {
	Latitude  string `validate:"required,latitude"`
	Longitude string `validate:"required,longitude"`
}

func parseCoordinates(c *fiber.Ctx) (float64, float64, error) {
	q := coordinateQuery{
		Latitude:  c.Query("latitude"),
		Longitude: c.Query("longitude"),
	}
	if q.Latitude == "" || q.Longitude == "" {
		return 0, 0, errors.New("latitude and longitude query parameters are required")
	}
	if err := validate.Struct(q); err != nil {
		return 0, 0, errors.New("latitude and longitude must be valid coordinates")
	}

	lat, err := strconv.ParseFloat(q.Latitude, 64)
	if err != nil {
		return 0, 0, errors.New("invalid latitude")
	}
	lon, err := strconv.ParseFloat(q.Longitude, 64)
	if err != nil {
		return 0, 0, errors.New("invalid longitude")
	}
	return lat, lon, nil
}

type sources struct {
	Current  weather.Source `json:"current"`
	Forecast weather.Source `json:"forecast"`
}

// weatherResponse is the body returned by both /weather routes.
type weatherResponse struct {
	City              string                    `json:"city"`
	CurrentWeather    weather.CurrentConditions `json:"currentWeather"`
	Forecast          string                    `json:"forecast"`
	ForecastDays      []weather.ForecastDay     `json:"forecastDays"`
	ForecastAvailable bool                      `json:"forecastAvailable"`
	Advice            string                    `json:"advice"`
	Timestamp         time.Time                 `json:"timestamp"`
	Sources           sources                   `json:"sources"`
}

func newWeatherResponse(r weather.Report) weatherResponse {
	return weatherResponse{
		City:              r.City,
		CurrentWeather:    r.Current,
		Forecast:          r.Forecast,
		ForecastDays:      r.ForecastDays,
		ForecastAvailable: r.ForecastAvailable,
		Advice:            r.Advice,
		Timestamp:         r.Timestamp,
		Sources: sources{
			Current:  r.CurrentSource,
			Forecast: r.ForecastSource,
		},
	}
}

// toHTTPError maps pipeline errors onto status codes.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, weather.ErrCityNotFound):
		return fiber.NewError(fiber.StatusNotFound, "no weather data for requested city")
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, "could not resolve a city for the given coordinates")
	case errors.Is(err, weather.ErrElementMissing), errors.Is(err, weather.ErrCorruptSnapshot):
		log.Printf("ERROR: http: malformed weather data: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "weather data is malformed")
	case errors.Is(err, weather.ErrTimeout):
		log.Printf("ERROR: http: upstream timeout: %v", err)
		return fiber.NewError(fiber.StatusGatewayTimeout, "upstream timed out")
	case errors.Is(err, weather.ErrNoSnapshot), errors.Is(err, weather.ErrUnavailable):
		log.Printf("ERROR: http: upstream unavailable: %v", err)
		return fiber.NewError(fiber.StatusServiceUnavailable, "weather data unavailable")
	default:
		log.Printf("ERROR: http: unexpected error: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
