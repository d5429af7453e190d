package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

const cacheTTL = 30 * time.Minute

// Config holds weather service configuration.
type Config struct {
	TemperatureUnit string // "fahrenheit" or "celsius"
}

// Day is one day of forecast for a trip.
type Day struct {
	Date        string  `json:"date"`
	HighTemp    float64 `json:"high_temp"`
	LowTemp     float64 `json:"low_temp"`
	Code        int     `json:"code"`
	Description string  `json:"description"`
	Precip      float64 `json:"precipitation_mm"`
}

// Forecast covers a trip's coordinates and date range.
type Forecast struct {
	Unit string `json:"unit"` // "F" or "C"
	Days []Day  `json:"days"`
}

type cachedForecast struct {
	forecast  Forecast
	fetchedAt time.Time
}

// Service fetches daily forecasts from open-meteo and caches them per
// coordinates and date range.
type Service struct {
	config  Config
	client  *http.Client
	baseURL string

	mu    sync.Mutex
	cache map[string]cachedForecast
}

func NewService(cfg Config) *Service {
	if cfg.TemperatureUnit == "" {
		cfg.TemperatureUnit = "fahrenheit"
	}
	return &Service{
		config:  cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://api.open-meteo.com/v1/forecast",
		cache:   make(map[string]cachedForecast),
	}
}

// NewServiceWithBaseURL is used by tests to point at a fake server.
func NewServiceWithBaseURL(cfg Config, baseURL string) *Service {
	s := NewService(cfg)
	s.baseURL = baseURL
	return s
}

// Forecast returns the daily forecast for the coordinates between startDate
// and endDate (inclusive, "2006-01-02"). Results are cached; on fetch errors
// a cached entry is served stale rather than dropped.
func (s *Service) Forecast(ctx context.Context, lat, lon float64, startDate, endDate string) (Forecast, error) {
	key := fmt.Sprintf("%.4f,%.4f,%s,%s", lat, lon, startDate, endDate)

	s.mu.Lock()
	entry, ok := s.cache[key]
	s.mu.Unlock()
	if ok && time.Since(entry.fetchedAt) < cacheTTL {
		return entry.forecast, nil
	}

	fc, err := s.fetch(ctx, lat, lon, startDate, endDate)
	if err != nil {
		if ok {
			return entry.forecast, nil
		}
		return Forecast{}, err
	}

	s.mu.Lock()
	s.cache[key] = cachedForecast{forecast: fc, fetchedAt: time.Now()}
	s.mu.Unlock()
	return fc, nil
}

type apiResponse struct {
	Daily struct {
		Time        []string  `json:"time"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
		WeatherCode []int     `json:"weather_code"`
		Precip      []float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

func (s *Service) fetch(ctx context.Context, lat, lon float64, startDate, endDate string) (Forecast, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("daily", "temperature_2m_max,temperature_2m_min,weather_code,precipitation_sum")
	q.Set("timezone", "auto")
	q.Set("temperature_unit", s.config.TemperatureUnit)
	if startDate != "" {
		q.Set("start_date", startDate)
	}
	if endDate != "" {
		q.Set("end_date", endDate)
	}
	reqURL := s.baseURL + "?" + q.Encode()

	var api apiResponse
	backoff := retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("weather request: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("weather API status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("weather API status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&api)
	})
	if err != nil {
		return Forecast{}, err
	}

	unit := "F"
	if s.config.TemperatureUnit == "celsius" {
		unit = "C"
	}

	fc := Forecast{Unit: unit}
	for i, date := range api.Daily.Time {
		day := Day{Date: date}
		if i < len(api.Daily.TempMax) {
			day.HighTemp = api.Daily.TempMax[i]
		}
		if i < len(api.Daily.TempMin) {
			day.LowTemp = api.Daily.TempMin[i]
		}
		if i < len(api.Daily.WeatherCode) {
			day.Code = api.Daily.WeatherCode[i]
			day.Description = describeCode(day.Code)
		}
		if i < len(api.Daily.Precip) {
			day.Precip = api.Daily.Precip[i]
		}
		fc.Days = append(fc.Days, day)
	}
	return fc, nil
}

// describeCode maps WMO weather codes to short descriptions.
func describeCode(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code <= 2:
		return "Partly cloudy"
	case code == 3:
		return "Overcast"
	case code == 45 || code == 48:
		return "Fog"
	case code >= 51 && code <= 57:
		return "Drizzle"
	case code >= 61 && code <= 67:
		return "Rain"
	case code >= 71 && code <= 77:
		return "Snow"
	case code >= 80 && code <= 82:
		return "Rain showers"
	case code == 85 || code == 86:
		return "Snow showers"
	case code >= 95:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}
