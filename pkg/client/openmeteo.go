package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bobby-s-dev/weather-cli/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

	dailyFields = "weather_code,temperature_2m_min,temperature_2m_max,temperature_2m_mean"
)

type OpenMeteoClient struct {
	*BaseClient
	forecastURL  string
	geocodingURL string
}

// OpenMeteoForecastResponse holds the daily block as parallel arrays. Values
// are pointers because the API reports missing model output as null.
type OpenMeteoForecastResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Daily     struct {
		Time              []string   `json:"time"`
		WeatherCode       []*int     `json:"weather_code"`
		Temperature2MMin  []*float64 `json:"temperature_2m_min"`
		Temperature2MMax  []*float64 `json:"temperature_2m_max"`
		Temperature2MMean []*float64 `json:"temperature_2m_mean"`
	} `json:"daily"`
}

type OpenMeteoGeocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
	} `json:"results"`
}

func NewOpenMeteoClient(forecastURL, geocodingURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}
	if geocodingURL == "" {
		geocodingURL = DefaultGeocodingURL
	}
	return &OpenMeteoClient{
		BaseClient:   NewBaseClient("openmeteo", config, logger),
		forecastURL:  forecastURL,
		geocodingURL: geocodingURL,
	}
}

// FetchDaily returns the daily forecast for a coordinate pair in date order.
// Days the API left incomplete are dropped.
func (c *OpenMeteoClient) FetchDaily(ctx context.Context, latitude, longitude float64) ([]models.DailyForecast, error) {
	params := map[string]string{
		"latitude":  strconv.FormatFloat(latitude, 'f', -1, 64),
		"longitude": strconv.FormatFloat(longitude, 'f', -1, 64),
		"daily":     dailyFields,
		"timezone":  "auto",
	}

	var response OpenMeteoForecastResponse
	if err := c.GetJSON(ctx, c.forecastURL, params, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	daily := response.Daily
	n := len(daily.Time)
	if len(daily.WeatherCode) != n || len(daily.Temperature2MMin) != n ||
		len(daily.Temperature2MMax) != n || len(daily.Temperature2MMean) != n {
		return nil, fmt.Errorf("%w: daily arrays differ in length", ErrDecode)
	}

	days := make([]models.DailyForecast, 0, n)
	for i := 0; i < n; i++ {
		date, err := models.ParseDate(daily.Time[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		if daily.WeatherCode[i] == nil || daily.Temperature2MMin[i] == nil ||
			daily.Temperature2MMax[i] == nil || daily.Temperature2MMean[i] == nil {
			c.logger.Debug("Skipping incomplete forecast day", zap.String("date", daily.Time[i]))
			continue
		}
		days = append(days, models.DailyForecast{
			Date:        date,
			WeatherCode: *daily.WeatherCode[i],
			TempMin:     *daily.Temperature2MMin[i],
			TempMax:     *daily.Temperature2MMax[i],
			TempMean:    *daily.Temperature2MMean[i],
		})
	}

	c.logger.Debug("Fetched daily forecast",
		zap.Float64("latitude", latitude),
		zap.Float64("longitude", longitude),
		zap.Int("days", len(days)))

	return days, nil
}

// Geocode looks a place name up. An empty slice means no match.
func (c *OpenMeteoClient) Geocode(ctx context.Context, name string) ([]models.GeoResult, error) {
	params := map[string]string{
		"name":     strings.TrimSpace(name),
		"count":    "1",
		"language": "en",
		"format":   "json",
	}

	var response OpenMeteoGeocodingResponse
	if err := c.GetJSON(ctx, c.geocodingURL, params, &response); err != nil {
		return nil, fmt.Errorf("failed to geocode %q: %w", name, err)
	}

	results := make([]models.GeoResult, 0, len(response.Results))
	for _, r := range response.Results {
		results = append(results, models.GeoResult{
			Name:      r.Name,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		})
	}
	return results, nil
}
