package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Config struct {
	Database struct {
		Path string `validate:"required"`
	}

	WeatherAPI struct {
		ForecastURL  string        `validate:"required,url"`
		GeocodingURL string        `validate:"required,url"`
		Timeout      time.Duration `validate:"gt=0"`
	}

	Retry struct {
		MaxRetries int           `validate:"min=0"`
		Delay      time.Duration `validate:"min=0"`
		MaxDelay   time.Duration `validate:"gtefield=Delay"`
	}

	CircuitBreaker struct {
		Threshold int           `validate:"min=1"`
		Timeout   time.Duration `validate:"gt=0"`
	}

	Sweep struct {
		Concurrency int `validate:"min=1,max=32"`
	}

	Scheduler struct {
		Schedule string `validate:"required"`
	}

	Server struct {
		Port     string `validate:"required,numeric"`
		LogLevel string `validate:"oneof=debug info warn error"`
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("No .env file found, using environment variables")
	}

	cfg := &Config{}
	p := &parser{}

	cfg.Database.Path = getEnv("WEATHER_DB_PATH", "deca-weather.db")

	// Weather API configuration
	cfg.WeatherAPI.ForecastURL = getEnv("OPENMETEO_FORECAST_URL", "https://api.open-meteo.com/v1/forecast")
	cfg.WeatherAPI.GeocodingURL = getEnv("OPENMETEO_GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search")
	cfg.WeatherAPI.Timeout = p.duration("HTTP_TIMEOUT", "10s")

	// Retry configuration
	cfg.Retry.MaxRetries = p.integer("MAX_RETRIES", "3")
	cfg.Retry.Delay = p.duration("RETRY_DELAY", "1s")
	cfg.Retry.MaxDelay = p.duration("RETRY_MAX_DELAY", "5s")

	// Circuit breaker configuration
	cfg.CircuitBreaker.Threshold = p.integer("CIRCUIT_BREAKER_THRESHOLD", "3")
	cfg.CircuitBreaker.Timeout = p.duration("CIRCUIT_BREAKER_TIMEOUT", "30s")

	cfg.Sweep.Concurrency = p.integer("SWEEP_CONCURRENCY", "4")
	cfg.Scheduler.Schedule = getEnv("WATCH_SCHEDULE", "@every 30m")

	cfg.Server.Port = getEnv("API_PORT", "8080")
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "warn")

	if p.err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", p.err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parser reads typed variables and collects every malformed value.
type parser struct {
	err error
}

func (p *parser) duration(key, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		p.err = multierr.Append(p.err, fmt.Errorf("%s=%q: %w", key, value, err))
		return 0
	}
	return duration
}

func (p *parser) integer(key, defaultValue string) int {
	value := getEnv(key, defaultValue)
	intValue, err := strconv.Atoi(value)
	if err != nil {
		p.err = multierr.Append(p.err, fmt.Errorf("%s=%q: %w", key, value, err))
		return 0
	}
	return intValue
}
