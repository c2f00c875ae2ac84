package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bobby-s-dev/weather-cli/internal/cache"
	"github.com/bobby-s-dev/weather-cli/internal/config"
	"github.com/bobby-s-dev/weather-cli/internal/favourites"
	"github.com/bobby-s-dev/weather-cli/internal/services"
	"github.com/bobby-s-dev/weather-cli/pkg/client"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	c := &cli{}
	err := c.rootCmd().Execute()
	c.close()
	if err != nil {
		os.Exit(1)
	}
}

// app holds what every command needs once startup has succeeded.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      *cache.Cache
	forecaster *services.Forecaster
}

func setup(ctx context.Context, verbose bool) (*app, error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Server.LogLevel, verbose)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	store, err := cache.Open(ctx, cfg.Database.Path, logger)
	if err != nil {
		return nil, err
	}

	clientConfig := client.ClientConfig{
		Timeout:        cfg.WeatherAPI.Timeout,
		MaxRetries:     cfg.Retry.MaxRetries,
		RetryDelay:     cfg.Retry.Delay,
		RetryMaxDelay:  cfg.Retry.MaxDelay,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}
	openMeteo := client.NewOpenMeteoClient(cfg.WeatherAPI.ForecastURL, cfg.WeatherAPI.GeocodingURL, clientConfig, logger)

	forecaster := services.NewForecaster(store, openMeteo, openMeteo, favourites.Cities(), logger,
		services.WithConcurrency(cfg.Sweep.Concurrency))

	if err := forecaster.Preload(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("preload favourites: %w", err)
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		forecaster: forecaster,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Failed to close cache", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// newLogger logs to stderr so that stdout only carries command output.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}
