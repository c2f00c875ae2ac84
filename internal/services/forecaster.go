package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-cli/internal/cache"
	"github.com/bobby-s-dev/weather-cli/internal/models"
	"github.com/bobby-s-dev/weather-cli/internal/report"
	"github.com/oklog/ulid/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Store interface {
	CityFinder
	UpsertCity(ctx context.Context, city models.City) error
	DeleteCity(ctx context.Context, name string) (int64, error)
	ListCities(ctx context.Context) ([]models.City, error)
	SaveForecast(ctx context.Context, city models.City, days []models.DailyForecast) error
	GetForecast(ctx context.Context, city models.City) ([]models.DailyForecast, error)
}

type ForecastFetcher interface {
	FetchDaily(ctx context.Context, latitude, longitude float64) ([]models.DailyForecast, error)
}

// SweepResult is the outcome for one city of a Sweep. Err is set when the
// city could not be refreshed.
type SweepResult struct {
	City      models.City
	Selection report.Selection
	Err       error
}

type Stats struct {
	LastFetch time.Time `json:"last_fetch"`
	Success   int       `json:"success"`
	Failure   int       `json:"failure"`
}

// Forecaster runs the resolve, fetch, store and select pipeline.
type Forecaster struct {
	store       Store
	resolver    *Resolver
	fetcher     ForecastFetcher
	favourites  []models.City
	logger      *zap.Logger
	concurrency int
	now         func() time.Time

	locks sync.Map // normalized city key -> *sync.Mutex

	mu    sync.RWMutex
	stats Stats
}

type Option func(*Forecaster)

// WithClock replaces time.Now as the source of the current date.
func WithClock(now func() time.Time) Option {
	return func(f *Forecaster) { f.now = now }
}

// WithConcurrency bounds the number of cities fetched in parallel by Sweep.
func WithConcurrency(n int) Option {
	return func(f *Forecaster) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

func NewForecaster(store Store, geocoder Geocoder, fetcher ForecastFetcher, favourites []models.City, logger *zap.Logger, opts ...Option) *Forecaster {
	f := &Forecaster{
		store:       store,
		resolver:    NewResolver(store, geocoder, logger),
		fetcher:     fetcher,
		favourites:  favourites,
		logger:      logger,
		concurrency: 4,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Favourites returns the curated cities the forecaster was built with.
func (f *Forecaster) Favourites() []models.City {
	return append([]models.City(nil), f.favourites...)
}

// Preload stores every favourite city. Already stored cities are left alone.
func (f *Forecaster) Preload(ctx context.Context) error {
	for _, city := range f.favourites {
		if err := f.store.UpsertCity(ctx, city); err != nil {
			return fmt.Errorf("preload %q: %w", city.Name, err)
		}
	}
	f.logger.Debug("Favourites preloaded", zap.Int("cities", len(f.favourites)))
	return nil
}

// Refresh fetches the forecast for city, stores the city and the new days and
// returns everything stored for it afterwards.
func (f *Forecaster) Refresh(ctx context.Context, city models.City) ([]models.DailyForecast, error) {
	start := time.Now()

	days, err := f.fetcher.FetchDaily(ctx, city.Latitude, city.Longitude)
	if err != nil {
		f.record(false)
		return nil, fmt.Errorf("fetch forecast for %q: %w", city.Name, err)
	}

	unlock := f.lock(city)
	defer unlock()

	if err := f.store.UpsertCity(ctx, city); err != nil {
		f.record(false)
		return nil, err
	}
	if err := f.store.SaveForecast(ctx, city, days); err != nil {
		f.record(false)
		return nil, fmt.Errorf("store forecast for %q: %w", city.Name, err)
	}
	rows, err := f.store.GetForecast(ctx, city)
	if err != nil {
		f.record(false)
		return nil, err
	}

	f.record(true)
	f.logger.Debug("Forecast refreshed",
		zap.String("city", city.Name),
		zap.Int("days", len(days)),
		zap.Duration("duration", time.Since(start)))

	return rows, nil
}

// Get resolves name, refreshes its forecast and selects the requested offsets.
func (f *Forecaster) Get(ctx context.Context, name string, offsets []int) (report.Selection, error) {
	city, err := f.resolver.Resolve(ctx, name)
	if err != nil {
		return report.Selection{}, err
	}

	rows, err := f.Refresh(ctx, city)
	if err != nil {
		return report.Selection{}, err
	}

	return report.Select(city, rows, offsets, f.now()), nil
}

// Stored selects the requested offsets from the store only. It fails with
// cache.ErrUnknownCity when name is not stored.
func (f *Forecaster) Stored(ctx context.Context, name string, offsets []int) (report.Selection, error) {
	city, ok, err := f.store.FindCityByName(ctx, name)
	if err != nil {
		return report.Selection{}, err
	}
	if !ok {
		return report.Selection{}, fmt.Errorf("%w: %q", cache.ErrUnknownCity, models.NormalizeName(name))
	}

	rows, err := f.store.GetForecast(ctx, city)
	if err != nil {
		return report.Selection{}, err
	}

	return report.Select(city, rows, offsets, f.now()), nil
}

// Sweep refreshes cities concurrently and selects offsets for each. A failing
// city does not stop the others; results keep the order of cities and the
// returned error combines every failure.
func (f *Forecaster) Sweep(ctx context.Context, cities []models.City, offsets []int) ([]SweepResult, error) {
	runID := ulid.Make().String()
	logger := f.logger.With(zap.String("run_id", runID))
	startTime := time.Now()

	results := make([]SweepResult, len(cities))
	sem := make(chan struct{}, f.concurrency)

	var wg sync.WaitGroup
	for i, city := range cities {
		wg.Add(1)
		go func(i int, city models.City) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[i].City = city
			rows, err := f.Refresh(ctx, city)
			if err != nil {
				logger.Warn("Failed to refresh city",
					zap.String("city", city.Name),
					zap.Error(err))
				results[i].Err = err
				return
			}
			results[i].Selection = report.Select(city, rows, offsets, f.now())
		}(i, city)
	}
	wg.Wait()

	var errs error
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			errs = multierr.Append(errs, r.Err)
			failed++
		}
	}

	logger.Info("Sweep completed",
		zap.Int("cities", len(cities)),
		zap.Int("failure", failed),
		zap.Duration("duration", time.Since(startTime)))

	return results, errs
}

// AddCity resolves name, stores it and fetches its first forecast.
func (f *Forecaster) AddCity(ctx context.Context, name string) (models.City, error) {
	city, err := f.resolver.Resolve(ctx, name)
	if err != nil {
		return models.City{}, err
	}
	if _, err := f.Refresh(ctx, city); err != nil {
		return models.City{}, err
	}
	return city, nil
}

// RemoveCity deletes every stored city named name and reports how many went.
func (f *Forecaster) RemoveCity(ctx context.Context, name string) (int64, error) {
	return f.store.DeleteCity(ctx, name)
}

func (f *Forecaster) Cities(ctx context.Context) ([]models.City, error) {
	return f.store.ListCities(ctx)
}

// Watchlist returns the favourites followed by every other stored city.
func (f *Forecaster) Watchlist(ctx context.Context) ([]models.City, error) {
	stored, err := f.store.ListCities(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(f.favourites)+len(stored))
	list := make([]models.City, 0, len(f.favourites)+len(stored))
	for _, city := range append(f.Favourites(), stored...) {
		key := cityKey(city)
		if seen[key] {
			continue
		}
		seen[key] = true
		list = append(list, city)
	}
	return list, nil
}

func (f *Forecaster) Stats() Stats {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.stats
}

func (f *Forecaster) record(ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.LastFetch = time.Now()
	if ok {
		f.stats.Success++
	} else {
		f.stats.Failure++
	}
}

// lock serializes store writes for one city. It is never held across the
// network fetch.
func (f *Forecaster) lock(city models.City) func() {
	m, _ := f.locks.LoadOrStore(cityKey(city), &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func cityKey(city models.City) string {
	return fmt.Sprintf("%s|%g|%g", strings.ToLower(models.NormalizeName(city.Name)), city.Latitude, city.Longitude)
}
