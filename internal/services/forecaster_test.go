package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bobby-s-dev/weather-cli/internal/cache"
	"github.com/bobby-s-dev/weather-cli/internal/favourites"
	"github.com/bobby-s-dev/weather-cli/internal/models"
	"github.com/bobby-s-dev/weather-cli/internal/report"
	"github.com/bobby-s-dev/weather-cli/pkg/client"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"
)

var today = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeGeocoder struct {
	mu      sync.Mutex
	results map[string][]models.GeoResult
	err     error
	calls   int
}

func (g *fakeGeocoder) Geocode(_ context.Context, name string) ([]models.GeoResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.results[strings.ToLower(name)], nil
}

// fakeFetcher serves three days starting today for any coordinate except
// those listed in fail.
type fakeFetcher struct {
	mu    sync.Mutex
	fail  map[float64]error
	calls int
}

func (f *fakeFetcher) FetchDaily(_ context.Context, latitude, _ float64) ([]models.DailyForecast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.fail[latitude]; err != nil {
		return nil, err
	}
	days := make([]models.DailyForecast, 0, 3)
	for i := 0; i < 3; i++ {
		days = append(days, models.DailyForecast{
			Date:        models.Day(today).AddDate(0, 0, i),
			WeatherCode: 61,
			TempMin:     float64(i),
			TempMax:     float64(i) + 5,
			TempMean:    float64(i) + 2.5,
		})
	}
	return days, nil
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fixture struct {
	store      *cache.Cache
	geocoder   *fakeGeocoder
	fetcher    *fakeFetcher
	forecaster *Forecaster
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)

	store, err := cache.Open(context.Background(), filepath.Join(t.TempDir(), "weather.db"), logger)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	geocoder := &fakeGeocoder{results: map[string][]models.GeoResult{
		"paris": {{Name: "Paris", Latitude: 48.8534, Longitude: 2.3488}},
		"lyon":  {{Name: "Lyon", Latitude: 45.7485, Longitude: 4.8467}},
	}}
	fetcher := &fakeFetcher{fail: map[float64]error{}}

	return &fixture{
		store:    store,
		geocoder: geocoder,
		fetcher:  fetcher,
		forecaster: NewForecaster(store, geocoder, fetcher, favourites.Cities(), logger,
			WithClock(func() time.Time { return today }),
			WithConcurrency(2)),
	}
}

func TestResolve(t *testing.T) {
	type test struct {
		input    string
		want     string
		wantErr  error
		geocoded bool
	}

	tests := map[string]test{
		"stored city, other case": {input: "brussels", want: "Brussels"},
		"stored city, padded":     {input: "  Waterloo ", want: "Waterloo"},
		"geocoded":                {input: "Paris", want: "Paris", geocoded: true},
		"unknown":                 {input: "Atlantis", wantErr: ErrCityNotFound, geocoded: true},
		"empty":                   {input: "   ", wantErr: ErrCityNotFound},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			fx := newFixture(t)
			ctx := context.Background()
			if err := fx.forecaster.Preload(ctx); err != nil {
				t.Fatalf("Preload: %v", err)
			}

			city, err := fx.forecaster.resolver.Resolve(ctx, tc.input)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("got %v, want %v", err, tc.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Resolve: %v", err)
			} else if city.Name != tc.want {
				t.Errorf("name = %q, want %q", city.Name, tc.want)
			}

			if got := fx.geocoder.calls > 0; got != tc.geocoded {
				t.Errorf("geocoded = %v, want %v", got, tc.geocoded)
			}
		})
	}
}

func TestResolveDoesNotPersist(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if _, err := fx.forecaster.resolver.Resolve(ctx, "Paris"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok, _ := fx.store.FindCityByName(ctx, "Paris"); ok {
		t.Error("resolver stored the geocoded city")
	}
}

func TestResolveGeocoderFailure(t *testing.T) {
	fx := newFixture(t)
	fx.geocoder.err = fmt.Errorf("failed to geocode: %w", client.ErrNetwork)

	_, err := fx.forecaster.resolver.Resolve(context.Background(), "Paris")
	if !errors.Is(err, client.ErrNetwork) {
		t.Fatalf("got %v, want ErrNetwork", err)
	}
}

func TestPreloadIdempotent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := fx.forecaster.Preload(ctx); err != nil {
			t.Fatalf("Preload: %v", err)
		}
	}

	cities, err := fx.forecaster.Cities(ctx)
	if err != nil {
		t.Fatalf("Cities: %v", err)
	}
	if len(cities) != len(favourites.Cities()) {
		t.Errorf("got %d cities, want %d", len(cities), len(favourites.Cities()))
	}
}

func TestGetStoresAndSelects(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	sel, err := fx.forecaster.Get(ctx, "paris", []int{1, 2})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sel.Status != report.StatusReady {
		t.Fatalf("status = %s, want ready", sel.Status)
	}
	if len(sel.Days) != 2 || sel.Days[0].Label != "Tomorrow" || sel.Days[1].Forecast == nil {
		t.Fatalf("unexpected days: %+v", sel.Days)
	}
	if sel.Days[1].Forecast.TempMax != 7 {
		t.Errorf("D+2 max = %v, want 7", sel.Days[1].Forecast.TempMax)
	}

	// The city and its forecast are now available offline.
	calls := fx.fetcher.Calls()
	stored, err := fx.forecaster.Stored(ctx, "PARIS", []int{0})
	if err != nil {
		t.Fatalf("Stored: %v", err)
	}
	if stored.Status != report.StatusReady || stored.Days[0].Forecast == nil {
		t.Errorf("unexpected stored selection: %+v", stored)
	}
	if fx.fetcher.Calls() != calls {
		t.Error("Stored went to the network")
	}
}

func TestGetFetchFailureNamesCity(t *testing.T) {
	fx := newFixture(t)
	fx.fetcher.fail[48.8534] = fmt.Errorf("failed to fetch forecast: %w", &client.StatusError{StatusCode: 502, Status: "502 Bad Gateway"})

	_, err := fx.forecaster.Get(context.Background(), "Paris", []int{0})
	if !errors.Is(err, client.ErrNonSuccessStatus) {
		t.Fatalf("got %v, want ErrNonSuccessStatus", err)
	}
	if !strings.Contains(err.Error(), `"Paris"`) {
		t.Errorf("error does not name the city: %v", err)
	}
	if _, ok, _ := fx.store.FindCityByName(context.Background(), "Paris"); ok {
		t.Error("city stored despite failed fetch")
	}
}

func TestStoredUnknownCity(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.forecaster.Stored(context.Background(), "Atlantis", []int{0})
	if !errors.Is(err, cache.ErrUnknownCity) {
		t.Fatalf("got %v, want ErrUnknownCity", err)
	}
}

func TestStoredWithoutRows(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	if err := fx.forecaster.Preload(ctx); err != nil {
		t.Fatalf("Preload: %v", err)
	}

	sel, err := fx.forecaster.Stored(ctx, "Bruges", []int{0})
	if err != nil {
		t.Fatalf("Stored: %v", err)
	}
	if sel.Status != report.StatusNoData {
		t.Errorf("status = %s, want no data", sel.Status)
	}
}

func TestSweepIsolatesFailures(t *testing.T) {
	fx := newFixture(t)
	cities := favourites.Cities()[:4]
	fx.fetcher.fail[cities[1].Latitude] = client.ErrNetwork

	results, err := fx.forecaster.Sweep(context.Background(), cities, []int{0})
	if err == nil {
		t.Fatal("expected combined error")
	}
	if got := len(multierr.Errors(err)); got != 1 {
		t.Errorf("got %d errors, want 1", got)
	}
	if !errors.Is(err, client.ErrNetwork) {
		t.Errorf("combined error lost its cause: %v", err)
	}

	if len(results) != len(cities) {
		t.Fatalf("got %d results, want %d", len(results), len(cities))
	}
	for i, r := range results {
		if r.City.Name != cities[i].Name {
			t.Errorf("result %d is %q, want %q", i, r.City.Name, cities[i].Name)
		}
		if i == 1 {
			if r.Err == nil {
				t.Error("failing city has no error")
			}
			continue
		}
		if r.Err != nil || r.Selection.Status != report.StatusReady {
			t.Errorf("%s: err=%v status=%s", r.City.Name, r.Err, r.Selection.Status)
		}
	}

	stats := fx.forecaster.Stats()
	if stats.Success != 3 || stats.Failure != 1 {
		t.Errorf("stats = %+v, want 3 success and 1 failure", stats)
	}
}

func TestAddAndRemoveCity(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	city, err := fx.forecaster.AddCity(ctx, "lyon")
	if err != nil {
		t.Fatalf("AddCity: %v", err)
	}
	if city.Name != "Lyon" {
		t.Errorf("name = %q, want Lyon", city.Name)
	}

	rows, err := fx.store.GetForecast(ctx, city)
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d stored days, want 3", len(rows))
	}

	for _, want := range []int64{1, 0} {
		n, err := fx.forecaster.RemoveCity(ctx, "LYON")
		if err != nil {
			t.Fatalf("RemoveCity: %v", err)
		}
		if n != want {
			t.Errorf("removed %d, want %d", n, want)
		}
	}

	if _, err := fx.forecaster.Stored(ctx, "Lyon", []int{0}); !errors.Is(err, cache.ErrUnknownCity) {
		t.Errorf("got %v after removal, want ErrUnknownCity", err)
	}
}

func TestWatchlist(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	if err := fx.forecaster.Preload(ctx); err != nil {
		t.Fatalf("Preload: %v", err)
	}
	if _, err := fx.forecaster.AddCity(ctx, "Paris"); err != nil {
		t.Fatalf("AddCity: %v", err)
	}

	list, err := fx.forecaster.Watchlist(ctx)
	if err != nil {
		t.Fatalf("Watchlist: %v", err)
	}
	want := len(favourites.Cities()) + 1
	if len(list) != want {
		t.Fatalf("got %d cities, want %d", len(list), want)
	}
	if list[0].Name != favourites.Cities()[0].Name || list[want-1].Name != "Paris" {
		t.Errorf("unexpected order: first %q, last %q", list[0].Name, list[want-1].Name)
	}
}
