package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobby-s-dev/weather-cli/internal/models"
	"go.uber.org/zap"
)

// ErrCityNotFound is returned when geocoding yields no result for a name.
var ErrCityNotFound = errors.New("city not found")

type Geocoder interface {
	Geocode(ctx context.Context, name string) ([]models.GeoResult, error)
}

type CityFinder interface {
	FindCityByName(ctx context.Context, name string) (models.City, bool, error)
}

// Resolver turns a city name into coordinates. It reads the store but never
// writes to it; persisting a geocoded city is up to the caller.
type Resolver struct {
	store    CityFinder
	geocoder Geocoder
	logger   *zap.Logger
}

func NewResolver(store CityFinder, geocoder Geocoder, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:    store,
		geocoder: geocoder,
		logger:   logger,
	}
}

func (r *Resolver) Resolve(ctx context.Context, name string) (models.City, error) {
	name = models.NormalizeName(name)
	if name == "" {
		return models.City{}, fmt.Errorf("%w: empty name", ErrCityNotFound)
	}

	city, ok, err := r.store.FindCityByName(ctx, name)
	if err != nil {
		return models.City{}, err
	}
	if ok {
		r.logger.Debug("Resolved city from cache", zap.String("city", city.Name))
		return city, nil
	}

	r.logger.Debug("City not cached, geocoding", zap.String("city", name))

	results, err := r.geocoder.Geocode(ctx, name)
	if err != nil {
		return models.City{}, err
	}
	if len(results) == 0 {
		return models.City{}, fmt.Errorf("%w: %q", ErrCityNotFound, name)
	}

	return results[0].City(), nil
}
