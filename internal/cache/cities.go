package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bobby-s-dev/weather-cli/internal/models"
	"go.uber.org/zap"
)

// UpsertCity stores city unless the same (name, latitude, longitude) triple is
// already present. Duplicates are not an error.
func (c *Cache) UpsertCity(ctx context.Context, city models.City) error {
	city.Name = models.NormalizeName(city.Name)
	if city.Name == "" {
		return errors.New("city name is required")
	}

	res, err := c.db.ExecContext(ctx, `
		INSERT INTO cities (name, latitude, longitude)
		VALUES (?, ?, ?)
		ON CONFLICT (name, latitude, longitude) DO NOTHING`,
		city.Name, city.Latitude, city.Longitude)
	if err != nil {
		return fmt.Errorf("insert city %q: %w", city.Name, err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		c.logger.Debug("City stored", zap.String("city", city.Name))
	}
	return nil
}

// DeleteCity removes every city whose name matches case-insensitively,
// together with their forecasts, and reports how many cities were removed.
func (c *Cache) DeleteCity(ctx context.Context, name string) (int64, error) {
	name = models.NormalizeName(name)

	res, err := c.db.ExecContext(ctx, `DELETE FROM cities WHERE name = ?`, name)
	if err != nil {
		return 0, fmt.Errorf("delete city %q: %w", name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete city %q: %w", name, err)
	}

	c.logger.Debug("City deleted", zap.String("city", name), zap.Int64("count", n))
	return n, nil
}

// ListCities returns all stored cities ordered by name.
func (c *Cache) ListCities(ctx context.Context) ([]models.City, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT name, latitude, longitude
		FROM cities
		ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	cities := make([]models.City, 0)
	for rows.Next() {
		var city models.City
		if err := rows.Scan(&city.Name, &city.Latitude, &city.Longitude); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

// FindCityByName looks a city up by case-insensitive exact name. The boolean
// is false when no city matches.
func (c *Cache) FindCityByName(ctx context.Context, name string) (models.City, bool, error) {
	name = models.NormalizeName(name)

	var city models.City
	err := c.db.QueryRowContext(ctx, `
		SELECT name, latitude, longitude
		FROM cities
		WHERE name = ?
		ORDER BY id
		LIMIT 1`, name).Scan(&city.Name, &city.Latitude, &city.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return models.City{}, false, nil
	}
	if err != nil {
		return models.City{}, false, fmt.Errorf("find city %q: %w", name, err)
	}
	return city, true, nil
}

func cityID(ctx context.Context, q querier, city models.City) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		SELECT id FROM cities
		WHERE name = ? AND latitude = ? AND longitude = ?`,
		models.NormalizeName(city.Name), city.Latitude, city.Longitude).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCity, city)
	}
	if err != nil {
		return 0, fmt.Errorf("look up city %q: %w", city.Name, err)
	}
	return id, nil
}
