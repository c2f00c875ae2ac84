package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bobby-s-dev/weather-cli/internal/models"
	"go.uber.org/zap"
)

const upsertForecastSQL = `
	INSERT INTO daily_forecasts (city_id, date, weather_code, t_min, t_max, t_mean, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (city_id, date) DO UPDATE SET
		weather_code = excluded.weather_code,
		t_min        = excluded.t_min,
		t_max        = excluded.t_max,
		t_mean       = excluded.t_mean,
		fetched_at   = excluded.fetched_at`

// SaveForecast upserts every day of the batch for city, keyed by date, in a
// single transaction. The city must already be stored. Either all days are
// committed or none are.
func (c *Cache) SaveForecast(ctx context.Context, city models.City, days []models.DailyForecast) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin forecast transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := cityID(ctx, tx, city)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, upsertForecastSQL)
	if err != nil {
		return fmt.Errorf("prepare forecast upsert: %w", err)
	}
	defer stmt.Close()

	now := c.now().UTC()
	for _, day := range days {
		fetchedAt := day.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = now
		}

		if _, err := stmt.ExecContext(ctx,
			id,
			day.DateString(),
			day.WeatherCode,
			day.TempMin,
			day.TempMax,
			day.TempMean,
			fetchedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("upsert forecast %s for %q: %w", day.DateString(), city.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit forecast for %q: %w", city.Name, err)
	}

	c.logger.Debug("Forecast stored",
		zap.String("city", city.Name),
		zap.Int("days", len(days)))
	return nil
}

// GetForecast returns all stored days for city in date order.
func (c *Cache) GetForecast(ctx context.Context, city models.City) ([]models.DailyForecast, error) {
	id, err := cityID(ctx, c.db, city)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT date, weather_code, t_min, t_max, t_mean, fetched_at
		FROM daily_forecasts
		WHERE city_id = ?
		ORDER BY date`, id)
	if err != nil {
		return nil, fmt.Errorf("query forecast for %q: %w", city.Name, err)
	}
	defer rows.Close()

	days := make([]models.DailyForecast, 0)
	for rows.Next() {
		var (
			day       models.DailyForecast
			date      string
			fetchedAt string
		)
		if err := rows.Scan(&date, &day.WeatherCode, &day.TempMin, &day.TempMax, &day.TempMean, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scan forecast row: %w", err)
		}

		if day.Date, err = models.ParseDate(date); err != nil {
			return nil, fmt.Errorf("stored forecast date %q: %w", date, err)
		}
		if day.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt); err != nil {
			return nil, fmt.Errorf("stored fetch time %q: %w", fetchedAt, err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}
