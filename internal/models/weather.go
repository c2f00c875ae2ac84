package models

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DateLayout is the calendar date format used by the forecast API and the cache.
const DateLayout = "2006-01-02"

// City is a named place. Name, latitude and longitude together identify it.
type City struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c City) String() string {
	return fmt.Sprintf("%s (%.4f, %.4f)", c.Name, c.Latitude, c.Longitude)
}

// DailyForecast is one forecast day for a city. Date is a calendar date held
// at midnight UTC.
type DailyForecast struct {
	Date        time.Time `json:"date"`
	WeatherCode int       `json:"weather_code"`
	TempMin     float64   `json:"t_min"`
	TempMax     float64   `json:"t_max"`
	TempMean    float64   `json:"t_mean"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// DateString returns the forecast date as YYYY-MM-DD.
func (d DailyForecast) DateString() string {
	return d.Date.Format(DateLayout)
}

// GeoResult is one match returned by the geocoding API.
type GeoResult struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// City converts the match into a City with a normalized name.
func (g GeoResult) City() City {
	return City{
		Name:      NormalizeName(g.Name),
		Latitude:  g.Latitude,
		Longitude: g.Longitude,
	}
}

// NormalizeName trims surrounding space and puts the name in NFC form so that
// "Liège" typed on different keyboards compares equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Day truncates t to its calendar date in t's own location and returns that
// date at midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
