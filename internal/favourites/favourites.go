// Package favourites holds the curated list of cities shown by default.
package favourites

import "github.com/bobby-s-dev/weather-cli/internal/models"

// Coordinates come from the open-meteo geocoding API.
var belgium = [...]models.City{
	{Name: "Brussels", Latitude: 50.85045, Longitude: 4.34878},
	{Name: "Antwerp", Latitude: 51.22047, Longitude: 4.40026},
	{Name: "Grimbergen", Latitude: 50.93409, Longitude: 4.37213},
	{Name: "Liège", Latitude: 50.63373, Longitude: 5.56749},
	{Name: "Louvain-la-Neuve", Latitude: 50.66829, Longitude: 4.61443},
	{Name: "Waterloo", Latitude: 50.71469, Longitude: 4.3991},
	{Name: "Bruges", Latitude: 51.20892, Longitude: 3.22424},
	{Name: "Leuven", Latitude: 50.87959, Longitude: 4.70093},
	{Name: "Knokke-Heist", Latitude: 51.35, Longitude: 3.26667},
	{Name: "Dinant", Latitude: 50.25807, Longitude: 4.91166},
}

// Cities returns a fresh copy of the favourites table.
func Cities() []models.City {
	out := make([]models.City, len(belgium))
	copy(out, belgium[:])
	return out
}
