// Package report decides which stored forecast days can answer a request and
// formats them for the terminal.
package report

import (
	"fmt"
	"time"

	"github.com/bobby-s-dev/weather-cli/internal/models"
)

// Status tells the caller which kind of answer a Selection holds.
type Status int

const (
	// StatusReady means at least one requested day is stored.
	StatusReady Status = iota
	// StatusNoData means there are no stored rows or no requested offsets.
	StatusNoData
	// StatusOutdated means every stored day is before today.
	StatusOutdated
	// StatusNoMatchingDays means the store is current but holds none of the
	// requested days.
	StatusNoMatchingDays
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusNoData:
		return "no_data"
	case StatusOutdated:
		return "outdated"
	case StatusNoMatchingDays:
		return "no_matching_days"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Day is one requested offset. Forecast is nil when nothing is stored for Date.
type Day struct {
	Offset   int                   `json:"offset"`
	Label    string                `json:"label"`
	Date     time.Time             `json:"date"`
	Forecast *models.DailyForecast `json:"forecast,omitempty"`
}

// Selection is the answer for one city: a Status, the newest stored date, and
// one Day per requested offset when Status is StatusReady.
type Selection struct {
	City       models.City `json:"city"`
	Status     Status      `json:"status"`
	LastStored time.Time   `json:"last_stored,omitempty"`
	Days       []Day       `json:"days,omitempty"`
}

// Label names an offset: 0 is Today, 1 is Tomorrow, n is D+n.
func Label(offset int) string {
	switch offset {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return fmt.Sprintf("D+%d", offset)
	}
}

// Select matches the requested day offsets, relative to today's calendar date,
// against the stored rows of city.
//
// A snapshot whose newest day is before today is outdated as a whole and no
// per-offset matching is attempted. Otherwise each offset is matched on its
// exact date; offsets without a stored row are kept as empty days unless none
// of them matched at all.
func Select(city models.City, rows []models.DailyForecast, offsets []int, today time.Time) Selection {
	sel := Selection{City: city}

	if len(rows) == 0 || len(offsets) == 0 {
		sel.Status = StatusNoData
		return sel
	}

	byDate := make(map[string]models.DailyForecast, len(rows))
	var newest time.Time
	for _, row := range rows {
		byDate[row.DateString()] = row
		if row.Date.After(newest) {
			newest = row.Date
		}
	}
	sel.LastStored = newest

	today = models.Day(today)
	if newest.Before(today) {
		sel.Status = StatusOutdated
		return sel
	}

	matched := 0
	sel.Days = make([]Day, 0, len(offsets))
	for _, offset := range offsets {
		date := today.AddDate(0, 0, offset)
		d := Day{Offset: offset, Label: Label(offset), Date: date}
		if row, ok := byDate[date.Format(models.DateLayout)]; ok {
			d.Forecast = &row
			matched++
		}
		sel.Days = append(sel.Days, d)
	}

	if matched == 0 {
		sel.Status = StatusNoMatchingDays
		sel.Days = nil
		return sel
	}

	sel.Status = StatusReady
	return sel
}
