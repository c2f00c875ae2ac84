package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/bobby-s-dev/weather-cli/internal/models"
	"github.com/bobby-s-dev/weather-cli/internal/wmo"
)

const minCardWidth = 45

// Render writes sel to w as guidance text or as a boxed card per requested day.
func Render(w io.Writer, sel Selection) error {
	var b strings.Builder
	name := sel.City.Name

	switch sel.Status {
	case StatusNoData:
		fmt.Fprintf(&b, "No forecast data available for %s\n", name)

	case StatusOutdated:
		fmt.Fprintf(&b, "Stored forecast for '%s' is outdated.\n", name)
		fmt.Fprintf(&b, "Last stored day: %s\n", sel.LastStored.Format(models.DateLayout))
		fmt.Fprintf(&b, "Run 'get %s' first to refresh the forecast.\n\n", name)

	case StatusNoMatchingDays:
		fmt.Fprintf(&b, "No stored forecast for the requested day(s) for '%s'.\n", name)
		fmt.Fprintf(&b, "Run 'get %s' or 'add-city %s' first to fetch and store the latest forecast.\n\n", name, name)

	case StatusReady:
		writeCards(&b, sel)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCards(b *strings.Builder, sel Selection) {
	header := sel.City.String()
	headerWidth := runewidth.StringWidth(header)
	width := max(minCardWidth, headerWidth+4)

	thick := strings.Repeat("═", width)
	rule := strings.Repeat("─", width)

	fmt.Fprintf(b, "\n╔%s╗\n", thick)
	fmt.Fprintf(b, "║ %s%s║\n", header, strings.Repeat(" ", width-headerWidth-1))
	fmt.Fprintf(b, "╚%s╝\n", thick)

	for _, d := range sel.Days {
		fmt.Fprintf(b, "   [%s] %s\n", d.Label, d.Date.Format(models.DateLayout))

		if d.Forecast == nil {
			b.WriteString("   No data stored for this date.\n")
			b.WriteString(rule + "\n")
			continue
		}

		f := d.Forecast
		fmt.Fprintf(b, "   %s  %s\n", wmo.Classify(f.WeatherCode).Icon(), wmo.Describe(f.WeatherCode))
		fmt.Fprintf(b, "   🌡️ Min:   %.1f °C\n", f.TempMin)
		fmt.Fprintf(b, "   🌡️ Max:   %.1f °C\n", f.TempMax)
		fmt.Fprintf(b, "   🌡️ Mean:  %.1f °C\n", f.TempMean)
		b.WriteString(rule + "\n")
	}
}
