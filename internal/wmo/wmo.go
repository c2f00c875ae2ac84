// Package wmo maps WMO 4677 present-weather codes to descriptions and icon
// categories.
package wmo

// Category groups weather codes that share an icon.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryCloudy
	CategoryFog
	CategoryDrizzle
	CategoryRain
	CategorySnow
	CategoryShowers
	CategoryThunderstorm
)

func (c Category) String() string {
	switch c {
	case CategoryCloudy:
		return "cloudy"
	case CategoryFog:
		return "fog"
	case CategoryDrizzle:
		return "drizzle"
	case CategoryRain:
		return "rain"
	case CategorySnow:
		return "snow"
	case CategoryShowers:
		return "showers"
	case CategoryThunderstorm:
		return "thunderstorm"
	default:
		return "unknown"
	}
}

// Icon returns the terminal glyph for the category.
func (c Category) Icon() string {
	switch c {
	case CategoryCloudy:
		return "☁️"
	case CategoryFog:
		return "🌫️"
	case CategoryDrizzle:
		return "🌦️"
	case CategoryRain, CategoryShowers:
		return "🌧️"
	case CategorySnow:
		return "❄️"
	case CategoryThunderstorm:
		return "⛈️"
	default:
		return "?"
	}
}

// Classify returns the icon category for a code.
func Classify(code int) Category {
	switch {
	case code >= 0 && code <= 3:
		return CategoryCloudy
	case code == 45 || code == 48:
		return CategoryFog
	case code >= 51 && code <= 55:
		return CategoryDrizzle
	case code >= 61 && code <= 65:
		return CategoryRain
	case code >= 71 && code <= 75:
		return CategorySnow
	case code >= 80 && code <= 82:
		return CategoryShowers
	case code >= 95 && code <= 99:
		return CategoryThunderstorm
	default:
		return CategoryUnknown
	}
}

// UnknownDescription is returned for codes outside 0-99.
const UnknownDescription = "Unknown WMO weather code"

// Describe returns the WMO 4677 description for code.
func Describe(code int) string {
	if code < 0 || code >= len(descriptions) {
		return UnknownDescription
	}
	return descriptions[code]
}

var descriptions = [100]string{
	// 00-19: no precipitation at the station
	"Cloud development not observed or not observable",
	"Clouds generally dissolving or becoming less developed",
	"State of sky on the whole unchanged",
	"Clouds generally forming or developing",
	"Visibility reduced by smoke (e.g. forest fires, industrial smoke, volcanic ash)",
	"Haze",
	"Widespread dust in suspension in the air, not raised by wind at or near the station",
	"Dust or sand raised by wind at or near the station; no duststorm or sandstorm seen",
	"Well-developed dust or sand whirls seen, but no duststorm or sandstorm",
	"Duststorm or sandstorm within sight or at the station during the preceding hour",
	"Mist",
	"Patches of shallow fog or ice fog",
	"More or less continuous shallow fog or ice fog",
	"Lightning visible, no thunder heard",
	"Precipitation within sight, not reaching the ground or sea surface",
	"Precipitation within sight, reaching the ground or sea, but distant (> 5 km)",
	"Precipitation within sight, reaching the ground or sea, near but not at the station",
	"Thunderstorm, but no precipitation at the time of observation",
	"Squalls at or within sight of the station during the preceding hour or at observation",
	"Funnel cloud(s) (tornado or waterspout)",

	// 20-29: precipitation, fog or thunderstorm in the last hour but not now
	"Drizzle (not freezing) or snow grains, not falling as showers",
	"Rain (not freezing), not falling as showers",
	"Snow, not falling as showers",
	"Rain and snow or ice pellets, not falling as showers",
	"Freezing drizzle or freezing rain, not falling as showers",
	"Shower(s) of rain",
	"Shower(s) of snow, or of rain and snow",
	"Shower(s) of hail, or of rain and hail",
	"Fog or ice fog",
	"Thunderstorm (with or without precipitation)",

	// 30-39: duststorm, sandstorm, drifting or blowing snow
	"Slight or moderate duststorm or sandstorm, decreasing during the preceding hour",
	"Slight or moderate duststorm or sandstorm, no appreciable change in last hour",
	"Slight or moderate duststorm or sandstorm, begun or increasing during last hour",
	"Severe duststorm or sandstorm, decreasing during the preceding hour",
	"Severe duststorm or sandstorm, no appreciable change in last hour",
	"Severe duststorm or sandstorm, begun or increasing during last hour",
	"Slight or moderate blowing snow, generally low (below eye level)",
	"Heavy drifting snow, generally low (below eye level)",
	"Slight or moderate blowing snow, generally high (above eye level)",
	"Heavy blowing snow, generally high (above eye level)",

	// 40-49: fog or ice fog at the time of observation
	"Fog or ice fog at a distance, not at station in last hour; fog extends above observer",
	"Fog or ice fog in patches",
	"Fog or ice fog, sky visible, becoming thinner during last hour",
	"Fog or ice fog, sky invisible, becoming thinner during last hour",
	"Fog or ice fog, sky visible, no appreciable change during last hour",
	"Fog or ice fog, sky invisible, no appreciable change during last hour",
	"Fog or ice fog, sky visible, has begun or become thicker during last hour",
	"Fog or ice fog, sky invisible, has begun or become thicker during last hour",
	"Fog, depositing rime, sky visible",
	"Fog, depositing rime, sky invisible",

	// 50-59: drizzle
	"Drizzle, not freezing, intermittent, slight at time of observation",
	"Drizzle, not freezing, continuous, slight at time of observation",
	"Drizzle, not freezing, intermittent, moderate at time of observation",
	"Drizzle, not freezing, continuous, moderate at time of observation",
	"Drizzle, not freezing, intermittent, heavy (dense) at time of observation",
	"Drizzle, not freezing, continuous, heavy (dense) at time of observation",
	"Drizzle, freezing, slight",
	"Drizzle, freezing, moderate or heavy (dense)",
	"Drizzle and rain, slight",
	"Drizzle and rain, moderate or heavy",

	// 60-69: rain
	"Rain, not freezing, intermittent, slight at time of observation",
	"Rain, not freezing, continuous, slight at time of observation",
	"Rain, not freezing, intermittent, moderate at time of observation",
	"Rain, not freezing, continuous, moderate at time of observation",
	"Rain, not freezing, intermittent, heavy at time of observation",
	"Rain, not freezing, continuous, heavy at time of observation",
	"Rain, freezing, slight",
	"Rain, freezing, moderate or heavy (dense)",
	"Rain or drizzle and snow, slight",
	"Rain or drizzle and snow, moderate or heavy",

	// 70-79: solid precipitation not in showers
	"Intermittent fall of snowflakes, slight at time of observation",
	"Continuous fall of snowflakes, slight at time of observation",
	"Intermittent fall of snowflakes, moderate at time of observation",
	"Continuous fall of snowflakes, moderate at time of observation",
	"Intermittent fall of snowflakes, heavy at time of observation",
	"Continuous fall of snowflakes, heavy at time of observation",
	"Diamond dust (with or without fog)",
	"Snow grains (with or without fog)",
	"Isolated star-like snow crystals (with or without fog)",
	"Ice pellets",

	// 80-99: showery precipitation, current or recent thunderstorm
	"Rain shower(s), slight",
	"Rain shower(s), moderate or heavy",
	"Rain shower(s), violent",
	"Shower(s) of rain and snow mixed, slight",
	"Shower(s) of rain and snow mixed, moderate or heavy",
	"Snow shower(s), slight",
	"Snow shower(s), moderate or heavy",
	"Shower(s) of snow pellets or small hail, with or without rain or rain and snow, slight",
	"Shower(s) of snow pellets or small hail, with or without rain or rain and snow, moderate or heavy",
	"Shower(s) of hail, with or without rain or rain and snow, not associated with thunder, slight",
	"Shower(s) of hail, with or without rain or rain and snow, not associated with thunder, moderate or heavy",
	"Slight rain at time of observation; thunderstorm during preceding hour but not now",
	"Moderate or heavy rain at time of observation; thunderstorm during preceding hour but not now",
	"Slight snow, or rain and snow mixed, or hail at time of observation; thunderstorm during preceding hour but not now",
	"Moderate or heavy snow, or rain and snow mixed, or hail at time of observation; thunderstorm during preceding hour but not now",
	"Thunderstorm, slight or moderate, without hail but with rain and/or snow at time of observation",
	"Thunderstorm, slight or moderate, with hail at time of observation",
	"Thunderstorm, heavy, without hail but with rain and/or snow at time of observation",
	"Thunderstorm combined with duststorm or sandstorm at time of observation",
	"Thunderstorm, heavy, with hail at time of observation",
}
