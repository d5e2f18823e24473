package domain

import "strings"

// Snapshot is the current weather at the bot's location.
type Snapshot struct {
	TemperatureC float64
	WindSpeed    float64 // km/h
	Code         int     // WMO weather code, -1 when unavailable
	Condition    string
}

// SentinelSnapshot stands in for live weather when the provider fails.
// It is valid input for message composition.
var SentinelSnapshot = Snapshot{
	TemperatureC: 0,
	WindSpeed:    0,
	Code:         -1,
	Condition:    "unavailable",
}

var wmoDescriptions = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	51: "light drizzle rain",
	53: "moderate drizzle rain",
	55: "dense drizzle rain",
	61: "light rain",
	63: "rain",
	65: "heavy rain",
	71: "light snow",
	73: "moderate snow",
	75: "heavy snow",
	95: "thunderstorm",
}

// DescribeCode maps a WMO weather code to a condition description.
func DescribeCode(code int) string {
	if d, ok := wmoDescriptions[code]; ok {
		return d
	}
	return "unknown"
}

// WeatherKind selects how the weather is framed in a message.
type WeatherKind int

const (
	WeatherIdeal WeatherKind = iota
	WeatherRain
	WeatherCold
	WeatherHeat
)

// ClassifyWeather applies, in order: rain in the condition; snow in the
// condition or below -3°C; above 25°C; otherwise ideal.
func ClassifyWeather(s Snapshot) WeatherKind {
	cond := strings.ToLower(s.Condition)
	switch {
	case strings.Contains(cond, "rain"):
		return WeatherRain
	case strings.Contains(cond, "snow") || s.TemperatureC < -3:
		return WeatherCold
	case s.TemperatureC > 25:
		return WeatherHeat
	default:
		return WeatherIdeal
	}
}
