// Package compose builds the daily motivational message.
//
// Compose is pure: the same mood, weather, season and weekday always yield
// the same text. The text uses Telegram's legacy Markdown for the distance.
package compose

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/snowvesna25-sys/runspark-bot/internal/domain"
)

const (
	weekdayKm = 10
	sundayKm  = 15
)

const (
	openingNegative = "You didn't wake up because the alarm rang. You woke up because there is still a fire inside you that neither fatigue nor doubt can put out."
	openingNeutral  = "Habit is stronger than mood. You have walked this road hundreds of times, and today is no exception."
	openingEnergy   = "Today is your day! The world is waiting for your kilometers. You can feel it: everything is falling into place."

	weatherRain  = "Rain in %s is not an obstacle, it's an ally. It washes away doubt. And %s° is perfect for running without overheating."
	weatherCold  = "Frost and snow are your element. Every breath is a sip of pure strength. Winter hardens not only the body but the spirit."
	weatherHeat  = "Heat? Great! It's a chance to test how tough you are. Sweat is your inner fire coming out."
	weatherIdeal = "The weather is ideal: %s, %s°. Nature itself is calling you out for a run."

	seasonWinter = "You are one of the few who don't hide from the cold. Your footprints in the snow are a symbol of resilience."
	seasonSpring = "Nature is waking up, and so are you. Every step is part of the revival."
	seasonSummer = "Summer energy is overflowing. Use it and squeeze everything out of these kilometers!"
	seasonAutumn = "Autumn is harvest time. And your harvest is kilometers covered with honor."

	closingAction   = "Shoes tied? Heart beating? Then go, and don't put off what makes you stronger."
	closingQuestion = "I believe in you. Do you?"
)

// Target is the day's distance in kilometers.
func Target(isSunday bool) int {
	if isSunday {
		return sundayKm
	}
	return weekdayKm
}

// Compose renders the message for the given inputs.
func Compose(mood string, weather domain.Snapshot, season domain.Season, isSunday bool) string {
	dayLabel := "weekday"
	if isSunday {
		dayLabel = "Sunday"
	}

	parts := []string{
		opening(domain.ClassifyMood(mood)),
		fmt.Sprintf("Today is a %s. Target: *%d km*.", dayLabel, Target(isSunday)),
		weatherLine(weather),
		seasonLine(season),
		closingAction,
		closingQuestion,
	}
	return strings.Join(parts, "\n\n")
}

func opening(k domain.MoodKind) string {
	switch k {
	case domain.MoodNegative:
		return openingNegative
	case domain.MoodNeutral:
		return openingNeutral
	default:
		return openingEnergy
	}
}

func weatherLine(s domain.Snapshot) string {
	temp := formatTemp(s.TemperatureC)
	switch domain.ClassifyWeather(s) {
	case domain.WeatherRain:
		return fmt.Sprintf(weatherRain, domain.Vladivostok.Name, temp)
	case domain.WeatherCold:
		return weatherCold
	case domain.WeatherHeat:
		return weatherHeat
	default:
		return fmt.Sprintf(weatherIdeal, s.Condition, temp)
	}
}

func seasonLine(s domain.Season) string {
	switch s {
	case domain.Winter:
		return seasonWinter
	case domain.Spring:
		return seasonSpring
	case domain.Summer:
		return seasonSummer
	default:
		return seasonAutumn
	}
}

// formatTemp prints the shortest exact decimal: 5, -2.5, 17.3.
func formatTemp(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

// PlainText strips the Markdown markers so the message can be read aloud.
func PlainText(msg string) string {
	return strings.ReplaceAll(msg, "*", "")
}
