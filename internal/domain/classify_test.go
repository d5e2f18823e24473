package domain

import (
	"testing"
	"time"
)

func TestClassifyMood(t *testing.T) {
	tests := []struct {
		text string
		want MoodKind
	}{
		{"Bad", MoodNegative},
		{"so TIRED today", MoodNegative},
		{"tired but great", MoodNegative},
		{"I don't want to", MoodNegative},
		{"I don\u2019t want to run", MoodNegative},
		{"okay I guess", MoodNeutral},
		{"pretty average", MoodNeutral},
		{"great!", MoodEnergetic},
		{"", MoodEnergetic},
		{FallbackMood, MoodEnergetic},
	}
	for _, tt := range tests {
		if got := ClassifyMood(tt.text); got != tt.want {
			t.Errorf("ClassifyMood(%q): want %d, got %d", tt.text, tt.want, got)
		}
	}
}

func TestClassifyWeather_Precedence(t *testing.T) {
	tests := []struct {
		name string
		s    Snapshot
		want WeatherKind
	}{
		{"rain beats cold", Snapshot{TemperatureC: -5, Condition: "light rain"}, WeatherRain},
		{"rain at 5", Snapshot{TemperatureC: 5, Condition: "rain"}, WeatherRain},
		{"snow", Snapshot{TemperatureC: 1, Condition: "heavy snow"}, WeatherCold},
		{"frost", Snapshot{TemperatureC: -3.5, Condition: "clear sky"}, WeatherCold},
		{"minus three is not cold", Snapshot{TemperatureC: -3, Condition: "clear sky"}, WeatherIdeal},
		{"heat", Snapshot{TemperatureC: 25.1, Condition: "clear sky"}, WeatherHeat},
		{"twenty five is not heat", Snapshot{TemperatureC: 25, Condition: "overcast"}, WeatherIdeal},
		{"sentinel", SentinelSnapshot, WeatherIdeal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyWeather(tt.s); got != tt.want {
				t.Fatalf("want %d, got %d", tt.want, got)
			}
		})
	}
}

func TestDescribeCode(t *testing.T) {
	if got := DescribeCode(63); got != "rain" {
		t.Fatalf("63: got %q", got)
	}
	if got := DescribeCode(53); ClassifyWeather(Snapshot{Condition: got, TemperatureC: 10}) != WeatherRain {
		t.Fatalf("53 should frame as rain, got %q", got)
	}
	if got := DescribeCode(42); got != "unknown" {
		t.Fatalf("42: got %q", got)
	}
}

func TestSeasonOf(t *testing.T) {
	want := map[time.Month]Season{
		time.January: Winter, time.February: Winter, time.March: Spring,
		time.May: Spring, time.June: Summer, time.August: Summer,
		time.September: Autumn, time.November: Autumn, time.December: Winter,
	}
	for m, s := range want {
		got := SeasonOf(time.Date(2025, m, 15, 0, 0, 0, 0, time.UTC))
		if got != s {
			t.Errorf("%s: want %s, got %s", m, s, got)
		}
	}
}

func TestParseClock(t *testing.T) {
	if m, err := ParseClock("04:00"); err != nil || m != 240 {
		t.Fatalf("04:00: got %d, %v", m, err)
	}
	if m, err := ParseClock(" 23:59 "); err != nil || m != 1439 {
		t.Fatalf("23:59: got %d, %v", m, err)
	}
	for _, bad := range []string{"", "4", "24:00", "12:60", "aa:bb"} {
		if _, err := ParseClock(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
	if got := FormatMinutes(240); got != "04:00" {
		t.Fatalf("FormatMinutes: got %s", got)
	}
}
