package domain

import "time"

// Location is a fixed geographic point the bot reports weather for.
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
	TZ        string
}

// Vladivostok is the compiled-in location: weather, prompt time, weekday and
// season are all evaluated here.
var Vladivostok = Location{
	Name:      "Vladivostok",
	Latitude:  43.1056,
	Longitude: 131.8735,
	TZ:        "Asia/Vladivostok",
}

// Zone loads the IANA zone of the location. Falls back to a fixed UTC+10
// offset if the tz database is unavailable.
func (l Location) Zone() *time.Location {
	loc, err := time.LoadLocation(l.TZ)
	if err != nil {
		return time.FixedZone(l.TZ, 10*60*60)
	}
	return loc
}
