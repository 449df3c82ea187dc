// internal/workers/venues/score-venues/config.go
package scorevenues

import "time"

type Config struct {
	Timeout time.Duration
	// Cap bounds both the scoring candidates and the final venue list.
	Cap int
	// MinBeforeBackfill is the admitted count below which diversity caps are relaxed.
	MinBeforeBackfill int

	DefaultLocation    string
	DefaultCoordinates [2]float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:            10 * time.Second,
		Cap:                15,
		MinBeforeBackfill:  10,
		DefaultLocation:    "New York, NY",
		DefaultCoordinates: [2]float64{40.7589, -73.9851},
	}
}
