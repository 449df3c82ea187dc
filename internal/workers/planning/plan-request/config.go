// internal/workers/planning/plan-request/config.go
package planrequest

import "time"

type Config struct {
	Timeout         time.Duration
	DefaultLocation string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		DefaultLocation: "New York, NY",
	}
}
