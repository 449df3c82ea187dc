// internal/workers/tastes/extract-tastes/config.go
package extracttastes

import "time"

type Config struct {
	Timeout         time.Duration
	DefaultLocation string
	Temperature     float64
	MaxTokens       int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		DefaultLocation: "New York, NY",
		Temperature:     0.3,
		MaxTokens:       500,
	}
}
