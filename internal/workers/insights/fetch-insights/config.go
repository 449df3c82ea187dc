// internal/workers/insights/fetch-insights/config.go
package fetchinsights

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
