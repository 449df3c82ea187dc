// internal/workers/insights/extract-clusters/config.go
package extractclusters

import "time"

type Config struct {
	Timeout  time.Duration
	DefaultK int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  10 * time.Second,
		DefaultK: 3,
	}
}
