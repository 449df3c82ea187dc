// internal/workers/data-access/record-chat-log/config.go
package recordchatlog

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
