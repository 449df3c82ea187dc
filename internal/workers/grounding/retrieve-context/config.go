// internal/workers/grounding/retrieve-context/config.go
package retrievecontext

import "time"

type Config struct {
	Timeout      time.Duration
	TagIndex     string
	FewShotIndex string
	K            int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		TagIndex:     "culturis-tags",
		FewShotIndex: "culturis-fewshots",
		K:            8,
	}
}
