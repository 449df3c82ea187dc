// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultLocation   = "New York, NY"
	DefaultQlooBase   = "https://hackathon.api.qloo.com"
	DefaultChatModel  = "gpt-4o-mini"
	DefaultEmbedModel = "text-embedding-3-small"

	// MaxVenueCap bounds how many venues one search may return.
	MaxVenueCap = 15
)

// DefaultCoordinates is the map centre used when a venue request carries none.
var DefaultCoordinates = []float64{40.7589, -73.9851}

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// expands ${VAR} placeholders and applies defaults.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// overrideEmptyConfig fills secrets that are usually supplied through the
// environment rather than the YAML file.
func overrideEmptyConfig(cfg *Config) {
	overrides := []struct {
		env    string
		target *string
	}{
		{"OPENAI_API_KEY", &cfg.APIs.OpenAI.APIKey},
		{"QLOO_API_KEY", &cfg.APIs.Qloo.APIKey},
		{"DB_USER", &cfg.Database.Postgres.User},
		{"DB_PASSWORD", &cfg.Database.Postgres.Password},
		{"REDIS_ADDRESS", &cfg.Database.Redis.Address},
		{"ELASTICSEARCH_URL", &cfg.Database.Elasticsearch.URL},
		{"ZEEBE_ADDRESS", &cfg.Camunda.BrokerAddress},
	}
	for _, o := range overrides {
		if *o.target != "" {
			continue
		}
		if val := os.Getenv(o.env); val != "" {
			*o.target = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "culturis"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		for _, host := range []string{"localhost", "127.0.0.1"} {
			for _, port := range []int{3000, 3001, 5000, 5001} {
				cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, fmt.Sprintf("http://%s:%d", host, port))
			}
		}
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 90000
	}

	if cfg.Camunda.BrokerAddress == "" {
		cfg.Camunda.BrokerAddress = "localhost:26500"
	}
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if cfg.Retriever.TagIndex == "" {
		cfg.Retriever.TagIndex = "culturis-tags"
	}
	if cfg.Retriever.FewShotIndex == "" {
		cfg.Retriever.FewShotIndex = "culturis-fewshots"
	}
	if cfg.Retriever.K == 0 {
		cfg.Retriever.K = 8
	}
	if cfg.Retriever.Dimensions == 0 {
		cfg.Retriever.Dimensions = 1536
	}

	if cfg.Pipeline.DefaultLocation == "" {
		cfg.Pipeline.DefaultLocation = DefaultLocation
	}
	if len(cfg.Pipeline.DefaultCoordinates) != 2 {
		cfg.Pipeline.DefaultCoordinates = append([]float64(nil), DefaultCoordinates...)
	}
	if cfg.Pipeline.ChatClusters == 0 {
		cfg.Pipeline.ChatClusters = 3
	}
	if cfg.Pipeline.InsightClusters == 0 {
		cfg.Pipeline.InsightClusters = 5
	}
	if cfg.Pipeline.VenueCap == 0 {
		cfg.Pipeline.VenueCap = MaxVenueCap
	}

	if cfg.APIs.OpenAI.ChatModel == "" {
		cfg.APIs.OpenAI.ChatModel = DefaultChatModel
	}
	if cfg.APIs.OpenAI.EmbeddingModel == "" {
		cfg.APIs.OpenAI.EmbeddingModel = DefaultEmbedModel
	}
	if cfg.APIs.OpenAI.Timeout == 0 {
		cfg.APIs.OpenAI.Timeout = 30000
	}
	if cfg.APIs.Qloo.BaseURL == "" {
		cfg.APIs.Qloo.BaseURL = DefaultQlooBase
	}
	if cfg.APIs.Qloo.Timeout == 0 {
		cfg.APIs.Qloo.Timeout = 30000
	}

	if cfg.Registry.Path == "" {
		cfg.Registry.Path = "configs/activity-registry.json"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = 1
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.APIs.Qloo.APIKey == "" {
		return fmt.Errorf("apis.qloo.api_key is required")
	}
	if cfg.APIs.OpenAI.APIKey == "" {
		return fmt.Errorf("apis.openai.api_key is required")
	}

	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Database.Elasticsearch.GetURL() == "" {
		return fmt.Errorf("database.elasticsearch.addresses or url is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	if cfg.Pipeline.VenueCap < 1 || cfg.Pipeline.VenueCap > MaxVenueCap {
		return fmt.Errorf("pipeline.venue_cap must be between 1 and %d, got %d", MaxVenueCap, cfg.Pipeline.VenueCap)
	}

	if lat, lng := cfg.Pipeline.DefaultCoordinates[0], cfg.Pipeline.DefaultCoordinates[1]; lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return fmt.Errorf("pipeline.default_coordinates out of range: [%v, %v]", lat, lng)
	}

	if cfg.Tracing.Enabled && cfg.Tracing.JaegerEndpoint == "" {
		return fmt.Errorf("tracing.jaeger_endpoint is required when tracing is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves stage worker configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, taskType string) WorkerConfig {
	if worker, exists := cfg.Workers[taskType]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
	}
}

// IsWorkerEnabled checks if a specific stage worker is enabled
func IsWorkerEnabled(cfg *Config, taskType string) bool {
	if worker, exists := cfg.Workers[taskType]; exists {
		return worker.Enabled
	}
	return true
}
