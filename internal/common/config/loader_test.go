package config

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
database:
  postgres:
    host: localhost
    database: culturis
    user: culturis
  elasticsearch:
    addresses: ["http://localhost:9200"]
  redis:
    address: localhost:6379
apis:
  openai:
    api_key: ${TEST_OPENAI_KEY}
  qloo:
    api_key: qloo-key
workers:
  plan-request:
    enabled: true
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.APIs.OpenAI.APIKey)
	assert.Equal(t, DefaultQlooBase, cfg.APIs.Qloo.BaseURL)
	assert.Equal(t, DefaultChatModel, cfg.APIs.OpenAI.ChatModel)
	assert.Equal(t, 30000, cfg.APIs.Qloo.Timeout)
	assert.Equal(t, DefaultLocation, cfg.Pipeline.DefaultLocation)
	assert.Equal(t, []float64{40.7589, -73.9851}, cfg.Pipeline.DefaultCoordinates)
	assert.Equal(t, 15, cfg.Pipeline.VenueCap)
	assert.Equal(t, "culturis-tags", cfg.Retriever.TagIndex)
	assert.Equal(t, 8, cfg.Retriever.K)
	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.URL)
	assert.Len(t, cfg.Server.AllowedOrigins, 8)
	assert.Contains(t, cfg.Server.AllowedOrigins, "http://127.0.0.1:5001")
	assert.Equal(t, ":8000", cfg.Server.Addr())

	worker := GetWorkerConfig(cfg, "plan-request")
	assert.True(t, worker.Enabled)
	assert.Equal(t, 30000, worker.Timeout)
	assert.True(t, IsWorkerEnabled(cfg, "unknown-stage"))
}

func TestLoadFromFile_EnvOverridesEmptySecrets(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.APIs.OpenAI.APIKey)
}

func TestLoadFromFile_Validation(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("QLOO_API_KEY", "")
	t.Setenv("TEST_OPENAI_KEY", "")

	_, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apis.openai.api_key is required")
}

func TestLoadFromFile_VenueCap(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")

	tests := []struct {
		name    string
		cap     string
		wantErr bool
	}{
		{"at limit", "15", false},
		{"below limit", "6", false},
		{"above limit", "16", true},
		{"negative", "-1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := minimalConfig + "pipeline:\n  venue_cap: " + tt.cap + "\n"
			cfg, err := LoadFromFile(writeConfig(t, body))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "pipeline.venue_cap")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cap, strconv.Itoa(cfg.Pipeline.VenueCap))
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, "1.5s", GetDuration(1500).String())
}
