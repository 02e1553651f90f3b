package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("open_router_key", "")
	t.Setenv("DASHBOARD_ADDR", "")

	cfg, err := LoadFromFile(writeConfig(t, "app:\n  name: test-dashboard\n"))
	require.NoError(t, err)

	assert.Equal(t, "test-dashboard", cfg.App.Name)
	assert.Equal(t, ":8000", cfg.Server.Address)
	assert.Equal(t, SourceCSV, cfg.Datasets.Source)
	assert.Equal(t, "final_hos_df.csv", cfg.Datasets.Files["hospital"])
	assert.Equal(t, "final_school_df.csv", cfg.Datasets.Files["school"])
	assert.Equal(t, "final_preschool_df.csv", cfg.Datasets.Files["preschool"])
	assert.Equal(t, "hospitals", cfg.Datasets.Postgres.Tables["hospital"])
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.Chat.BaseURL)
	assert.Equal(t, 500, cfg.Chat.MaxTokens)
	assert.Equal(t, 0.7, cfg.Chat.Temperature)
	assert.Equal(t, 600, cfg.Chat.ContextTTL)
	assert.Equal(t, CacheBackendMemory, cfg.Chat.CacheBackend)
	assert.Empty(t, cfg.Chat.APIKey)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_APIKeyFromEnvironment(t *testing.T) {
	tests := []struct {
		name    string
		primary string
		legacy  string
		want    string
	}{
		{name: "primary variable", primary: "sk-primary", want: "sk-primary"},
		{name: "legacy variable", legacy: "sk-legacy", want: "sk-legacy"},
		{name: "primary wins", primary: "sk-primary", legacy: "sk-legacy", want: "sk-primary"},
		{name: "none configured", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENROUTER_API_KEY", tt.primary)
			t.Setenv("open_router_key", tt.legacy)

			cfg, err := LoadFromFile(writeConfig(t, "chat:\n  model: test-model\n"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Chat.APIKey)
			assert.Equal(t, "test-model", cfg.Chat.Model)
		})
	}
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("DASHBOARD_DATA_DIR", "/srv/data")

	cfg, err := LoadFromFile(writeConfig(t, "datasets:\n  data_dir: ${DASHBOARD_DATA_DIR}\n"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/data", cfg.Datasets.DataDir)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "unknown source",
			body:    "datasets:\n  source: sqlite\n",
			wantErr: "datasets.source",
		},
		{
			name:    "postgres without host",
			body:    "datasets:\n  source: postgres\n  postgres:\n    database: facilities\n    user: reader\n",
			wantErr: "datasets.postgres.host",
		},
		{
			name:    "elasticsearch without addresses",
			body:    "datasets:\n  source: elasticsearch\n",
			wantErr: "datasets.elasticsearch.addresses",
		},
		{
			name:    "redis backend without address",
			body:    "chat:\n  cache_backend: redis\n",
			wantErr: "chat.redis.address",
		},
		{
			name:    "unknown cache backend",
			body:    "chat:\n  cache_backend: memcached\n",
			wantErr: "chat.cache_backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REDIS_ADDRESS", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_Temperature(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{"absent uses default", "chat:\n  model: test-model\n", 0.7},
		{"explicit zero kept", "chat:\n  temperature: 0\n", 0},
		{"explicit value kept", "chat:\n  temperature: 1.2\n", 1.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromFile(writeConfig(t, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Chat.Temperature)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestChatConfig_ContextTTLDuration(t *testing.T) {
	assert.Equal(t, "10m0s", ChatConfig{ContextTTL: 600}.ContextTTLDuration().String())
}
