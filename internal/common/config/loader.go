// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SourceCSV           = "csv"
	SourcePostgres      = "postgres"
	SourceElasticsearch = "elasticsearch"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	defaultTemperature = 0.7
)

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
	_ = v.MergeInConfig() // ignore error if not found

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

	// Zero is a valid temperature, so it is defaulted only when the key is absent.
	v.SetDefault("chat.temperature", defaultTemperature)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

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
		"../../../.env",
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

// Find project root by looking for go.mod
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
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills values that are conventionally passed as bare
// environment variables rather than through the yaml tree.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Chat.APIKey == "" {
		if val := os.Getenv("OPENROUTER_API_KEY"); val != "" {
			cfg.Chat.APIKey = val
		} else if val := os.Getenv("open_router_key"); val != "" {
			cfg.Chat.APIKey = val
		}
	}

	if val := os.Getenv("DASHBOARD_ADDR"); val != "" {
		cfg.Server.Address = val
	}

	if cfg.Chat.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Chat.Redis.Address = val
		}
	}

	if cfg.Datasets.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Datasets.Postgres.User = val
		}
	}
	if cfg.Datasets.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Datasets.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "samarkand-dashboard"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8000"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 90000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	if cfg.Datasets.Source == "" {
		cfg.Datasets.Source = SourceCSV
	}
	if cfg.Datasets.DataDir == "" {
		cfg.Datasets.DataDir = "data"
	}
	cfg.Datasets.Files = withDefaults(cfg.Datasets.Files, map[string]string{
		"hospital":  "final_hos_df.csv",
		"school":    "final_school_df.csv",
		"preschool": "final_preschool_df.csv",
	})

	pg := &cfg.Datasets.Postgres
	if pg.Port == 0 {
		pg.Port = 5432
	}
	if pg.MaxConnections == 0 {
		pg.MaxConnections = 10
	}
	if pg.MaxIdle == 0 {
		pg.MaxIdle = 2
	}
	if pg.SSLMode == "" {
		pg.SSLMode = "disable"
	}
	pg.Tables = withDefaults(pg.Tables, map[string]string{
		"hospital":  "hospitals",
		"school":    "schools",
		"preschool": "preschools",
	})

	es := &cfg.Datasets.Elasticsearch
	if es.MaxRows == 0 {
		es.MaxRows = 10000
	}
	es.Indices = withDefaults(es.Indices, map[string]string{
		"hospital":  "hospitals",
		"school":    "schools",
		"preschool": "preschools",
	})

	if cfg.Chat.BaseURL == "" {
		cfg.Chat.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = "mistralai/mistral-7b-instruct"
	}
	if cfg.Chat.MaxTokens == 0 {
		cfg.Chat.MaxTokens = 500
	}
	if cfg.Chat.Timeout == 0 {
		cfg.Chat.Timeout = 60000
	}
	if cfg.Chat.ContextTTL == 0 {
		cfg.Chat.ContextTTL = 600
	}
	if cfg.Chat.CacheBackend == "" {
		cfg.Chat.CacheBackend = CacheBackendMemory
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

func withDefaults(current, defaults map[string]string) map[string]string {
	if current == nil {
		current = make(map[string]string, len(defaults))
	}
	for k, v := range defaults {
		if current[k] == "" {
			current[k] = v
		}
	}
	return current
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Datasets.Source {
	case SourceCSV:
		if cfg.Datasets.DataDir == "" {
			return fmt.Errorf("datasets.data_dir is required")
		}
	case SourcePostgres:
		if cfg.Datasets.Postgres.Host == "" {
			return fmt.Errorf("datasets.postgres.host is required")
		}
		if cfg.Datasets.Postgres.Database == "" {
			return fmt.Errorf("datasets.postgres.database is required")
		}
		if cfg.Datasets.Postgres.User == "" {
			return fmt.Errorf("datasets.postgres.user is required")
		}
	case SourceElasticsearch:
		if len(cfg.Datasets.Elasticsearch.Addresses) == 0 {
			return fmt.Errorf("datasets.elasticsearch.addresses is required")
		}
	default:
		return fmt.Errorf("datasets.source %q is not supported", cfg.Datasets.Source)
	}

	switch cfg.Chat.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if cfg.Chat.Redis.Address == "" {
			return fmt.Errorf("chat.redis.address is required for the redis cache backend")
		}
	default:
		return fmt.Errorf("chat.cache_backend %q is not supported", cfg.Chat.CacheBackend)
	}

	if cfg.Chat.ContextTTL < 0 {
		return fmt.Errorf("chat.context_ttl must not be negative")
	}

	return nil
}
