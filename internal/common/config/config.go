// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Datasets DatasetsConfig `mapstructure:"datasets"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// DatasetsConfig selects where the hospital/school/preschool tables come from.
type DatasetsConfig struct {
	Source        string              `mapstructure:"source"` // csv, postgres, elasticsearch
	DataDir       string              `mapstructure:"data_dir"`
	Files         map[string]string   `mapstructure:"files"`
	CacheTables   bool                `mapstructure:"cache_tables"`
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string            `mapstructure:"host"`
	Port           int               `mapstructure:"port"`
	Database       string            `mapstructure:"database"`
	User           string            `mapstructure:"user"`
	Password       string            `mapstructure:"password"`
	MaxConnections int               `mapstructure:"max_connections"`
	MaxIdle        int               `mapstructure:"max_idle"`
	SSLMode        string            `mapstructure:"sslmode"`
	Tables         map[string]string `mapstructure:"tables"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string          `mapstructure:"addresses"`
	Username  string            `mapstructure:"username"`
	Password  string            `mapstructure:"password"`
	Indices   map[string]string `mapstructure:"indices"`
	MaxRows   int               `mapstructure:"max_rows"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ChatConfig holds the completion API and context cache settings.
type ChatConfig struct {
	BaseURL      string      `mapstructure:"base_url"`
	APIKey       string      `mapstructure:"api_key"`
	Model        string      `mapstructure:"model"`
	MaxTokens    int         `mapstructure:"max_tokens"`
	Temperature  float64     `mapstructure:"temperature"`
	Timeout      int         `mapstructure:"timeout"`     // milliseconds
	ContextTTL   int         `mapstructure:"context_ttl"` // seconds
	CacheBackend string      `mapstructure:"cache_backend"`
	Redis        RedisConfig `mapstructure:"redis"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// ContextTTLDuration returns the chat context cache window.
func (c ChatConfig) ContextTTLDuration() time.Duration {
	return time.Duration(c.ContextTTL) * time.Second
}
