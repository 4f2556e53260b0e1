package adaptcontent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the settings shared by every command. Values resolve in
// three layers: built-in defaults, then the optional YAML file, then
// environment variables.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	SurrealDB struct {
		URL       string `yaml:"url"`
		Namespace string `yaml:"namespace"`
		Database  string `yaml:"database"`
		Username  string `yaml:"username"`
		Password  string `yaml:"password"`
	} `yaml:"surrealdb"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	// Memory switches to the in-memory store, for development and tests.
	Memory bool `yaml:"memory"`
}

func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.SurrealDB.URL = "ws://localhost:8000/rpc"
	cfg.SurrealDB.Namespace = "adapt"
	cfg.SurrealDB.Database = "authoring"
	cfg.SurrealDB.Username = "root"
	cfg.SurrealDB.Password = "root"
	cfg.Log.Level = "info"
	return cfg
}

// LoadConfig builds the effective configuration. path may be empty, in which
// case only defaults and the environment apply.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.Server.Port = getEnv("ADAPT_CONTENT_PORT", cfg.Server.Port)
	cfg.SurrealDB.URL = getEnv("SURREALDB_URL", cfg.SurrealDB.URL)
	cfg.SurrealDB.Namespace = getEnv("SURREALDB_NAMESPACE", cfg.SurrealDB.Namespace)
	cfg.SurrealDB.Database = getEnv("SURREALDB_DATABASE", cfg.SurrealDB.Database)
	cfg.SurrealDB.Username = getEnv("SURREALDB_USER", cfg.SurrealDB.Username)
	cfg.SurrealDB.Password = getEnv("SURREALDB_PASS", cfg.SurrealDB.Password)
	cfg.Log.Level = getEnv("ADAPT_CONTENT_LOG_LEVEL", cfg.Log.Level)
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
