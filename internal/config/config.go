package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Events   EventsConfig   `yaml:"events"`
	Mappings MappingsConfig `yaml:"mappings"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type EventsConfig struct {
	URL string `yaml:"url"`
}

type MappingsConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

type ScoringConfig struct {
	DefaultMode        string `yaml:"default_mode"`
	MaxCodes           int    `yaml:"max_codes"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Mappings: MappingsConfig{
			Path:  "mappings/charlson.yaml",
			Watch: true,
		},
		Scoring: ScoringConfig{
			DefaultMode:        "prefix",
			MaxCodes:           512,
			RateLimitPerMinute: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	switch cfg.Scoring.DefaultMode {
	case "exact", "prefix":
	default:
		return nil, fmt.Errorf("invalid scoring.default_mode %q", cfg.Scoring.DefaultMode)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("COMORBID_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("COMORBID_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("COMORBID_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("COMORBID_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("COMORBID_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("COMORBID_MAPPINGS_PATH"); v != "" {
		cfg.Mappings.Path = v
	}
	if v := os.Getenv("COMORBID_MAPPINGS_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Mappings.Watch = b
		}
	}
	if v := os.Getenv("COMORBID_DEFAULT_MODE"); v != "" {
		cfg.Scoring.DefaultMode = v
	}
	if v := os.Getenv("COMORBID_MAX_CODES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.MaxCodes = n
		}
	}
	if v := os.Getenv("COMORBID_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("COMORBID_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
