package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BLOG"

var defaults = map[string]any{
	"server.port":                   8080,
	"server.log_level":              "info",
	"server.max_upload_mb":          32,
	"server.read_timeout_seconds":   15,
	"server.write_timeout_seconds":  30,
	"server.cors_allowed_origins":   []string{},
	"server.version":                "dev",
	"server.environment":            "development",
	"database.url":                  "",
	"database.auto_migrate":         true,
	"auth.session_secret":           "",
	"auth.session_lifetime_minutes": 60 * 24 * 14,
	"auth.bcrypt_cost":              12,
	"auth.csrf_enforce":             false,
	"auth.cookie_secure":            false,
	"auth.login_rate_per_minute":    10,
	"redis.addr":                    "",
	"redis.password":                "",
	"redis.db":                      0,
	"storage.endpoint":              "",
	"storage.access_key":            "",
	"storage.secret_key":            "",
	"storage.bucket":                "media",
	"storage.use_ssl":               false,
	"storage.public_url":            "",
	"telemetry.exporter":            "none",
	"telemetry.service_name":        "blog-api",
	"telemetry.sample_rate":         1.0,
	"kafka.brokers":                 []string{},
	"kafka.topic":                   "",
	"bootstrap.admin_username":      "",
	"bootstrap.admin_email":         "",
	"bootstrap.admin_password":      "",
}

// Load configuration from environment variables and optionally config files.
// A .env file in the working directory is loaded first and never overrides
// variables that are already set. Environment variables take precedence over
// values from config.yaml.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. An empty path searches
// the working directory for config.yaml.
func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Server.CORSAllowedOrigins = splitList(cfg.Server.CORSAllowedOrigins)
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// splitList flattens comma-separated items and drops blanks. It returns nil
// when nothing remains so that required_with treats the list as absent.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
