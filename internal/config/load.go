package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence over file values and use the REVISE_ prefix with underscores,
// e.g. REVISE_SERVER_PORT or REVISE_DATABASE_URL.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	// An explicit empty default so AutomaticEnv can populate the key from
	// REVISE_DATABASE_URL; validation rejects the empty value.
	v.SetDefault("database.url", "")
	v.SetDefault("scheduler.target_retention", 0.9)
	v.SetDefault("scheduler.max_interval_days", 36500)
	v.SetDefault("scheduler.disable_fuzz", false)
	v.SetDefault("scheduler.review_retries", 3)
	v.SetDefault("worker.count", 2)
	v.SetDefault("worker.queue_size", 64)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; the environment can provide
		// everything. Any other read failure is surfaced.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("REVISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
