package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all environment variables the application
// reads, e.g. TAALCOACH_SERVER_PORT or TAALCOACH_DATABASE_URL.
const envPrefix = "TAALCOACH"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// An on-disk config file is optional; environment variables alone are
	// enough to run the server.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so keys
	// without defaults must be bound explicitly.
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envOnlyKeys are config keys that have no default value and are expected to
// come from the environment or a config file.
var envOnlyKeys = []string{
	"database.url",
	"scheduler.min_ease_factor",
	"scheduler.max_ease_factor",
	"scheduler.ease_factor_bonus",
	"scheduler.ease_factor_penalty",
	"scheduler.first_interval",
	"scheduler.second_interval",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("ml.mastery_retrain_every", 10)
	v.SetDefault("ml.bandit_epsilon", 0.1)
	v.SetDefault("ml.bandit_retrain_threshold", 10)
	v.SetDefault("ml.bandit_retrain_every", 1)
}
