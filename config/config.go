// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package config builds the process configuration once at startup. Nothing
// else in the module reads the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jcodagnone/geofacts/retry"
	"github.com/joho/godotenv"
)

// Config represents the complete application configuration.
type Config struct {
	Port     int    `validate:"min=1,max=65535"`
	LogLevel string `validate:"oneof=debug info warn error"`
	GinMode  string `validate:"omitempty,oneof=debug release test"`

	Geocoding GeocodingConfig
	Chat      ChatConfig
	Retry     RetryConfig
	HTTP      HTTPConfig
}

// GeocodingConfig selects and configures the geocoding provider.
type GeocodingConfig struct {
	Provider string `validate:"oneof=positionstack google google_maps"`
	APIKey   string
	BaseURL  string `validate:"omitempty,url"`
	// GoogleProject and GoogleKeyName drive the ADC key lookup used when the
	// google provider has no key.
	GoogleProject string
	GoogleKeyName string
}

// ChatConfig configures the chat completions provider.
type ChatConfig struct {
	APIKey  string
	BaseURL string `validate:"omitempty,url"`
	Model   string `validate:"required"`
}

// RetryConfig is the backoff policy for geocoding calls.
type RetryConfig struct {
	MaxAttempts  int           `validate:"min=1"`
	InitialDelay time.Duration `validate:"min=0"`
	Multiplier   float64       `validate:"min=1"`
}

// HTTPConfig configures outbound HTTP.
type HTTPConfig struct {
	Timeout         time.Duration `validate:"gt=0"`
	BreakerEnabled  bool
	BreakerFailures uint32 `validate:"min=1"`
	BreakerTimeout  time.Duration
}

// Policy returns the retry policy described by c.
func (c RetryConfig) Policy() retry.Policy {
	return retry.NewPolicy(c.MaxAttempts, c.InitialDelay, c.Multiplier)
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads the given dotenv files, when they exist, and then the process
// environment. Variables already set in the environment win over the files.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	env := &envReader{}

	provider := strings.ToLower(env.str("GEOCODING_PROVIDER", "positionstack"))

	geoKey := env.str("POSITIONSTACK_API_KEY", env.str("API_KEY", ""))
	if provider != "positionstack" {
		geoKey = env.str("GOOGLE_MAPS_API_KEY", "")
	}

	cfg := &Config{
		Port:     env.asInt("PORT", 3000),
		LogLevel: strings.ToLower(env.str("LOG_LEVEL", "info")),
		GinMode:  env.str("GIN_MODE", ""),
		Geocoding: GeocodingConfig{
			Provider:      provider,
			APIKey:        geoKey,
			BaseURL:       env.str("GEOCODING_BASE_URL", ""),
			GoogleProject: env.str("GOOGLE_CLOUD_PROJECT", ""),
			GoogleKeyName: env.str("GOOGLE_MAPS_KEY_NAME", ""),
		},
		Chat: ChatConfig{
			APIKey:  env.str("OPENAI_API_KEY", ""),
			BaseURL: env.str("OPENAI_BASE_URL", ""),
			Model:   env.str("OPENAI_MODEL", "gpt-4o"),
		},
		Retry: RetryConfig{
			MaxAttempts:  env.asInt("RETRY_MAX_ATTEMPTS", 3),
			InitialDelay: env.asDuration("RETRY_INITIAL_DELAY", time.Second),
			Multiplier:   env.asFloat("RETRY_MULTIPLIER", 2),
		},
		HTTP: HTTPConfig{
			Timeout:         env.asDuration("HTTP_TIMEOUT", 10*time.Second),
			BreakerEnabled:  env.asBool("BREAKER_ENABLED", false),
			BreakerFailures: uint32(env.asInt("BREAKER_FAILURES", 5)), //nolint:gosec // validated below
			BreakerTimeout:  env.asDuration("BREAKER_TIMEOUT", 30*time.Second),
		},
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration values. Missing API keys are reported by
// RequireKeys instead.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}

		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}

		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}

	return nil
}

// MissingKeys lists the environment variables of the provider keys that are
// not set.
func (c *Config) MissingKeys() []string {
	var missing []string

	if c.Geocoding.APIKey == "" {
		if c.Geocoding.Provider == "positionstack" {
			missing = append(missing, "API_KEY")
		} else {
			missing = append(missing, "GOOGLE_MAPS_API_KEY")
		}
	}

	if c.Chat.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}

	return missing
}

// RequireKeys fails when a provider key is missing.
func (c *Config) RequireKeys() error {
	if missing := c.MissingKeys(); len(missing) > 0 {
		return fmt.Errorf("%s is missing. Please add it to your .env file", strings.Join(missing, ", "))
	}

	return nil
}

// envReader reads typed variables and remembers parse failures.
type envReader struct {
	errs []error
}

func (r *envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	return def
}

func (r *envReader) asInt(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))

		return def
	}

	return n
}

func (r *envReader) asFloat(key string, def float64) float64 {
	v := r.str(key, "")
	if v == "" {
		return def
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))

		return def
	}

	return f
}

func (r *envReader) asBool(key string, def bool) bool {
	v := r.str(key, "")
	if v == "" {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))

		return def
	}

	return b
}

func (r *envReader) asDuration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))

		return def
	}

	return d
}
