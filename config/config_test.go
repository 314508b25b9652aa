// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jcodagnone/geofacts/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"PORT", "LOG_LEVEL", "GIN_MODE",
	"GEOCODING_PROVIDER", "POSITIONSTACK_API_KEY", "API_KEY", "GOOGLE_MAPS_API_KEY",
	"GEOCODING_BASE_URL", "GOOGLE_CLOUD_PROJECT", "GOOGLE_MAPS_KEY_NAME",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
	"RETRY_MAX_ATTEMPTS", "RETRY_INITIAL_DELAY", "RETRY_MULTIPLIER",
	"HTTP_TIMEOUT", "BREAKER_ENABLED", "BREAKER_FAILURES", "BREAKER_TIMEOUT",
}

// clearEnv blanks every variable Load reads. Blank values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

// unsetEnv removes the variables so a dotenv file can provide them. t.Setenv
// restores the previous values on cleanup.
func unsetEnv(t *testing.T) {
	t.Helper()

	for _, k := range allKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "positionstack", cfg.Geocoding.Provider)
	assert.Equal(t, "gpt-4o", cfg.Chat.Model)
	assert.Equal(t, retry.DefaultPolicy(), cfg.Retry.Policy())
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.False(t, cfg.HTTP.BreakerEnabled)
	assert.ElementsMatch(t, []string{"API_KEY", "OPENAI_API_KEY"}, cfg.MissingKeys())
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("API_KEY", "ps-key")
	t.Setenv("OPENAI_API_KEY", "sk-key")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("RETRY_INITIAL_DELAY", "250ms")
	t.Setenv("RETRY_MULTIPLIER", "1.5")
	t.Setenv("BREAKER_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, "ps-key", cfg.Geocoding.APIKey)
	assert.Equal(t, "sk-key", cfg.Chat.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Chat.Model)
	assert.Equal(t, retry.NewPolicy(5, 250*time.Millisecond, 1.5), cfg.Retry.Policy())
	assert.True(t, cfg.HTTP.BreakerEnabled)
	assert.NoError(t, cfg.RequireKeys())
}

func TestLoadPositionstackKeyPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "legacy")
	t.Setenv("POSITIONSTACK_API_KEY", "explicit")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.Geocoding.APIKey)
}

func TestLoadGoogleProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEOCODING_PROVIDER", "google")
	t.Setenv("API_KEY", "ignored")
	t.Setenv("OPENAI_API_KEY", "sk-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Geocoding.APIKey)
	assert.Equal(t, []string{"GOOGLE_MAPS_API_KEY"}, cfg.MissingKeys())

	err = cfg.RequireKeys()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_MAPS_API_KEY is missing")
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port not a number", key: "PORT", value: "http"},
		{name: "port out of range", key: "PORT", value: "70000"},
		{name: "bad duration", key: "RETRY_INITIAL_DELAY", value: "soon"},
		{name: "zero attempts", key: "RETRY_MAX_ATTEMPTS", value: "0"},
		{name: "shrinking multiplier", key: "RETRY_MULTIPLIER", value: "0.5"},
		{name: "unknown provider", key: "GEOCODING_PROVIDER", value: "nominatim"},
		{name: "bad log level", key: "LOG_LEVEL", value: "verbose"},
		{name: "bad base url", key: "OPENAI_BASE_URL", value: "not a url"},
		{name: "bad bool", key: "BREAKER_ENABLED", value: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoadDotenv(t *testing.T) {
	unsetEnv(t)
	t.Setenv("OPENAI_API_KEY", "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("API_KEY=from-file\nOPENAI_API_KEY=from-file\nPORT=4000\n"), 0o600))

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Geocoding.APIKey)
	assert.Equal(t, "from-env", cfg.Chat.APIKey, "environment wins over the file")
	assert.Equal(t, 4000, cfg.Port)
}
