// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"

	"github.com/jcodagnone/geofacts/chat"
	"github.com/jcodagnone/geofacts/config"
	"github.com/jcodagnone/geofacts/geocoding"
	"github.com/jcodagnone/geofacts/utils/httputils"
	"go.uber.org/zap"
)

var providerOptions struct {
	EnableHTTPTrace bool
}

// httpOptions returns the outbound client options for the named upstream.
func httpOptions(c *config.Config, name string) httputils.ClientOptions {
	opts := httputils.ClientOptions{Timeout: c.HTTP.Timeout}

	if providerOptions.EnableHTTPTrace {
		opts.Trace = os.Stderr
	}

	if c.HTTP.BreakerEnabled {
		opts.Breaker = &httputils.BreakerSettings{
			Name:                name,
			ConsecutiveFailures: c.HTTP.BreakerFailures,
			Timeout:             c.HTTP.BreakerTimeout,
			Logger:              logger,
		}
	}

	return opts
}

// resolveGoogleKey fills in the google key from Application Default
// Credentials when none is configured. Failures are logged and leave the key
// empty.
func resolveGoogleKey(ctx context.Context, c *config.Config) {
	if c.Geocoding.Provider == geocoding.ProviderPositionstack || c.Geocoding.APIKey != "" {
		return
	}

	key, err := geocoding.LookupGoogleMapsKey(ctx, c.Geocoding.GoogleProject, c.Geocoding.GoogleKeyName, logger)
	if err != nil {
		logger.Warn("could not look up google maps key", zap.Error(err))

		return
	}

	c.Geocoding.APIKey = key
}

func newGeocoder(c *config.Config) (geocoding.Geocoder, error) {
	return geocoding.New(c.Geocoding.Provider, geocoding.Options{
		APIKey:     c.Geocoding.APIKey,
		BaseURL:    c.Geocoding.BaseURL,
		HTTPClient: httputils.NewClient(httpOptions(c, c.Geocoding.Provider)),
		Retry:      c.Retry.Policy(),
		Logger:     logger,
	})
}

func newFactoids(c *config.Config) *chat.Factoids {
	client := chat.NewClient(chat.Options{
		APIKey:  c.Chat.APIKey,
		BaseURL: c.Chat.BaseURL,
		Model:   c.Chat.Model,
		HTTP:    httpOptions(c, "openai"),
	})

	logger.Info("chat client ready", zap.String("model", client.Model()))

	return chat.NewFactoids(client, logger)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(
		&providerOptions.EnableHTTPTrace,
		"trace-http",
		false,
		"Display upstream HTTP requests-responses",
	)
}
