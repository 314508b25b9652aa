// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/geofacts/retry"
	"github.com/jcodagnone/geofacts/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveOptions struct {
	Port             int
	AllowMissingKeys bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the geocoding and factoid HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Port = serveOptions.Port
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(runContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		resolveGoogleKey(ctx, cfg)

		if err := cfg.RequireKeys(); err != nil {
			if !serveOptions.AllowMissingKeys {
				return err
			}

			logger.Warn("starting without provider keys, affected routes will fail",
				zap.String("missing", strings.Join(cfg.MissingKeys(), ",")))
		}

		geocoder, err := newGeocoder(cfg)
		if err != nil {
			return err
		}

		if cfg.GinMode != "" {
			gin.SetMode(cfg.GinMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}

		if !stderrIsTerminal() {
			gin.DisableConsoleColor()
		}

		logger.Info("starting",
			zap.String("version", Version),
			zap.String("geocoder", geocoder.Name()),
			zap.Int("retry_max_attempts", cfg.Retry.MaxAttempts),
			zap.Durations("retry_delays", retryDelays(cfg.Retry.Policy())),
			zap.Bool("breaker", cfg.HTTP.BreakerEnabled))

		return server.NewServer(geocoder, newFactoids(cfg), logger).Run(ctx, cfg.Addr())
	},
}

// retryDelays lists the waits before attempts 2..MaxAttempts.
func retryDelays(p retry.Policy) []time.Duration {
	delays := make([]time.Duration, 0, max(0, p.MaxAttempts-1))
	for attempt := 2; attempt <= p.MaxAttempts; attempt++ {
		delays = append(delays, p.Delay(attempt))
	}

	return delays
}

// runContext returns the command context, or Background when none is set.
func runContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(
		&serveOptions.Port,
		"port",
		3000,
		"Port to listen on. Overrides PORT",
	)
	serveCmd.Flags().BoolVar(
		&serveOptions.AllowMissingKeys,
		"allow-missing-keys",
		false,
		"Start even when a provider API key is missing",
	)
}
