// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/jcodagnone/geofacts/config"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var rootOptions struct {
	LogLevel string
	EnvFile  string
}

var (
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "geofacts",
	Short: "geocoding and factoid proxy",
	Long: `
geofacts exposes forward and reverse geocoding backed by a third-party provider,
and a chat endpoint that answers with a short factoid about a place.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error

		cfg, err = config.Load(rootOptions.EnvFile)
		if err != nil {
			return err
		}

		level := cfg.LogLevel
		if rootOptions.LogLevel != "" {
			level = rootOptions.LogLevel
		}

		logger, err = newLogger(level)

		return err
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

// stderrIsTerminal reports whether stderr is attached to a terminal.
func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newLogger logs human readable lines to a terminal and JSON otherwise.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var zcfg zap.Config
	if stderrIsTerminal() {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	return zcfg.Build()
}

var Version = "dev"

func Execute(version string) {
	Version = version
	rootCmd.Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.LogLevel,
		"log-level",
		"",
		"Log level (debug, info, warn, error). Overrides LOG_LEVEL",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.EnvFile,
		"env-file",
		".env",
		"Dotenv file to load before reading the environment",
	)
}
