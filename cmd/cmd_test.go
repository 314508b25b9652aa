// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jcodagnone/geofacts/config"
	"github.com/jcodagnone/geofacts/retry"
	"github.com/jcodagnone/geofacts/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	l, err := newLogger("warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))

	_, err = newLogger("verbose")
	assert.Error(t, err)
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer

	printResult(&buf, "Paris", &spatial.Point{Latitude: 48.85, Longitude: 2.35}, nil)
	printResult(&buf, "Atlantis", nil, errors.New("no data"))

	assert.Equal(t, "Paris\t\t{\"latitude\":48.85,\"longitude\":2.35}\nAtlantis\t\"no data\"\n", buf.String())
}

func TestEachLineSkipsBlankLines(t *testing.T) {
	var got []string

	err := eachLine(strings.NewReader("Paris\n\n  Rome  \n"), "", func(s string) { got = append(got, s) })
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris", "Rome"}, got)
}

func TestRetryDelays(t *testing.T) {
	assert.Equal(t,
		[]time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
		retryDelays(retry.NewPolicy(4, time.Second, 2)))
	assert.Empty(t, retryDelays(retry.NewPolicy(1, time.Second, 2)))
}

func TestHTTPOptions(t *testing.T) {
	c := &config.Config{HTTP: config.HTTPConfig{
		Timeout:         3 * time.Second,
		BreakerFailures: 4,
		BreakerTimeout:  time.Minute,
	}}

	opts := httpOptions(c, "positionstack")
	assert.Equal(t, 3*time.Second, opts.Timeout)
	assert.Nil(t, opts.Breaker)

	c.HTTP.BreakerEnabled = true
	opts = httpOptions(c, "positionstack")
	require.NotNil(t, opts.Breaker)
	assert.Equal(t, "positionstack", opts.Breaker.Name)
	assert.Equal(t, uint32(4), opts.Breaker.ConsecutiveFailures)
}
