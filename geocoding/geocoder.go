// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocoding resolves place names to coordinates and back through a
// third-party provider.
package geocoding

import (
	"context"
	"net/http"
	"strings"

	"github.com/jcodagnone/geofacts/fault"
	"github.com/jcodagnone/geofacts/retry"
	"github.com/jcodagnone/geofacts/spatial"
	"go.uber.org/zap"
)

// Place is the result of a reverse lookup.
type Place struct {
	Label string `json:"place"`
}

// Geocoder interface for different geocoding providers.
//
// Implementations return *fault.Error values: Validation for missing input,
// NotFound when the provider has no match, Provider otherwise.
type Geocoder interface {
	Name() string
	Forward(ctx context.Context, location string) (*spatial.Point, error)
	Reverse(ctx context.Context, coords spatial.LatLng) (*Place, error)
}

// Options are shared by every provider.
type Options struct {
	APIKey string
	// BaseURL overrides the provider endpoint, mostly for tests.
	BaseURL    string
	HTTPClient *http.Client
	Retry      retry.Policy
	Logger     *zap.Logger
}

func (o *Options) defaults(baseURL string) {
	if o.BaseURL == "" {
		o.BaseURL = baseURL
	}

	o.BaseURL = strings.TrimRight(o.BaseURL, "/")

	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}

	if o.Retry.MaxAttempts == 0 {
		o.Retry = retry.DefaultPolicy()
	}

	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

func validateLocation(location string) error {
	if location == "" {
		return fault.Validationf("location is required in the query parameters")
	}

	return nil
}

func validateCoordinates(coords spatial.LatLng) error {
	if !coords.Complete() {
		return fault.Validationf("Latitude and longitude are required in the query parameters")
	}

	return nil
}

func errLocationNotFound() error {
	return fault.NotFoundf("No data found for the specified location")
}

func errCoordinatesNotFound() error {
	return fault.NotFoundf("No data found for the specified coordinates")
}
