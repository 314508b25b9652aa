// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jcodagnone/geofacts/fault"
	"github.com/jcodagnone/geofacts/spatial"
)

// ProviderGoogleMaps identifies the Google Maps Geocoding API.
const ProviderGoogleMaps = "google_maps"

const googleMapsBaseURL = "https://maps.googleapis.com/maps/api/geocode"

// GoogleMapsGeocoder uses Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	opts Options
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder.
func NewGoogleMapsGeocoder(opts Options) *GoogleMapsGeocoder {
	opts.defaults(googleMapsBaseURL)

	return &GoogleMapsGeocoder{opts: opts}
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

// check turns a non OK status into an error. ZERO_RESULTS yields notFound.
func (r *googleMapsResponse) check(notFound func() error) error {
	switch r.Status {
	case "OK":
		if len(r.Results) == 0 {
			return notFound()
		}

		return nil
	case "ZERO_RESULTS":
		return notFound()
	default:
		msg := "google maps status: " + r.Status
		if r.ErrorMessage != "" {
			msg = fmt.Sprintf("%s: %s", msg, r.ErrorMessage)
		}

		return &fault.Error{Kind: fault.Provider, Message: msg}
	}
}

func (g *GoogleMapsGeocoder) Name() string {
	return ProviderGoogleMaps
}

func (g *GoogleMapsGeocoder) Forward(ctx context.Context, location string) (*spatial.Point, error) {
	if err := validateLocation(location); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("address", location)
	params.Set("key", g.opts.APIKey)

	resp, err := fetch[googleMapsResponse](ctx, &g.opts, g.Name(), "forward", g.opts.BaseURL+"/json", params)
	if err != nil {
		return nil, err
	}

	if err := resp.check(errLocationNotFound); err != nil {
		return nil, err
	}

	loc := resp.Results[0].Geometry.Location

	return &spatial.Point{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

func (g *GoogleMapsGeocoder) Reverse(ctx context.Context, coords spatial.LatLng) (*Place, error) {
	if err := validateCoordinates(coords); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("latlng", coords.Query())
	params.Set("key", g.opts.APIKey)

	resp, err := fetch[googleMapsResponse](ctx, &g.opts, g.Name(), "reverse", g.opts.BaseURL+"/json", params)
	if err != nil {
		return nil, err
	}

	if err := resp.check(errCoordinatesNotFound); err != nil {
		return nil, err
	}

	return &Place{Label: resp.Results[0].FormattedAddress}, nil
}
