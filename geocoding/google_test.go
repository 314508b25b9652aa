// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jcodagnone/geofacts/fault"
	"github.com/jcodagnone/geofacts/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoogle(t *testing.T, responses ...fakeResponse) (*GoogleMapsGeocoder, *fakeProvider) {
	t.Helper()

	fake := &fakeProvider{responses: responses}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return NewGoogleMapsGeocoder(Options{
		APIKey:     "maps-key",
		BaseURL:    srv.URL + "/",
		HTTPClient: srv.Client(),
		Retry:      fastRetry,
	}), fake
}

func TestGoogleMapsForward(t *testing.T) {
	g, fake := newGoogle(t, fakeResponse{
		status: http.StatusOK,
		body: `{
			"status": "OK",
			"results": [{
				"geometry": {"location": {"lat": -34.9011, "lng": -56.1645}, "location_type": "ROOFTOP"},
				"formatted_address": "Montevideo, Uruguay"
			}]
		}`,
	})

	got, err := g.Forward(context.Background(), "Montevideo")
	require.NoError(t, err)
	assert.Equal(t, &spatial.Point{Latitude: -34.9011, Longitude: -56.1645}, got)
	assert.Equal(t, "Montevideo", fake.query().Get("address"))
	assert.Equal(t, "maps-key", fake.query().Get("key"))
}

func TestGoogleMapsReverse(t *testing.T) {
	g, fake := newGoogle(t, fakeResponse{
		status: http.StatusOK,
		body:   `{"status":"OK","results":[{"formatted_address":"277 Bedford Ave, Brooklyn, NY 11211, USA"}]}`,
	})

	got, err := g.Reverse(context.Background(), spatial.LatLng{Latitude: "40.714224", Longitude: "-73.961452"})
	require.NoError(t, err)
	assert.Equal(t, "277 Bedford Ave, Brooklyn, NY 11211, USA", got.Label)
	assert.Equal(t, "40.714224,-73.961452", fake.query().Get("latlng"))
}

func TestGoogleMapsStatuses(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind fault.Kind
	}{
		{name: "zero results", body: `{"status":"ZERO_RESULTS","results":[]}`, wantKind: fault.NotFound},
		{name: "ok but empty", body: `{"status":"OK","results":[]}`, wantKind: fault.NotFound},
		{name: "denied", body: `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`, wantKind: fault.Provider},
		{name: "over limit", body: `{"status":"OVER_QUERY_LIMIT"}`, wantKind: fault.Provider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, fake := newGoogle(t, fakeResponse{status: http.StatusOK, body: tt.body})

			_, err := g.Forward(context.Background(), "Nowhere")
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, fault.KindOf(err))
			assert.Equal(t, int32(1), fake.calls.Load(), "API level statuses are not retried")
		})
	}
}

func TestGoogleMapsRetriesServerErrors(t *testing.T) {
	g, fake := newGoogle(t,
		fakeResponse{status: http.StatusBadGateway},
		fakeResponse{status: http.StatusOK, body: `{"status":"OK","results":[{"formatted_address":"Somewhere"}]}`},
	)

	got, err := g.Reverse(context.Background(), spatial.LatLng{Latitude: "1", Longitude: "2"})
	require.NoError(t, err)
	assert.Equal(t, "Somewhere", got.Label)
	assert.Equal(t, int32(2), fake.calls.Load())
}

func TestNew(t *testing.T) {
	g, err := New("", Options{})
	require.NoError(t, err)
	assert.Equal(t, ProviderPositionstack, g.Name())

	g, err = New("google", Options{})
	require.NoError(t, err)
	assert.Equal(t, ProviderGoogleMaps, g.Name())

	_, err = New("nominatim", Options{})
	require.Error(t, err)
}
