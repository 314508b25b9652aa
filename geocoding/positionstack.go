// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/jcodagnone/geofacts/fault"
	"github.com/jcodagnone/geofacts/spatial"
	"go.uber.org/zap"
)

// ProviderPositionstack identifies the positionstack.com geocoder.
const ProviderPositionstack = "positionstack"

const positionstackBaseURL = "http://api.positionstack.com/v1"

// PositionstackGeocoder uses the positionstack forward and reverse endpoints.
type PositionstackGeocoder struct {
	opts Options
}

// NewPositionstackGeocoder creates a new positionstack geocoder.
func NewPositionstackGeocoder(opts Options) *PositionstackGeocoder {
	opts.defaults(positionstackBaseURL)

	return &PositionstackGeocoder{opts: opts}
}

type positionstackResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label"`
	Name      string  `json:"name"`
}

type positionstackResponse struct {
	// Entries are raw because the API answers `[[]]` instead of `[]` for some
	// queries without results.
	Data  []json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// first returns the best match, nil when there is none.
func (r *positionstackResponse) first() (*positionstackResult, error) {
	if r.Error != nil {
		return nil, &fault.Error{
			Kind:    fault.Provider,
			Message: fmt.Sprintf("positionstack error %s: %s", r.Error.Code, r.Error.Message),
		}
	}

	if len(r.Data) == 0 {
		return nil, nil
	}

	raw := strings.TrimSpace(string(r.Data[0]))
	if !strings.HasPrefix(raw, "{") {
		return nil, nil
	}

	var res positionstackResult
	if err := json.Unmarshal(r.Data[0], &res); err != nil {
		return nil, fault.ProviderErr("decoding positionstack result", err)
	}

	return &res, nil
}

func (g *PositionstackGeocoder) Name() string {
	return ProviderPositionstack
}

func (g *PositionstackGeocoder) params(query string) url.Values {
	params := url.Values{}
	params.Set("access_key", g.opts.APIKey)
	params.Set("query", query)
	params.Set("limit", "1")

	return params
}

func (g *PositionstackGeocoder) Forward(ctx context.Context, location string) (*spatial.Point, error) {
	if err := validateLocation(location); err != nil {
		return nil, err
	}

	resp, err := fetch[positionstackResponse](ctx, &g.opts, g.Name(), "forward", g.opts.BaseURL+"/forward", g.params(location))
	if err != nil {
		return nil, err
	}

	res, err := resp.first()
	if err != nil {
		return nil, err
	}

	if res == nil {
		g.opts.Logger.Debug("no forward match", zap.String("location", location))

		return nil, errLocationNotFound()
	}

	point := &spatial.Point{Latitude: res.Latitude, Longitude: res.Longitude}
	g.opts.Logger.Debug("forward match", zap.String("location", location), zap.Stringer("point", point))

	return point, nil
}

func (g *PositionstackGeocoder) Reverse(ctx context.Context, coords spatial.LatLng) (*Place, error) {
	if err := validateCoordinates(coords); err != nil {
		return nil, err
	}

	resp, err := fetch[positionstackResponse](ctx, &g.opts, g.Name(), "reverse", g.opts.BaseURL+"/reverse", g.params(coords.Query()))
	if err != nil {
		return nil, err
	}

	res, err := resp.first()
	if err != nil {
		return nil, err
	}

	if res == nil {
		g.opts.Logger.Debug("no reverse match", zap.String("query", coords.Query()))

		return nil, errCoordinatesNotFound()
	}

	label := res.Label
	if label == "" {
		label = res.Name
	}

	return &Place{Label: label}, nil
}
