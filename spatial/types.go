// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package spatial holds coordinate types shared by the geocoders.
package spatial

import "strconv"

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String returns the point as "lat,lng".
func (p Point) String() string {
	return strconv.FormatFloat(p.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}

// LatLng holds coordinates exactly as the caller supplied them. They are
// forwarded to providers verbatim, never parsed.
type LatLng struct {
	Latitude  string
	Longitude string
}

// Complete reports whether both coordinates are present.
func (c LatLng) Complete() bool {
	return c.Latitude != "" && c.Longitude != ""
}

// Query returns the "lat,lng" string providers expect.
func (c LatLng) Query() string {
	return c.Latitude + "," + c.Longitude
}
