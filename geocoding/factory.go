// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import "fmt"

// New returns the geocoder registered under provider.
func New(provider string, opts Options) (Geocoder, error) {
	switch provider {
	case "", ProviderPositionstack:
		return NewPositionstackGeocoder(opts), nil
	case ProviderGoogleMaps, "google":
		return NewGoogleMapsGeocoder(opts), nil
	default:
		return nil, fmt.Errorf("unknown geocoding provider %q", provider)
	}
}
