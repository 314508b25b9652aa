// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jcodagnone/geofacts/fault"
	"github.com/jcodagnone/geofacts/retry"
)

const maxResponseBytes = 1 << 20

// getJSON performs a GET against endpoint and decodes the body into a new T.
// Non-2xx answers become fault.FromStatus errors so that server errors are
// retried by the caller.
func getJSON[T any](ctx context.Context, client *http.Client, provider, endpoint string, params url.Values) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fault.ProviderErr("building geocoding request", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fault.ProviderErr("geocoding request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &fault.Error{
			Kind:    fault.Provider,
			Message: "reading geocoding response",
			Status:  resp.StatusCode,
			Err:     err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fault.FromStatus(provider, resp.StatusCode, string(body))
	}

	out := new(T)
	if err := json.Unmarshal(body, out); err != nil {
		return nil, fault.ProviderErr(fmt.Sprintf("decoding %s response", provider), err)
	}

	return out, nil
}

// fetch runs getJSON under the retry policy.
func fetch[T any](ctx context.Context, opts *Options, provider, call, endpoint string, params url.Values) (*T, error) {
	return retry.Do(ctx, opts.Retry, func(ctx context.Context) (*T, error) {
		return getJSON[T](ctx, opts.HTTPClient, provider, endpoint, params)
	}, retry.WithLogger(opts.Logger), retry.WithName(provider+" "+call))
}
