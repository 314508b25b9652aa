// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat talks to an OpenAI compatible chat-completions API and turns its
// answers into one-line factoids.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"

	"github.com/jcodagnone/geofacts/fault"
	"github.com/jcodagnone/geofacts/utils/httputils"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is used when Options.Model is empty.
	DefaultModel = "gpt-4o"

	maxResponseBytes = 4 << 20
)

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options configures a Client.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	// HTTP is extended with the auth headers before building the client.
	HTTP httputils.ClientOptions
}

// Client calls the chat completions endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates a new chat completions client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}

	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	httpOpts := opts.HTTP
	httpOpts.Headers = maps.Clone(opts.HTTP.Headers)

	if httpOpts.Headers == nil {
		httpOpts.Headers = make(map[string]string)
	}

	httpOpts.Headers["Authorization"] = "Bearer " + opts.APIKey
	httpOpts.Headers["Content-Type"] = "application/json"

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		model:      opts.Model,
		httpClient: httputils.NewClient(httpOpts),
	}
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string {
	return c.model
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message *struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Complete sends messages and returns the content of the first choice. ok is
// false when the provider returned no usable choice.
func (c *Client) Complete(ctx context.Context, messages []Message) (content string, ok bool, err error) {
	body, err := json.Marshal(completionRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", false, fault.ProviderErr("marshaling chat request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, fault.ProviderErr("building chat request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, fault.ProviderErr("chat request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", false, &fault.Error{Kind: fault.Provider, Message: "reading chat response", Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", false, c.errorFromResponse(resp.StatusCode, respBody)
	}

	var out completionResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", false, fault.ProviderErr("decoding chat response", err)
	}

	if len(out.Choices) == 0 || out.Choices[0].Message == nil || out.Choices[0].Message.Content == nil {
		return "", false, nil
	}

	return *out.Choices[0].Message.Content, true, nil
}

func (c *Client) errorFromResponse(status int, body []byte) error {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Message != "" {
		return &fault.Error{
			Kind:    fault.Provider,
			Message: fmt.Sprintf("openai error (status %d): %s", status, er.Error.Message),
			Status:  status,
		}
	}

	return fault.FromStatus("openai", status, string(body))
}
