// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"strings"

	"github.com/jcodagnone/geofacts/fault"
	"go.uber.org/zap"
)

// SystemInstruction is sent ahead of every user message.
const SystemInstruction = "Create a one-liner historic factoid output based on the input location in JSON format. " +
	"Do not mention the location in the output, just the output."

const noResponse = "No valid response from OpenAI."

// Completer is the part of Client used by Factoids.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, bool, error)
}

// Factoids turns a user message into a single cleaned factoid.
type Factoids struct {
	completer Completer
	logger    *zap.Logger
}

// NewFactoids creates the factoid adapter.
func NewFactoids(completer Completer, logger *zap.Logger) *Factoids {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Factoids{completer: completer, logger: logger}
}

// Generate asks the model for a factoid about message.
func (f *Factoids) Generate(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fault.Validationf("message is required in the request body")
	}

	content, ok, err := f.completer.Complete(ctx, []Message{
		{Role: RoleSystem, Content: SystemInstruction},
		{Role: RoleUser, Content: message},
	})
	if err != nil {
		return "", err
	}

	factoid := Clean(content)
	if !ok || factoid == "" {
		return "", fault.ProviderErr(noResponse, nil)
	}

	f.logger.Debug("chat completion", zap.String("raw", content), zap.String("factoid", factoid))

	return factoid, nil
}

// Clean trims content, strips one surrounding pair of double quotes and
// unescapes embedded \" sequences.
func Clean(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, `"`) && strings.HasSuffix(content, `"`) {
		// A lone quote opens and closes at once.
		content = content[1:max(1, len(content)-1)]
	}

	return strings.ReplaceAll(content, `\"`, `"`)
}
