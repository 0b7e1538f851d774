// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps the chat-completion APIs used to label clusters and
// assemble outlines. Callers see one ChatModel interface regardless of provider.
package llm

import (
	"context"
	"fmt"

	"github.com/pdiddy/outline-engine/internal/httputil"
	"github.com/pdiddy/outline-engine/pkg/types"
)

// ChatModel sends a single system + user message pair and returns the
// assistant's text. Implementations make exactly one request per call.
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ChatFunc adapts a function to ChatModel.
type ChatFunc func(ctx context.Context, system, user string) (string, error)

// Complete calls f.
func (f ChatFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

// New returns the ChatModel selected by cfg.Provider.
func New(ctx context.Context, cfg types.ChatConfig) (ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for %s chat provider", providerName(cfg.Provider))
	}
	switch cfg.Provider {
	case types.ProviderOpenAI, "":
		return NewOpenAI(ctx, cfg)
	case types.ProviderAnthropic:
		return &AnthropicBackend{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Client:    httputil.NewClient(cfg.HTTPConfig),
		}, nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}

func providerName(p types.ChatProvider) string {
	if p == "" {
		return string(types.ProviderOpenAI)
	}
	return string(p)
}
