// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/pdiddy/outline-engine/internal/httputil"
	"github.com/pdiddy/outline-engine/pkg/types"
)

// EinoChat adapts an eino chat model to ChatModel.
type EinoChat struct {
	model model.BaseChatModel
}

// NewEinoChat wraps an existing eino chat model.
func NewEinoChat(m model.BaseChatModel) *EinoChat {
	return &EinoChat{model: m}
}

// NewOpenAI builds an OpenAI chat model through eino-ext.
func NewOpenAI(ctx context.Context, cfg types.ChatConfig) (*EinoChat, error) {
	m, err := einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		HTTPClient: httputil.NewClient(cfg.HTTPConfig),
	})
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI chat model: %w", err)
	}
	return &EinoChat{model: m}, nil
}

// Complete sends the system and user messages and returns the reply text.
func (c *EinoChat) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return "", fmt.Errorf("chat completion returned empty content")
	}
	return resp.Content, nil
}
