// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"fmt"

	einoopenai "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"

	"github.com/pdiddy/outline-engine/pkg/types"
)

// NewOpenAIEmbedder builds an OpenAI embedder through eino-ext.
func NewOpenAIEmbedder(ctx context.Context, cfg types.EmbeddingConfig) (embedding.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for embeddings")
	}
	e, err := einoopenai.NewEmbedder(ctx, &einoopenai.EmbeddingConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI embedder: %w", err)
	}
	return e, nil
}
