// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/outline-engine/internal/artifact"
	"github.com/pdiddy/outline-engine/internal/llm"
	"github.com/pdiddy/outline-engine/pkg/types"
)

// addQueryFlag registers the --query flag shared by every stage.
func addQueryFlag(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "search query; also names the artifact directory")
}

func queryFlag(cmd *cobra.Command) (string, error) {
	q, _ := cmd.Flags().GetString("query")
	q = strings.TrimSpace(q)
	if q == "" {
		return "", fmt.Errorf("--query is required")
	}
	return q, nil
}

// stageEnv is what every stage command needs: the query, the resolved
// configuration and an open store.
type stageEnv struct {
	query string
	cfg   types.PipelineConfig
	store artifact.Store
}

func openStage(cmd *cobra.Command) (*stageEnv, error) {
	query, err := queryFlag(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := artifact.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening artifact store: %w", err)
	}
	return &stageEnv{query: query, cfg: cfg, store: store}, nil
}

func (e *stageEnv) Close() error { return e.store.Close() }

// chatFor builds the chat model only when the artifact under kind has to be
// computed, so a cached stage runs without an API key.
func (e *stageEnv) chatFor(ctx context.Context, kind artifact.Kind, refresh bool) (llm.ChatModel, error) {
	if !refresh {
		_, ok, err := e.store.Get(ctx, artifact.Key{Query: e.query, Kind: kind})
		if err != nil {
			return nil, err
		}
		if ok {
			return nil, nil
		}
	}
	return llm.New(ctx, e.cfg.Chat)
}
