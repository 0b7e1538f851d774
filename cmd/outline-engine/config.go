// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/outline-engine/internal/secrets"
	"github.com/pdiddy/outline-engine/pkg/types"
)

// setDefaults registers every config key with its default so that
// OUTLINE_ENGINE_* environment variables are picked up by Unmarshal.
func setDefaults(v *viper.Viper) {
	d := types.DefaultPipelineConfig()

	v.SetDefault("fetch.source", string(d.Fetch.Source))
	v.SetDefault("fetch.api_token", "")
	v.SetDefault("fetch.email", "")
	v.SetDefault("fetch.page_size", d.Fetch.PageSize)
	v.SetDefault("fetch.max_results", d.Fetch.MaxResults)
	v.SetDefault("fetch.timeout", d.Fetch.Timeout)
	v.SetDefault("fetch.user_agent", d.Fetch.UserAgent)

	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.base_url", "")

	v.SetDefault("chat.provider", string(d.Chat.Provider))
	v.SetDefault("chat.model", d.Chat.Model)
	v.SetDefault("chat.api_key", "")
	v.SetDefault("chat.base_url", "")
	v.SetDefault("chat.max_tokens", d.Chat.MaxTokens)
	v.SetDefault("chat.timeout", d.Chat.Timeout)
	v.SetDefault("chat.user_agent", d.Chat.UserAgent)

	v.SetDefault("label.chunk_size", d.Label.ChunkSize)
	v.SetDefault("label.min_cluster_size", d.Label.MinClusterSize)

	v.SetDefault("store.backend", string(d.Store.Backend))
	v.SetDefault("store.output_dir", d.Store.OutputDir)
}

// buildConfig resolves the pipeline configuration from v and fills API keys
// that the configuration leaves empty from s.
func buildConfig(v *viper.Viper, s secrets.Secrets) (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("reading configuration: %w", err)
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = types.DefaultPipelineConfig().Chat.Model
	}

	cfg.Fetch.APIToken = s.Lookup(secrets.ADSToken, cfg.Fetch.APIToken)
	cfg.Fetch.Email = s.Lookup(secrets.OpenAlexEmail, cfg.Fetch.Email)
	cfg.Embedding.APIKey = s.Lookup(secrets.OpenAIKey, cfg.Embedding.APIKey)

	chatKey := secrets.OpenAIKey
	if cfg.Chat.Provider == types.ProviderAnthropic {
		chatKey = secrets.AnthropicKey
		if cfg.Chat.Model == types.DefaultPipelineConfig().Chat.Model {
			cfg.Chat.Model = defaultAnthropicModel
		}
	}
	cfg.Chat.APIKey = s.Lookup(chatKey, cfg.Chat.APIKey)
	return cfg, nil
}

// defaultAnthropicModel replaces the OpenAI default model when the anthropic
// provider is selected without a model.
const defaultAnthropicModel = "claude-sonnet-4-5"

// loadConfig resolves the configuration for the running command.
func loadConfig() (types.PipelineConfig, error) {
	return buildConfig(viper.GetViper(), loadedSecrets)
}
