// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/outline-engine/internal/secrets"
	"github.com/pdiddy/outline-engine/pkg/types"
)

func newViper(t *testing.T, yamlConfig string) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	if yamlConfig != "" {
		require.NoError(t, v.ReadConfig(strings.NewReader(yamlConfig)))
	}
	return v
}

func TestBuildConfig_Defaults(t *testing.T) {
	cfg, err := buildConfig(newViper(t, ""), secrets.Secrets{})
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPipelineConfig(), cfg)
}

func TestBuildConfig_FileOverridesAndSecrets(t *testing.T) {
	v := newViper(t, `
fetch:
  source: openalex
  max_results: 250
  timeout: 30s
label:
  chunk_size: 10
store:
  backend: sqlite
  output_dir: /tmp/out
`)
	s := secrets.Secrets{
		secrets.ADSToken:      "ads-secret",
		secrets.OpenAIKey:     "sk-secret",
		secrets.OpenAlexEmail: "me@example.org",
	}

	cfg, err := buildConfig(v, s)
	require.NoError(t, err)

	assert.Equal(t, types.SourceOpenAlex, cfg.Fetch.Source)
	assert.Equal(t, 250, cfg.Fetch.MaxResults)
	assert.Equal(t, 100, cfg.Fetch.PageSize)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "outline-engine/0.1", cfg.Fetch.UserAgent)
	assert.Equal(t, 10, cfg.Label.ChunkSize)
	assert.Equal(t, 3, cfg.Label.MinClusterSize)
	assert.Equal(t, types.StoreConfig{Backend: types.StoreSQLite, OutputDir: "/tmp/out"}, cfg.Store)

	assert.Equal(t, "ads-secret", cfg.Fetch.APIToken)
	assert.Equal(t, "me@example.org", cfg.Fetch.Email)
	assert.Equal(t, "sk-secret", cfg.Embedding.APIKey)
	assert.Equal(t, "sk-secret", cfg.Chat.APIKey)
}

func TestBuildConfig_ExplicitKeyWins(t *testing.T) {
	v := newViper(t, "chat:\n  api_key: from-config\n")
	cfg, err := buildConfig(v, secrets.Secrets{secrets.OpenAIKey: "from-secrets"})
	require.NoError(t, err)
	assert.Equal(t, "from-config", cfg.Chat.APIKey)
	assert.Equal(t, "from-secrets", cfg.Embedding.APIKey)
}

func TestBuildConfig_AnthropicProvider(t *testing.T) {
	v := newViper(t, "chat:\n  provider: anthropic\n")
	cfg, err := buildConfig(v, secrets.Secrets{
		secrets.OpenAIKey:    "sk-openai",
		secrets.AnthropicKey: "sk-ant",
	})
	require.NoError(t, err)
	assert.Equal(t, types.ProviderAnthropic, cfg.Chat.Provider)
	assert.Equal(t, "sk-ant", cfg.Chat.APIKey)
	assert.Equal(t, defaultAnthropicModel, cfg.Chat.Model)
	assert.Equal(t, "sk-openai", cfg.Embedding.APIKey)
}

func TestBuildConfig_Env(t *testing.T) {
	t.Setenv("OUTLINE_ENGINE_LABEL_CHUNK_SIZE", "12")
	v := newViper(t, "")
	v.SetEnvPrefix("OUTLINE_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := buildConfig(v, secrets.Secrets{})
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Label.ChunkSize)
}
