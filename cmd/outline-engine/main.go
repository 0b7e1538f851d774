// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the outline-engine CLI.
//
// Each pipeline stage is a subcommand: fetch, embed, label and outline.
// Clustering of the embeddings happens outside this tool; label reads its
// result from <output-dir>/<query>/<query>_cluster.json.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/outline-engine/internal/logging"
	"github.com/pdiddy/outline-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets

	logger = zap.NewNop()
)

// rootCmd is the base command for the outline-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "outline-engine",
	Short: "Turn a literature search into a chapter outline of subtopics",
	Long: `outline-engine fetches scientific papers for a query, embeds them, and,
given clusters of those papers, asks a chat model to name each cluster as a
subtopic and to arrange the related subtopics into an outline of chapters.

Stages run as subcommands: fetch, embed, label and outline. Each stage reads
the previous stage's artifact and writes its own; an artifact that already
exists is reused unless --refresh is given.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		l, err := logging.New(debug)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logger = l

		s, err := secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			names := s.Names()
			sort.Strings(names)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", names)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./outline-engine.yaml or ~/.config/outline-engine/outline-engine.yaml)")
	pf.Bool("debug", false, "human-readable debug logging")
	pf.String("output-dir", "Data", "base directory for artifacts")
	pf.String("store", "files", "artifact store backend (files or sqlite)")
	pf.String("provider", "openai", "chat provider (openai or anthropic)")
	pf.String("model", "", "chat model identifier")

	bindFlag("store.output_dir", pf.Lookup("output-dir"))
	bindFlag("store.backend", pf.Lookup("store"))
	bindFlag("chat.provider", pf.Lookup("provider"))
	bindFlag("chat.model", pf.Lookup("model"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("outline-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "outline-engine"))
		}
	}

	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("OUTLINE_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// normalizeFlagName accepts underscore spellings such as --output_dir and
// --max_results for the dashed flag names.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func bindFlag(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
