// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/outline-engine/internal/embed"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed the fetched papers of a query",
	Long: `Embed reads <query>.jsonl, drops records without a usable title or
abstract and duplicate titles, embeds "Title: ... ; Abstract: ..." for each
remaining paper in one request, and saves <query>_embeddings.gob.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openStage(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		embedder, err := embed.NewOpenAIEmbedder(cmd.Context(), env.cfg.Embedding)
		if err != nil {
			return err
		}
		_, err = embed.NewGenerator(embedder, logger).Run(cmd.Context(), env.store, env.query, cmd.OutOrStdout())
		return err
	},
}

func init() {
	addQueryFlag(embedCmd)
	embedCmd.Flags().String("embedding-model", "", "embedding model identifier")
	bindFlag("embedding.model", embedCmd.Flags().Lookup("embedding-model"))

	rootCmd.AddCommand(embedCmd)
}
