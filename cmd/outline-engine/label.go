// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/outline-engine/internal/artifact"
	"github.com/pdiddy/outline-engine/internal/label"
	"github.com/pdiddy/outline-engine/pkg/types"
)

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Name each cluster of papers with a subtopic",
	Long: `Label reads <query>_cluster.json, asks the chat model to describe each
cluster in chunks of --chunk-size papers, and saves the result in
<query>_clusters_with_subtopics.json. Clusters of three papers or fewer, and
clusters the model finds unrelated to the query, are marked Removed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openStage(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		refresh, _ := cmd.Flags().GetBool("refresh")
		_, err = runLabel(cmd, env, refresh)
		return err
	},
}

func runLabel(cmd *cobra.Command, env *stageEnv, refresh bool) (*types.LabelledSet, error) {
	ctx, w := cmd.Context(), cmd.OutOrStdout()

	clusters, err := label.LoadClusters(ctx, env.store, env.query)
	if err != nil {
		return nil, err
	}
	chat, err := env.chatFor(ctx, artifact.KindLabelled, refresh)
	if err != nil {
		return nil, err
	}

	l := label.New(chat, env.query, env.cfg.Label,
		label.WithLogger(logger),
		label.WithProgress(label.WriterProgress(cmd.ErrOrStderr(), env.query)))
	set, err := l.NameClusters(ctx, env.store, clusters, refresh)
	if err != nil {
		return nil, err
	}

	label.Summary(w, set)
	fmt.Fprintf(w, "Clusters with subtopics saved to %s\n",
		env.store.Location(artifact.Key{Query: env.query, Kind: artifact.KindLabelled}))
	return set, nil
}

func init() {
	addQueryFlag(labelCmd)
	labelCmd.Flags().Int("chunk-size", 30, "papers per chat request")
	labelCmd.Flags().Bool("refresh", false, "recompute even if the artifact exists")
	bindFlag("label.chunk_size", labelCmd.Flags().Lookup("chunk-size"))

	rootCmd.AddCommand(labelCmd)
}
