// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/outline-engine/internal/artifact"
	"github.com/pdiddy/outline-engine/internal/label"
	"github.com/pdiddy/outline-engine/internal/outline"
	"github.com/pdiddy/outline-engine/pkg/types"
)

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Group the related subtopics of a query into chapters",
	Long: `Outline reads <query>_clusters_with_subtopics.json, sends the related
subtopics to the chat model in one request, and saves the chapters it
proposes in <query>_outline.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openStage(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		labelled, ok, err := label.LoadLabelled(cmd.Context(), env.store, env.query)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("labelled clusters not found: %s (run label first)",
				env.store.Location(artifact.Key{Query: env.query, Kind: artifact.KindLabelled}))
		}

		refresh, _ := cmd.Flags().GetBool("refresh")
		exportYAML, _ := cmd.Flags().GetBool("yaml")
		_, err = runOutline(cmd, env, labelled, refresh, exportYAML)
		return err
	},
}

func runOutline(cmd *cobra.Command, env *stageEnv, labelled *types.LabelledSet, refresh, exportYAML bool) (*types.Outline, error) {
	ctx, w := cmd.Context(), cmd.OutOrStdout()

	chat, err := env.chatFor(ctx, artifact.KindOutline, refresh)
	if err != nil {
		return nil, err
	}
	out, err := outline.New(chat, env.query, logger).Build(ctx, env.store, labelled, refresh)
	if err != nil {
		return nil, err
	}

	for pair := out.Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(w, "%s (%d subtopics)\n", pair.Key, len(pair.Value.SubtopicIDs))
	}
	fmt.Fprintf(w, "Outline saved to %s\n", env.store.Location(artifact.Key{Query: env.query, Kind: artifact.KindOutline}))

	if exportYAML {
		loc, err := outline.ExportYAML(ctx, env.store, env.query, out)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "YAML outline saved to %s\n", loc)
	}
	return out, nil
}

func init() {
	addQueryFlag(outlineCmd)
	outlineCmd.Flags().Bool("refresh", false, "recompute even if the artifact exists")
	outlineCmd.Flags().Bool("yaml", false, "also write <query>_outline.yaml")

	rootCmd.AddCommand(outlineCmd)
}
