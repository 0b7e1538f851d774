// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run label and outline for a query",
	Long: `Pipeline runs the stages that follow external clustering: it labels the
clusters in <query>_cluster.json and assembles the outline from the result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openStage(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		refresh, _ := cmd.Flags().GetBool("refresh")
		exportYAML, _ := cmd.Flags().GetBool("yaml")

		labelled, err := runLabel(cmd, env, refresh)
		if err != nil {
			return err
		}
		_, err = runOutline(cmd, env, labelled, refresh, exportYAML)
		return err
	},
}

func init() {
	addQueryFlag(pipelineCmd)
	pipelineCmd.Flags().Bool("refresh", false, "recompute every stage even if its artifact exists")
	pipelineCmd.Flags().Bool("yaml", false, "also write <query>_outline.yaml")

	rootCmd.AddCommand(pipelineCmd)
}
