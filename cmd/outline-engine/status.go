// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/outline-engine/internal/artifact"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which artifacts exist for a query",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openStage(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cmd.Context()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KIND\tSTATUS\tSIZE\tLOCATION")
		for _, kind := range artifact.Kinds {
			key := artifact.Key{Query: env.query, Kind: kind}
			data, ok, err := env.store.Get(ctx, key)
			if err != nil {
				return err
			}
			status, size := "missing", "-"
			if ok {
				status, size = "present", fmt.Sprintf("%d", len(data))
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", kind, status, size, env.store.Location(key))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		db, ok := env.store.(*artifact.SQLiteStore)
		if !ok {
			return nil
		}
		entries, err := db.List(ctx, env.query)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s run %s at %s\n", e.Kind, e.RunID, e.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	addQueryFlag(statusCmd)
	rootCmd.AddCommand(statusCmd)
}
