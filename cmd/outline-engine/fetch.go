// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/outline-engine/internal/fetch"
	"github.com/pdiddy/outline-engine/internal/httputil"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch papers for a query from ADS or OpenAlex",
	Long: `Fetch pages through the search API until --max-results records are
collected or the results run out, and saves the raw records as
newline-delimited JSON in <output-dir>/<query>/<query>.jsonl.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openStage(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		backend, err := fetch.NewBackend(env.cfg.Fetch, httputil.NewClient(env.cfg.Fetch.HTTPConfig))
		if err != nil {
			return err
		}
		_, err = fetch.Run(cmd.Context(), env.store, backend, env.query, env.cfg.Fetch, logger, cmd.OutOrStdout())
		return err
	},
}

func init() {
	addQueryFlag(fetchCmd)
	fetchCmd.Flags().Int("max-results", 1000, "maximum number of papers to keep")
	fetchCmd.Flags().Int("page-size", 100, "records requested per page")
	fetchCmd.Flags().String("source", "ads", "search backend (ads or openalex)")

	bindFlag("fetch.max_results", fetchCmd.Flags().Lookup("max-results"))
	bindFlag("fetch.page_size", fetchCmd.Flags().Lookup("page-size"))
	bindFlag("fetch.source", fetchCmd.Flags().Lookup("source"))

	rootCmd.AddCommand(fetchCmd)
}
