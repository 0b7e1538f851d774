// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFlagName_UnderscoreSpellings(t *testing.T) {
	root := &cobra.Command{Use: "root"}
	root.PersistentFlags().String("output-dir", "Data", "")
	child := &cobra.Command{Use: "fetch", RunE: func(*cobra.Command, []string) error { return nil }}
	child.Flags().Int("max-results", 1000, "")
	root.AddCommand(child)
	root.SetGlobalNormalizationFunc(normalizeFlagName)

	root.SetArgs([]string{"fetch", "--output_dir", "out", "--max_results", "5"})
	require.NoError(t, root.Execute())

	dir, err := child.Flags().GetString("output-dir")
	require.NoError(t, err)
	assert.Equal(t, "out", dir)
	n, err := child.Flags().GetInt("max-results")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestRootCommand_AcceptsUnderscoreFlags(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("output_dir"))
	assert.NotNil(t, fetchCmd.Flags().Lookup("max_results"))
	assert.NotNil(t, labelCmd.Flags().Lookup("chunk_size"))
}
