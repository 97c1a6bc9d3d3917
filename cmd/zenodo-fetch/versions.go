// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/zenodo-fetch/internal/api"
)

var versionsCmd = &cobra.Command{
	Use:   "versions [concept-doi]",
	Short: "List all versions of a deposit",
	Long: `Versions lists every archived version of a deposit, identified by its
concept DOI (the version-independent DOI that groups all versions).`,
	Args: cobra.ExactArgs(1),
	RunE: runVersions,
}

func init() {
	versionsCmd.Flags().IntP("limit", "n", 0, "stop after this many records (0 = no limit)")
	versionsCmd.Flags().StringP("format", "f", "table", "output format: table, json, or yaml")

	rootCmd.AddCommand(versionsCmd)
}

func runVersions(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	client := api.New(apiConfig())
	it, err := client.IterVersions(args[0])
	if err != nil {
		return err
	}
	recs, err := collect(cmd.Context(), it, limit)
	if err != nil {
		return err
	}
	return writeRecords(recs, format)
}
