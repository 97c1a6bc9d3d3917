// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/zenodo-fetch/internal/oai"
	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest [community]",
	Short: "Harvest a community's records over OAI-PMH",
	Long: `Harvest walks a community's OAI-PMH feed and prints every record. The
feed serves full DCAT metadata and pages with resumption tokens, which
makes it the right tool for mirroring whole communities; for ad-hoc
searches use "records" instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().IntP("limit", "n", 0, "stop after this many records (0 = no limit)")
	harvestCmd.Flags().StringP("format", "f", "table", "output format: table, json, or yaml")

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	h := oai.New(apiConfig())
	it := h.IterRecords(args[0])

	var recs []types.Record
	ctx := cmd.Context()
	for {
		if limit > 0 && len(recs) >= limit {
			break
		}
		rec, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if rec == nil {
			break
		}
		recs = append(recs, *rec)
	}
	return writeRecords(recs, format)
}
