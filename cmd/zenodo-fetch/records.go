// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/zenodo-fetch/internal/api"
	"github.com/pdiddy/zenodo-fetch/internal/record"
	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Search Zenodo records",
	Long: `Records searches the Zenodo records API. Results can be scoped to a
community, filtered by keyword, and combined with a free-text query in
Zenodo's search grammar. Output formats: table (default), json, yaml.`,
	RunE: runRecords,
}

func init() {
	recordsCmd.Flags().StringP("community", "c", "", "restrict to a community, by name")
	recordsCmd.Flags().StringP("keyword", "k", "", "filter by keyword")
	recordsCmd.Flags().StringP("query", "q", "", "free-text query")
	recordsCmd.Flags().Bool("all-versions", false, "include superseded versions")
	recordsCmd.Flags().IntP("limit", "n", 0, "stop after this many records (0 = no limit)")
	recordsCmd.Flags().StringP("format", "f", "table", "output format: table, json, or yaml")

	rootCmd.AddCommand(recordsCmd)
}

// collect drains an iterator into a slice, up to limit records.
func collect(ctx context.Context, it *api.RecordIterator, limit int) ([]types.Record, error) {
	var out []types.Record
	for {
		if limit > 0 && len(out) >= limit {
			return out, nil
		}
		rec, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return out, nil
		}
		out = append(out, *rec)
	}
}

// writeRecords renders records in the requested format.
func writeRecords(recs []types.Record, format string) error {
	switch format {
	case "table":
		record.FormatTable(recs, os.Stdout)
		return nil
	case "json":
		return record.FormatJSON(recs, os.Stdout)
	case "yaml":
		return record.FormatYAML(recs, os.Stdout)
	default:
		return fmt.Errorf("unknown format %q (want table, json, or yaml)", format)
	}
}

func runRecords(cmd *cobra.Command, args []string) error {
	community, _ := cmd.Flags().GetString("community")
	keyword, _ := cmd.Flags().GetString("keyword")
	query, _ := cmd.Flags().GetString("query")
	allVersions, _ := cmd.Flags().GetBool("all-versions")
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	if community == "" && keyword == "" && query == "" {
		return fmt.Errorf("provide at least one of --community, --keyword, --query")
	}

	client := api.New(apiConfig())
	it := client.IterRecords(api.Query{
		Community:   community,
		Keyword:     keyword,
		FreeText:    query,
		AllVersions: allVersions,
	})
	recs, err := collect(cmd.Context(), it, limit)
	if err != nil {
		return err
	}
	return writeRecords(recs, format)
}
