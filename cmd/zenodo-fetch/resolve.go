// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/zenodo-fetch/internal/api"
	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [doi]",
	Short: "Resolve a DOI through doi.org and print its record",
	Long: `Resolve follows a DOI through the doi.org resolver to its Zenodo landing
page and reads the record metadata from the page's DCAT export. This
path bypasses the records API entirely, which makes it useful when the
API is unavailable or a deposit predates it.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringP("format", "f", "table", "output format: table, json, or yaml")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg := apiConfig()
	client := &http.Client{Timeout: cfg.Timeout}
	rec, err := api.ResolveDOI(cmd.Context(), client, args[0])
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no record found for %s", args[0])
	}
	return writeRecords([]types.Record{*rec}, format)
}
