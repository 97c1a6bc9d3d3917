// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/zenodo-fetch/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the local catalog of downloaded deposits",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List downloaded deposits",
	RunE:  runCatalogList,
}

func init() {
	catalogListCmd.Flags().StringP("format", "f", "table", "output format: table, json, or yaml")

	catalogCmd.AddCommand(catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := catalog.NewStore(catalogConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	deposits, err := store.List(cmd.Context())
	if err != nil {
		return err
	}

	switch format {
	case "table":
		if len(deposits) == 0 {
			fmt.Println("No deposits cataloged.")
			return nil
		}
		fmt.Printf("%-28s  %-40s  %-10s  %s\n", "DOI", "Title", "Version", "Path")
		fmt.Println(strings.Repeat("-", 100))
		for _, d := range deposits {
			title := d.Title
			if len(title) > 40 {
				title = title[:37] + "..."
			}
			fmt.Printf("%-28s  %-40s  %-10s  %s\n", d.DOI, title, d.Version, d.Path)
		}
		fmt.Printf("\n%d deposits\n", len(deposits))
		return nil
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(deposits)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(deposits)
	default:
		return fmt.Errorf("unknown format %q (want table, json, or yaml)", format)
	}
}
