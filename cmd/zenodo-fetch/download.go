// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/zenodo-fetch/internal/api"
	"github.com/pdiddy/zenodo-fetch/internal/catalog"
	"github.com/pdiddy/zenodo-fetch/internal/download"
	"github.com/pdiddy/zenodo-fetch/internal/record"
	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

const (
	defaultTimeout         = 60 * time.Second
	defaultDownloadTimeout = 5 * time.Minute
	defaultUserAgent       = "zenodo-fetch/0.1"
	defaultCatalogDir      = ".zenodo-fetch"
)

var downloadCmd = &cobra.Command{
	Use:   "download [identifier]",
	Short: "Download a deposit's files",
	Long: `Download resolves an identifier (a DOI, concept DOI, or Zenodo record
URL) to a record and fetches its files into a directory. When the
deposit was archived from a GitHub release, the release archive is
fetched from GitHub instead; pass --no-github to force Zenodo's copy.

The identifier is first looked up as a version DOI, then as a concept
DOI; --version-tag selects a specific version of a concept DOI. With
--full-deposit the deposit is copied verbatim; by default the dataset
directory located by its metadata file is extracted.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringP("directory", "d", ".", "destination directory")
	downloadCmd.Flags().String("version-tag", "", "version to fetch when the identifier is a concept DOI")
	downloadCmd.Flags().Bool("full-deposit", false, "copy the whole deposit instead of locating a dataset in it")
	downloadCmd.Flags().Bool("no-github", false, "always fetch from Zenodo, even when a GitHub release is linked")
	downloadCmd.Flags().Bool("no-unwrap", false, "keep a single wrapping top-level directory")
	downloadCmd.Flags().String("metadata-suffix", "", "filename suffix locating dataset metadata (default -metadata.json)")

	rootCmd.AddCommand(downloadCmd)
}

// resolveIdentifier looks an identifier up as a version DOI first and
// falls back to treating it as a concept DOI. Identifiers that are not
// themselves DOIs but mention one (citation lines, badge URLs) are
// accepted too.
func resolveIdentifier(cmd *cobra.Command, client *api.Client, identifier, versionTag string) (*types.Record, error) {
	ctx := cmd.Context()
	if _, err := record.NormalizeDOI(identifier); err != nil {
		if doi, ok := record.ExtractDOI(identifier); ok {
			identifier = doi
		}
	}
	if versionTag == "" {
		rec, err := client.GetRecord(ctx, api.Lookup{DOI: identifier})
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}
	}
	return client.GetRecord(ctx, api.Lookup{ConceptDOI: identifier, Version: versionTag})
}

func runDownload(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("directory")
	versionTag, _ := cmd.Flags().GetString("version-tag")
	fullDeposit, _ := cmd.Flags().GetBool("full-deposit")
	noGithub, _ := cmd.Flags().GetBool("no-github")
	noUnwrap, _ := cmd.Flags().GetBool("no-unwrap")
	mdSuffix, _ := cmd.Flags().GetString("metadata-suffix")

	client := api.New(apiConfig())
	rec, err := resolveIdentifier(cmd, client, args[0], versionTag)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no record found for %s", args[0])
	}

	opts := download.DefaultOptions()
	opts.PreferGithub = !noGithub
	opts.Unwrap = !noUnwrap
	opts.UserAgent = viper.GetString("download.user_agent")
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	httpClient := &http.Client{Timeout: defaultDownloadTimeout}
	ctx := cmd.Context()
	if fullDeposit {
		err = download.Download(ctx, httpClient, rec, dir, opts, os.Stdout)
	} else {
		err = download.DownloadDataset(ctx, httpClient, rec, dir,
			download.MetadataLocator{Suffix: mdSuffix}, nil, "", opts, os.Stdout)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Downloaded %s to %s\n", rec.DOI, dir)

	// Catalog registration is best effort; the download already
	// succeeded.
	if store, cerr := catalog.NewStore(catalogConfig()); cerr == nil {
		defer store.Close()
		if cerr := store.Add(ctx, rec, dir); cerr != nil {
			fmt.Fprintf(os.Stderr, "Warning: catalog update failed: %v\n", cerr)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Warning: catalog unavailable: %v\n", cerr)
	}
	return nil
}

// apiConfig assembles the API client config from viper settings and
// defaults.
func apiConfig() types.APIConfig {
	cfg := types.APIConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("api.timeout"),
			UserAgent: viper.GetString("api.user_agent"),
		},
		PageSize:   viper.GetInt("api.page_size"),
		MaxRetries: viper.GetInt("api.max_retries"),
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return cfg
}

// catalogConfig assembles the catalog config from viper settings and
// defaults.
func catalogConfig() types.CatalogConfig {
	dir := viper.GetString("catalog.dir")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			dir = defaultCatalogDir
		} else {
			dir = filepath.Join(home, defaultCatalogDir)
		}
	}
	return types.CatalogConfig{Dir: dir}
}
