// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/zenodo-fetch/internal/api"
	"github.com/pdiddy/zenodo-fetch/internal/record"
)

var citeCmd = &cobra.Command{
	Use:   "cite [identifier]",
	Short: "Print a citation for a deposit or a GitHub release",
	Long: `Cite prints a formatted citation. The identifier is either a Zenodo DOI
(or record URL), cited directly, or a GitHub repository as "org/name",
in which case the release notes are scanned for the Zenodo deposit the
release was archived to and that deposit is cited, in APA and BibTeX
form.

GitHub release metadata comes from the REST API by default; pass
--gh-cli to go through an authenticated "gh" binary instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runCite,
}

func init() {
	citeCmd.Flags().String("style", "apa", "CSL citation style for DOI citations")
	citeCmd.Flags().String("tag", "", "release tag (default: latest release)")
	citeCmd.Flags().String("bib-id", "", "BibTeX entry key (default: derived from the repository)")
	citeCmd.Flags().Bool("gh-cli", false, "read release metadata through the gh binary")
	citeCmd.Flags().Bool("bibtex", false, "print a DOI citation as BibTeX instead of formatted text")

	rootCmd.AddCommand(citeCmd)
}

// looksLikeRepo reports whether the identifier names a GitHub
// repository rather than a DOI.
func looksLikeRepo(id string) bool {
	return strings.Count(id, "/") == 1 && !strings.HasPrefix(id, "10.")
}

func runCite(cmd *cobra.Command, args []string) error {
	style, _ := cmd.Flags().GetString("style")
	tag, _ := cmd.Flags().GetString("tag")
	bibID, _ := cmd.Flags().GetString("bib-id")
	ghCLI, _ := cmd.Flags().GetBool("gh-cli")
	asBibtex, _ := cmd.Flags().GetBool("bibtex")

	client := api.New(apiConfig())
	ctx := cmd.Context()

	if looksLikeRepo(args[0]) {
		var provider api.ReleaseInfoProvider
		if ghCLI {
			provider = api.NewCLIProvider()
		} else {
			provider = api.NewRESTProvider(viper.GetString("github.token"))
		}
		info, err := client.GithubReleaseInfo(ctx, provider, args[0], tag, bibID)
		if err != nil {
			return err
		}
		if info.DOI == "" {
			return fmt.Errorf("no Zenodo deposit mentioned in releases of %s", args[0])
		}
		fmt.Printf("%s (release %s)\n\n%s\n\n%s", info.DOI, info.Tag, info.Citation, info.BibTeX)
		return nil
	}

	rec, err := client.GetRecord(ctx, api.Lookup{DOI: args[0]})
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no record found for %s", args[0])
	}
	if asBibtex {
		fmt.Print(record.BibTeX(rec))
		return nil
	}

	citation, err := client.Citation(ctx, rec.ID(), style)
	if err != nil {
		// The bibliography endpoint has a history of outages; fall back
		// to scraping the landing page.
		fmt.Fprintf(os.Stderr, "Warning: citation endpoint failed (%v), scraping record page\n", err)
		citation, err = api.ScrapeCitation(ctx, nil, rec.ID())
		if err != nil {
			return err
		}
	}
	fmt.Println(citation)
	return nil
}
