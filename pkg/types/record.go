// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"regexp"
	"strings"
)

// ZenodoDOIPattern matches DOIs minted by Zenodo's own prefix, capturing
// the numeric record id (e.g. "10.5281/zenodo.5173799").
var ZenodoDOIPattern = regexp.MustCompile(`10\.5281/zenodo\.([0-9]+)`)

// ZenodoDOIFormat renders a Zenodo record id as a DOI.
const ZenodoDOIFormat = "10.5281/zenodo.%s"

// ZenodoDOIPrefix is the fixed prefix of Zenodo-minted DOIs.
const ZenodoDOIPrefix = "10.5281/zenodo."

// Record holds the normalized metadata of one Zenodo deposit. The same
// shape is produced from all three upstream formats (DCAT/RDF, OAI-PMH,
// JSON records API) so downstream code never cares where a record came
// from.
type Record struct {
	// DOI is the canonical, bare-form DOI of the deposit.
	DOI string `json:"doi" yaml:"doi"`

	// Title is the deposit title.
	Title string `json:"title" yaml:"title"`

	// Creators lists creator names, normalized to "Last, First" form,
	// in source order.
	Creators []string `json:"creators,omitempty" yaml:"creators,omitempty"`

	// Year is the publication year, or empty if unknown.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// License is a license identifier or URL, or empty.
	License string `json:"license,omitempty" yaml:"license,omitempty"`

	// DownloadURLs lists the deposit's file URLs. The first entry is
	// treated as the primary download.
	DownloadURLs []string `json:"download_urls,omitempty" yaml:"download_urls,omitempty"`

	// Keywords lists the deposit's keywords.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Communities lists the identifiers of Zenodo communities the
	// deposit belongs to. Never contains empty entries.
	Communities []string `json:"communities,omitempty" yaml:"communities,omitempty"`

	// GithubRepos describes the linked GitHub release, if the deposit
	// was archived through the GitHub-Zenodo bridge.
	GithubRepos *GithubRepos `json:"github_repos,omitempty" yaml:"github_repos,omitempty"`

	// ClosedAccess is true for deposits whose files are not publicly
	// retrievable.
	ClosedAccess bool `json:"closed_access" yaml:"closed_access"`

	// Version is the deposit's version tag (e.g. "v1.1"), or empty.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// ConceptDOI is the version-independent DOI grouping all versions
	// of this deposit, or empty.
	ConceptDOI string `json:"concept_doi,omitempty" yaml:"concept_doi,omitempty"`

	// Metadata retains upstream fields that are not otherwise modeled.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// DownloadURL returns the primary download URL, or "" if the record has
// no downloadable resources.
func (r *Record) DownloadURL() string {
	if len(r.DownloadURLs) == 0 {
		return ""
	}
	return r.DownloadURLs[0]
}

// ID returns the numeric Zenodo record id encoded in the DOI.
func (r *Record) ID() string {
	return strings.TrimPrefix(r.DOI, ZenodoDOIPrefix)
}

// VersionTag returns the version of the deposit: the explicit version
// field when set, else the tag of the linked GitHub release.
func (r *Record) VersionTag() string {
	if r.Version != "" {
		return r.Version
	}
	if r.GithubRepos != nil {
		return r.GithubRepos.Tag
	}
	return ""
}

// GithubRepos describes the GitHub repository release linked to a Zenodo
// deposit. Deposits made through the GitHub-Zenodo bridge carry enough
// metadata to retrieve the source repository; downloading the release
// from GitHub avoids Zenodo's rate limiting.
type GithubRepos struct {
	// Org is the GitHub organization or user owning the repository.
	Org string `json:"org" yaml:"org"`

	// Name is the repository name.
	Name string `json:"name" yaml:"name"`

	// Tag is the release tag of the deposited version, or empty.
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// CloneURL returns a URL suitable for passing to git clone.
func (g *GithubRepos) CloneURL() string {
	return fmt.Sprintf("https://github.com/%s/%s.git", g.Org, g.Name)
}

// ReleaseURL returns the URL of the zipped release on GitHub, or "" when
// no tag is known.
func (g *GithubRepos) ReleaseURL() string {
	if g.Tag == "" {
		return ""
	}
	return fmt.Sprintf("https://github.com/%s/%s/archive/refs/tags/%s.zip", g.Org, g.Name, g.Tag)
}
