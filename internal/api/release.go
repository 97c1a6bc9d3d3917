// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/google/go-github/v68/github"

	"github.com/pdiddy/zenodo-fetch/internal/bib"
	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

var (
	versionTagPattern = regexp.MustCompile(`v[0-9]+\.[0-9]+(\.[0-9]+)?`)
	doiURLPattern     = regexp.MustCompile(`https://doi\.org/(10\.5281/zenodo\.[0-9]+)`)
)

// ReleaseInfoProvider fetches GitHub release metadata for a repository
// given as "org/name".
type ReleaseInfoProvider interface {
	// LatestRelease returns the tag and release notes of the newest
	// release, or an error when the repository has none.
	LatestRelease(ctx context.Context, repo string) (tag, body string, err error)

	// Release returns the release notes for a specific tag.
	Release(ctx context.Context, repo, tag string) (body string, err error)
}

// ReleaseInfo describes a GitHub release and its Zenodo deposit, when
// the release notes mention one. A zero ReleaseInfo means the
// repository has no release carrying a Zenodo DOI.
type ReleaseInfo struct {
	Tag      string
	DOI      string
	Citation string
	BibTeX   *bib.Entry
}

// executor abstracts command execution for testing.
type executor interface {
	Output(name string, args ...string) ([]byte, error)
}

type osExecutor struct{}

func (osExecutor) Output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// CLIProvider reads release metadata through the GitHub CLI ("gh"),
// which handles authentication out of band. The binary must be on PATH
// and logged in.
type CLIProvider struct {
	exec executor
}

// NewCLIProvider returns a provider backed by the gh binary.
func NewCLIProvider() *CLIProvider {
	return &CLIProvider{exec: osExecutor{}}
}

func (p *CLIProvider) LatestRelease(ctx context.Context, repo string) (string, string, error) {
	out, err := p.exec.Output("gh", "release", "list", "-L", "1", "-R", repo)
	if err != nil {
		return "", "", fmt.Errorf("gh release list for %s: %w", repo, err)
	}
	line := strings.TrimSpace(string(out))
	if line == "" {
		return "", "", fmt.Errorf("no releases for %s", repo)
	}
	tag := versionTagPattern.FindString(line)
	if tag == "" {
		// Fall back to the first tab-separated column.
		tag = strings.SplitN(line, "\t", 2)[0]
	}
	body, err := p.Release(ctx, repo, tag)
	if err != nil {
		return "", "", err
	}
	return tag, body, nil
}

func (p *CLIProvider) Release(_ context.Context, repo, tag string) (string, error) {
	out, err := p.exec.Output("gh", "release", "view", tag, "-R", repo)
	if err != nil {
		return "", fmt.Errorf("gh release view %s for %s: %w", tag, repo, err)
	}
	return string(out), nil
}

// RESTProvider reads release metadata through the GitHub REST API.
// Unauthenticated access is fine for public repositories, subject to
// the anonymous rate limit.
type RESTProvider struct {
	gh *github.Client
}

// NewRESTProvider returns a provider backed by the GitHub REST API. A
// non-empty token lifts the anonymous rate limit.
func NewRESTProvider(token string) *RESTProvider {
	c := github.NewClient(nil)
	if token != "" {
		c = c.WithAuthToken(token)
	}
	return &RESTProvider{gh: c}
}

func splitRepo(repo string) (org, name string, err error) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: repository must be given as org/name, got %q", ErrInvalidArgument, repo)
	}
	return parts[0], parts[1], nil
}

func (p *RESTProvider) LatestRelease(ctx context.Context, repo string) (string, string, error) {
	org, name, err := splitRepo(repo)
	if err != nil {
		return "", "", err
	}
	rel, _, err := p.gh.Repositories.GetLatestRelease(ctx, org, name)
	if err != nil {
		return "", "", fmt.Errorf("latest release for %s: %w", repo, err)
	}
	return rel.GetTagName(), rel.GetBody(), nil
}

func (p *RESTProvider) Release(ctx context.Context, repo, tag string) (string, error) {
	org, name, err := splitRepo(repo)
	if err != nil {
		return "", err
	}
	rel, _, err := p.gh.Repositories.GetReleaseByTag(ctx, org, name, tag)
	if err != nil {
		return "", fmt.Errorf("release %s for %s: %w", tag, repo, err)
	}
	return rel.GetBody(), nil
}

// GithubReleaseInfo resolves a repository's release (latest when tag is
// empty) to its Zenodo deposit by scanning the release notes for a DOI
// link, then fetches the deposit's citation in APA and BibTeX form. The
// BibTeX entry is re-keyed to bibID (or the repository name) and
// normalized for dataset use. When the release carries no DOI link, a
// zero ReleaseInfo and nil error are returned.
func (c *Client) GithubReleaseInfo(ctx context.Context, p ReleaseInfoProvider, repo, tag, bibID string) (ReleaseInfo, error) {
	var body string
	var err error
	if tag == "" {
		tag, body, err = p.LatestRelease(ctx, repo)
	} else {
		body, err = p.Release(ctx, repo, tag)
	}
	if err != nil {
		return ReleaseInfo{}, err
	}

	matches := doiURLPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return ReleaseInfo{}, nil
	}
	// Release notes accumulate; the last mention is the deposit for
	// this release.
	doi := matches[len(matches)-1][1]
	recid := strings.TrimPrefix(doi, types.ZenodoDOIPrefix)

	citation, err := c.Citation(ctx, recid, "apa")
	if err != nil {
		return ReleaseInfo{}, err
	}
	bibtex, err := c.Citation(ctx, recid, "bibtex")
	if err != nil {
		return ReleaseInfo{}, err
	}
	entry, err := bib.Parse(bibtex)
	if err != nil {
		return ReleaseInfo{}, fmt.Errorf("BibTeX export for %s: %w", doi, err)
	}

	if bibID == "" {
		bibID = strings.ReplaceAll(repo, "/", "_")
	}
	entry.Key = bibID
	entry.Delete("abstract")
	entry.Delete("abstractNote")
	entry.Delete("month")
	entry.Set("edition", tag)
	entry.Set("type", "Data set")

	return ReleaseInfo{Tag: tag, DOI: doi, Citation: citation, BibTeX: entry}, nil
}
