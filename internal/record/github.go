// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"net/url"
	"strings"

	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

// ParseGithubURL extracts a repository descriptor from a GitHub URL.
// A "/tree/{tag}" path segment carries the release tag
// (e.g. "https://github.com/org/repo/tree/v1.0"). URLs that do not
// point at a GitHub repository yield nil, not an error: callers probe
// arbitrary related-identifier URLs with it.
func ParseGithubURL(raw string) *types.GithubRepos {
	u, err := url.Parse(raw)
	if err != nil || strings.TrimPrefix(u.Host, "www.") != "github.com" {
		return nil
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil
	}
	g := &types.GithubRepos{Org: parts[0], Name: parts[1]}
	if len(parts) >= 4 && parts[2] == "tree" {
		g.Tag = parts[3]
	}
	return g
}
