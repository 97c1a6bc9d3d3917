// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/zenodo-fetch/internal/httputil"
)

// recordPageBase is the legacy record landing page prefix, used by the
// HTML citation scrape. Var so tests can point it at an httptest
// server.
var recordPageBase = "https://zenodo.org/record/"

// Citation returns a formatted citation for a record id in the given
// CSL style (e.g. "apa"), using the API's content negotiation.
func (c *Client) Citation(ctx context.Context, recid, style string) (string, error) {
	body, err := c.Call(ctx, "records", recid,
		map[string][]string{"style": {style}},
		http.Header{"Accept": {"text/x-bibliography"}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// ScrapeCitation extracts the default citation from a record's landing
// page markup. It is a fallback for when the bibliography endpoint is
// unavailable, and depends on the page embedding the citation in a
// vm.citationResult assignment; expect it to break when Zenodo reworks
// the frontend.
func ScrapeCitation(ctx context.Context, client *http.Client, recid string) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recordPageBase+recid, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("fetching record page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, URL: recordPageBase + recid}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading record page: %w", err)
	}

	for _, line := range strings.Split(string(body), "\n") {
		if !strings.Contains(line, "vm.citationResult") {
			continue
		}
		start := strings.Index(line, "'")
		end := strings.LastIndex(line, "'")
		if start < 0 || end <= start {
			continue
		}
		return strings.TrimSpace(html.UnescapeString(line[start+1 : end])), nil
	}
	return "", fmt.Errorf("no citation found on record page for %s", recid)
}
