// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/zenodo-fetch/internal/httputil"
	"github.com/pdiddy/zenodo-fetch/internal/record"
	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

// Base URLs for DOI resolution. Declared as vars so tests can
// substitute httptest servers.
var (
	doiResolverBase = "https://doi.org/"
	zenodoHost      = "zenodo.org"
)

// ResolveDOI fetches a record's metadata through the DOI resolver
// without touching the records API: the resolver redirects to the
// Zenodo landing page, whose "/export/dcat" sibling embeds the DCAT/RDF
// document in a styled <pre> element. This is the legacy metadata path;
// it survives API-generation changes that break the JSON shape.
func ResolveDOI(ctx context.Context, client *http.Client, doi string) (*types.Record, error) {
	d, err := record.NormalizeDOI(doi)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, doiResolverBase+d, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolving DOI %s: %w", d, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	final := resp.Request.URL
	if strings.TrimPrefix(final.Host, "www.") != zenodoHost {
		return nil, fmt.Errorf("%w: DOI %s resolves to %s, not a Zenodo record",
			record.ErrInvalidIdentifier, d, final.Host)
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, final.String()+"/export/dcat", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err = httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching DCAT export for %s: %w", d, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, URL: final.String() + "/export/dcat"}
	}

	rdf, err := extractDCAT(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("DCAT export for %s: %w", d, err)
	}
	return record.ParseDCAT([]byte(rdf))
}

// extractDCAT pulls the RDF document out of the export page: it is the
// text content of the first styled <pre> element.
func extractDCAT(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing export page: %w", err)
	}

	var pre *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if pre != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "pre" {
			for _, a := range n.Attr {
				if a.Key == "style" {
					pre = n
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if pre == nil {
		return "", fmt.Errorf("no styled <pre> element in export page")
	}
	var sb strings.Builder
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String(), nil
}
