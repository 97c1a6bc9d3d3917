// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/zenodo-fetch/internal/record"
	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

// Query holds the search parameters for record iteration.
type Query struct {
	// Community scopes the search to one Zenodo community, given by
	// name (resolved to an id on first use).
	Community string

	// Keyword filters by a record keyword.
	Keyword string

	// FreeText is an unstructured query part.
	FreeText string

	// Terms are additional structured search terms rendered in the
	// Zenodo search grammar.
	Terms map[string]string

	// AllVersions includes superseded versions in the results instead
	// of only the latest version of each deposit.
	AllVersions bool
}

// Results is the page cursor over a records search. Pages are fetched
// strictly forward; iteration ends when a page comes back with fewer
// hits than the page size. A transport failure leaves the cursor on the
// failed page so the caller can retry it.
type Results struct {
	api       *Client
	community string
	params    url.Values
	page      int
	more      bool
	err       error
}

func newResults(c *Client, q Query) *Results {
	terms := make(map[string]string, len(q.Terms)+1)
	for k, v := range q.Terms {
		terms[k] = v
	}
	if q.Keyword != "" {
		terms["keywords"] = q.Keyword
	}

	params := url.Values{}
	if qs := BuildQuery(q.FreeText, terms); qs != "" {
		params.Set("q", qs)
	}
	if q.AllVersions {
		params.Set("allversions", "true")
	}
	return &Results{api: c, community: q.Community, params: params, more: true}
}

// More reports whether another page may be available.
func (r *Results) More() bool { return r.more }

// Err returns the terminal error of the last failed fetch, if any.
func (r *Results) Err() error { return r.err }

// NextPage fetches the next result page and parses its hits into
// records. Results are server-sorted most-recent first.
func (r *Results) NextPage(ctx context.Context) ([]types.Record, error) {
	r.page++
	params := url.Values{
		"sort": {"-mostrecent"},
		"page": {strconv.Itoa(r.page)},
		"size": {strconv.Itoa(r.api.PageSize())},
	}
	for k, vs := range r.params {
		params[k] = vs
	}

	body, err := r.api.Records(ctx, "", r.community, params, nil)
	if err != nil {
		// Roll the cursor back so a retry re-requests this page.
		r.page--
		r.err = err
		return nil, err
	}
	hits, err := getHits(body)
	if err != nil {
		r.page--
		r.err = err
		return nil, err
	}

	r.more = len(hits) >= r.api.PageSize()
	recs := make([]types.Record, 0, len(hits))
	for _, h := range hits {
		rec, err := record.ParseHit(h)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, nil
}

// RecordIterator yields one record at a time from a paged search,
// fetching the next page lazily when the current page's records are
// exhausted.
type RecordIterator struct {
	results *Results
	buf     []types.Record
}

// Next returns the next record, or (nil, nil) when the result set is
// exhausted.
func (it *RecordIterator) Next(ctx context.Context) (*types.Record, error) {
	for len(it.buf) == 0 {
		if !it.results.More() {
			return nil, nil
		}
		page, err := it.results.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return nil, nil
		}
		it.buf = page
	}
	rec := it.buf[0]
	it.buf = it.buf[1:]
	return &rec, nil
}

// Results exposes the underlying page cursor, e.g. to inspect its
// terminal error before retrying.
func (it *RecordIterator) Results() *Results { return it.results }

// IterRecords returns a lazy iterator over records matching the query.
func (c *Client) IterRecords(q Query) *RecordIterator {
	return &RecordIterator{results: newResults(c, q)}
}

// IterVersions returns a lazy iterator over all versions recorded for a
// concept DOI.
func (c *Client) IterVersions(conceptDOI string) (*RecordIterator, error) {
	doi, err := record.NormalizeDOI(conceptDOI)
	if err != nil {
		return nil, err
	}
	return c.IterRecords(Query{
		AllVersions: true,
		Terms:       map[string]string{"conceptdoi": doi},
	}), nil
}

// Lookup identifies one record for GetRecord. Exactly one of DOI and
// ConceptDOI must be set; Version selects among a concept DOI's
// versions.
type Lookup struct {
	DOI        string
	ConceptDOI string
	Version    string
}

// GetRecord retrieves a single record. With a DOI it is an exact
// lookup. With a concept DOI and no version it returns the latest
// matching record; with a version it scans all versions for a matching
// version tag (a leading "v" is ignored on both sides). Returns
// (nil, nil) when nothing matches.
func (c *Client) GetRecord(ctx context.Context, l Lookup) (*types.Record, error) {
	if (l.DOI == "") == (l.ConceptDOI == "") {
		return nil, fmt.Errorf("%w: exactly one of DOI and ConceptDOI must be given", ErrInvalidArgument)
	}

	if l.DOI != "" {
		doi, err := record.NormalizeDOI(l.DOI)
		if err != nil {
			return nil, err
		}
		params := url.Values{
			"allversions": {"true"},
			"q":           {BuildQuery("", map[string]string{"doi": doi})},
		}
		body, err := c.Records(ctx, "", "", params, nil)
		if err != nil {
			return nil, err
		}
		return firstRecord(body)
	}

	conceptDOI, err := record.NormalizeDOI(l.ConceptDOI)
	if err != nil {
		return nil, err
	}
	if l.Version == "" {
		params := url.Values{"q": {BuildQuery("", map[string]string{"conceptdoi": conceptDOI})}}
		body, err := c.Records(ctx, "", "", params, nil)
		if err != nil {
			return nil, err
		}
		return firstRecord(body)
	}

	it, err := c.IterVersions(conceptDOI)
	if err != nil {
		return nil, err
	}
	want := strings.TrimPrefix(l.Version, "v")
	for {
		rec, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, nil
		}
		if strings.TrimPrefix(rec.VersionTag(), "v") == want {
			return rec, nil
		}
	}
}

// firstRecord parses the first hit of a search response, or returns
// (nil, nil) when the response has no hits.
func firstRecord(body []byte) (*types.Record, error) {
	hits, err := getHits(body)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}
	return record.ParseHit(hits[0])
}
