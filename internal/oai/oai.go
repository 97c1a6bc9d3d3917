// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package oai harvests community records through Zenodo's OAI-PMH feed.
// The feed serves each record's metadata as an embedded DCAT/RDF
// document, and pages with resumption tokens: the first request names
// the community set and metadata prefix, every following request
// carries only the token.
package oai

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/zenodo-fetch/internal/httputil"
	"github.com/pdiddy/zenodo-fetch/internal/record"
	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

// oaiBase is the Zenodo OAI-PMH endpoint. Var so tests can substitute
// an httptest server.
var oaiBase = "https://zenodo.org/oai2d"

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "zenodo-fetch/0.1"
)

// envelope is the OAI-PMH response document. Element names are matched
// by local name only; the protocol namespace adds nothing here.
type envelope struct {
	XMLName xml.Name  `xml:"OAI-PMH"`
	Error   *oaiError `xml:"error"`
	List    struct {
		Records         []oaiRecord `xml:"record"`
		ResumptionToken string      `xml:"resumptionToken"`
	} `xml:"ListRecords"`
}

type oaiError struct {
	Code    string `xml:"code,attr"`
	Message string `xml:",chardata"`
}

type oaiRecord struct {
	Header struct {
		Status     string `xml:"status,attr"`
		Identifier string `xml:"identifier"`
	} `xml:"header"`
	Metadata struct {
		RDF *record.RDF `xml:"RDF"`
	} `xml:"metadata"`
}

// Harvester fetches community feeds.
type Harvester struct {
	http *http.Client
	cfg  types.APIConfig
}

// New creates a Harvester, filling config defaults for timeout and user
// agent.
func New(cfg types.APIConfig) *Harvester {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Harvester{http: &http.Client{Timeout: cfg.Timeout}, cfg: cfg}
}

// IterRecords returns a lazy iterator over all records in a community's
// feed.
func (h *Harvester) IterRecords(community string) *Iterator {
	return &Iterator{h: h, community: community}
}

// Iterator walks an OAI-PMH feed one record at a time, fetching pages
// lazily. Token state advances only after a successful fetch, so a
// failed page can be re-requested by calling Next again.
type Iterator struct {
	h         *Harvester
	community string
	token     string
	started   bool
	done      bool
	buf       []types.Record
}

// Next returns the next record, or (nil, nil) when the feed is
// exhausted.
func (it *Iterator) Next(ctx context.Context) (*types.Record, error) {
	for len(it.buf) == 0 {
		if it.done {
			return nil, nil
		}
		if err := it.fetch(ctx); err != nil {
			return nil, err
		}
	}
	rec := it.buf[0]
	it.buf = it.buf[1:]
	return &rec, nil
}

func (it *Iterator) fetch(ctx context.Context) error {
	params := url.Values{"verb": {"ListRecords"}}
	if !it.started {
		params.Set("metadataPrefix", "dcat")
		params.Set("set", "user-"+it.community)
	} else {
		params.Set("resumptionToken", it.token)
	}

	u := oaiBase + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", it.h.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, it.h.http, req, it.h.cfg.MaxRetries)
	if err != nil {
		return fmt.Errorf("OAI-PMH request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OAI-PMH endpoint returned HTTP %d for %s", resp.StatusCode, u)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading OAI-PMH response: %w", err)
	}

	var env envelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("parsing OAI-PMH response: %w", err)
	}
	if env.Error != nil {
		if env.Error.Code == "noRecordsMatch" {
			it.started = true
			it.done = true
			return nil
		}
		return fmt.Errorf("OAI-PMH error %s: %s", env.Error.Code, strings.TrimSpace(env.Error.Message))
	}

	recs := make([]types.Record, 0, len(env.List.Records))
	for _, r := range env.List.Records {
		if r.Header.Status == "deleted" {
			continue
		}
		if r.Metadata.RDF == nil {
			return fmt.Errorf("record %s has no DCAT metadata", r.Header.Identifier)
		}
		rec, err := record.FromRDF(r.Metadata.RDF)
		if err != nil {
			return fmt.Errorf("record %s: %w", r.Header.Identifier, err)
		}
		recs = append(recs, *rec)
	}

	it.started = true
	it.token = strings.TrimSpace(env.List.ResumptionToken)
	if it.token == "" {
		it.done = true
	}
	it.buf = recs
	return nil
}
