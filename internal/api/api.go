// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api is the single point of HTTP access to Zenodo's REST
// surface: record lookup, community-scoped search, version resolution,
// and citation retrieval.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pdiddy/zenodo-fetch/internal/httputil"
	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

// apiBase is the Zenodo REST base path. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://zenodo.org/api/"

const (
	defaultPageSize  = 100
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "zenodo-fetch/0.1"
)

// Client issues requests against the Zenodo REST API. It memoizes
// community-name to community-id lookups for its own lifetime; the memo
// map is mutex-guarded so a client can be shared across goroutines.
type Client struct {
	http *http.Client
	cfg  types.APIConfig

	mu          sync.Mutex
	communities map[string]string
}

// New creates a Client, filling config defaults for page size, timeout,
// and user agent.
func New(cfg types.APIConfig) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Client{
		http:        &http.Client{Timeout: cfg.Timeout},
		cfg:         cfg,
		communities: make(map[string]string),
	}
}

// PageSize returns the configured result page size.
func (c *Client) PageSize() int { return c.cfg.PageSize }

// Call performs one GET against an API resource (e.g. "records"),
// optionally scoped to a resource instance id, and returns the raw
// response body. Rate-limited requests are retried with backoff; any
// other non-200 response is a StatusError.
func (c *Client) Call(ctx context.Context, what, id string, params url.Values, headers http.Header) ([]byte, error) {
	u := apiBase + what
	if id != "" {
		u += "/" + id
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("zenodo API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, URL: u}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// Records calls the records resource, scoped under a community sub-path
// when a community name is given. The first lookup of a community name
// resolves it to Zenodo's internal community id via a search call; the
// mapping is cached on the client.
func (c *Client) Records(ctx context.Context, id, community string, params url.Values, headers http.Header) ([]byte, error) {
	what := "records"
	if community != "" {
		cid, err := c.communityID(ctx, community)
		if err != nil {
			return nil, err
		}
		what = "communities/" + cid + "/records"
	}
	return c.Call(ctx, what, id, params, headers)
}

// communityID resolves a community name to its id, consulting the memo
// map first.
func (c *Client) communityID(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.communities[name]; ok {
		return id, nil
	}

	body, err := c.Call(ctx, "communities", "", url.Values{"q": {name}}, nil)
	if err != nil {
		return "", err
	}
	hits, err := getHits(body)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "", fmt.Errorf("community %q not found", name)
	}
	var first struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(hits[0], &first); err != nil || first.ID == "" {
		return "", fmt.Errorf("community %q: unexpected response shape", name)
	}

	c.communities[name] = first.ID
	return first.ID, nil
}

// getHits extracts the hit list from a search response. The API has
// served both the `{"hits": {"hits": [...]}}` envelope and a bare
// array.
func getHits(data []byte) ([]json.RawMessage, error) {
	var wrapper struct {
		Hits struct {
			Hits []json.RawMessage `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Hits.Hits != nil {
		return wrapper.Hits.Hits, nil
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err == nil {
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected search response shape")
}
