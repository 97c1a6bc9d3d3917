// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

// testHit renders a minimal but valid search hit for record id i.
func testHit(i int, version string) string {
	return fmt.Sprintf(`{
	  "doi": "10.5281/zenodo.%d",
	  "conceptdoi": "10.5281/zenodo.1000",
	  "metadata": {"title": "record %d", "access_right": "open", "version": %q},
	  "files": [{"links": {"self": "https://zenodo.org/api/files/x/%d.zip"}}]
	}`, i, i, version, i)
}

func hitsEnvelope(hits []string) string {
	out := `{"hits": {"hits": [`
	for i, h := range hits {
		if i > 0 {
			out += ","
		}
		out += h
	}
	return out + `]}}`
}

// withTestServer points apiBase at a test server for the duration of a
// test.
func withTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	old := apiBase
	apiBase = ts.URL + "/api/"
	t.Cleanup(func() {
		apiBase = old
		ts.Close()
	})
	return ts
}

func TestCallStatusError(t *testing.T) {
	withTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))

	c := New(types.APIConfig{})
	_, err := c.Call(context.Background(), "records", "42", nil, nil)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestCallSendsUserAgent(t *testing.T) {
	var gotUA string
	withTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, `{}`)
	}))

	c := New(types.APIConfig{HTTPConfig: types.HTTPConfig{UserAgent: "test-agent/1.0"}})
	_, err := c.Call(context.Background(), "records", "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "test-agent/1.0", gotUA)
}

func TestGetHits(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr bool
	}{
		{"envelope", `{"hits": {"hits": [{"a":1},{"b":2}]}}`, 2, false},
		{"bare array", `[{"a":1}]`, 1, false},
		{"empty envelope", `{"hits": {"hits": []}}`, 0, false},
		{"scalar", `42`, 0, true},
		{"object without hits", `{"message": "no"}`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := getHits([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestCommunityResolutionCached(t *testing.T) {
	var communityLookups int
	mux := http.NewServeMux()
	mux.HandleFunc("/api/communities", func(w http.ResponseWriter, r *http.Request) {
		communityLookups++
		assert.Equal(t, "cldf-datasets", r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"hits": {"hits": [{"id": "abc123"}]}}`)
	})
	mux.HandleFunc("/api/communities/abc123/records", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, hitsEnvelope(nil))
	})
	withTestServer(t, mux)

	c := New(types.APIConfig{})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := c.Records(ctx, "", "cldf-datasets", nil, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, communityLookups, "community id should be resolved once")
}

func TestCommunityNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/communities", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, hitsEnvelope(nil))
	})
	withTestServer(t, mux)

	c := New(types.APIConfig{})
	_, err := c.Records(context.Background(), "", "nope", nil, nil)
	assert.ErrorContains(t, err, `community "nope" not found`)
}

func TestIterRecordsPagination(t *testing.T) {
	// 13 records at page size 10: a full page then a short one.
	var pagesServed []int
	mux := http.NewServeMux()
	mux.HandleFunc("/api/records", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		require.Equal(t, 10, size)
		assert.Equal(t, "-mostrecent", r.URL.Query().Get("sort"))
		pagesServed = append(pagesServed, page)

		var hits []string
		for i := (page-1)*size + 1; i <= page*size && i <= 13; i++ {
			hits = append(hits, testHit(i, "v1.0"))
		}
		fmt.Fprint(w, hitsEnvelope(hits))
	})
	withTestServer(t, mux)

	c := New(types.APIConfig{PageSize: 10})
	it := c.IterRecords(Query{FreeText: "x"})

	ctx := context.Background()
	var got []types.Record
	for {
		rec, err := it.Next(ctx)
		require.NoError(t, err)
		if rec == nil {
			break
		}
		got = append(got, *rec)
	}

	assert.Len(t, got, 13)
	assert.Equal(t, []int{1, 2}, pagesServed)
	assert.Equal(t, "10.5281/zenodo.1", got[0].DOI)
	assert.Equal(t, "10.5281/zenodo.13", got[12].DOI)
}

func TestResultsRetryAfterFailure(t *testing.T) {
	// First request to page 1 fails; the cursor stays on page 1 so the
	// retry re-requests it.
	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("/api/records", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		fmt.Fprint(w, hitsEnvelope([]string{testHit(1, "v1.0")}))
	})
	withTestServer(t, mux)

	c := New(types.APIConfig{PageSize: 5})
	r := newResults(c, Query{FreeText: "x"})

	ctx := context.Background()
	_, err := r.NextPage(ctx)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Error(t, r.Err())

	recs, err := r.NextPage(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestGetRecordByDOI(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/records", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `doi:"10.5281/zenodo.42"`, r.URL.Query().Get("q"))
		assert.Equal(t, "true", r.URL.Query().Get("allversions"))
		fmt.Fprint(w, hitsEnvelope([]string{testHit(42, "v1.0")}))
	})
	withTestServer(t, mux)

	c := New(types.APIConfig{})
	rec, err := c.GetRecord(context.Background(), Lookup{DOI: "https://zenodo.org/record/42"})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "10.5281/zenodo.42", rec.DOI)
}

func TestGetRecordNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/records", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, hitsEnvelope(nil))
	})
	withTestServer(t, mux)

	c := New(types.APIConfig{})
	rec, err := c.GetRecord(context.Background(), Lookup{DOI: "10.5281/zenodo.42"})
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestGetRecordArgumentValidation(t *testing.T) {
	c := New(types.APIConfig{})
	ctx := context.Background()

	_, err := c.GetRecord(ctx, Lookup{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = c.GetRecord(ctx, Lookup{DOI: "10.5281/zenodo.1", ConceptDOI: "10.5281/zenodo.2"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetRecordByConceptDOIAndVersion(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/records", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `conceptdoi:"10.5281/zenodo.1000"`, r.URL.Query().Get("q"))
		fmt.Fprint(w, hitsEnvelope([]string{testHit(3, "v3.0"), testHit(2, "v2.0"), testHit(1, "v1.0")}))
	})
	withTestServer(t, mux)

	c := New(types.APIConfig{})
	ctx := context.Background()

	// Version match ignores a leading "v" on either side.
	rec, err := c.GetRecord(ctx, Lookup{ConceptDOI: "10.5281/zenodo.1000", Version: "2.0"})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "10.5281/zenodo.2", rec.DOI)

	// No version: latest (first) hit wins.
	rec, err = c.GetRecord(ctx, Lookup{ConceptDOI: "10.5281/zenodo.1000"})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "10.5281/zenodo.3", rec.DOI)

	// Absent version exhausts the iterator.
	rec, err = c.GetRecord(ctx, Lookup{ConceptDOI: "10.5281/zenodo.1000", Version: "v9.9"})
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestIterVersionsInvalidDOI(t *testing.T) {
	c := New(types.APIConfig{})
	_, err := c.IterVersions("not-a-doi")
	assert.Error(t, err)
}

func TestHitsPassParseErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/records", func(w http.ResponseWriter, _ *http.Request) {
		// A hit with no DOI cannot be normalized.
		fmt.Fprint(w, `{"hits": {"hits": [{"metadata": {"title": "broken"}}]}}`)
	})
	withTestServer(t, mux)

	c := New(types.APIConfig{})
	it := c.IterRecords(Query{FreeText: "x"})
	_, err := it.Next(context.Background())
	assert.Error(t, err)
}

func TestCitation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/records/42", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/x-bibliography", r.Header.Get("Accept"))
		assert.Equal(t, "apa", r.URL.Query().Get("style"))
		fmt.Fprint(w, "Dryer, M. (2021). WALS Online. Zenodo.\n")
	})
	withTestServer(t, mux)

	c := New(types.APIConfig{})
	got, err := c.Citation(context.Background(), "42", "apa")
	require.NoError(t, err)
	assert.Equal(t, "Dryer, M. (2021). WALS Online. Zenodo.", got)
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{Code: 500, URL: "https://zenodo.org/api/records"}
	assert.Equal(t, "zenodo API returned HTTP 500 for https://zenodo.org/api/records", err.Error())
}

func TestHitEnvelopeDecodes(t *testing.T) {
	// Guard against the helper emitting malformed JSON.
	var v any
	require.NoError(t, json.Unmarshal([]byte(hitsEnvelope([]string{testHit(1, "v1.0")})), &v))
}
