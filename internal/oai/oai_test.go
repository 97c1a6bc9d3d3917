// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

func oaiRecordXML(id int, deleted bool) string {
	if deleted {
		return fmt.Sprintf(`<record>
  <header status="deleted"><identifier>oai:zenodo.org:%d</identifier></header>
</record>`, id)
	}
	return fmt.Sprintf(`<record>
  <header><identifier>oai:zenodo.org:%d</identifier></header>
  <metadata>
    <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
             xmlns:dct="http://purl.org/dc/terms/"
             xmlns:dcat="http://www.w3.org/ns/dcat#"
             xmlns:foaf="http://xmlns.com/foaf/0.1/">
      <rdf:Description rdf:about="https://doi.org/10.5281/zenodo.%d">
        <dct:title>record %d</dct:title>
        <dct:issued>2021-01-01</dct:issued>
        <dct:creator>
          <rdf:Description><foaf:name>Some Body</foaf:name></rdf:Description>
        </dct:creator>
        <dcat:distribution>
          <dcat:Distribution>
            <dcat:downloadURL rdf:resource="https://zenodo.org/api/files/x/%d.zip"/>
          </dcat:Distribution>
        </dcat:distribution>
      </rdf:Description>
    </rdf:RDF>
  </metadata>
</record>`, id, id, id, id)
}

func listPage(records []string, token string) string {
	page := `<?xml version="1.0" encoding="UTF-8"?>
<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/">
  <ListRecords>`
	for _, r := range records {
		page += "\n" + r
	}
	if token != "" {
		page += fmt.Sprintf("\n<resumptionToken>%s</resumptionToken>", token)
	}
	return page + `
  </ListRecords>
</OAI-PMH>`
}

func withOAIServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	old := oaiBase
	oaiBase = ts.URL
	t.Cleanup(func() {
		oaiBase = old
		ts.Close()
	})
	return ts
}

func TestIteratorTokenFlow(t *testing.T) {
	var requests int
	withOAIServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		q := r.URL.Query()
		assert.Equal(t, "ListRecords", q.Get("verb"))
		switch requests {
		case 1:
			// First request names the set and prefix.
			assert.Equal(t, "dcat", q.Get("metadataPrefix"))
			assert.Equal(t, "user-cldf-datasets", q.Get("set"))
			assert.Empty(t, q.Get("resumptionToken"))
			fmt.Fprint(w, listPage([]string{oaiRecordXML(1, false), oaiRecordXML(2, false)}, "tok1"))
		case 2:
			// Resumption requests carry only the token.
			assert.Equal(t, "tok1", q.Get("resumptionToken"))
			assert.Empty(t, q.Get("metadataPrefix"))
			assert.Empty(t, q.Get("set"))
			fmt.Fprint(w, listPage([]string{oaiRecordXML(3, false)}, ""))
		default:
			t.Errorf("unexpected request %d", requests)
		}
	}))

	h := New(types.APIConfig{})
	it := h.IterRecords("cldf-datasets")

	ctx := context.Background()
	var dois []string
	for {
		rec, err := it.Next(ctx)
		require.NoError(t, err)
		if rec == nil {
			break
		}
		dois = append(dois, rec.DOI)
	}

	assert.Equal(t, []string{"10.5281/zenodo.1", "10.5281/zenodo.2", "10.5281/zenodo.3"}, dois)
	assert.Equal(t, 2, requests)
}

func TestIteratorSkipsDeleted(t *testing.T) {
	withOAIServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, listPage([]string{oaiRecordXML(1, true), oaiRecordXML(2, false)}, ""))
	}))

	h := New(types.APIConfig{})
	it := h.IterRecords("c")

	rec, err := it.Next(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "10.5281/zenodo.2", rec.DOI)

	rec, err = it.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestIteratorNoRecordsMatch(t *testing.T) {
	withOAIServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/">
  <error code="noRecordsMatch">No matching records</error>
</OAI-PMH>`)
	}))

	h := New(types.APIConfig{})
	it := h.IterRecords("empty")

	rec, err := it.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestIteratorProtocolError(t *testing.T) {
	withOAIServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/">
  <error code="badArgument">Unknown set</error>
</OAI-PMH>`)
	}))

	h := New(types.APIConfig{})
	it := h.IterRecords("c")

	_, err := it.Next(context.Background())
	assert.ErrorContains(t, err, "badArgument")
}

func TestIteratorHTTPErrorRetainsState(t *testing.T) {
	var requests int
	withOAIServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		// The retry must repeat the initial request, not a resumption.
		assert.Equal(t, "dcat", r.URL.Query().Get("metadataPrefix"))
		fmt.Fprint(w, listPage([]string{oaiRecordXML(1, false)}, ""))
	}))

	h := New(types.APIConfig{})
	it := h.IterRecords("c")

	ctx := context.Background()
	_, err := it.Next(ctx)
	require.Error(t, err)

	rec, err := it.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "10.5281/zenodo.1", rec.DOI)
}
