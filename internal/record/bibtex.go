// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"strings"

	"github.com/pdiddy/zenodo-fetch/internal/bib"
	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

// BibTeX renders a record as a @misc entry, keyed by the DOI's suffix
// with dots replaced by dashes.
func BibTeX(rec *types.Record) *bib.Entry {
	key := rec.DOI
	if i := strings.LastIndex(key, "/"); i >= 0 {
		key = key[i+1:]
	}
	key = strings.ReplaceAll(key, ".", "-")

	e := bib.NewEntry("misc", key)
	if len(rec.Creators) > 0 {
		e.Set("author", strings.Join(rec.Creators, " and "))
	}
	e.Set("title", rec.Title)
	if len(rec.Keywords) > 0 {
		e.Set("keywords", strings.Join(rec.Keywords, ", "))
	}
	e.Set("publisher", "Zenodo")
	if rec.Year != "" {
		e.Set("year", rec.Year)
	}
	if rec.VersionTag() != "" {
		e.Set("version", rec.VersionTag())
	}
	e.Set("doi", rec.DOI)
	e.Set("url", "https://doi.org/"+rec.DOI)
	if rec.License != "" {
		e.Set("copyright", rec.License)
	}
	return e
}
