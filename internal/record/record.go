// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package record builds canonical deposit records from the three wire
// formats Zenodo has delivered metadata in over the years: DCAT/RDF-XML
// dumps, OAI-PMH feed entries, and JSON search hits.
package record

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

// ErrInvalidIdentifier reports an identifier or URL that cannot be
// normalized to a DOI.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// ErrMissingField reports upstream metadata lacking a field the
// canonical record shape requires. Malformed upstream metadata fails
// parsing rather than being dropped silently.
var ErrMissingField = errors.New("missing required metadata field")

// doiPattern matches the general DOI shape: "10.", digits and dots,
// a slash, and a non-empty suffix without further slashes.
var doiPattern = regexp.MustCompile(`^10\.[0-9][0-9.]*/[^/\s]+$`)

// zenodoDOIExact anchors types.ZenodoDOIPattern to the full string.
var zenodoDOIExact = regexp.MustCompile(`^10\.5281/zenodo\.[0-9]+$`)

// New validates and normalizes a record built from explicit fields. All
// parse factories funnel through it, so the invariants hold regardless
// of which wire format a record came from: the DOI is in canonical bare
// form, creators are in "Last, First" form, communities carry no empty
// entries, and a record without downloadable resources is explicitly
// marked closed-access.
func New(r types.Record) (*types.Record, error) {
	doi, err := NormalizeDOI(r.DOI)
	if err != nil {
		return nil, err
	}
	r.DOI = doi

	creators := make([]string, 0, len(r.Creators))
	for _, c := range r.Creators {
		creators = append(creators, NormalizeCreator(c))
	}
	r.Creators = creators

	var communities []string
	for _, c := range r.Communities {
		if c != "" {
			communities = append(communities, c)
		}
	}
	r.Communities = communities

	if len(r.DownloadURLs) == 0 && !r.ClosedAccess {
		return nil, fmt.Errorf("%w: record %s has no download URLs and is not marked closed access",
			ErrMissingField, r.DOI)
	}
	return &r, nil
}

// validDOI reports whether doi matches the Zenodo DOI pattern or the
// general DOI shape.
func validDOI(doi string) bool {
	return zenodoDOIExact.MatchString(doi) || doiPattern.MatchString(doi)
}
