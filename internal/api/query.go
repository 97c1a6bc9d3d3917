// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"fmt"
	"sort"
	"strings"
)

// BuildQuery composes a Zenodo search query from a free-text part and
// structured terms. Terms are rendered as space-joined `field:"value"`
// clauses in sorted field order, per the Zenodo search grammar
// (https://help.zenodo.org/guides/search/).
func BuildQuery(free string, terms map[string]string) string {
	parts := make([]string, 0, len(terms)+1)
	if free != "" {
		parts = append(parts, free)
	}
	fields := make([]string, 0, len(terms))
	for f := range terms {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s:%q", f, terms[f]))
	}
	return strings.Join(parts, " ")
}
