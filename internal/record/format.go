// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

// FormatTable writes records as a human-readable table to w.
func FormatTable(recs []types.Record, w io.Writer) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No records found.")
		return
	}

	fmt.Fprintf(w, "%-28s  %-50s  %-24s  %-4s  %s\n",
		"DOI", "Title", "Creators", "Year", "Version")
	fmt.Fprintln(w, strings.Repeat("-", 118))

	for i := range recs {
		r := &recs[i]
		title := r.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%-28s  %-50s  %-24s  %-4s  %s\n",
			r.DOI, title, formatCreators(r.Creators), r.Year, r.Version)
	}
	fmt.Fprintf(w, "\n%d records\n", len(recs))
}

// FormatJSON writes records as indented JSON to w.
func FormatJSON(recs []types.Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

// FormatYAML writes records as a YAML list to w.
func FormatYAML(recs []types.Record, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(recs)
}

func formatCreators(creators []string) string {
	switch len(creators) {
	case 0:
		return ""
	case 1:
		return truncate(creators[0], 24)
	default:
		return truncate(creators[0], 18) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
